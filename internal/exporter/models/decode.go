package models

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"scene-exporter/internal/exporter/geom"
)

// ============================================================
// Scene JSON
// ============================================================

type rawItem struct {
	Type          string            `json:"type"`
	Name          string            `json:"name"`
	Style         *Style            `json:"style"`
	Children      []json.RawMessage `json:"children"`
	Closed        bool              `json:"closed"`
	Segments      []Segment         `json:"segments"`
	Point         geom.Point        `json:"point"`
	Content       string            `json:"content"`
	Matrix        *[6]float64       `json:"matrix"`
	Justification string            `json:"justification"`
}

type rawProject struct {
	Name   string            `json:"name"`
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
	Style  *Style            `json:"style"`
	Layers []json.RawMessage `json:"layers"`
}

// DecodeProject читает проект из JSON.
func DecodeProject(r io.Reader) (*Project, error) {
	var raw rawProject
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}

	project := &Project{
		Name:   raw.Name,
		Width:  raw.Width,
		Height: raw.Height,
	}
	if raw.Style != nil {
		project.Style = *raw.Style
	}

	for i, msg := range raw.Layers {
		item, err := decodeItem(msg)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layer, ok := item.(*Container)
		if !ok {
			return nil, fmt.Errorf("layer %d: top-level item is not a layer", i)
		}
		layer.Kind = KindLayer
		project.Layers = append(project.Layers, layer)
	}

	return project, nil
}

func decodeItem(msg json.RawMessage) (Item, error) {
	var raw rawItem
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}

	var style Style
	if raw.Style != nil {
		style = *raw.Style
	}

	switch strings.ToLower(raw.Type) {
	case "layer", "group", "compound-path":
		c := &Container{Kind: KindGroup, Name: raw.Name, Style: style}
		if strings.EqualFold(raw.Type, "layer") {
			c.Kind = KindLayer
		}
		for i, childMsg := range raw.Children {
			child, err := decodeItem(childMsg)
			if err != nil {
				return nil, fmt.Errorf("%s child %d: %w", c.Kind, i, err)
			}
			c.Children = append(c.Children, child)
		}
		return c, nil

	case "path":
		return &Path{
			Name:     raw.Name,
			Closed:   raw.Closed,
			Segments: raw.Segments,
			Style:    style,
		}, nil

	case "text":
		t := &Text{
			Name:    raw.Name,
			Point:   raw.Point,
			Content: raw.Content,
			Matrix:  [6]float64{1, 0, 0, 1, 0, 0},
			Style:   style,
		}
		if raw.Matrix != nil {
			t.Matrix = *raw.Matrix
		}
		switch strings.ToLower(raw.Justification) {
		case "center":
			t.Justification = JustifyCenter
		case "right":
			t.Justification = JustifyRight
		}
		return t, nil
	}

	return &Opaque{Kind: raw.Type, Name: raw.Name}, nil
}
