package inspect

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"scene-exporter/internal/exporter/pathdata"
)

// ============================================================
// Summary
// ============================================================

// Summary - статистика по экспортированному SVG.
type Summary struct {
	Elements map[string]int `json:"elements"`
	Commands map[string]int `json:"commands"`
	Rotated  int            `json:"rotated"`
	IDs      []string       `json:"ids,omitempty"`
}

// ParseSVG читает SVG и считает элементы по типам и команды в атрибутах d.
func ParseSVG(r io.Reader) (*Summary, error) {
	s := &Summary{
		Elements: map[string]int{},
		Commands: map[string]int{},
	}

	decoder := xml.NewDecoder(r)
	sawRoot := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if start.Name.Local != "svg" {
				return nil, fmt.Errorf("parse svg: root element is <%s>", start.Name.Local)
			}
			sawRoot = true
		}

		s.Elements[start.Name.Local]++

		for _, a := range start.Attr {
			switch a.Name.Local {
			case "id":
				s.IDs = append(s.IDs, a.Value)
			case "transform":
				if strings.HasPrefix(a.Value, "rotate(") {
					s.Rotated++
				}
			case "d":
				if start.Name.Local != "path" {
					continue
				}
				cmds, err := pathdata.Parse(a.Value)
				if err != nil {
					return nil, fmt.Errorf("parse svg: path d: %w", err)
				}
				for _, c := range cmds {
					s.Commands[string(c.Op)]++
				}
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("parse svg: no root element")
	}
	return s, nil
}

// Shapes возвращает число фигур без учета контейнеров.
func (s *Summary) Shapes() int {
	total := 0
	for name, n := range s.Elements {
		switch name {
		case "svg", "g", "text":
			continue
		}
		total += n
	}
	return total
}
