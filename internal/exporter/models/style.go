package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Style
// ============================================================

// Style описывает визуальные свойства элемента. nil-поле означает
// "наследовать от контейнера".
type Style struct {
	Fill        *Paint
	Stroke      *Paint
	StrokeWidth *float64
	Dash        *[]float64 // пустой срез = "none"
	LineCap     *LineCap
	LineJoin    *LineJoin
	MiterLimit  *float64
	FontFamily  *string
	FontSize    *float64
	Opacity     *float64
	Visible     *bool
}

// Paint - цвет заливки или обводки. None отличает явное "none" от наследования.
type Paint struct {
	None  bool
	Color color.NRGBA
}

// Solid создает непрозрачную краску.
func Solid(r, g, b uint8) *Paint {
	return &Paint{Color: color.NRGBA{R: r, G: g, B: b, A: 0xff}}
}

// NoPaint создает явное "none".
func NoPaint() *Paint {
	return &Paint{None: true}
}

func (p Paint) Equal(o Paint) bool {
	if p.None || o.None {
		return p.None == o.None
	}
	return p.Color == o.Color
}

// Hex возвращает #rrggbb без альфа-канала.
func (p Paint) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", p.Color.R, p.Color.G, p.Color.B)
}

// Alpha возвращает прозрачность в диапазоне 0..1.
func (p Paint) Alpha() float64 {
	return float64(p.Color.A) / 0xff
}

type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

func (c LineCap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	}
	return "<unknown LineCap>"
}

type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

func (j LineJoin) String() string {
	switch j {
	case JoinMiter:
		return "miter"
	case JoinRound:
		return "round"
	case JoinBevel:
		return "bevel"
	}
	return "<unknown LineJoin>"
}

func parseLineCap(s string) (LineCap, error) {
	switch strings.ToLower(s) {
	case "butt":
		return CapButt, nil
	case "round":
		return CapRound, nil
	case "square":
		return CapSquare, nil
	}
	return 0, fmt.Errorf("unknown stroke cap %q", s)
}

func parseLineJoin(s string) (LineJoin, error) {
	switch strings.ToLower(s) {
	case "miter":
		return JoinMiter, nil
	case "round":
		return JoinRound, nil
	case "bevel":
		return JoinBevel, nil
	}
	return 0, fmt.Errorf("unknown stroke join %q", s)
}

// ============================================================
// Style JSON
// ============================================================

// UnmarshalJSON различает три состояния цвета: ключ отсутствует (наследование),
// null (none) и значение.
func (s *Style) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("style: %w", err)
	}

	var err error
	if s.Fill, err = paintField(raw, "fillColor"); err != nil {
		return err
	}
	if s.Stroke, err = paintField(raw, "strokeColor"); err != nil {
		return err
	}
	if s.StrokeWidth, err = optional[float64](raw, "strokeWidth"); err != nil {
		return err
	}
	if s.MiterLimit, err = optional[float64](raw, "miterLimit"); err != nil {
		return err
	}
	if s.FontFamily, err = optional[string](raw, "fontFamily"); err != nil {
		return err
	}
	if s.FontSize, err = optional[float64](raw, "fontSize"); err != nil {
		return err
	}
	if s.Opacity, err = optional[float64](raw, "opacity"); err != nil {
		return err
	}
	if s.Visible, err = optional[bool](raw, "visible"); err != nil {
		return err
	}

	if msg, ok := raw["dashArray"]; ok {
		dash := []float64{}
		if !isNull(msg) {
			if err := json.Unmarshal(msg, &dash); err != nil {
				return fmt.Errorf("style dashArray: %w", err)
			}
		}
		s.Dash = &dash
	}

	if name, err := optional[string](raw, "strokeCap"); err != nil {
		return err
	} else if name != nil {
		c, err := parseLineCap(*name)
		if err != nil {
			return err
		}
		s.LineCap = &c
	}

	if name, err := optional[string](raw, "strokeJoin"); err != nil {
		return err
	} else if name != nil {
		j, err := parseLineJoin(*name)
		if err != nil {
			return err
		}
		s.LineJoin = &j
	}

	return nil
}

func optional[T any](raw map[string]json.RawMessage, key string) (*T, error) {
	msg, ok := raw[key]
	if !ok || isNull(msg) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, fmt.Errorf("style %s: %w", key, err)
	}
	return &v, nil
}

func paintField(raw map[string]json.RawMessage, key string) (*Paint, error) {
	msg, ok := raw[key]
	if !ok {
		return nil, nil
	}
	if isNull(msg) {
		return NoPaint(), nil
	}
	p, err := parsePaint(msg)
	if err != nil {
		return nil, fmt.Errorf("style %s: %w", key, err)
	}
	return p, nil
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

// parsePaint принимает "#rgb", "#rrggbb", "#rrggbbaa", "none" или [r, g, b(, a)] в 0..1.
func parsePaint(msg json.RawMessage) (*Paint, error) {
	var str string
	if err := json.Unmarshal(msg, &str); err == nil {
		return ParseColor(str)
	}

	var comps []float64
	if err := json.Unmarshal(msg, &comps); err != nil {
		return nil, fmt.Errorf("unsupported color %s", string(msg))
	}
	if len(comps) != 3 && len(comps) != 4 {
		return nil, fmt.Errorf("color needs 3 or 4 components, got %d", len(comps))
	}
	if len(comps) == 3 {
		comps = append(comps, 1)
	}
	return &Paint{Color: color.NRGBA{
		R: unit(comps[0]),
		G: unit(comps[1]),
		B: unit(comps[2]),
		A: unit(comps[3]),
	}}, nil
}

// ParseColor разбирает строковую запись цвета.
func ParseColor(s string) (*Paint, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return NoPaint(), nil
	}
	if !strings.HasPrefix(s, "#") {
		return nil, fmt.Errorf("unsupported color %q", s)
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("unsupported color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("unsupported color %q: %w", s, err)
	}
	return &Paint{Color: color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}}, nil
}

func unit(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(math.Round(v * 0xff))
}
