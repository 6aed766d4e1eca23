// Package shape распознает примитивы (line, polyline, polygon, rect, circle,
// ellipse) в путях из кубических кривых Безье.
package shape

import "scene-exporter/internal/exporter/geom"

type Kind int

const (
	KindPath Kind = iota
	KindLine
	KindPolyline
	KindPolygon
	KindRect
	KindRoundRect
	KindCircle
	KindEllipse
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindLine:
		return "line"
	case KindPolyline:
		return "polyline"
	case KindPolygon:
		return "polygon"
	case KindRect:
		return "rect"
	case KindRoundRect:
		return "roundrect"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	}
	return "<unknown Kind>"
}

// ============================================================
// Shapes
// ============================================================

// Shape - результат классификации. Набор реализаций закрыт.
type Shape interface {
	Kind() Kind
	isShape()
}

type Line struct {
	From geom.Point
	To   geom.Point
}

// Poly - ломаная (Closed = false) или многоугольник.
type Poly struct {
	Points []geom.Point
	Closed bool
}

// Rect задан в собственной (неповернутой) системе координат.
type Rect struct {
	X, Y          float64
	Width, Height float64
	RX, RY        float64
}

type Circle struct {
	Center geom.Point
	R      float64
}

type Ellipse struct {
	Center geom.Point
	RX, RY float64
}

// Generic - путь, не совпавший ни с одним примитивом.
type Generic struct{}

func (Line) Kind() Kind { return KindLine }

func (p Poly) Kind() Kind {
	if p.Closed {
		return KindPolygon
	}
	return KindPolyline
}

func (r Rect) Kind() Kind {
	if r.RX > 0 || r.RY > 0 {
		return KindRoundRect
	}
	return KindRect
}

func (Circle) Kind() Kind  { return KindCircle }
func (Ellipse) Kind() Kind { return KindEllipse }
func (Generic) Kind() Kind { return KindPath }

func (Line) isShape()    {}
func (Poly) isShape()    {}
func (Rect) isShape()    {}
func (Circle) isShape()  {}
func (Ellipse) isShape() {}
func (Generic) isShape() {}

// Verdict - фигура плюс поворот (градусы) вокруг Center.
type Verdict struct {
	Shape    Shape
	Rotation float64
	Center   geom.Point
}
