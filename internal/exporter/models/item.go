package models

import (
	"errors"

	"scene-exporter/internal/exporter/geom"
)

// ErrDegeneratePath возвращается для пути без сегментов.
var ErrDegeneratePath = errors.New("degenerate path: no segments")

// ErrNonFinite возвращается для координат NaN/Inf, в том числе полученных
// переполнением при вычислении параметров фигуры.
var ErrNonFinite = errors.New("non-finite geometry")

// ============================================================
// Scene graph
// ============================================================

// Item - узел графа сцены. Набор реализаций закрыт: Container, Path, Text, Opaque.
type Item interface {
	itemName() string
	isItem()
}

type ContainerKind int

const (
	KindLayer ContainerKind = iota
	KindGroup
)

func (k ContainerKind) String() string {
	if k == KindLayer {
		return "layer"
	}
	return "group"
}

// Container - слой или группа. Владеет дочерними элементами.
type Container struct {
	Kind     ContainerKind
	Name     string
	Style    Style
	Children []Item
}

// Segment хранит якорь и ручки относительно якоря.
type Segment struct {
	Point     geom.Point `json:"point"`
	HandleIn  geom.Point `json:"handleIn"`
	HandleOut geom.Point `json:"handleOut"`
}

type Path struct {
	Name     string
	Closed   bool
	Segments []Segment
	Style    Style
}

// Next возвращает индекс следующего сегмента с переходом через конец.
func (p *Path) Next(i int) int {
	return (i + 1) % len(p.Segments)
}

// Prev возвращает индекс предыдущего сегмента.
func (p *Path) Prev(i int) int {
	n := len(p.Segments)
	return (i - 1 + n) % n
}

// Anchors возвращает якорные точки в порядке сегментов.
func (p *Path) Anchors() []geom.Point {
	points := make([]geom.Point, len(p.Segments))
	for i, s := range p.Segments {
		points[i] = s.Point
	}
	return points
}

type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight
)

// Text - текстовая метка. Matrix: [a, b, c, d, tx, ty].
type Text struct {
	Name          string
	Point         geom.Point
	Content       string
	Matrix        [6]float64
	Justification Justification
	Style         Style
}

// Opaque - неподдерживаемый тип элемента (raster, symbol и т.д.). При экспорте пропускается.
type Opaque struct {
	Kind string
	Name string
}

// Project - корень сцены.
type Project struct {
	Name   string
	Width  float64
	Height float64
	Style  Style
	Layers []*Container
}

func (c *Container) itemName() string { return c.Name }
func (p *Path) itemName() string      { return p.Name }
func (t *Text) itemName() string      { return t.Name }
func (o *Opaque) itemName() string    { return o.Name }

func (*Container) isItem() {}
func (*Path) isItem()      {}
func (*Text) isItem()      {}
func (*Opaque) isItem()    {}

// NameOf возвращает имя элемента (пустое, если не задано).
func NameOf(it Item) string {
	return it.itemName()
}
