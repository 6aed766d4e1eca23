// Package style вычисляет минимальный набор атрибутов стиля относительно
// унаследованного стиля родителя.
package style

import (
	"slices"

	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/models"
)

// ============================================================
// Resolver
// ============================================================

type Resolver struct {
	fmt markup.Formatter
}

func NewResolver(f markup.Formatter) *Resolver {
	return &Resolver{fmt: f}
}

// property описывает одно наследуемое свойство.
type property struct {
	set   func(s models.Style) bool
	equal func(a, b models.Style) bool
	emit  func(r *Resolver, n *markup.Node, own, parent models.Style)
}

// properties - порядок совпадает с порядком атрибутов в выводе.
var properties = []property{
	{
		set:   func(s models.Style) bool { return s.Fill != nil },
		equal: func(a, b models.Style) bool { return paintEqual(a.Fill, b.Fill) },
		emit: func(r *Resolver, n *markup.Node, own, parent models.Style) {
			r.paint(n, "fill", own.Fill, parent.Fill)
		},
	},
	{
		set:   func(s models.Style) bool { return s.Stroke != nil },
		equal: func(a, b models.Style) bool { return paintEqual(a.Stroke, b.Stroke) },
		emit: func(r *Resolver, n *markup.Node, own, parent models.Style) {
			r.paint(n, "stroke", own.Stroke, parent.Stroke)
		},
	},
	{
		set:   func(s models.Style) bool { return s.StrokeWidth != nil },
		equal: func(a, b models.Style) bool { return ptrEqual(a.StrokeWidth, b.StrokeWidth) },
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			n.Set("stroke-width", r.fmt.Number(*s.StrokeWidth))
		},
	},
	{
		set:   func(s models.Style) bool { return s.Dash != nil },
		equal: func(a, b models.Style) bool {
			if a.Dash == nil || b.Dash == nil {
				return a.Dash == b.Dash
			}
			return slices.Equal(*a.Dash, *b.Dash)
		},
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			if len(*s.Dash) == 0 {
				n.Set("stroke-dasharray", "none")
				return
			}
			n.Set("stroke-dasharray", r.fmt.Numbers(*s.Dash))
		},
	},
	{
		set:   func(s models.Style) bool { return s.LineCap != nil },
		equal: func(a, b models.Style) bool { return ptrEqual(a.LineCap, b.LineCap) },
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			n.Set("stroke-linecap", s.LineCap.String())
		},
	},
	{
		set:   func(s models.Style) bool { return s.LineJoin != nil },
		equal: func(a, b models.Style) bool { return ptrEqual(a.LineJoin, b.LineJoin) },
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			n.Set("stroke-linejoin", s.LineJoin.String())
		},
	},
	{
		set:   func(s models.Style) bool { return s.MiterLimit != nil },
		equal: func(a, b models.Style) bool { return ptrEqual(a.MiterLimit, b.MiterLimit) },
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			n.Set("stroke-miterlimit", r.fmt.Number(*s.MiterLimit))
		},
	},
	{
		set:   func(s models.Style) bool { return s.FontFamily != nil },
		equal: func(a, b models.Style) bool { return ptrEqual(a.FontFamily, b.FontFamily) },
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			n.Set("font-family", *s.FontFamily)
		},
	},
	{
		set:   func(s models.Style) bool { return s.FontSize != nil },
		equal: func(a, b models.Style) bool { return ptrEqual(a.FontSize, b.FontSize) },
		emit: func(r *Resolver, n *markup.Node, s, _ models.Style) {
			n.Set("font-size", r.fmt.Number(*s.FontSize))
		},
	},
}

// Apply записывает в n атрибуты стиля own, отличающиеся от parent (уже
// вычисленного стиля контейнера), и возвращает вычисленный стиль элемента.
func (r *Resolver) Apply(n *markup.Node, name string, own, parent models.Style) models.Style {
	if name != "" {
		n.Set("id", name)
	}

	for _, p := range properties {
		if !p.set(own) || p.equal(own, parent) {
			continue
		}
		p.emit(r, n, own, parent)
	}

	// opacity и visibility действуют на все поддерево, поэтому не сравниваются с родителем
	if own.Opacity != nil {
		n.Set("opacity", r.fmt.Number(*own.Opacity))
	}
	if own.Visible != nil {
		if *own.Visible {
			n.Set("visibility", "visible")
		} else {
			n.Set("visibility", "hidden")
		}
	}

	return Merge(parent, own)
}

// Merge возвращает стиль parent, поверх которого наложены заданные поля own.
func Merge(parent, own models.Style) models.Style {
	out := parent
	if own.Fill != nil {
		out.Fill = own.Fill
	}
	if own.Stroke != nil {
		out.Stroke = own.Stroke
	}
	if own.StrokeWidth != nil {
		out.StrokeWidth = own.StrokeWidth
	}
	if own.Dash != nil {
		out.Dash = own.Dash
	}
	if own.LineCap != nil {
		out.LineCap = own.LineCap
	}
	if own.LineJoin != nil {
		out.LineJoin = own.LineJoin
	}
	if own.MiterLimit != nil {
		out.MiterLimit = own.MiterLimit
	}
	if own.FontFamily != nil {
		out.FontFamily = own.FontFamily
	}
	if own.FontSize != nil {
		out.FontSize = own.FontSize
	}
	// opacity и visibility не наследуются через вычисленный стиль
	out.Opacity = nil
	out.Visible = nil
	return out
}

// HasStroke: у вычисленного стиля есть видимая обводка.
func HasStroke(s models.Style) bool {
	return s.Stroke != nil && !s.Stroke.None
}

// HasFill: у вычисленного стиля есть видимая заливка.
func HasFill(s models.Style) bool {
	return s.Fill != nil && !s.Fill.None
}

// paint пишет цвет и, если прозрачность отличается от унаследованной,
// *-opacity: в SVG fill-opacity и stroke-opacity наследуются отдельно от цвета.
// "none" считается непрозрачной краской.
func (r *Resolver) paint(n *markup.Node, attr string, p, parent *models.Paint) {
	if p.None {
		n.Set(attr, "none")
	} else {
		n.Set(attr, p.Hex())
	}
	if alpha(p) != alpha(parent) {
		n.Set(attr+"-opacity", r.fmt.Number(float64(alpha(p))/0xff))
	}
}

// alpha возвращает фактическую прозрачность краски; nil и "none" - 0xff.
func alpha(p *models.Paint) uint8 {
	if p == nil || p.None {
		return 0xff
	}
	return p.Color.A
}

func paintEqual(a, b *models.Paint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
