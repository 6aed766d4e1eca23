// Package pathdata переводит сегменты пути в атрибут d и обратно.
package pathdata

import (
	"strings"

	"scene-exporter/internal/exporter/geom"
	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/models"
)

// ============================================================
// Serializer
// ============================================================

type Serializer struct {
	k   geom.Kernel
	fmt markup.Formatter
}

func NewSerializer(k geom.Kernel, f markup.Formatter) *Serializer {
	return &Serializer{k: k, fmt: f}
}

// Serialize строит d: "M x,y", затем "L x,y" или "c dx1,dy1 dx2,dy2 dx,dy",
// и "z" для замкнутого пути. Замыкающая пара рисуется только при наличии
// обводки или заливки; прямая замыкающая пара - только при обводке.
func (s *Serializer) Serialize(p *models.Path, hasStroke, hasFill bool) (string, error) {
	n := len(p.Segments)
	if n == 0 {
		return "", models.ErrDegeneratePath
	}

	parts := make([]string, 0, n+2)
	parts = append(parts, "M"+s.fmt.Point(p.Segments[0].Point))

	for i := 0; i+1 < n; i++ {
		parts = append(parts, s.pair(p.Segments[i], p.Segments[i+1]))
	}

	if p.Closed && n >= 2 && (hasStroke || hasFill) {
		last, first := p.Segments[n-1], p.Segments[0]
		if !s.isStraight(last, first) || hasStroke {
			parts = append(parts, s.pair(last, first))
		}
	}

	if p.Closed {
		parts = append(parts, "z")
	}

	return strings.Join(parts, " "), nil
}

func (s *Serializer) isStraight(from, to models.Segment) bool {
	return s.k.IsZero(from.HandleOut) && s.k.IsZero(to.HandleIn)
}

// pair возвращает команду для перехода from -> to. Кривая записывается
// относительно from.
func (s *Serializer) pair(from, to models.Segment) string {
	if s.isStraight(from, to) {
		return "L" + s.fmt.Point(to.Point)
	}
	chord := to.Point.Sub(from.Point)
	return "c" + s.fmt.Point(from.HandleOut) +
		" " + s.fmt.Point(to.HandleIn.Add(chord)) +
		" " + s.fmt.Point(chord)
}
