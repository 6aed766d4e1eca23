package shape

import (
	"scene-exporter/internal/exporter/geom"
	"scene-exporter/internal/exporter/models"
)

// ============================================================
// Canonical constructions
// ============================================================

// RectPath строит прямоугольник в порядке, который распознает Classify.
func RectPath(x, y, w, h float64) *models.Path {
	return straightPath(true,
		geom.Point{X: x, Y: y},
		geom.Point{X: x, Y: y + h},
		geom.Point{X: x + w, Y: y + h},
		geom.Point{X: x + w, Y: y},
	)
}

// RoundRectPath строит прямоугольник со скругленными углами из 8 сегментов.
func RoundRectPath(x, y, w, h, rx, ry float64) *models.Path {
	kx, ky := rx*geom.Kappa, ry*geom.Kappa

	seg := []models.Segment{
		{Point: geom.Point{X: x + rx, Y: y}, HandleOut: geom.Point{X: -kx}},
		{Point: geom.Point{X: x, Y: y + ry}, HandleIn: geom.Point{Y: -ky}},
		{Point: geom.Point{X: x, Y: y + h - ry}, HandleOut: geom.Point{Y: ky}},
		{Point: geom.Point{X: x + rx, Y: y + h}, HandleIn: geom.Point{X: -kx}},
		{Point: geom.Point{X: x + w - rx, Y: y + h}, HandleOut: geom.Point{X: kx}},
		{Point: geom.Point{X: x + w, Y: y + h - ry}, HandleIn: geom.Point{Y: ky}},
		{Point: geom.Point{X: x + w, Y: y + ry}, HandleOut: geom.Point{Y: -ky}},
		{Point: geom.Point{X: x + w - rx, Y: y}, HandleIn: geom.Point{X: kx}},
	}
	return &models.Path{Closed: true, Segments: seg}
}

// EllipsePath строит эллипс из 4 дуг: справа, сверху, слева, снизу.
func EllipsePath(center geom.Point, rx, ry float64) *models.Path {
	kx, ky := rx*geom.Kappa, ry*geom.Kappa
	cx, cy := center.X, center.Y

	seg := []models.Segment{
		{Point: geom.Point{X: cx + rx, Y: cy}, HandleIn: geom.Point{Y: ky}, HandleOut: geom.Point{Y: -ky}},
		{Point: geom.Point{X: cx, Y: cy - ry}, HandleIn: geom.Point{X: kx}, HandleOut: geom.Point{X: -kx}},
		{Point: geom.Point{X: cx - rx, Y: cy}, HandleIn: geom.Point{Y: -ky}, HandleOut: geom.Point{Y: ky}},
		{Point: geom.Point{X: cx, Y: cy + ry}, HandleIn: geom.Point{X: -kx}, HandleOut: geom.Point{X: kx}},
	}
	return &models.Path{Closed: true, Segments: seg}
}

// CirclePath строит окружность.
func CirclePath(center geom.Point, r float64) *models.Path {
	return EllipsePath(center, r, r)
}

// PolyPath строит путь из отрезков.
func PolyPath(closed bool, points ...geom.Point) *models.Path {
	return straightPath(closed, points...)
}

func straightPath(closed bool, points ...geom.Point) *models.Path {
	seg := make([]models.Segment, len(points))
	for i, pt := range points {
		seg[i] = models.Segment{Point: pt}
	}
	return &models.Path{Closed: closed, Segments: seg}
}

// ============================================================
// Transforms
// ============================================================

// Translate возвращает копию пути, сдвинутую на d.
func Translate(p *models.Path, d geom.Point) *models.Path {
	out := clonePath(p)
	for i := range out.Segments {
		out.Segments[i].Point = out.Segments[i].Point.Add(d)
	}
	return out
}

// Rotate возвращает копию пути, повернутую на deg градусов вокруг pivot.
// Ручки поворачиваются вокруг своего якоря.
func Rotate(p *models.Path, deg float64, pivot geom.Point) *models.Path {
	out := clonePath(p)
	var origin geom.Point
	for i := range out.Segments {
		s := &out.Segments[i]
		s.Point = s.Point.Rotate(deg, pivot)
		s.HandleIn = s.HandleIn.Rotate(deg, origin)
		s.HandleOut = s.HandleOut.Rotate(deg, origin)
	}
	return out
}

func clonePath(p *models.Path) *models.Path {
	out := *p
	out.Segments = append([]models.Segment(nil), p.Segments...)
	return &out
}
