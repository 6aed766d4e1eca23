package shape

import (
	"math"

	"scene-exporter/internal/exporter/geom"
	"scene-exporter/internal/exporter/models"
)

// ============================================================
// Classifier
// ============================================================

type Classifier struct {
	k geom.Kernel
}

func NewClassifier(k geom.Kernel) *Classifier {
	return &Classifier{k: k}
}

// Classify определяет тип пути. Порядок проверок: прямые отрезки
// (rect/polygon/polyline/line), затем дуги (roundrect/circle/ellipse), иначе path.
func (c *Classifier) Classify(p *models.Path) (Verdict, error) {
	switch len(p.Segments) {
	case 0:
		return Verdict{}, models.ErrDegeneratePath
	case 1:
		return Verdict{Shape: Generic{}}, nil
	}

	if c.isStraight(p) {
		return c.polygonFamily(p), nil
	}

	if p.Closed {
		if v, ok := c.arcFamily(p); ok {
			return v, nil
		}
	}

	return Verdict{Shape: Generic{}}, nil
}

func (c *Classifier) isStraight(p *models.Path) bool {
	for _, s := range p.Segments {
		if !c.k.IsZero(s.HandleIn) || !c.k.IsZero(s.HandleOut) {
			return false
		}
	}
	return true
}

// isStraightTransition: переход i -> i+1 без ручек.
func (c *Classifier) isStraightTransition(p *models.Path, i int) bool {
	return c.k.IsZero(p.Segments[i].HandleOut) &&
		c.k.IsZero(p.Segments[p.Next(i)].HandleIn)
}

// isArc проверяет, что переход i -> i+1 - четверть окружности или эллипса:
// ручки ортогональны, а отношение длины ручки к расстоянию до точки
// пересечения ручек равно Kappa.
func (c *Classifier) isArc(p *models.Path, i int) bool {
	s1 := p.Segments[i]
	s2 := p.Segments[p.Next(i)]
	h1, h2 := s1.HandleOut, s2.HandleIn

	l1, l2 := h1.Length(), h2.Length()
	if c.k.IsZeroValue(l1) || c.k.IsZeroValue(l2) {
		return false
	}
	if !c.k.IsOrthogonal(h1, h2) {
		return false
	}

	corner, ok := c.k.Intersect(s1.Point, h1, s2.Point, h2)
	if !ok {
		return false
	}

	d1 := corner.Distance(s1.Point)
	d2 := corner.Distance(s2.Point)
	if c.k.IsZeroValue(d1) || c.k.IsZeroValue(d2) {
		return false
	}

	return c.k.Equal(l1/d1, geom.Kappa) && c.k.Equal(l2/d2, geom.Kappa)
}

// ============================================================
// Polygon family
// ============================================================

func (c *Classifier) polygonFamily(p *models.Path) Verdict {
	seg := p.Segments
	n := len(seg)

	if n == 4 && p.Closed {
		side0 := seg[1].Point.Sub(seg[0].Point)
		side1 := seg[2].Point.Sub(seg[1].Point)
		side2 := seg[3].Point.Sub(seg[2].Point)
		side3 := seg[0].Point.Sub(seg[3].Point)

		if c.k.IsColinear(side0, side2) && c.k.IsColinear(side1, side3) && c.k.IsOrthogonal(side0, side1) {
			return c.rect(p)
		}
	}

	if n >= 3 {
		return Verdict{Shape: Poly{Points: p.Anchors(), Closed: p.Closed}}
	}

	return Verdict{Shape: Line{From: seg[0].Point, To: seg[n-1].Point}}
}

// rect: якоря (x,y) (x,y+h) (x+w,y+h) (x+w,y), верхняя сторона - замыкающая.
func (c *Classifier) rect(p *models.Path) Verdict {
	seg := p.Segments
	anchors := p.Anchors()
	center := geom.Centroid(anchors)

	top := midpoint(seg[3].Point, seg[0].Point)
	angle := c.angle(center, top)

	minX, minY := math.Inf(1), math.Inf(1)
	for _, a := range anchors {
		a = a.Rotate(-angle, center)
		minX = math.Min(minX, a.X)
		minY = math.Min(minY, a.Y)
	}

	return Verdict{
		Shape: Rect{
			X:      minX,
			Y:      minY,
			Width:  seg[3].Point.Distance(seg[0].Point),
			Height: seg[0].Point.Distance(seg[1].Point),
		},
		Rotation: angle,
		Center:   center,
	}
}

// ============================================================
// Arc family
// ============================================================

func (c *Classifier) arcFamily(p *models.Path) (Verdict, bool) {
	switch len(p.Segments) {
	case 8:
		for i := 0; i < 8; i += 2 {
			if !c.isArc(p, i) || !c.isStraightTransition(p, i+1) {
				return Verdict{}, false
			}
		}
		seg := p.Segments
		left := seg[2].Point.Sub(seg[1].Point)
		right := seg[6].Point.Sub(seg[5].Point)
		bottom := seg[4].Point.Sub(seg[3].Point)
		top := seg[0].Point.Sub(seg[7].Point)
		if !c.k.IsColinear(left, right) || !c.k.IsColinear(bottom, top) {
			return Verdict{}, false
		}
		return c.roundRect(p), true

	case 4:
		for i := 0; i < 4; i++ {
			if !c.isArc(p, i) {
				return Verdict{}, false
			}
		}
		return c.ellipse(p), true
	}

	return Verdict{}, false
}

// roundRect: якоря (x+rx,y) (x,y+ry) (x,y+h-ry) (x+rx,y+h) (x+w-rx,y+h)
// (x+w,y+h-ry) (x+w,y+ry) (x+w-rx,y), дуги на четных переходах.
func (c *Classifier) roundRect(p *models.Path) Verdict {
	seg := p.Segments
	center := geom.Centroid(p.Anchors())
	angle := c.angle(center, midpoint(seg[7].Point, seg[0].Point))

	// Угол скругления 0 -> 1 совпадает с левым верхним углом прямоугольника.
	corner, _ := c.k.Intersect(seg[0].Point, seg[0].HandleOut, seg[1].Point, seg[1].HandleIn)
	rx := corner.Distance(seg[0].Point)
	ry := corner.Distance(seg[1].Point)

	origin := corner.Rotate(-angle, center)

	return Verdict{
		Shape: Rect{
			X:      origin.X,
			Y:      origin.Y,
			Width:  seg[1].Point.Distance(seg[6].Point),
			Height: seg[0].Point.Distance(seg[3].Point),
			RX:     rx,
			RY:     ry,
		},
		Rotation: angle,
		Center:   center,
	}
}

// ellipse: якоря справа, сверху, слева, снизу.
func (c *Classifier) ellipse(p *models.Path) Verdict {
	seg := p.Segments
	center := geom.Centroid(p.Anchors())
	angle := c.angle(center, seg[1].Point)

	d02 := seg[0].Point.Distance(seg[2].Point)
	d13 := seg[1].Point.Distance(seg[3].Point)

	if c.k.Equal(d02, d13) {
		return Verdict{
			Shape:    Circle{Center: center, R: d02 / 2},
			Rotation: angle,
			Center:   center,
		}
	}

	return Verdict{
		Shape:    Ellipse{Center: center, RX: d02 / 2, RY: d13 / 2},
		Rotation: angle,
		Center:   center,
	}
}

// angle возвращает наклон фигуры: угол вектора от центра к опорной точке плюс 90.
func (c *Classifier) angle(center, ref geom.Point) float64 {
	return c.k.NormalizeAngle(ref.Sub(center).Angle() + 90)
}

func midpoint(a, b geom.Point) geom.Point {
	return a.Add(b).Div(2)
}
