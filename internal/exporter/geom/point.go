package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// Point
// ============================================================

// Point задает позицию или смещение. Один и тот же тип используется для
// якорей и для векторов ручек относительно якоря.
type Point struct {
	X float64
	Y float64
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

func (p Point) Div(s float64) Point { return Point{X: p.X / s, Y: p.Y / s} }

func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross возвращает z-компоненту векторного произведения.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

func (p Point) Distance(q Point) float64 { return p.Sub(q).Length() }

// IsFinite: обе координаты не NaN и не бесконечность.
func (p Point) IsFinite() bool { return Finite(p.X, p.Y) }

// Finite проверяет, что все значения конечны.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Angle возвращает угол вектора в градусах.
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X) * 180 / math.Pi
}

// Normalize масштабирует вектор до заданной длины. Нулевой вектор
// возвращается без изменений.
func (p Point) Normalize(length float64) Point {
	l := p.Length()
	if l == 0 {
		return p
	}
	return p.Mul(length / l)
}

// Rotate поворачивает p на deg градусов вокруг pivot (ось Y вниз, как в rotate()).
func (p Point) Rotate(deg float64, pivot Point) Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	d := p.Sub(pivot)
	return Point{
		X: pivot.X + d.X*cos - d.Y*sin,
		Y: pivot.Y + d.X*sin + d.Y*cos,
	}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Centroid возвращает среднее арифметическое точек.
func Centroid(points []Point) Point {
	var c Point
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Div(float64(len(points)))
}

// MarshalJSON кодирует точку как [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON принимает [x, y] или {"x": .., "y": ..}.
func (p *Point) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) != 2 {
			return fmt.Errorf("point: expected 2 coordinates, got %d", len(arr))
		}
		p.X, p.Y = arr[0], arr[1]
		return nil
	}

	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	p.X, p.Y = obj.X, obj.Y
	return nil
}
