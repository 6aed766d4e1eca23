// Package geom содержит арифметику точек и предикаты с допуском, общие для
// классификатора фигур и сериализатора путей.
package geom

import "math"

// DefaultEpsilon используется, если допуск не задан.
const DefaultEpsilon = 1e-5

// Kappa - отношение длины ручки к радиусу, при котором кубическая кривая Безье
// аппроксимирует четверть окружности.
var Kappa = 4 * (math.Sqrt2 - 1) / 3

// ============================================================
// Kernel
// ============================================================

// Kernel хранит числовой допуск. Все предикаты классификатора работают через
// одно и то же значение Kernel.
type Kernel struct {
	eps float64
}

// New создает ядро с допуском eps. Неположительный eps заменяется на DefaultEpsilon.
func New(eps float64) Kernel {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	return Kernel{eps: eps}
}

func (k Kernel) Epsilon() float64 { return k.eps }

// IsZeroValue проверяет |v| <= eps.
func (k Kernel) IsZeroValue(v float64) bool {
	return math.Abs(v) <= k.eps
}

func (k Kernel) Equal(a, b float64) bool {
	return k.IsZeroValue(a - b)
}

// IsZero проверяет обе компоненты вектора.
func (k Kernel) IsZero(v Point) bool {
	return k.IsZeroValue(v.X) && k.IsZeroValue(v.Y)
}

// IsColinear: векторы параллельны или противоположно направлены.
func (k Kernel) IsColinear(v1, v2 Point) bool {
	return k.IsZeroValue(v1.Cross(v2))
}

func (k Kernel) IsOrthogonal(v1, v2 Point) bool {
	return k.IsZeroValue(v1.Dot(v2))
}

// NormalizeAngle приводит угол к [0, 360); значения около 0 и 360 становятся 0.
func (k Kernel) NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if k.IsZeroValue(deg) || k.IsZeroValue(deg-360) {
		return 0
	}
	return deg
}

// Intersect возвращает точку пересечения прямых (p1, d1) и (p2, d2).
// Для параллельных прямых ok = false.
func (k Kernel) Intersect(p1, d1, p2, d2 Point) (Point, bool) {
	denom := d1.Cross(d2)
	if k.IsZeroValue(denom) {
		return Point{}, false
	}
	t := p2.Sub(p1).Cross(d2) / denom
	return p1.Add(d1.Mul(t)), true
}
