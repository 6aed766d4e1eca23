package markup

import (
	"math"
	"strconv"
	"strings"

	"scene-exporter/internal/exporter/geom"
)

// DefaultPrecision - число знаков после запятой по умолчанию.
const DefaultPrecision = 5

// Formatter округляет числа до Precision знаков и убирает хвостовые нули.
type Formatter struct {
	Precision int
}

func NewFormatter(precision int) Formatter {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return Formatter{Precision: precision}
}

// Number форматирует конечное число. Для |v| > 2^53 дробной части нет,
// и v*scale может переполниться, поэтому такие значения не округляются.
func (f Formatter) Number(v float64) string {
	scale := math.Pow(10, float64(f.Precision))
	if scaled := v * scale; !math.IsInf(scaled, 0) {
		v = math.Round(scaled) / scale
	}
	if v == 0 {
		// убираем "-0"
		v = 0
	}

	s := strconv.FormatFloat(v, 'f', f.Precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// Point форматирует точку как "x,y".
func (f Formatter) Point(p geom.Point) string {
	return f.Number(p.X) + "," + f.Number(p.Y)
}

// Numbers форматирует список через запятую.
func (f Formatter) Numbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = f.Number(v)
	}
	return strings.Join(parts, ",")
}

// Points форматирует список точек через пробел.
func (f Formatter) Points(points []geom.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = f.Point(p)
	}
	return strings.Join(parts, " ")
}
