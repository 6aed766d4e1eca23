package mapper

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-exporter/internal/exporter/geom"
	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/models"
	"scene-exporter/internal/exporter/shape"
)

func attr(t *testing.T, n *markup.Node, name string) string {
	t.Helper()
	v, ok := n.Get(name)
	require.True(t, ok, "<%s> has no %s", n.Name, name)
	return v
}

func layer(name string, children ...models.Item) *models.Container {
	return &models.Container{Kind: models.KindLayer, Name: name, Children: children}
}

func TestExportProjectRoot(t *testing.T) {
	project := &models.Project{
		Width:  200,
		Height: 100.5,
		Layers: []*models.Container{layer("Layer 1"), layer("")},
	}

	root, err := New(Options{}).ExportProject(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, "svg", root.Name)
	assert.Equal(t, svgNamespace, attr(t, root, "xmlns"))
	assert.Equal(t, "200", attr(t, root, "width"))
	assert.Equal(t, "0 0 200 100.5", attr(t, root, "viewBox"))
	require.Len(t, root.Children, 2)
	assert.Equal(t, "Layer 1", attr(t, root.Children[0], "id"))
	assert.Equal(t, "none", attr(t, root.Children[0], "fill"))
	_, ok := root.Children[1].Get("id")
	assert.False(t, ok)
}

func TestExportProjectWithoutSize(t *testing.T) {
	root, err := New(Options{}).ExportProject(context.Background(), &models.Project{})
	require.NoError(t, err)
	_, ok := root.Get("viewBox")
	assert.False(t, ok)

	_, err = New(Options{}).ExportProject(context.Background(), nil)
	assert.Error(t, err)
}

func TestExportShapes(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		name  string
		path  *models.Path
		elem  string
		attrs map[string]string
	}{
		{
			name:  "rect",
			path:  shape.RectPath(0, 0, 10, 10),
			elem:  "rect",
			attrs: map[string]string{"x": "0", "y": "0", "width": "10", "height": "10"},
		},
		{
			name:  "roundrect",
			path:  shape.RoundRectPath(1, 2, 30, 20, 3, 4),
			elem:  "rect",
			attrs: map[string]string{"x": "1", "y": "2", "width": "30", "height": "20", "rx": "3", "ry": "4"},
		},
		{
			name:  "circle",
			path:  shape.CirclePath(geom.Point{}, 5),
			elem:  "circle",
			attrs: map[string]string{"cx": "0", "cy": "0", "r": "5"},
		},
		{
			name:  "ellipse",
			path:  shape.EllipsePath(geom.Point{X: 4, Y: 4}, 6, 2),
			elem:  "ellipse",
			attrs: map[string]string{"cx": "4", "cy": "4", "rx": "6", "ry": "2"},
		},
		{
			name:  "polygon",
			path:  shape.PolyPath(true, geom.Point{}, geom.Point{X: 4}, geom.Point{X: 2, Y: 3}),
			elem:  "polygon",
			attrs: map[string]string{"points": "0,0 4,0 2,3"},
		},
		{
			name:  "polyline",
			path:  shape.PolyPath(false, geom.Point{}, geom.Point{X: 4}, geom.Point{X: 2, Y: 3}),
			elem:  "polyline",
			attrs: map[string]string{"points": "0,0 4,0 2,3"},
		},
		{
			name:  "line",
			path:  shape.PolyPath(false, geom.Point{X: 1, Y: 2}, geom.Point{X: 3, Y: 4}),
			elem:  "line",
			attrs: map[string]string{"x1": "1", "y1": "2", "x2": "3", "y2": "4"},
		},
		{
			name:  "single segment",
			path:  shape.PolyPath(false, geom.Point{X: 7, Y: 8}),
			elem:  "path",
			attrs: map[string]string{"d": "M7,8"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.ExportItem(tt.path, models.Style{})
			require.NoError(t, err)
			require.NotNil(t, n)
			assert.Equal(t, tt.elem, n.Name)
			for k, v := range tt.attrs {
				assert.Equal(t, v, attr(t, n, k), k)
			}
			_, rotated := n.Get("transform")
			assert.False(t, rotated)
		})
	}
}

func TestExportRotatedRect(t *testing.T) {
	p := shape.Rotate(shape.RectPath(0, 0, 20, 10), 30, geom.Point{X: 10, Y: 5})

	n, err := New(Options{}).ExportItem(p, models.Style{})
	require.NoError(t, err)

	assert.Equal(t, "rect", n.Name)
	assert.Equal(t, "0", attr(t, n, "x"))
	assert.Equal(t, "0", attr(t, n, "y"))
	assert.Equal(t, "20", attr(t, n, "width"))
	assert.Equal(t, "rotate(30,10,5)", attr(t, n, "transform"))
}

func TestExportGenericPathUsesInheritedStroke(t *testing.T) {
	p := &models.Path{Closed: true, Segments: []models.Segment{
		{Point: geom.Point{X: 0, Y: 0}},
		{Point: geom.Point{X: 10, Y: 0}, HandleIn: geom.Point{X: -2, Y: -2}},
		{Point: geom.Point{X: 10, Y: 10}},
		{Point: geom.Point{X: 0, Y: 10}},
	}}
	e := New(Options{})

	n, err := e.ExportItem(p, models.Style{Stroke: models.Solid(0, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, "M0,0 c0,0 8,-2 10,0 L10,10 L0,10 L0,0 z", attr(t, n, "d"))

	n, err = e.ExportItem(p, models.Style{Fill: models.Solid(0, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, "M0,0 c0,0 8,-2 10,0 L10,10 L0,10 z", attr(t, n, "d"))
}

func TestExportDegeneratePath(t *testing.T) {
	l := layer("L", &models.Path{Name: "broken"})
	_, err := New(Options{}).ExportProject(context.Background(), &models.Project{Layers: []*models.Container{l}})
	assert.ErrorIs(t, err, models.ErrDegeneratePath)
	assert.Contains(t, err.Error(), "broken")
}

func TestExportHugeCoordinates(t *testing.T) {
	p := shape.PolyPath(false, geom.Point{X: 1e305}, geom.Point{X: 1, Y: 1}, geom.Point{X: 2})

	n, err := New(Options{}).ExportItem(p, models.Style{})
	require.NoError(t, err)
	points := attr(t, n, "points")
	assert.NotContains(t, points, "Inf")

	first, _, ok := strings.Cut(points, ",")
	require.True(t, ok)
	x, err := strconv.ParseFloat(first, 64)
	require.NoError(t, err)
	assert.Equal(t, 1e305, x)
}

func TestExportRejectsNonFinite(t *testing.T) {
	inf := math.Inf(1)

	tests := []struct {
		name string
		item models.Item
	}{
		{"anchor", shape.PolyPath(true, geom.Point{X: inf}, geom.Point{X: 1}, geom.Point{Y: 1})},
		{"handle", &models.Path{Segments: []models.Segment{
			{Point: geom.Point{}, HandleOut: geom.Point{X: math.NaN()}},
			{Point: geom.Point{X: 1}},
		}}},
		{"text anchor", &models.Text{Point: geom.Point{Y: inf}, Matrix: [6]float64{1, 0, 0, 1, 0, 0}}},
		{"text matrix", &models.Text{Matrix: [6]float64{math.NaN(), 0, 0, 1, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).ExportItem(layer("L", tt.item), models.Style{})
			assert.ErrorIs(t, err, models.ErrNonFinite)
		})
	}

	_, err := New(Options{}).ExportProject(context.Background(), &models.Project{Width: inf, Height: 10})
	assert.ErrorIs(t, err, models.ErrNonFinite)
}

func TestFiniteVerdict(t *testing.T) {
	inf := math.Inf(1)

	assert.True(t, finiteVerdict(shape.Verdict{Shape: shape.Generic{}}))
	assert.True(t, finiteVerdict(shape.Verdict{Shape: shape.Rect{Width: 1e308, Height: 1}}))
	assert.False(t, finiteVerdict(shape.Verdict{Shape: shape.Rect{Width: inf, Height: 1}}))
	assert.False(t, finiteVerdict(shape.Verdict{Shape: shape.Circle{R: 1}, Center: geom.Point{X: inf}}))
	assert.False(t, finiteVerdict(shape.Verdict{Shape: shape.Ellipse{RX: math.NaN(), RY: 1}}))
	assert.False(t, finiteVerdict(shape.Verdict{Shape: shape.Poly{Points: []geom.Point{{}, {Y: -inf}}}}))
	assert.False(t, finiteVerdict(shape.Verdict{Shape: shape.Line{To: geom.Point{X: inf}}}))
	assert.False(t, finiteVerdict(shape.Verdict{Shape: shape.Rect{Width: 1, Height: 1}, Rotation: math.NaN()}))
}

func TestExportOpaqueFillUnderTranslucentLayer(t *testing.T) {
	rect := shape.RectPath(0, 0, 4, 4)
	rect.Style = models.Style{Fill: models.Solid(0, 0, 0xff)}
	l := layer("L", rect)
	l.Style = models.Style{Fill: &models.Paint{Color: color.NRGBA{R: 0xff, A: 0x80}}}

	n, err := New(Options{}).ExportItem(l, models.Style{})
	require.NoError(t, err)
	assert.Equal(t, "0.50196", attr(t, n, "fill-opacity"))
	require.Len(t, n.Children, 1)
	assert.Equal(t, "#0000ff", attr(t, n.Children[0], "fill"))
	assert.Equal(t, "1", attr(t, n.Children[0], "fill-opacity"))
}

func TestExportSkipsOpaque(t *testing.T) {
	l := layer("L",
		&models.Opaque{Kind: "raster"},
		shape.RectPath(0, 0, 1, 1),
		&models.Opaque{Kind: "symbol"},
	)

	n, err := New(Options{}).ExportItem(l, models.Style{})
	require.NoError(t, err)
	require.Len(t, n.Children, 1)
	assert.Equal(t, "rect", n.Children[0].Name)
}

func TestExportStyleInheritance(t *testing.T) {
	red := models.Solid(0xff, 0, 0)
	width := 2.0

	child := shape.RectPath(0, 0, 5, 5)
	child.Name = "box"
	child.Style = models.Style{Stroke: red, StrokeWidth: &width}

	changed := shape.RectPath(0, 0, 5, 5)
	changed.Style = models.Style{Stroke: models.Solid(0, 0, 0xff), StrokeWidth: &width}

	group := &models.Container{
		Kind:     models.KindGroup,
		Style:    models.Style{Stroke: red, StrokeWidth: &width},
		Children: []models.Item{child, changed},
	}

	n, err := New(Options{}).ExportItem(group, models.Style{})
	require.NoError(t, err)

	assert.Equal(t, "#ff0000", attr(t, n, "stroke"))
	assert.Equal(t, "2", attr(t, n, "stroke-width"))
	assert.Equal(t, "none", attr(t, n, "fill"))

	same := n.Children[0]
	assert.Equal(t, "box", attr(t, same, "id"))
	_, ok := same.Get("stroke")
	assert.False(t, ok)
	_, ok = same.Get("stroke-width")
	assert.False(t, ok)

	diff := n.Children[1]
	assert.Equal(t, "#0000ff", attr(t, diff, "stroke"))
	_, ok = diff.Get("stroke-width")
	assert.False(t, ok)
}

func TestExportNestedGroupKeepsParentFill(t *testing.T) {
	inner := &models.Container{Kind: models.KindGroup}
	outer := &models.Container{
		Kind:     models.KindGroup,
		Style:    models.Style{Fill: models.Solid(1, 2, 3)},
		Children: []models.Item{inner},
	}

	n, err := New(Options{}).ExportItem(outer, models.Style{})
	require.NoError(t, err)
	assert.Equal(t, "#010203", attr(t, n, "fill"))
	require.Len(t, n.Children, 1)
	_, ok := n.Children[0].Get("fill")
	assert.False(t, ok)
}

func TestExportText(t *testing.T) {
	size := 14.0
	text := &models.Text{
		Name:          "label",
		Point:         geom.Point{X: 10, Y: 20},
		Content:       "Hello",
		Matrix:        [6]float64{0, 1, -1, 0, 0, 0},
		Justification: models.JustifyRight,
		Style:         models.Style{FontSize: &size},
	}

	n, err := New(Options{}).ExportItem(text, models.Style{})
	require.NoError(t, err)
	assert.Equal(t, "text", n.Name)
	assert.Equal(t, "Hello", n.Text)
	assert.Equal(t, "end", attr(t, n, "text-anchor"))
	assert.Equal(t, "rotate(90,10,20)", attr(t, n, "transform"))
	assert.Equal(t, "14", attr(t, n, "font-size"))
	assert.Equal(t, "label", attr(t, n, "id"))

	text.Matrix = [6]float64{1, 0, 0, 1, 0, 0}
	n, err = New(Options{}).ExportItem(text, models.Style{})
	require.NoError(t, err)
	_, ok := n.Get("transform")
	assert.False(t, ok)
}

func TestExportTooDeep(t *testing.T) {
	root := &models.Container{Kind: models.KindGroup}
	cur := root
	for i := 0; i < 20; i++ {
		next := &models.Container{Kind: models.KindGroup}
		cur.Children = []models.Item{next}
		cur = next
	}

	_, err := New(Options{MaxDepth: 10}).ExportItem(root, models.Style{})
	assert.ErrorIs(t, err, ErrTooDeep)

	_, err = New(Options{MaxDepth: 64}).ExportItem(root, models.Style{})
	assert.NoError(t, err)
}

func TestExportDoesNotMutateInput(t *testing.T) {
	p := shape.Rotate(shape.RoundRectPath(0, 0, 20, 10, 2, 2), 45, geom.Point{X: 10, Y: 5})
	before := append([]models.Segment(nil), p.Segments...)
	l := layer("L", p)

	_, err := New(Options{}).ExportProject(context.Background(), &models.Project{Layers: []*models.Container{l}})
	require.NoError(t, err)
	assert.Equal(t, before, p.Segments)
	assert.Nil(t, l.Style.Fill)
}

func TestExportParallelMatchesSequential(t *testing.T) {
	var layers []*models.Container
	for i := 0; i < 16; i++ {
		layers = append(layers, layer(fmt.Sprintf("L%d", i),
			shape.RectPath(float64(i), 0, 10, 10),
			shape.CirclePath(geom.Point{X: float64(i)}, 3),
			shape.PolyPath(false, geom.Point{}, geom.Point{X: float64(i) + 1, Y: 2}, geom.Point{X: 4}),
		))
	}
	project := &models.Project{Width: 100, Height: 100, Layers: layers}

	var mu sync.Mutex
	counts := map[shape.Kind]int{}
	onShape := func(k shape.Kind) {
		mu.Lock()
		counts[k]++
		mu.Unlock()
	}

	var seq, par bytes.Buffer
	require.NoError(t, New(Options{}).Export(context.Background(), project, &seq))
	require.NoError(t, New(Options{Parallel: true, OnShape: onShape}).Export(context.Background(), project, &par))

	assert.Equal(t, seq.String(), par.String())
	assert.Equal(t, 16, counts[shape.KindRect])
	assert.Equal(t, 16, counts[shape.KindCircle])
	assert.Equal(t, 16, counts[shape.KindPolyline])
	assert.True(t, strings.Index(par.String(), `id="L0"`) < strings.Index(par.String(), `id="L15"`))
}

func TestExportHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	project := &models.Project{Layers: []*models.Container{layer("L")}}
	_, err := New(Options{}).ExportProject(ctx, project)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = New(Options{Parallel: true}).ExportProject(ctx, project)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportPrecision(t *testing.T) {
	p := shape.PolyPath(false, geom.Point{X: 1.23456789, Y: 0}, geom.Point{X: 2, Y: 2})

	n, err := New(Options{Precision: 2}).ExportItem(p, models.Style{})
	require.NoError(t, err)
	assert.Equal(t, "1.23", attr(t, n, "x1"))
}
