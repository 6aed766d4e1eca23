package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/models"
)

func ptr[T any](v T) *T { return &v }

func resolver() *Resolver {
	return NewResolver(markup.NewFormatter(5))
}

func fullStyle() models.Style {
	lc := models.CapRound
	join := models.JoinBevel
	return models.Style{
		Fill:        models.Solid(0x10, 0x20, 0x30),
		Stroke:      models.Solid(0xff, 0, 0),
		StrokeWidth: ptr(2.0),
		Dash:        ptr([]float64{4, 2}),
		LineCap:     &lc,
		LineJoin:    &join,
		MiterLimit:  ptr(10.0),
		FontFamily:  ptr("Arial"),
		FontSize:    ptr(12.0),
	}
}

func TestApplyEqualStyleEmitsNothing(t *testing.T) {
	parent := fullStyle()
	own := fullStyle()

	n := markup.NewNode("path")
	resolver().Apply(n, "", own, parent)
	assert.Empty(t, n.Attrs)
}

func TestApplyEqualStyleKeepsIdentity(t *testing.T) {
	own := fullStyle()
	own.Opacity = ptr(0.5)
	own.Visible = ptr(false)

	n := markup.NewNode("path")
	resolver().Apply(n, "shape-1", own, fullStyle())

	assert.Equal(t, []markup.Attr{
		{Name: "id", Value: "shape-1"},
		{Name: "opacity", Value: "0.5"},
		{Name: "visibility", Value: "hidden"},
	}, n.Attrs)
}

func TestApplySingleChange(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *models.Style)
		attr   string
		value  string
	}{
		{"fill", func(s *models.Style) { s.Fill = models.Solid(0, 0xff, 0) }, "fill", "#00ff00"},
		{"fill none", func(s *models.Style) { s.Fill = models.NoPaint() }, "fill", "none"},
		{"stroke", func(s *models.Style) { s.Stroke = models.Solid(0, 0, 0xff) }, "stroke", "#0000ff"},
		{"stroke-width", func(s *models.Style) { s.StrokeWidth = ptr(0.25) }, "stroke-width", "0.25"},
		{"dash", func(s *models.Style) { s.Dash = ptr([]float64{1, 2, 3}) }, "stroke-dasharray", "1,2,3"},
		{"dash none", func(s *models.Style) { s.Dash = ptr([]float64{}) }, "stroke-dasharray", "none"},
		{"cap", func(s *models.Style) { c := models.CapSquare; s.LineCap = &c }, "stroke-linecap", "square"},
		{"join", func(s *models.Style) { j := models.JoinMiter; s.LineJoin = &j }, "stroke-linejoin", "miter"},
		{"miter", func(s *models.Style) { s.MiterLimit = ptr(4.0) }, "stroke-miterlimit", "4"},
		{"font-family", func(s *models.Style) { s.FontFamily = ptr("Helvetica") }, "font-family", "Helvetica"},
		{"font-size", func(s *models.Style) { s.FontSize = ptr(9.5) }, "font-size", "9.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			own := fullStyle()
			tt.change(&own)

			n := markup.NewNode("path")
			resolver().Apply(n, "", own, fullStyle())

			require.Len(t, n.Attrs, 1)
			assert.Equal(t, tt.attr, n.Attrs[0].Name)
			assert.Equal(t, tt.value, n.Attrs[0].Value)
		})
	}
}

func TestApplyUnsetInherits(t *testing.T) {
	n := markup.NewNode("path")
	resolved := resolver().Apply(n, "", models.Style{}, fullStyle())

	assert.Empty(t, n.Attrs)
	assert.Equal(t, fullStyle(), resolved)
}

func TestApplyTranslucentColor(t *testing.T) {
	own := models.Style{Stroke: &models.Paint{}}
	own.Stroke.Color.R = 0xff
	own.Stroke.Color.A = 0x80

	n := markup.NewNode("path")
	resolver().Apply(n, "", own, models.Style{})

	v, ok := n.Get("stroke")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", v)
	v, ok = n.Get("stroke-opacity")
	require.True(t, ok)
	assert.Equal(t, "0.50196", v)
}

func TestApplyOpaqueColorUnderTranslucentParent(t *testing.T) {
	parent := models.Style{Fill: &models.Paint{Color: color.NRGBA{R: 0xff, A: 0x80}}}
	own := models.Style{Fill: models.Solid(0, 0, 0xff)}

	n := markup.NewNode("rect")
	resolver().Apply(n, "", own, parent)

	assert.Equal(t, []markup.Attr{
		{Name: "fill", Value: "#0000ff"},
		{Name: "fill-opacity", Value: "1"},
	}, n.Attrs)
}

func TestApplyOpacityFollowsInheritedAlpha(t *testing.T) {
	half := &models.Paint{Color: color.NRGBA{R: 0xff, A: 0x80}}

	tests := []struct {
		name    string
		own     *models.Paint
		parent  *models.Paint
		opacity string // пусто - атрибута нет
	}{
		{"same alpha", &models.Paint{Color: color.NRGBA{G: 0xff, A: 0x80}}, half, ""},
		{"opaque under opaque", models.Solid(0, 0xff, 0), models.Solid(0, 0, 0xff), ""},
		{"none under translucent", models.NoPaint(), half, "1"},
		{"translucent under none", half, models.NoPaint(), "0.50196"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := markup.NewNode("path")
			resolver().Apply(n, "", models.Style{Stroke: tt.own}, models.Style{Stroke: tt.parent})

			v, ok := n.Get("stroke-opacity")
			if tt.opacity == "" {
				assert.False(t, ok, "stroke-opacity=%s", v)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.opacity, v)
		})
	}
}

func TestMergeDropsCompositing(t *testing.T) {
	own := models.Style{Opacity: ptr(0.3), Visible: ptr(true), Fill: models.NoPaint()}
	out := Merge(fullStyle(), own)

	assert.Nil(t, out.Opacity)
	assert.Nil(t, out.Visible)
	assert.True(t, out.Fill.None)
	assert.False(t, HasFill(out))
	assert.True(t, HasStroke(out))
	assert.False(t, HasStroke(models.Style{}))
}
