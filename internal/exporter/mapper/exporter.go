package mapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/sync/errgroup"

	"scene-exporter/internal/exporter/geom"
	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/models"
	"scene-exporter/internal/exporter/pathdata"
	"scene-exporter/internal/exporter/shape"
	"scene-exporter/internal/exporter/style"
)

const (
	svgNamespace    = "http://www.w3.org/2000/svg"
	DefaultMaxDepth = 256
)

// ErrTooDeep возвращается, если вложенность контейнеров превышает MaxDepth.
var ErrTooDeep = errors.New("scene graph too deep")

// ============================================================
// Exporter
// ============================================================

type Options struct {
	Precision int     // знаков после запятой; 0 = markup.DefaultPrecision
	Epsilon   float64 // допуск геометрии; 0 = geom.DefaultEpsilon
	MaxDepth  int     // 0 = DefaultMaxDepth
	Parallel  bool    // слои экспортируются параллельно

	// OnShape вызывается для каждого классифицированного пути. При Parallel
	// вызывается из нескольких горутин.
	OnShape func(shape.Kind)
}

// Exporter строит SVG-дерево из графа сцены. Граф не изменяется, состояние
// между вызовами не хранится.
type Exporter struct {
	opts       Options
	kernel     geom.Kernel
	format     markup.Formatter
	classifier *shape.Classifier
	serializer *pathdata.Serializer
	resolver   *style.Resolver
}

func New(opts Options) *Exporter {
	if opts.Precision <= 0 {
		opts.Precision = markup.DefaultPrecision
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	k := geom.New(opts.Epsilon)
	f := markup.NewFormatter(opts.Precision)

	return &Exporter{
		opts:       opts,
		kernel:     k,
		format:     f,
		classifier: shape.NewClassifier(k),
		serializer: pathdata.NewSerializer(k, f),
		resolver:   style.NewResolver(f),
	}
}

// Export строит дерево проекта и пишет его в w.
func (e *Exporter) Export(ctx context.Context, project *models.Project, w io.Writer) error {
	root, err := e.ExportProject(ctx, project)
	if err != nil {
		return err
	}
	return markup.Encode(w, root)
}

// ExportProject строит корневой элемент svg, по одной группе на слой.
func (e *Exporter) ExportProject(ctx context.Context, project *models.Project) (*markup.Node, error) {
	if project == nil {
		return nil, fmt.Errorf("project is nil")
	}

	root := markup.NewNode("svg").
		Set("xmlns", svgNamespace).
		Set("version", "1.1")

	if !geom.Finite(project.Width, project.Height) {
		return nil, fmt.Errorf("project size: %w", models.ErrNonFinite)
	}
	if project.Width > 0 && project.Height > 0 {
		w, h := e.format.Number(project.Width), e.format.Number(project.Height)
		root.Set("width", w).
			Set("height", h).
			Set("viewBox", "0 0 "+w+" "+h)
	}

	resolved := e.resolver.Apply(root, "", project.Style, models.Style{})

	layers, err := e.exportLayers(ctx, project.Layers, resolved)
	if err != nil {
		return nil, err
	}
	for _, n := range layers {
		if n != nil {
			root.Append(n)
		}
	}

	return root, nil
}

func (e *Exporter) exportLayers(ctx context.Context, layers []*models.Container, parent models.Style) ([]*markup.Node, error) {
	nodes := make([]*markup.Node, len(layers))

	if !e.opts.Parallel {
		for i, layer := range layers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			n, err := e.exportContainer(layer, parent, 1)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			nodes[i] = n
		}
		return nodes, nil
	}

	// Слои независимы: каждая горутина пишет только в свой индекс.
	g, ctx := errgroup.WithContext(ctx)
	for i, layer := range layers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := e.exportContainer(layer, parent, 1)
			if err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			nodes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ExportItem экспортирует один элемент относительно вычисленного стиля
// родителя. Для неподдерживаемых элементов возвращает nil без ошибки.
func (e *Exporter) ExportItem(item models.Item, parent models.Style) (*markup.Node, error) {
	return e.exportItem(item, parent, 1)
}

func (e *Exporter) exportItem(item models.Item, parent models.Style, depth int) (*markup.Node, error) {
	switch it := item.(type) {
	case *models.Container:
		return e.exportContainer(it, parent, depth)
	case *models.Path:
		return e.exportPath(it, parent)
	case *models.Text:
		return e.exportText(it, parent)
	case *models.Opaque:
		return nil, nil
	}
	return nil, nil
}

// ============================================================
// Element exporters
// ============================================================

func (e *Exporter) exportContainer(c *models.Container, parent models.Style, depth int) (*markup.Node, error) {
	if depth > e.opts.MaxDepth {
		return nil, ErrTooDeep
	}

	n := markup.NewNode("g")

	// Контейнер не должен заливать потомков по умолчанию
	own := c.Style
	if own.Fill == nil && parent.Fill == nil {
		own.Fill = models.NoPaint()
	}
	resolved := e.resolver.Apply(n, c.Name, own, parent)

	for i, child := range c.Children {
		node, err := e.exportItem(child, resolved, depth+1)
		if err != nil {
			if errors.Is(err, ErrTooDeep) {
				return nil, err
			}
			return nil, fmt.Errorf("%s %q child %d: %w", c.Kind, c.Name, i, err)
		}
		if node == nil {
			continue
		}
		n.Append(node)
	}

	return n, nil
}

func (e *Exporter) exportPath(p *models.Path, parent models.Style) (*markup.Node, error) {
	for _, s := range p.Segments {
		if !s.Point.IsFinite() || !s.HandleIn.IsFinite() || !s.HandleOut.IsFinite() {
			return nil, fmt.Errorf("path %q: %w", p.Name, models.ErrNonFinite)
		}
	}

	v, err := e.classifier.Classify(p)
	if err != nil {
		return nil, fmt.Errorf("path %q: %w", p.Name, err)
	}
	// Конечные якоря еще не гарантируют конечных размеров: 1e308 - (-1e308) = +Inf
	if !finiteVerdict(v) {
		return nil, fmt.Errorf("path %q: %s: %w", p.Name, v.Shape.Kind(), models.ErrNonFinite)
	}
	if e.opts.OnShape != nil {
		e.opts.OnShape(v.Shape.Kind())
	}

	resolved := style.Merge(parent, p.Style)

	var n *markup.Node
	switch s := v.Shape.(type) {
	case shape.Line:
		n = markup.NewNode("line").
			Set("x1", e.format.Number(s.From.X)).
			Set("y1", e.format.Number(s.From.Y)).
			Set("x2", e.format.Number(s.To.X)).
			Set("y2", e.format.Number(s.To.Y))

	case shape.Poly:
		name := "polyline"
		if s.Closed {
			name = "polygon"
		}
		n = markup.NewNode(name).Set("points", e.format.Points(s.Points))

	case shape.Rect:
		n = markup.NewNode("rect").
			Set("x", e.format.Number(s.X)).
			Set("y", e.format.Number(s.Y)).
			Set("width", e.format.Number(s.Width)).
			Set("height", e.format.Number(s.Height))
		if s.RX > 0 || s.RY > 0 {
			n.Set("rx", e.format.Number(s.RX)).Set("ry", e.format.Number(s.RY))
		}

	case shape.Circle:
		n = markup.NewNode("circle").
			Set("cx", e.format.Number(s.Center.X)).
			Set("cy", e.format.Number(s.Center.Y)).
			Set("r", e.format.Number(s.R))

	case shape.Ellipse:
		n = markup.NewNode("ellipse").
			Set("cx", e.format.Number(s.Center.X)).
			Set("cy", e.format.Number(s.Center.Y)).
			Set("rx", e.format.Number(s.RX)).
			Set("ry", e.format.Number(s.RY))

	default:
		d, err := e.serializer.Serialize(p, style.HasStroke(resolved), style.HasFill(resolved))
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", p.Name, err)
		}
		n = markup.NewNode("path").Set("d", d)
	}

	if v.Rotation != 0 {
		n.Set("transform", e.rotate(v.Rotation, v.Center))
	}

	e.resolver.Apply(n, p.Name, p.Style, parent)
	return n, nil
}

func (e *Exporter) exportText(t *models.Text, parent models.Style) (*markup.Node, error) {
	if !t.Point.IsFinite() || !geom.Finite(t.Matrix[:]...) {
		return nil, fmt.Errorf("text %q: %w", t.Name, models.ErrNonFinite)
	}

	n := markup.NewNode("text").
		Set("x", e.format.Number(t.Point.X)).
		Set("y", e.format.Number(t.Point.Y)).
		Set("text-anchor", textAnchor(t.Justification))

	// Поворот из матрицы [a b c d tx ty]
	angle := e.kernel.NormalizeAngle(math.Atan2(t.Matrix[1], t.Matrix[0]) * 180 / math.Pi)
	if angle != 0 {
		n.Set("transform", e.rotate(angle, t.Point))
	}

	n.Text = t.Content
	e.resolver.Apply(n, t.Name, t.Style, parent)
	return n, nil
}

func (e *Exporter) rotate(angle float64, pivot geom.Point) string {
	return "rotate(" + e.format.Number(angle) + "," + e.format.Point(pivot) + ")"
}

func finiteVerdict(v shape.Verdict) bool {
	if !geom.Finite(v.Rotation) || !v.Center.IsFinite() {
		return false
	}
	switch s := v.Shape.(type) {
	case shape.Line:
		return s.From.IsFinite() && s.To.IsFinite()
	case shape.Poly:
		for _, p := range s.Points {
			if !p.IsFinite() {
				return false
			}
		}
	case shape.Rect:
		return geom.Finite(s.X, s.Y, s.Width, s.Height, s.RX, s.RY)
	case shape.Circle:
		return s.Center.IsFinite() && geom.Finite(s.R)
	case shape.Ellipse:
		return s.Center.IsFinite() && geom.Finite(s.RX, s.RY)
	}
	return true
}

func textAnchor(j models.Justification) string {
	switch j {
	case models.JustifyCenter:
		return "middle"
	case models.JustifyRight:
		return "end"
	}
	return "start"
}
