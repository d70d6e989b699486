package render

import (
	"context"
	"image/color"
	"math"
	"time"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/observability"
)

// Overlay names used by the interaction controller.
const (
	OverlayMarquee = "marquee"
	OverlayDrag    = "drag"
)

// DrawingContext describes where the graph is drawn, in logical units.
type DrawingContext struct {
	Rect       geom.Rect
	Margin     float64
	Background color.NRGBA
}

// Usable returns Rect shrunk by Margin.
func (dc DrawingContext) Usable() geom.Rect { return dc.Rect.Inset(dc.Margin) }

// Drawer turns graph elements into visuals and keeps them in a Tree.
type Drawer struct {
	style Style
	tree  *Tree
}

// NewDrawer creates a drawer with the given defaults.
func NewDrawer(style Style) *Drawer {
	return &Drawer{style: style, tree: NewTree()}
}

// Style returns the defaults in use.
func (d *Drawer) Style() Style { return d.style }

// SetStyle replaces the defaults. Existing visuals keep their old look
// until they are redrawn.
func (d *Drawer) SetStyle(s Style) { d.style = s }

// Tree returns the retained visual tree.
func (d *Drawer) Tree() *Tree { return d.tree }

// DrawGraph rebuilds the whole visual tree for g. Overlays are kept.
func (d *Drawer) DrawGraph(g *graph.Graph, dc DrawingContext) {
	start := time.Now()
	d.tree.edges.clear()
	d.tree.vertices.clear()
	for _, e := range g.Edges() {
		d.RedrawEdge(e, dc)
	}
	for _, v := range g.Vertices() {
		d.RedrawVertex(v, dc)
	}
	observability.Render().OnDraw(context.Background(), d.tree.Len(), time.Since(start))
}

// RedrawVertex replaces the visual of v alone. Hidden vertices lose their
// visual. Incident edges are not redrawn.
func (d *Drawer) RedrawVertex(v *graph.Vertex, dc DrawingContext) {
	vis, ok := d.vertexVisual(v, v.Location, dc, false)
	if !ok {
		d.tree.RemoveVertex(v)
		return
	}
	d.tree.SetVertex(v, vis)
}

// RedrawEdge replaces the visual of e alone. Edges that are hidden, or
// touch a hidden vertex, lose their visual.
func (d *Drawer) RedrawEdge(e *graph.Edge, dc DrawingContext) {
	vis, ok := d.edgeVisual(e, dc)
	if !ok {
		d.tree.RemoveEdge(e)
		return
	}
	d.tree.SetEdge(e, vis)
}

// Radius returns the radius of v: its override or the style default.
func (d *Drawer) Radius(v *graph.Vertex) float64 {
	if r, ok := v.Meta.Float(graph.KeyRadius); ok && r >= 0 {
		return r
	}
	return d.style.VertexRadius
}

// Shape returns the shape of v: its override or the style default.
func (d *Drawer) Shape(v *graph.Vertex) graph.Shape {
	if s, ok := graph.EnumValue[graph.Shape](v.Meta, graph.KeyShape); ok {
		return s
	}
	return d.style.VertexShape
}

// alpha resolves the opacity of an element from its visibility and alpha
// override.
func (d *Drawer) alpha(m *graph.Metadata, filtered bool) uint8 {
	if filtered {
		return d.style.FilteredAlpha
	}
	if a, ok := m.Float(graph.KeyAlpha); ok {
		return uint8(math.Max(0, math.Min(255, a)) + 0.5)
	}
	return 255
}

func (d *Drawer) vertexVisual(v *graph.Vertex, at geom.Point, dc DrawingContext, ghost bool) (*Visual, bool) {
	visibility := graph.VisibilityOf(v.Meta)
	if visibility == graph.VisibilityHide {
		return nil, false
	}
	alpha := d.alpha(v.Meta, visibility == graph.VisibilityFiltered)

	col := d.style.VertexColor
	if c, ok := v.Meta.Color(graph.KeyColor); ok {
		col = c
	}
	if graph.IsSelected(v.Meta) {
		col = d.style.SelectedVertexColor
	}
	if ghost {
		col = Blend(col, dc.Background, 0.5)
	}
	col = WithAlpha(col, alpha)

	labelColor := d.style.LabelColor
	if c, ok := v.Meta.Color(graph.KeyLabelColor); ok {
		labelColor = c
	}
	labelColor = WithAlpha(labelColor, alpha)
	label, hasLabel := v.Meta.String(graph.KeyLabel)

	r := d.Radius(v)
	shape := d.Shape(v)
	vis := &Visual{Vertex: v, Bounds: geom.SquareAround(at, r)}
	var fill color.NRGBA
	if shape.IsSolid() {
		fill = col
	}

	switch shape {
	case graph.ShapeCircle, graph.ShapeDisk:
		vis.Prims = append(vis.Prims, Ellipse{Center: at, RX: r, RY: r, Fill: fill, Stroke: col, Width: 1})
	case graph.ShapeSquare, graph.ShapeSolidSquare:
		vis.Prims = append(vis.Prims, Polygon{Points: regular(at, r*math.Sqrt2, 4, math.Pi/4), Fill: fill, Stroke: col, Width: 1})
	case graph.ShapeDiamond, graph.ShapeSolidDiamond:
		vis.Prims = append(vis.Prims, Polygon{Points: regular(at, r, 4, 0), Fill: fill, Stroke: col, Width: 1})
	case graph.ShapeTriangle, graph.ShapeSolidTriangle:
		vis.Prims = append(vis.Prims, Polygon{Points: regular(at, r, 3, -math.Pi/2), Fill: fill, Stroke: col, Width: 1})
	case graph.ShapeLabel:
		if !hasLabel {
			label = v.Label()
		}
		size := TextSize(label, d.style.FontSize)
		box := geom.R(at.X-size.W/2-3, at.Y-size.H/2-2, size.W+6, size.H+4)
		vis.Bounds = box
		vis.Prims = append(vis.Prims,
			Polygon{Points: corners(box), Fill: WithAlpha(dc.Background, alpha), Stroke: col, Width: 1},
			Text{At: at, Text: label, Color: labelColor, Size: d.style.FontSize, AX: 0.5, AY: 0.5},
		)
		return vis, true
	case graph.ShapeImage:
		img, ok := v.Meta.Image(graph.KeyImage)
		if !ok || img == nil {
			vis.Prims = append(vis.Prims, Ellipse{Center: at, RX: r, RY: r, Stroke: col, Width: 1})
			break
		}
		vis.Prims = append(vis.Prims, Picture{Rect: vis.Bounds, Image: img, Alpha: alpha})
		if graph.IsSelected(v.Meta) {
			vis.Prims = append(vis.Prims, Polygon{Points: corners(vis.Bounds), Stroke: col, Width: 1})
		}
	}

	if hasLabel && label != "" {
		size := TextSize(label, d.style.FontSize)
		below := geom.Pt(at.X, at.Y+r+2)
		ay := 0.0
		if !dc.Rect.Empty() && below.Y+size.H > dc.Rect.Bottom() {
			below, ay = geom.Pt(at.X, at.Y-r-2), 1
		}
		vis.Prims = append(vis.Prims, Text{At: below, Text: label, Color: labelColor, Size: d.style.FontSize, AX: 0.5, AY: ay})
		vis.Extent = vis.Bounds.Union(geom.R(below.X-size.W/2, below.Y-ay*size.H, size.W, size.H))
	}
	return vis, true
}

func (d *Drawer) edgeVisual(e *graph.Edge, dc DrawingContext) (*Visual, bool) {
	from, to := e.Vertices()
	ev := graph.VisibilityOf(e.Meta)
	fv, tv := graph.VisibilityOf(from.Meta), graph.VisibilityOf(to.Meta)
	if ev == graph.VisibilityHide || fv == graph.VisibilityHide || tv == graph.VisibilityHide {
		return nil, false
	}
	filtered := ev == graph.VisibilityFiltered || fv == graph.VisibilityFiltered || tv == graph.VisibilityFiltered
	alpha := d.alpha(e.Meta, filtered)

	col := d.style.EdgeColor
	if c, ok := e.Meta.Color(graph.KeyColor); ok {
		col = c
	}
	if graph.IsSelected(e.Meta) {
		col = d.style.SelectedEdgeColor
	}
	col = WithAlpha(col, alpha)

	width := d.style.EdgeWidth
	if w, ok := e.Meta.Float(graph.KeyWidth); ok && w > 0 {
		width = w
	}
	vis := &Visual{Edge: e, Width: width}

	if e.IsSelfLoop() {
		r := d.Radius(from)
		lr := math.Max(r, 4)
		c := geom.Pt(from.Location.X, from.Location.Y-r-lr)
		vis.Path = append(regular(c, lr, 16, 0), geom.Pt(c.X+lr, c.Y))
		vis.Bounds = geom.SquareAround(c, lr+width)
		vis.Prims = append(vis.Prims, Ellipse{Center: c, RX: lr, RY: lr, Stroke: col, Width: width})
	} else {
		a, b := from.Location, to.Location
		dir := b.Sub(a)
		dist := a.Dist(b)
		if dist > 0 {
			dir = dir.Scale(1 / dist)
		}
		ra, rb := d.Radius(from), d.Radius(to)
		if dist > ra+rb {
			a, b = a.Add(dir.Scale(ra)), b.Sub(dir.Scale(rb))
		}
		end := b
		arrow := d.style.ArrowSize
		if e.Directed && arrow > 0 && a.Dist(b) > arrow {
			end = b.Sub(dir.Scale(arrow))
			perp := geom.Pt(-dir.Y, dir.X).Scale(arrow / 2)
			vis.Prims = append(vis.Prims, Polygon{Points: []geom.Point{b, end.Add(perp), end.Sub(perp)}, Fill: col, Stroke: col, Width: width})
		}
		vis.Prims = append([]Primitive{Line{From: a, To: end, Color: col, Width: width}}, vis.Prims...)
		vis.Path = []geom.Point{a, b}
		vis.Bounds = geom.RectFromPoints(a, b).Inset(-(width/2 + arrow))
	}

	if label, ok := e.Meta.String(graph.KeyLabel); ok && label != "" {
		mid := vis.Path[0].Add(vis.Path[len(vis.Path)-1]).Scale(0.5)
		if e.IsSelfLoop() {
			mid = geom.Pt(vis.Bounds.Center().X, vis.Bounds.Top())
		}
		labelColor := d.style.LabelColor
		if c, ok := e.Meta.Color(graph.KeyLabelColor); ok {
			labelColor = c
		}
		vis.Prims = append(vis.Prims, Text{At: mid, Text: label, Color: WithAlpha(labelColor, alpha), Size: d.style.FontSize, AX: 0.5, AY: 1})
		size := TextSize(label, d.style.FontSize)
		vis.Extent = vis.Bounds.Union(geom.R(mid.X-size.W/2, mid.Y-size.H, size.W, size.H))
	}
	return vis, true
}

// MarqueeVisual returns the outline drawn while dragging a selection
// rectangle.
func (d *Drawer) MarqueeVisual(r geom.Rect) *Visual {
	return &Visual{
		Bounds: r,
		Prims: []Primitive{Polygon{
			Points:   corners(r),
			Fill:     WithAlpha(d.style.MarqueeColor, 40),
			Stroke:   d.style.MarqueeColor,
			Width:    1,
			Hairline: true,
		}},
	}
}

// GhostVisual returns faded copies of vs displaced by offset, shown while
// vertices are being dragged.
func (d *Drawer) GhostVisual(vs []*graph.Vertex, offset geom.Point, dc DrawingContext) *Visual {
	out := &Visual{}
	for _, v := range vs {
		vis, ok := d.vertexVisual(v, v.Location.Add(offset), dc, true)
		if !ok {
			continue
		}
		if len(out.Prims) == 0 {
			out.Bounds = vis.Bounds
		} else {
			out.Bounds = out.Bounds.Union(vis.Bounds)
		}
		out.Prims = append(out.Prims, vis.Prims...)
	}
	return out
}

// regular returns the n corners of a regular polygon of circumradius r
// centred on c, starting at angle a0.
func regular(c geom.Point, r float64, n int, a0 float64) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		a := a0 + 2*math.Pi*float64(i)/float64(n)
		pts[i] = geom.Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))
	}
	return pts
}

func corners(r geom.Rect) []geom.Point {
	return []geom.Point{
		geom.Pt(r.Left(), r.Top()),
		geom.Pt(r.Right(), r.Top()),
		geom.Pt(r.Right(), r.Bottom()),
		geom.Pt(r.Left(), r.Bottom()),
	}
}
