package render

import (
	"image/color"
	"slices"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/viewport"
)

// Visual is the retained drawing of one element.
type Visual struct {
	Vertex *graph.Vertex // Set for vertex visuals
	Edge   *graph.Edge   // Set for edge visuals
	Bounds geom.Rect     // Logical, used for vertex hit tests and marquees
	Extent geom.Rect     // Logical area touched by Prims; Bounds when empty
	Path   []geom.Point  // Edge centerline, used for edge hit tests
	Width  float64       // Edge width
	Prims  []Primitive
}

func (v *Visual) extent() geom.Rect {
	if v.Extent.Empty() {
		return v.Bounds
	}
	return v.Extent
}

// Draw draws every primitive of the visual.
func (v *Visual) Draw(s Surface, t viewport.Transform) {
	for _, p := range v.Prims {
		p.Draw(s, t)
	}
}

// distance returns the distance from p to the edge centerline.
func (v *Visual) distance(p geom.Point) float64 {
	best := -1.0
	for i := 1; i < len(v.Path); i++ {
		d := geom.SegmentDistance(p, v.Path[i-1], v.Path[i])
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// layer is an ordered set of visuals. Replacing a visual keeps its position.
type layer[K comparable] struct {
	order []K
	items map[K]*Visual
}

func (l *layer[K]) set(k K, v *Visual) {
	if l.items == nil {
		l.items = make(map[K]*Visual)
	}
	if _, ok := l.items[k]; !ok {
		l.order = append(l.order, k)
	}
	l.items[k] = v
}

func (l *layer[K]) remove(k K) {
	if _, ok := l.items[k]; !ok {
		return
	}
	delete(l.items, k)
	l.order = slices.DeleteFunc(l.order, func(x K) bool { return x == k })
}

func (l *layer[K]) clear() {
	l.order = l.order[:0]
	clear(l.items)
}

func (l *layer[K]) each(yield func(*Visual) bool) {
	for _, k := range l.order {
		if !yield(l.items[k]) {
			return
		}
	}
}

func (l *layer[K]) reverse(yield func(*Visual) bool) {
	for i := len(l.order) - 1; i >= 0; i-- {
		if !yield(l.items[l.order[i]]) {
			return
		}
	}
}

// Tree is the retained visual tree: edges below vertices below overlays.
// Each element owns at most one visual, so redrawing one element never
// touches the others.
type Tree struct {
	edges    layer[*graph.Edge]
	vertices layer[*graph.Vertex]
	overlay  layer[string]
}

// NewTree creates an empty tree.
func NewTree() *Tree { return &Tree{} }

// SetVertex stores or replaces the visual of a vertex.
func (t *Tree) SetVertex(v *graph.Vertex, vis *Visual) { t.vertices.set(v, vis) }

// RemoveVertex drops the visual of a vertex.
func (t *Tree) RemoveVertex(v *graph.Vertex) { t.vertices.remove(v) }

// Vertex returns the visual of a vertex.
func (t *Tree) Vertex(v *graph.Vertex) (*Visual, bool) {
	vis, ok := t.vertices.items[v]
	return vis, ok
}

// SetEdge stores or replaces the visual of an edge.
func (t *Tree) SetEdge(e *graph.Edge, vis *Visual) { t.edges.set(e, vis) }

// RemoveEdge drops the visual of an edge.
func (t *Tree) RemoveEdge(e *graph.Edge) { t.edges.remove(e) }

// Edge returns the visual of an edge.
func (t *Tree) Edge(e *graph.Edge) (*Visual, bool) {
	vis, ok := t.edges.items[e]
	return vis, ok
}

// SetOverlay stores or replaces a named transient visual such as the
// marquee rectangle.
func (t *Tree) SetOverlay(name string, vis *Visual) { t.overlay.set(name, vis) }

// RemoveOverlay drops a named overlay.
func (t *Tree) RemoveOverlay(name string) { t.overlay.remove(name) }

// Overlay returns a named overlay.
func (t *Tree) Overlay(name string) (*Visual, bool) {
	vis, ok := t.overlay.items[name]
	return vis, ok
}

// Clear removes every visual.
func (t *Tree) Clear() {
	t.edges.clear()
	t.vertices.clear()
	t.overlay.clear()
}

// Len returns the number of visuals in all layers.
func (t *Tree) Len() int {
	return len(t.edges.order) + len(t.vertices.order) + len(t.overlay.order)
}

// VertexAt returns the topmost vertex whose visual contains the logical
// point p.
func (t *Tree) VertexAt(p geom.Point) (*graph.Vertex, bool) {
	var hit *graph.Vertex
	t.vertices.reverse(func(vis *Visual) bool {
		if vis.Bounds.Contains(p) {
			hit = vis.Vertex
			return false
		}
		return true
	})
	return hit, hit != nil
}

// VerticesIn returns, in drawing order, every vertex whose visual
// intersects the logical rectangle r.
func (t *Tree) VerticesIn(r geom.Rect) []*graph.Vertex {
	var out []*graph.Vertex
	t.vertices.each(func(vis *Visual) bool {
		if vis.Bounds.Intersects(r) {
			out = append(out, vis.Vertex)
		}
		return true
	})
	return out
}

// EdgeAt returns the topmost edge whose centerline passes within tol plus
// half its width of the logical point p.
func (t *Tree) EdgeAt(p geom.Point, tol float64) (*graph.Edge, bool) {
	var hit *graph.Edge
	t.edges.reverse(func(vis *Visual) bool {
		if d := vis.distance(p); d >= 0 && d <= tol+vis.Width/2 {
			hit = vis.Edge
			return false
		}
		return true
	})
	return hit, hit != nil
}

// Render clears s to bg and draws every visual that intersects the visible
// part of the logical plane.
func (t *Tree) Render(s Surface, tr viewport.Transform, bg color.NRGBA) {
	s.Clear(bg)
	visible := tr.Visible(s.Size())
	draw := func(vis *Visual) bool {
		if vis.extent().Intersects(visible) {
			vis.Draw(s, tr)
		}
		return true
	}
	t.edges.each(draw)
	t.vertices.each(draw)
	t.overlay.each(draw)
}
