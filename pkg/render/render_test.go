package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/viewport"
)

// recorder is a Surface that counts calls.
type recorder struct {
	size     geom.Size
	cleared  int
	ellipses []geom.Point
	polygons int
	lines    int
	texts    []string
	images   int
}

func (r *recorder) Size() geom.Size                    { return r.size }
func (r *recorder) Clear(color.NRGBA)                   { r.cleared++ }
func (r *recorder) Image(geom.Rect, image.Image, uint8) { r.images++ }
func (r *recorder) Ellipse(c geom.Point, _, _ float64, _, _ color.NRGBA, _ float64) {
	r.ellipses = append(r.ellipses, c)
}
func (r *recorder) Polygon([]geom.Point, color.NRGBA, color.NRGBA, float64) { r.polygons++ }
func (r *recorder) Line(geom.Point, geom.Point, color.NRGBA, float64, []float64) {
	r.lines++
}
func (r *recorder) Text(_ geom.Point, s string, _ color.NRGBA, _, _, _ float64) {
	r.texts = append(r.texts, s)
}

func testGraph() (*graph.Graph, *graph.Vertex, *graph.Vertex, *graph.Edge) {
	g := graph.New()
	a, b := g.AddVertex("a"), g.AddVertex("b")
	a.Location, b.Location = geom.Pt(20, 20), geom.Pt(80, 20)
	e, _ := g.AddEdge(a, b, true)
	return g, a, b, e
}

var dc = DrawingContext{Rect: geom.R(0, 0, 100, 100), Background: MustParseColor("#ffffff")}

func TestDrawGraphBuildsOneVisualPerElement(t *testing.T) {
	g, a, b, e := testGraph()
	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)

	if d.Tree().Len() != 3 {
		t.Fatalf("Len = %d, want 3", d.Tree().Len())
	}
	for _, v := range []*graph.Vertex{a, b} {
		if _, ok := d.Tree().Vertex(v); !ok {
			t.Errorf("no visual for %s", v.Name)
		}
	}
	vis, ok := d.Tree().Edge(e)
	if !ok {
		t.Fatal("no visual for edge")
	}
	// Clipped at both radii.
	if vis.Path[0] != geom.Pt(23, 20) || vis.Path[1] != geom.Pt(77, 20) {
		t.Errorf("edge path = %v", vis.Path)
	}
	if len(vis.Prims) != 2 {
		t.Errorf("directed edge should have a line and an arrowhead, got %d prims", len(vis.Prims))
	}
}

func TestRedrawVertexReplacesOnlyThatVisual(t *testing.T) {
	g, a, b, e := testGraph()
	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)

	visB, _ := d.Tree().Vertex(b)
	visE, _ := d.Tree().Edge(e)
	oldA, _ := d.Tree().Vertex(a)

	a.Meta.Set(graph.KeySelected, graph.Bool(true))
	d.RedrawVertex(a, dc)

	newA, _ := d.Tree().Vertex(a)
	if newA == oldA {
		t.Error("vertex visual was not rebuilt")
	}
	if got, _ := d.Tree().Vertex(b); got != visB {
		t.Error("unrelated vertex visual changed")
	}
	if got, _ := d.Tree().Edge(e); got != visE {
		t.Error("edge visual changed")
	}
	el := newA.Prims[0].(Ellipse)
	if el.Fill != DefaultStyle().SelectedVertexColor {
		t.Errorf("selected fill = %v", el.Fill)
	}
}

func TestVisibility(t *testing.T) {
	g, a, b, e := testGraph()
	a.Meta.Set(graph.KeyVisibility, graph.Enum(graph.VisibilityHide))
	b.Meta.Set(graph.KeyVisibility, graph.Enum(graph.VisibilityFiltered))

	st := DefaultStyle()
	st.FilteredAlpha = 50
	d := NewDrawer(st)
	d.DrawGraph(g, dc)

	if _, ok := d.Tree().Vertex(a); ok {
		t.Error("hidden vertex has a visual")
	}
	if _, ok := d.Tree().Edge(e); ok {
		t.Error("edge to a hidden vertex has a visual")
	}
	vis, ok := d.Tree().Vertex(b)
	if !ok {
		t.Fatal("filtered vertex should still be drawn")
	}
	if got := vis.Prims[0].(Ellipse).Stroke.A; got != 50 {
		t.Errorf("filtered alpha = %d, want 50", got)
	}

	a.Meta.Remove(graph.KeyVisibility)
	d.RedrawVertex(a, dc)
	d.RedrawEdge(e, dc)
	if _, ok := d.Tree().Edge(e); !ok {
		t.Error("edge not restored after unhiding")
	}
}

func TestMetadataOverrides(t *testing.T) {
	g, a, _, e := testGraph()
	a.Meta.Set(graph.KeyShape, graph.Enum(graph.ShapeSolidSquare))
	a.Meta.Set(graph.KeyRadius, graph.Float(10))
	a.Meta.Set(graph.KeyColor, graph.Color(MustParseColor("#00ff00")))
	a.Meta.Set(graph.KeyAlpha, graph.Int(128))
	e.Meta.Set(graph.KeyWidth, graph.Float(4))

	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)

	vis, _ := d.Tree().Vertex(a)
	if vis.Bounds != geom.R(10, 10, 20, 20) {
		t.Errorf("bounds = %v", vis.Bounds)
	}
	poly, ok := vis.Prims[0].(Polygon)
	if !ok {
		t.Fatalf("prim = %T, want Polygon", vis.Prims[0])
	}
	if want := (color.NRGBA{G: 255, A: 128}); poly.Fill != want {
		t.Errorf("fill = %v, want %v", poly.Fill, want)
	}
	ev, _ := d.Tree().Edge(e)
	if ev.Width != 4 {
		t.Errorf("edge width = %v", ev.Width)
	}
}

func TestHitTesting(t *testing.T) {
	g, a, b, e := testGraph()
	c := g.AddVertex("c")
	c.Location = geom.Pt(21, 21) // drawn above a
	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)
	tree := d.Tree()

	if v, ok := tree.VertexAt(geom.Pt(20, 20)); !ok || v != c {
		t.Errorf("VertexAt overlap = %v, want topmost c", v)
	}
	if v, ok := tree.VertexAt(geom.Pt(81, 19)); !ok || v != b {
		t.Errorf("VertexAt(b) = %v", v)
	}
	if _, ok := tree.VertexAt(geom.Pt(50, 50)); ok {
		t.Error("VertexAt empty space hit something")
	}
	if got := tree.VerticesIn(geom.R(0, 0, 30, 30)); len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("VerticesIn = %v", got)
	}
	if got, ok := tree.EdgeAt(geom.Pt(50, 21), 1); !ok || got != e {
		t.Errorf("EdgeAt = %v", got)
	}
	if _, ok := tree.EdgeAt(geom.Pt(50, 30), 1); ok {
		t.Error("EdgeAt far from edge hit something")
	}
}

func TestSelfLoop(t *testing.T) {
	g := graph.New()
	v := g.AddVertex("v")
	v.Location = geom.Pt(50, 50)
	loop, _ := g.AddEdge(v, v, false)
	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)

	vis, ok := d.Tree().Edge(loop)
	if !ok {
		t.Fatal("self-loop not drawn")
	}
	if vis.Bounds.Bottom() > 50 {
		t.Errorf("loop bounds %v should sit above the vertex", vis.Bounds)
	}
	if _, ok := d.Tree().EdgeAt(vis.Path[4], 0.5); !ok {
		t.Error("self-loop not hit on its path")
	}
}

func TestRenderCullsAndOrdersLayers(t *testing.T) {
	g, _, b, _ := testGraph()
	b.Meta.Set(graph.KeyLabel, graph.String("bee"))
	far := g.AddVertex("far")
	far.Location = geom.Pt(500, 500)

	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)
	d.Tree().SetOverlay(OverlayMarquee, d.MarqueeVisual(geom.R(5, 5, 10, 10)))

	s := &recorder{size: geom.Sz(100, 100)}
	d.Tree().Render(s, viewport.Default(), dc.Background)

	if s.cleared != 1 {
		t.Errorf("Clear called %d times", s.cleared)
	}
	if len(s.ellipses) != 2 {
		t.Errorf("drew %d vertices, want 2 (far vertex culled)", len(s.ellipses))
	}
	if s.lines != 1 || s.polygons != 2 {
		t.Errorf("lines = %d, polygons = %d", s.lines, s.polygons)
	}
	if len(s.texts) != 1 || s.texts[0] != "bee" {
		t.Errorf("texts = %v", s.texts)
	}
}

func TestGhostVisual(t *testing.T) {
	g, a, b, _ := testGraph()
	d := NewDrawer(DefaultStyle())
	d.DrawGraph(g, dc)

	ghost := d.GhostVisual([]*graph.Vertex{a, b}, geom.Pt(0, 10), dc)
	if len(ghost.Prims) != 2 {
		t.Fatalf("prims = %d", len(ghost.Prims))
	}
	if got := ghost.Prims[0].(Ellipse).Center; got != geom.Pt(20, 30) {
		t.Errorf("ghost center = %v", got)
	}
	if a.Location != geom.Pt(20, 20) {
		t.Error("GhostVisual moved the vertex")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}, false},
		{"#0f0", color.NRGBA{G: 255, A: 255}, false},
		{"#0000ff80", color.NRGBA{B: 255, A: 128}, false},
		{"red", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseColor = %v, want %v", got, tt.want)
			}
		})
	}
	if HexColor(color.NRGBA{B: 255, A: 128}) != "#0000ff80" {
		t.Errorf("HexColor = %s", HexColor(color.NRGBA{B: 255, A: 128}))
	}
}

func TestBlendAndAlpha(t *testing.T) {
	black, white := MustParseColor("#000000"), MustParseColor("#ffffff")
	mid := Blend(black, white, 0.5)
	if mid.R < 127 || mid.R > 128 || mid.A != 255 {
		t.Errorf("Blend = %v", mid)
	}
	if got := WithAlpha(white, 0).A; got != 0 {
		t.Errorf("WithAlpha(0) = %d", got)
	}
	if got := WithAlpha(white, 255).A; got != 255 {
		t.Errorf("WithAlpha(255) = %d", got)
	}
}
