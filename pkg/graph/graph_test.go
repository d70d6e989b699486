package graph

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/johnjohndoe/netmap/pkg/geom"
)

func TestAddVertexWithID(t *testing.T) {
	g := New()
	if _, err := g.AddVertexWithID("a", "A"); err != nil {
		t.Fatalf("AddVertexWithID: %v", err)
	}

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"empty", "", ErrInvalidVertexID},
		{"duplicate", "a", ErrDuplicateVertexID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.AddVertexWithID(tt.id, ""); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if g.VertexCount() != 1 {
		t.Errorf("VertexCount = %d, want 1", g.VertexCount())
	}
}

func TestAddVertexGeneratesUniqueIDs(t *testing.T) {
	g := New()
	a, b := g.AddVertex("a"), g.AddVertex("b")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids %q and %q", a.ID, b.ID)
	}
	if got, ok := g.Vertex(b.ID); !ok || got != b {
		t.Errorf("Vertex(%q) = %v, %v", b.ID, got, ok)
	}
	if got, ok := g.VertexByName("a"); !ok || got != a {
		t.Errorf("VertexByName(a) = %v, %v", got, ok)
	}
}

func TestAddEdgeForeignVertex(t *testing.T) {
	g, other := New(), New()
	a := g.AddVertex("a")
	x := other.AddVertex("x")

	if _, err := g.AddEdge(a, x, false); !errors.Is(err, ErrForeignVertex) {
		t.Errorf("cross-graph edge: err = %v", err)
	}
	if _, err := g.AddEdge(a, nil, false); !errors.Is(err, ErrForeignVertex) {
		t.Errorf("nil endpoint: err = %v", err)
	}

	b := g.AddVertex("b")
	if err := g.RemoveVertex(b); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(a, b, true); !errors.Is(err, ErrForeignVertex) {
		t.Errorf("removed endpoint: err = %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}
}

func TestRemoveVertexRemovesIncidentEdges(t *testing.T) {
	g := New()
	a, b, c := g.AddVertex("a"), g.AddVertex("b"), g.AddVertex("c")
	ab, _ := g.AddEdge(a, b, true)
	bc, _ := g.AddEdge(b, c, false)
	ac, _ := g.AddEdge(a, c, false)
	loop, _ := g.AddEdge(b, b, false)

	if err := g.RemoveVertex(b); err != nil {
		t.Fatalf("RemoveVertex: %v", err)
	}

	edges := g.Edges()
	if len(edges) != 1 || edges[0] != ac {
		t.Fatalf("Edges = %v, want [ac]", edges)
	}
	for _, e := range []*Edge{ab, bc, loop} {
		if g.ContainsEdge(e) {
			t.Errorf("edge %s still in graph", e.ID)
		}
	}
	if got := a.IncidentEdges(); len(got) != 1 || got[0] != ac {
		t.Errorf("a.IncidentEdges = %v", got)
	}
	if got := c.IncidentEdges(); len(got) != 1 || got[0] != ac {
		t.Errorf("c.IncidentEdges = %v", got)
	}
	if b.Graph() != nil {
		t.Error("removed vertex still references graph")
	}
	if err := g.RemoveVertex(b); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("second RemoveVertex: err = %v", err)
	}
}

func TestEdgeEndpoints(t *testing.T) {
	g := New()
	a, b := g.AddVertex("a"), g.AddVertex("b")
	e, _ := g.AddEdge(a, b, true)
	loop, _ := g.AddEdge(a, a, false)

	if from, to := e.Vertices(); from != a || to != b {
		t.Errorf("Vertices = %v, %v", from, to)
	}
	if e.Other(a) != b || e.Other(b) != a {
		t.Error("Other returned the wrong endpoint")
	}
	if e.IsSelfLoop() || !loop.IsSelfLoop() {
		t.Error("IsSelfLoop mismatch")
	}
	if a.Degree() != 2 {
		t.Errorf("a.Degree = %d, want 2", a.Degree())
	}
	adj := a.AdjacentVertices()
	if len(adj) != 2 || adj[0] != b || adj[1] != a {
		t.Errorf("AdjacentVertices = %v", adj)
	}
	if err := g.RemoveEdge(loop); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveEdge(loop); !errors.Is(err, ErrUnknownEdge) {
		t.Errorf("second RemoveEdge: err = %v", err)
	}
	if a.Degree() != 1 {
		t.Errorf("a.Degree after RemoveEdge = %d, want 1", a.Degree())
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New()
	names := []string{"d", "a", "c", "b"}
	for _, n := range names {
		g.AddVertex(n)
	}
	for i, v := range g.Vertices() {
		if v.Name != names[i] {
			t.Errorf("Vertices()[%d] = %q, want %q", i, v.Name, names[i])
		}
	}
}

func TestVertexLabel(t *testing.T) {
	g := New()
	v, _ := g.AddVertexWithID("id-1", "")
	if v.Label() != "id-1" {
		t.Errorf("Label = %q, want id", v.Label())
	}
	v.Name = "router"
	if v.Label() != "router" {
		t.Errorf("Label = %q, want name", v.Label())
	}
	v.Meta.Set(KeyLabel, String("core router"))
	if v.Label() != "core router" {
		t.Errorf("Label = %q, want override", v.Label())
	}
}

func TestBounds(t *testing.T) {
	g := New()
	if g.Bounds() != (geom.Rect{}) {
		t.Error("empty graph should have zero bounds")
	}
	g.AddVertex("a").Location = geom.Pt(10, 40)
	g.AddVertex("b").Location = geom.Pt(30, 5)
	if got := g.Bounds(); got != geom.R(10, 5, 20, 35) {
		t.Errorf("Bounds = %v", got)
	}
}

func TestMetadataKinds(t *testing.T) {
	var m Metadata
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))

	m.Set("b", Bool(true))
	m.Set("i", Int(7))
	m.Set("f", Float(2.5))
	m.Set("s", String("x"))
	m.Set("c", Color(color.RGBA{R: 255, A: 255}))
	m.Set("e", Enum(ShapeDiamond))
	m.Set("img", Image(img))

	if b, ok := m.Bool("b"); !ok || !b {
		t.Errorf("Bool = %v, %v", b, ok)
	}
	if f, ok := m.Float("i"); !ok || f != 7 {
		t.Errorf("Float(int) = %v, %v", f, ok)
	}
	if _, ok := m.Int("f"); ok {
		t.Error("Int(float) should report a kind mismatch")
	}
	if _, ok := m.Float("e"); ok {
		t.Error("Float(enum) should report a kind mismatch")
	}
	if _, ok := m.String("i"); ok {
		t.Error("String(int) should report a kind mismatch")
	}
	if c, ok := m.Color("c"); !ok || c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("Color = %v, %v", c, ok)
	}
	if s, ok := EnumValue[Shape](&m, "e"); !ok || s != ShapeDiamond {
		t.Errorf("EnumValue = %v, %v", s, ok)
	}
	if got, ok := m.Image("img"); !ok || got != img {
		t.Errorf("Image = %v, %v", got, ok)
	}
	if m.Len() != 7 {
		t.Errorf("Len = %d, want 7", m.Len())
	}
	want := []string{"b", "c", "e", "f", "i", "img", "s"}
	for i, k := range m.Keys() {
		if k != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, k, want[i])
		}
	}
}

func TestMetadataSetInvalidRemoves(t *testing.T) {
	var m Metadata
	m.Set(KeySelected, Bool(true))
	if !IsSelected(&m) {
		t.Fatal("expected selected")
	}
	m.Set(KeySelected, Value{})
	if m.Has(KeySelected) {
		t.Error("setting the zero Value should remove the key")
	}
	m.Remove("missing")
}

func TestMetadataClone(t *testing.T) {
	var m Metadata
	m.Set("k", Int(1))
	c := m.Clone()
	c.Set("k", Int(2))
	if v, _ := m.Int("k"); v != 1 {
		t.Errorf("original mutated: %d", v)
	}
}

func TestVisibilityOf(t *testing.T) {
	tests := []struct {
		name string
		set  *Value
		want Visibility
	}{
		{"unset", nil, VisibilityShow},
		{"hide", ptr(Enum(VisibilityHide)), VisibilityHide},
		{"filtered", ptr(Enum(VisibilityFiltered)), VisibilityFiltered},
		{"wrong kind", ptr(String("hide")), VisibilityShow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Metadata
			if tt.set != nil {
				m.Set(KeyVisibility, *tt.set)
			}
			if got := VisibilityOf(&m); got != tt.want {
				t.Errorf("VisibilityOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseShape(t *testing.T) {
	for s := ShapeCircle; s <= ShapeImage; s++ {
		got, ok := ParseShape(s.String())
		if !ok || got != s {
			t.Errorf("ParseShape(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseShape("hexagon"); ok {
		t.Error("ParseShape accepted an unknown name")
	}
}

func ptr[T any](v T) *T { return &v }
