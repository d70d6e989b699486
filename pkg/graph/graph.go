package graph

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/johnjohndoe/netmap/pkg/geom"
)

var (
	// ErrInvalidVertexID is returned by [Graph.AddVertexWithID] when the ID is
	// empty.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrDuplicateVertexID is returned by [Graph.AddVertexWithID] when a vertex
	// with the same ID already exists in the graph.
	ErrDuplicateVertexID = errors.New("duplicate vertex ID")

	// ErrUnknownVertex is returned by [Graph.RemoveVertex] when the vertex is
	// not part of the graph, including when it was already removed.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrForeignVertex is returned by [Graph.AddEdge] when either endpoint
	// belongs to another graph or has been removed. Edges never reference
	// vertices outside their own graph.
	ErrForeignVertex = errors.New("vertex does not belong to this graph")

	// ErrUnknownEdge is returned by [Graph.RemoveEdge] when the edge is not
	// part of the graph.
	ErrUnknownEdge = errors.New("unknown edge")
)

// Vertex is a node of the graph with a logical location and metadata.
//
// Vertices are created by [Graph.AddVertex] and stay owned by that graph. The
// zero value is not usable.
type Vertex struct {
	ID       string     // Unique within the graph
	Name     string     // Optional display name
	Location geom.Point // Logical coordinates, written by layouts and drags
	Meta     *Metadata  // Never nil

	g     *Graph
	edges []*Edge
}

// Graph returns the owning graph, or nil once the vertex has been removed.
func (v *Vertex) Graph() *Graph { return v.g }

// IncidentEdges returns every edge touching v in insertion order. A self-loop
// appears once.
func (v *Vertex) IncidentEdges() []*Edge { return slices.Clone(v.edges) }

// Degree returns the number of incident edges.
func (v *Vertex) Degree() int { return len(v.edges) }

// AdjacentVertices returns the distinct vertices sharing an edge with v, in
// the order their edges were added. v itself is included only for self-loops.
func (v *Vertex) AdjacentVertices() []*Vertex {
	seen := make(map[*Vertex]struct{}, len(v.edges))
	out := make([]*Vertex, 0, len(v.edges))
	for _, e := range v.edges {
		o := e.Other(v)
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// Label returns the label override, falling back to Name and then ID.
func (v *Vertex) Label() string {
	if s, ok := v.Meta.String(KeyLabel); ok {
		return s
	}
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}

// Edge connects two vertices of the same graph.
type Edge struct {
	ID       string
	Directed bool
	Meta     *Metadata // Never nil

	from, to *Vertex
	g        *Graph
}

// Vertices returns the two endpoints. For directed edges the first is the
// source.
func (e *Edge) Vertices() (*Vertex, *Vertex) { return e.from, e.to }

// From returns the first endpoint.
func (e *Edge) From() *Vertex { return e.from }

// To returns the second endpoint.
func (e *Edge) To() *Vertex { return e.to }

// Other returns the endpoint opposite v. For a self-loop it returns v.
func (e *Edge) Other(v *Vertex) *Vertex {
	if e.from == v {
		return e.to
	}
	return e.from
}

// IsSelfLoop reports whether both endpoints are the same vertex.
func (e *Edge) IsSelfLoop() bool { return e.from == e.to }

// Graph returns the owning graph, or nil once the edge has been removed.
func (e *Edge) Graph() *Graph { return e.g }

// Graph owns a set of vertices and the edges between them. Iteration order is
// insertion order, which keeps layouts and rendering deterministic.
//
// The zero value is not usable; use New. Graph is not safe for concurrent use.
// While a layout runs, vertex locations belong to the layout worker between
// iteration handshakes.
type Graph struct {
	vertices []*Vertex
	byID     map[string]*Vertex
	edges    []*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]*Vertex)}
}

// AddVertex adds a vertex with a random UUID and the given name.
func (g *Graph) AddVertex(name string) *Vertex {
	v, _ := g.AddVertexWithID(uuid.NewString(), name)
	return v
}

// AddVertexWithID adds a vertex with a caller-chosen ID.
func (g *Graph) AddVertexWithID(id, name string) (*Vertex, error) {
	if id == "" {
		return nil, ErrInvalidVertexID
	}
	if _, ok := g.byID[id]; ok {
		return nil, ErrDuplicateVertexID
	}
	v := &Vertex{ID: id, Name: name, Meta: &Metadata{}, g: g}
	g.vertices = append(g.vertices, v)
	g.byID[id] = v
	return v, nil
}

// RemoveVertex removes v and every edge incident to it.
func (g *Graph) RemoveVertex(v *Vertex) error {
	if v == nil || v.g != g {
		return ErrUnknownVertex
	}
	for _, e := range slices.Clone(v.edges) {
		g.detachEdge(e)
	}
	g.vertices = slices.DeleteFunc(g.vertices, func(x *Vertex) bool { return x == v })
	delete(g.byID, v.ID)
	v.g = nil
	return nil
}

// AddEdge connects from and to. Both must currently belong to g.
func (g *Graph) AddEdge(from, to *Vertex, directed bool) (*Edge, error) {
	if from == nil || to == nil || from.g != g || to.g != g {
		return nil, ErrForeignVertex
	}
	e := &Edge{
		ID:       uuid.NewString(),
		Directed: directed,
		Meta:     &Metadata{},
		from:     from,
		to:       to,
		g:        g,
	}
	g.edges = append(g.edges, e)
	from.edges = append(from.edges, e)
	if to != from {
		to.edges = append(to.edges, e)
	}
	return e, nil
}

// RemoveEdge removes e from the graph. Its endpoints stay.
func (g *Graph) RemoveEdge(e *Edge) error {
	if e == nil || e.g != g {
		return ErrUnknownEdge
	}
	g.detachEdge(e)
	return nil
}

func (g *Graph) detachEdge(e *Edge) {
	drop := func(x *Edge) bool { return x == e }
	g.edges = slices.DeleteFunc(g.edges, drop)
	e.from.edges = slices.DeleteFunc(e.from.edges, drop)
	if e.to != e.from {
		e.to.edges = slices.DeleteFunc(e.to.edges, drop)
	}
	e.g = nil
}

// Vertex returns the vertex with the given ID.
func (g *Graph) Vertex(id string) (*Vertex, bool) {
	v, ok := g.byID[id]
	return v, ok
}

// VertexByName returns the first vertex, in insertion order, with the given
// name.
func (g *Graph) VertexByName(name string) (*Vertex, bool) {
	for _, v := range g.vertices {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Vertices returns all vertices in insertion order. The slice is a copy.
func (g *Graph) Vertices() []*Vertex { return slices.Clone(g.vertices) }

// Edges returns all edges in insertion order. The slice is a copy.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Contains reports whether v currently belongs to g.
func (g *Graph) Contains(v *Vertex) bool { return v != nil && v.g == g }

// ContainsEdge reports whether e currently belongs to g.
func (g *Graph) ContainsEdge(e *Edge) bool { return e != nil && e.g == g }

// Bounds returns the smallest rectangle containing every vertex location. It
// is the zero Rect for an empty graph.
func (g *Graph) Bounds() geom.Rect {
	if len(g.vertices) == 0 {
		return geom.Rect{}
	}
	b := geom.RectFromPoints(g.vertices[0].Location, g.vertices[0].Location)
	for _, v := range g.vertices[1:] {
		b = b.Union(geom.RectFromPoints(v.Location, v.Location))
	}
	return b
}
