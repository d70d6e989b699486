package control

import (
	"slices"

	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/graph"
)

// orderedSet is a set that remembers insertion order.
type orderedSet[T comparable] struct {
	order []T
	index map[T]struct{}
}

func (s *orderedSet[T]) has(x T) bool {
	_, ok := s.index[x]
	return ok
}

func (s *orderedSet[T]) add(x T) bool {
	if s.has(x) {
		return false
	}
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	s.index[x] = struct{}{}
	s.order = append(s.order, x)
	return true
}

func (s *orderedSet[T]) remove(x T) bool {
	if !s.has(x) {
		return false
	}
	delete(s.index, x)
	s.order = slices.DeleteFunc(s.order, func(y T) bool { return y == x })
	return true
}

func (s *orderedSet[T]) clear() {
	s.order = nil
	clear(s.index)
}

func (s *orderedSet[T]) items() []T { return slices.Clone(s.order) }

func (s *orderedSet[T]) len() int { return len(s.order) }

// SelectedVertices returns the selected vertices in selection order.
func (c *Control) SelectedVertices() []*graph.Vertex { return c.vertices.items() }

// SelectedEdges returns the selected edges in selection order.
func (c *Control) SelectedEdges() []*graph.Edge { return c.edges.items() }

// IsVertexSelected reports whether v is selected.
func (c *Control) IsVertexSelected(v *graph.Vertex) bool { return c.vertices.has(v) }

// IsEdgeSelected reports whether e is selected.
func (c *Control) IsEdgeSelected(e *graph.Edge) bool { return c.edges.has(e) }

// SetSelected replaces the whole selection in one step. Elements in both the
// old and the new selection are not redrawn.
func (c *Control) SetSelected(vs []*graph.Vertex, es []*graph.Edge) error {
	if err := c.checkSelection("SetSelected", vs, es); err != nil {
		return err
	}
	c.replaceSelection(vs, es)
	return nil
}

// SetVertexSelected selects or deselects v. With incident, the edges of v
// follow it.
func (c *Control) SetVertexSelected(v *graph.Vertex, selected, incident bool) error {
	if err := c.checkSelection("SetVertexSelected", []*graph.Vertex{v}, nil); err != nil {
		return err
	}
	c.selectionChanged(c.toggleVertex(v, selected, incident))
	return nil
}

// toggleVertex marks v and, with incident, its edges. It reports whether
// anything changed.
func (c *Control) toggleVertex(v *graph.Vertex, selected, incident bool) bool {
	changed := c.markVertex(v, selected)
	if incident {
		for _, e := range v.IncidentEdges() {
			changed = c.markEdge(e, selected) || changed
		}
	}
	return changed
}

// SetEdgeSelected selects or deselects e. With adjacent, its two vertices
// follow it.
func (c *Control) SetEdgeSelected(e *graph.Edge, selected, adjacent bool) error {
	if err := c.checkSelection("SetEdgeSelected", nil, []*graph.Edge{e}); err != nil {
		return err
	}
	c.selectionChanged(c.toggleEdge(e, selected, adjacent))
	return nil
}

func (c *Control) toggleEdge(e *graph.Edge, selected, adjacent bool) bool {
	changed := c.markEdge(e, selected)
	if adjacent {
		from, to := e.Vertices()
		changed = c.markVertex(from, selected) || changed
		changed = c.markVertex(to, selected) || changed
	}
	return changed
}

// SelectAll selects every vertex and edge that is not hidden.
func (c *Control) SelectAll() error {
	if err := c.checkStable("SelectAll"); err != nil {
		return err
	}
	changed := false
	for _, v := range c.g.Vertices() {
		if graph.VisibilityOf(v.Meta) != graph.VisibilityHide {
			changed = c.markVertex(v, true) || changed
		}
	}
	for _, e := range c.g.Edges() {
		if graph.VisibilityOf(e.Meta) != graph.VisibilityHide {
			changed = c.markEdge(e, true) || changed
		}
	}
	c.selectionChanged(changed)
	return nil
}

// DeselectAll clears the selection.
func (c *Control) DeselectAll() error {
	if err := c.checkStable("DeselectAll"); err != nil {
		return err
	}
	c.replaceSelection(nil, nil)
	return nil
}

// InvertSelection selects every unselected vertex and edge that is not
// hidden, and deselects the rest.
func (c *Control) InvertSelection() error {
	if err := c.checkStable("InvertSelection"); err != nil {
		return err
	}
	var vs []*graph.Vertex
	for _, v := range c.g.Vertices() {
		if !c.vertices.has(v) && graph.VisibilityOf(v.Meta) != graph.VisibilityHide {
			vs = append(vs, v)
		}
	}
	var es []*graph.Edge
	for _, e := range c.g.Edges() {
		if !c.edges.has(e) && graph.VisibilityOf(e.Meta) != graph.VisibilityHide {
			es = append(es, e)
		}
	}
	c.replaceSelection(vs, es)
	return nil
}

// checkSelection validates a selection call before anything changes.
func (c *Control) checkSelection(op string, vs []*graph.Vertex, es []*graph.Edge) error {
	if err := c.checkStable(op); err != nil {
		return err
	}
	for _, v := range vs {
		if v == nil || !c.g.Contains(v) {
			return errors.InvalidArgument(op, "vertex is nil or not in the graph")
		}
	}
	for _, e := range es {
		if e == nil || !c.g.ContainsEdge(e) {
			return errors.InvalidArgument(op, "edge is nil or not in the graph")
		}
	}
	return nil
}

// replaceSelection deselects what is not in vs and es, then selects the
// rest, and notifies once.
func (c *Control) replaceSelection(vs []*graph.Vertex, es []*graph.Edge) {
	pruned := c.pruneSelection()
	keepV := make(map[*graph.Vertex]bool, len(vs))
	for _, v := range vs {
		keepV[v] = true
	}
	keepE := make(map[*graph.Edge]bool, len(es))
	for _, e := range es {
		keepE[e] = true
	}
	changed := false
	for _, v := range c.vertices.items() {
		if !keepV[v] {
			changed = c.markVertex(v, false) || changed
		}
	}
	for _, e := range c.edges.items() {
		if !keepE[e] {
			changed = c.markEdge(e, false) || changed
		}
	}
	for _, v := range vs {
		changed = c.markVertex(v, true) || changed
	}
	for _, e := range es {
		changed = c.markEdge(e, true) || changed
	}
	c.selectionChanged(changed || pruned)
}

// markVertex sets the selected key of v, updates the set and redraws v.
// It reports whether anything changed.
func (c *Control) markVertex(v *graph.Vertex, selected bool) bool {
	var changed bool
	if selected {
		changed = c.vertices.add(v)
		v.Meta.Set(graph.KeySelected, graph.Bool(true))
	} else {
		changed = c.vertices.remove(v)
		v.Meta.Remove(graph.KeySelected)
	}
	switch {
	case !c.g.Contains(v):
		c.drawer.Tree().RemoveVertex(v)
	case changed:
		c.drawer.RedrawVertex(v, c.drawingContext())
	}
	return changed
}

func (c *Control) markEdge(e *graph.Edge, selected bool) bool {
	var changed bool
	if selected {
		changed = c.edges.add(e)
		e.Meta.Set(graph.KeySelected, graph.Bool(true))
	} else {
		changed = c.edges.remove(e)
		e.Meta.Remove(graph.KeySelected)
	}
	switch {
	case !c.g.ContainsEdge(e):
		c.drawer.Tree().RemoveEdge(e)
	case changed:
		c.drawer.RedrawEdge(e, c.drawingContext())
	}
	return changed
}

// pruneSelection drops selected elements that were removed from the graph
// behind the control's back. It reports whether anything was dropped.
func (c *Control) pruneSelection() bool {
	changed := false
	for _, v := range c.vertices.items() {
		if !c.g.Contains(v) {
			changed = c.markVertex(v, false) || changed
		}
	}
	for _, e := range c.edges.items() {
		if !c.g.ContainsEdge(e) {
			changed = c.markEdge(e, false) || changed
		}
	}
	return changed
}

func (c *Control) selectionChanged(changed bool) {
	if changed {
		c.listener.SelectionChanged()
	}
}
