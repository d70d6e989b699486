package control

import (
	"math"
	"time"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/render"
	"github.com/johnjohndoe/netmap/pkg/viewport"
)

// dragSession is the gesture in progress. A nil session means none; the
// concrete types are the only implementations, so two drags can never be
// active at once.
type dragSession interface {
	drag()
}

// vertexDrag moves the selected vertices. The ghost follows the pointer
// and the vertices move on release.
type vertexDrag struct {
	origin   geom.Point // Device
	start    geom.Point // Logical
	vertices []*graph.Vertex
	active   bool // Past the drag threshold
}

// marqueeDrag selects the vertices inside a rectangle on release.
type marqueeDrag struct {
	origin geom.Point
	start  geom.Point
	mods   Modifiers
	active bool
}

// translationDrag pans the view live.
type translationDrag struct {
	origin geom.Point
	pan    geom.Point // Pan when the drag started
}

func (*vertexDrag) drag()      {}
func (*marqueeDrag) drag()     {}
func (*translationDrag) drag() {}

// press remembers a pointer press until its release.
type press struct {
	v       *graph.Vertex
	escaped bool
}

type click struct {
	v  *graph.Vertex
	at time.Time
}

func (c *Control) stamp(ev PointerEvent) PointerEvent {
	if ev.Time.IsZero() {
		ev.Time = c.now()
	}
	return ev
}

// Dragging reports whether a drag gesture is in progress.
func (c *Control) Dragging() bool { return c.drag != nil }

// PointerDown starts a gesture. A press with the pan modifier or the middle
// button pans. A press on a vertex clicks it and, if the vertex is then
// selected and dragging is enabled, arms a vertex drag. A press on an edge
// selects the edge. A press on empty space arms a marquee.
func (c *Control) PointerDown(ev PointerEvent) error {
	if err := c.checkStable("PointerDown"); err != nil {
		return err
	}
	if c.drag != nil {
		return nil
	}
	ev = c.stamp(ev)
	p := c.tr.ToLogical(ev.Pos)
	v, hit := c.drawer.Tree().VertexAt(p)
	c.listener.GraphMouseDown(v, ev)
	c.dispatchHover(c.hover.Suspend())
	c.press = &press{v: v}

	switch {
	case ev.Button == ButtonMiddle || ev.Mods.Has(c.panMod):
		c.drag = &translationDrag{origin: ev.Pos, pan: c.tr.Pan}
	case hit:
		c.clickVertex(v, ev.Mods)
		if c.allowDrag && c.vertices.has(v) {
			c.drag = &vertexDrag{origin: ev.Pos, start: p, vertices: c.vertices.items()}
		}
	case c.mode == SelectNothing:
	default:
		if e, ok := c.EdgeAt(ev.Pos); ok {
			c.clickEdge(e, ev.Mods)
			return nil
		}
		c.drag = &marqueeDrag{origin: ev.Pos, start: p, mods: ev.Mods}
	}
	return nil
}

func (c *Control) clickVertex(v *graph.Vertex, mods Modifiers) {
	if c.mode == SelectNothing {
		return
	}
	incident := c.mode == SelectVertexAndIncidentEdges
	switch {
	case mods.Has(ModCtrl):
		c.selectionChanged(c.toggleVertex(v, !c.vertices.has(v), incident))
	case !c.vertices.has(v):
		var es []*graph.Edge
		if incident {
			es = v.IncidentEdges()
		}
		c.replaceSelection([]*graph.Vertex{v}, es)
	}
}

func (c *Control) clickEdge(e *graph.Edge, mods Modifiers) {
	adjacent := c.mode == SelectVertexAndIncidentEdges
	if mods.Has(ModCtrl) {
		c.selectionChanged(c.toggleEdge(e, !c.edges.has(e), adjacent))
		return
	}
	var vs []*graph.Vertex
	if adjacent {
		from, to := e.Vertices()
		vs = append(vs, from)
		if to != from {
			vs = append(vs, to)
		}
	}
	c.replaceSelection(vs, []*graph.Edge{e})
}

// PointerMove updates the drag feedback, or the hover tooltip when no
// button is pressed.
func (c *Control) PointerMove(ev PointerEvent) error {
	if err := c.checkStable("PointerMove"); err != nil {
		return err
	}
	ev = c.stamp(ev)
	switch d := c.drag.(type) {
	case nil:
		if c.press == nil {
			v, ok := c.drawer.Tree().VertexAt(c.tr.ToLogical(ev.Pos))
			c.dispatchHover(c.hover.Move(v, ok, ev.Time))
		}
	case *translationDrag:
		c.setTransform(c.tr.WithPan(d.pan.Add(ev.Pos.Sub(d.origin))).ClampPan(c.size))
	case *vertexDrag:
		if !d.active && ev.Pos.Dist(d.origin) < c.threshold {
			return nil
		}
		d.active = true
		offset := c.tr.ToLogical(ev.Pos).Sub(d.start)
		c.drawer.Tree().SetOverlay(render.OverlayDrag, c.drawer.GhostVisual(d.vertices, offset, c.drawingContext()))
	case *marqueeDrag:
		if !d.active && ev.Pos.Dist(d.origin) < c.threshold {
			return nil
		}
		d.active = true
		r := geom.RectFromPoints(d.start, c.tr.ToLogical(ev.Pos))
		c.drawer.Tree().SetOverlay(render.OverlayMarquee, c.drawer.MarqueeVisual(r))
	}
	return nil
}

// PointerUp ends the gesture and commits it: dragged vertices move, the
// marquee selects, a press and release on the same vertex clicks it.
func (c *Control) PointerUp(ev PointerEvent) error {
	if err := c.checkStable("PointerUp"); err != nil {
		return err
	}
	ev = c.stamp(ev)
	d, pr := c.drag, c.press
	c.drag, c.press = nil, nil
	c.hover.Resume()

	v, _ := c.drawer.Tree().VertexAt(c.tr.ToLogical(ev.Pos))
	c.listener.GraphMouseUp(v, ev)

	switch d := d.(type) {
	case *translationDrag:
		return nil
	case *vertexDrag:
		c.drawer.Tree().RemoveOverlay(render.OverlayDrag)
		if d.active {
			c.moveVertices(d.vertices, c.tr.ToLogical(ev.Pos).Sub(d.start))
			return nil
		}
	case *marqueeDrag:
		c.drawer.Tree().RemoveOverlay(render.OverlayMarquee)
		switch {
		case d.active:
			c.commitMarquee(d, ev.Pos)
		case !d.mods.Has(ModCtrl) && !d.mods.Has(ModShift):
			c.replaceSelection(nil, nil)
		}
		return nil
	}

	if pr != nil && !pr.escaped && pr.v != nil && pr.v == v {
		c.click(v, ev)
	}
	return nil
}

func (c *Control) click(v *graph.Vertex, ev PointerEvent) {
	if c.lastClick.v == v && ev.Time.Sub(c.lastClick.at) <= DefaultDoubleClickWindow {
		c.lastClick = click{}
		c.listener.VertexDoubleClick(v, ev)
		return
	}
	c.lastClick = click{v: v, at: ev.Time}
	c.listener.VertexClick(v, ev)
}

// moveVertices displaces vs by offset, keeping them inside the logical
// rectangle, and redraws them and their edges.
func (c *Control) moveVertices(vs []*graph.Vertex, offset geom.Point) {
	bounds := c.LogicalRect()
	dc := c.drawingContext()
	var moved []*graph.Vertex
	var edges []*graph.Edge
	seen := make(map[*graph.Edge]bool)
	for _, v := range vs {
		if !c.g.Contains(v) {
			continue
		}
		v.Location = bounds.Clamp(v.Location.Add(offset))
		c.drawer.RedrawVertex(v, dc)
		moved = append(moved, v)
		for _, e := range v.IncidentEdges() {
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	for _, e := range edges {
		c.drawer.RedrawEdge(e, dc)
	}
	if len(moved) > 0 {
		c.logger.Debug("vertices moved", "count", len(moved), "offset", offset)
		c.listener.VerticesMoved(moved)
	}
}

// commitMarquee applies the marquee: it replaces the selection, adds to it
// with Ctrl, or removes from it with Shift.
func (c *Control) commitMarquee(d *marqueeDrag, pos geom.Point) {
	r := geom.RectFromPoints(d.start, c.tr.ToLogical(pos))
	hits := c.drawer.Tree().VerticesIn(r)
	var hitEdges []*graph.Edge
	if c.mode == SelectVertexAndIncidentEdges {
		seen := make(map[*graph.Edge]bool)
		for _, v := range hits {
			for _, e := range v.IncidentEdges() {
				if !seen[e] {
					seen[e] = true
					hitEdges = append(hitEdges, e)
				}
			}
		}
	}

	vs, es := hits, hitEdges
	switch {
	case d.mods.Has(ModCtrl):
		vs = union(c.vertices.items(), hits)
		es = union(c.edges.items(), hitEdges)
	case d.mods.Has(ModShift):
		vs = subtract(c.vertices.items(), hits)
		es = subtract(c.edges.items(), hitEdges)
	}
	c.replaceSelection(vs, es)
}

func union[T comparable](a, b []T) []T {
	seen := make(map[T]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	for _, x := range b {
		if !seen[x] {
			seen[x] = true
			a = append(a, x)
		}
	}
	return a
}

func subtract[T comparable](a, b []T) []T {
	drop := make(map[T]bool, len(b))
	for _, x := range b {
		drop[x] = true
	}
	var out []T
	for _, x := range a {
		if !drop[x] {
			out = append(out, x)
		}
	}
	return out
}

// Wheel zooms by viewport.WheelFactor per notch around the pointer.
// Positive notches zoom in.
func (c *Control) Wheel(ev PointerEvent, notches float64) error {
	if err := c.checkStable("Wheel"); err != nil {
		return err
	}
	if notches == 0 {
		return nil
	}
	c.setTransform(c.tr.ZoomAt(c.size, ev.Pos, math.Pow(viewport.WheelFactor, notches)))
	return nil
}

// PointerLeave hides any tooltip and forgets the hovered vertex.
func (c *Control) PointerLeave() {
	c.dispatchHover(c.hover.Reset())
}

// KeyDown handles Escape: it cancels the drag in progress without
// committing it, or else cancels a running layout.
func (c *Control) KeyDown(k Key) error {
	if k != KeyEscape {
		return nil
	}
	if c.drag != nil {
		c.cancelDrag()
		return nil
	}
	if c.op != nil {
		c.Cancel()
	}
	return nil
}

// cancelDrag drops the drag session and its feedback. A pan is undone.
// The pending press is kept so that its release is not taken as a click.
func (c *Control) cancelDrag() {
	switch d := c.drag.(type) {
	case *translationDrag:
		c.setTransform(c.tr.WithPan(d.pan))
	case *vertexDrag:
		c.drawer.Tree().RemoveOverlay(render.OverlayDrag)
	case *marqueeDrag:
		c.drawer.Tree().RemoveOverlay(render.OverlayMarquee)
	}
	c.drag = nil
	if c.press != nil {
		c.press.escaped = true
	}
}

// abortGesture drops any drag and press, used before the graph or the
// geometry changes under the pointer.
func (c *Control) abortGesture() {
	c.cancelDrag()
	c.press = nil
	c.hover.Resume()
}
