package control

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/hover"
	"github.com/johnjohndoe/netmap/pkg/layout"
	"github.com/johnjohndoe/netmap/pkg/render"
	"github.com/johnjohndoe/netmap/pkg/viewport"
)

// Control draws a graph and turns pointer input into selection, vertex
// drags, marquee selection, panning and zooming.
//
// A Control belongs to one foreground goroutine. Layouts run on a worker
// goroutine; while one is in flight (IsDrawing) every method that reads or
// writes vertex state fails with an invalid-state error. The foreground
// drives the layout by calling Pump or Wait, which hand each iteration to
// the drawer while the worker is parked.
type Control struct {
	g        *graph.Graph
	engine   *layout.Engine
	drawer   *render.Drawer
	listener Listener
	logger   *log.Logger
	now      func() time.Time

	size  geom.Size
	tr    viewport.Transform
	state LayoutState

	op       *layout.Operation
	opCtx    context.Context
	relayout bool // Resize arrived during a layout
	lastErr  error

	vertices orderedSet[*graph.Vertex]
	edges    orderedSet[*graph.Edge]

	mode      MouseSelectionMode
	allowDrag bool
	panMod    Modifiers
	threshold float64
	drag      dragSession
	press     *press
	lastClick click

	hover   *hover.Tracker[*graph.Vertex]
	tip     string
	tipOver *graph.Vertex

	// Construction-only settings.
	style     render.Style
	algorithm layout.Algorithm
	margin    float64
	sorting   bool
	dwell     time.Duration
	timeout   time.Duration
}

// New creates a Control for a device of the given size in pixels, showing an
// empty graph.
func New(size geom.Size, opts ...Option) (*Control, error) {
	if size.Empty() {
		return nil, errors.InvalidArgument("New", "size %vx%v must be positive", size.W, size.H)
	}
	c := &Control{
		g:         graph.New(),
		listener:  NoopListener{},
		logger:    log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel}),
		now:       time.Now,
		size:      size,
		tr:        viewport.Default(),
		mode:      SelectVertexAndIncidentEdges,
		allowDrag: true,
		panMod:    ModAlt,
		threshold: DefaultDragThreshold,
		style:     render.DefaultStyle(),
		margin:    layout.DefaultMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.engine = layout.NewEngine(c.algorithm,
		layout.WithMargin(c.margin),
		layout.WithSorting(c.sorting),
		layout.WithLogger(c.logger),
	)
	c.drawer = render.NewDrawer(c.style)
	c.hover = hover.New[*graph.Vertex](c.dwell, c.timeout)
	return c, nil
}

// Graph returns the graph being shown.
func (c *Control) Graph() *graph.Graph { return c.g }

// SetGraph replaces the graph. Elements already carrying the selected key
// become the selection.
func (c *Control) SetGraph(g *graph.Graph) error {
	if err := c.checkStable("SetGraph"); err != nil {
		return err
	}
	if g == nil {
		return errors.InvalidArgument("SetGraph", "graph must not be nil")
	}
	c.abortGesture()
	c.dispatchHover(c.hover.Reset())
	c.g = g
	c.vertices.clear()
	c.edges.clear()
	for _, v := range g.Vertices() {
		if graph.IsSelected(v.Meta) {
			c.vertices.add(v)
		}
	}
	for _, e := range g.Edges() {
		if graph.IsSelected(e.Meta) {
			c.edges.add(e)
		}
	}
	c.drawer.DrawGraph(g, c.drawingContext())
	return nil
}

// Listener returns the notification receiver.
func (c *Control) Listener() Listener { return c.listener }

// SetListener replaces the notification receiver. A nil listener discards
// notifications.
func (c *Control) SetListener(l Listener) {
	if l == nil {
		l = NoopListener{}
	}
	c.listener = l
}

// State returns the layout state.
func (c *Control) State() LayoutState { return c.state }

// IsDrawing reports whether a layout or transform is in progress.
func (c *Control) IsDrawing() bool { return c.state.IsDrawing() }

// Size returns the device size in pixels.
func (c *Control) Size() geom.Size { return c.size }

// Transform returns the current layout scale, zoom and pan.
func (c *Control) Transform() viewport.Transform { return c.tr }

// Style returns the drawing defaults.
func (c *Control) Style() render.Style { return c.drawer.Style() }

// Algorithm returns the layout algorithm.
func (c *Control) Algorithm() layout.Algorithm { return c.engine.Algorithm() }

// SetAlgorithm replaces the layout algorithm used by the next DrawGraph.
func (c *Control) SetAlgorithm(a layout.Algorithm) error {
	if err := c.checkStable("SetAlgorithm"); err != nil {
		return err
	}
	return c.engine.SetAlgorithm(a)
}

// Err returns the error of the last layout, if it failed.
func (c *Control) Err() error { return c.lastErr }

// LogicalRect returns the rectangle layouts run on.
func (c *Control) LogicalRect() geom.Rect { return c.tr.LogicalRect(c.size) }

func (c *Control) drawingContext() render.DrawingContext {
	return render.DrawingContext{
		Rect:       c.LogicalRect(),
		Margin:     c.engine.Margin(),
		Background: c.drawer.Style().Background,
	}
}

func (c *Control) setState(s LayoutState) {
	if s == c.state {
		return
	}
	c.logger.Debug("state", "from", c.state, "to", s)
	c.state = s
}

func (c *Control) checkStable(op string) error {
	if c.state.IsDrawing() {
		return errors.InvalidState(op, c.state)
	}
	return nil
}

// DrawGraph redraws the graph. With layOutAgain it first starts an
// asynchronous layout of the logical rectangle and returns at once; drive it
// with Pump or Wait. It fails while a layout is already in flight and leaves
// the graph untouched.
func (c *Control) DrawGraph(ctx context.Context, layOutAgain bool) error {
	if err := c.checkStable("DrawGraph"); err != nil {
		return err
	}
	c.abortGesture()
	c.selectionChanged(c.pruneSelection())
	c.listener.DrawingGraph(layOutAgain)
	if !layOutAgain {
		c.drawer.DrawGraph(c.g, c.drawingContext())
		c.listener.GraphDrawn(layout.StatusSucceeded, nil)
		return nil
	}
	c.setState(LayoutRequired)
	if err := c.startLayout(ctx); err != nil {
		c.setState(Stable)
		c.listener.GraphDrawn(layout.StatusFailed, err)
		return err
	}
	return nil
}

func (c *Control) startLayout(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	op, err := c.engine.LayOutAsync(ctx, c.g, c.LogicalRect())
	if err != nil {
		return err
	}
	c.op, c.opCtx, c.lastErr = op, ctx, nil
	c.setState(LayingOut)
	return nil
}

// Cancel stops the layout in flight. The control returns to Stable once the
// terminal update has been pumped.
func (c *Control) Cancel() {
	c.relayout = false
	if c.op != nil {
		c.op.Cancel()
	}
}

// Pump handles every layout update that is ready without blocking. It
// reports whether a layout is still in flight.
func (c *Control) Pump() bool {
	for c.op != nil {
		select {
		case u := <-c.op.Updates():
			c.handle(u)
		default:
			return true
		}
	}
	return false
}

// Wait handles layout updates until the control is Stable. When ctx ends
// first, the layout is cancelled and Wait still returns only after the
// terminal update, with ctx.Err(). Otherwise it returns the layout failure,
// if any.
func (c *Control) Wait(ctx context.Context) error {
	var ctxErr error
	done := ctx.Done()
	for c.op != nil {
		select {
		case u := <-c.op.Updates():
			c.handle(u)
		case <-done:
			c.Cancel()
			done, ctxErr = nil, ctx.Err()
		}
	}
	if ctxErr != nil {
		return ctxErr
	}
	return c.lastErr
}

func (c *Control) handle(u layout.Update) {
	dc := c.drawingContext()
	if u.Kind == layout.KindIteration {
		c.setState(LayoutIterationCompleted)
		c.drawer.DrawGraph(c.g, dc)
		c.listener.LayoutIterationCompleted(u.Iteration)
		u.Ack()
		c.setState(LayingOut)
		return
	}

	c.setState(LayoutCompleted)
	c.drawer.DrawGraph(c.g, dc)
	u.Ack()
	c.op = nil
	c.lastErr = u.Err

	if c.relayout && u.Status != layout.StatusFailed {
		c.relayout = false
		c.setState(LayoutRequired)
		err := c.startLayout(c.opCtx)
		if err == nil {
			return
		}
		u.Status, u.Err, c.lastErr = layout.StatusFailed, err, err
	}
	c.relayout = false
	c.setState(Stable)
	c.listener.GraphDrawn(u.Status, u.Err)
}

// Resize changes the device size. A layout in flight is cancelled and run
// again for the new size; otherwise vertices are moved proportionally to
// the new logical rectangle without a layout.
func (c *Control) Resize(size geom.Size) error {
	if size.Empty() {
		return errors.InvalidArgument("Resize", "size %vx%v must be positive", size.W, size.H)
	}
	if size == c.size {
		return nil
	}
	old := c.LogicalRect()
	c.size = size
	if c.op != nil {
		c.relayout = true
		c.op.Cancel()
		return nil
	}
	c.abortGesture()
	return c.transform(old)
}

// transform rescales vertices from the logical rectangle old to the current
// one and redraws.
func (c *Control) transform(old geom.Rect) error {
	c.setState(TransformRequired)
	defer c.setState(Stable)
	if err := c.engine.TransformLayout(c.g, old, c.LogicalRect()); err != nil {
		return err
	}
	c.setTransform(c.tr.ClampPan(c.size))
	c.drawer.DrawGraph(c.g, c.drawingContext())
	return nil
}

// SetLayoutScale changes the layout scale. Vertices are moved
// proportionally; no layout is run.
func (c *Control) SetLayoutScale(s float64) error {
	if err := c.checkStable("SetLayoutScale"); err != nil {
		return err
	}
	t, err := c.tr.WithLayoutScale(s)
	if err != nil {
		return err
	}
	if t == c.tr {
		return nil
	}
	c.abortGesture()
	old := c.LogicalRect()
	c.tr = t
	return c.transform(old)
}

// SetZoom changes the zoom around the current zoom center.
func (c *Control) SetZoom(z float64) error {
	t, err := c.tr.WithZoom(z)
	if err != nil {
		return err
	}
	c.setTransform(t.ClampPan(c.size))
	return nil
}

// SetPan changes the pan, clamped so the drawing stays on screen.
func (c *Control) SetPan(p geom.Point) {
	c.setTransform(c.tr.WithPan(p).ClampPan(c.size))
}

// SetZoomCenter moves the zoom center without moving the picture.
func (c *Control) SetZoomCenter(p geom.Point) {
	c.setTransform(c.tr.WithZoomCenter(p).ClampPan(c.size))
}

// setTransform stores t and reports zoom and pan changes.
func (c *Control) setTransform(t viewport.Transform) {
	old := c.tr
	c.tr = t
	if t.Zoom != old.Zoom {
		c.listener.GraphZoomChanged(t.Zoom)
	}
	if t.Pan != old.Pan {
		c.listener.GraphTranslationChanged(t.Pan)
	}
}

// Render draws the current view on s.
func (c *Control) Render(s render.Surface) {
	c.drawer.Tree().Render(s, c.tr, c.drawer.Style().Background)
}

// VertexAt returns the vertex under a device point.
func (c *Control) VertexAt(p geom.Point) (*graph.Vertex, bool) {
	if c.IsDrawing() {
		return nil, false
	}
	return c.drawer.Tree().VertexAt(c.tr.ToLogical(p))
}

// EdgeAt returns the edge under a device point.
func (c *Control) EdgeAt(p geom.Point) (*graph.Edge, bool) {
	if c.IsDrawing() {
		return nil, false
	}
	sx, sy := c.tr.Scales()
	return c.drawer.Tree().EdgeAt(c.tr.ToLogical(p), DefaultEdgeTolerance/min(sx, sy))
}

// ToolTip returns the vertex whose tooltip is showing and its text.
func (c *Control) ToolTip() (*graph.Vertex, string, bool) {
	return c.tipOver, c.tip, c.tipOver != nil
}

// Tick advances the tooltip timers.
func (c *Control) Tick(now time.Time) {
	c.dispatchHover(c.hover.Tick(now))
}

func (c *Control) dispatchHover(evs []hover.Event[*graph.Vertex]) {
	for _, ev := range evs {
		v := ev.Element
		switch ev.Kind {
		case hover.Show:
			tip := defaultToolTip(v)
			c.listener.PreviewVertexToolTip(v, &tip)
			c.tipOver, c.tip = v, tip
			c.listener.VertexMouseHover(v, tip)
		case hover.Hide:
			c.tipOver, c.tip = nil, ""
			c.listener.VertexMouseLeave(v)
		}
	}
}

func defaultToolTip(v *graph.Vertex) string {
	if s, ok := v.Meta.String(graph.KeyToolTip); ok {
		return s
	}
	return v.Label()
}
