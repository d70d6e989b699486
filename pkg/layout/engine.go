package layout

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/observability"
)

// DefaultMargin is the inset applied to the target rectangle when no margin
// option is given.
const DefaultMargin = 6.0

// UpdateKind distinguishes progress updates from the terminal update.
type UpdateKind int

const (
	// KindIteration reports that an iteration finished.
	KindIteration UpdateKind = iota
	// KindCompleted is the last update of every operation.
	KindCompleted
)

func (k UpdateKind) String() string {
	if k == KindCompleted {
		return "completed"
	}
	return "iteration"
}

// Status is the outcome carried by a KindCompleted update.
type Status int

const (
	StatusSucceeded Status = iota
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Update is one message from the layout worker. The worker stays blocked
// until Ack is called, so the receiver may read vertex locations safely
// until then. Every received Update must be acknowledged.
type Update struct {
	Kind      UpdateKind
	Iteration int
	Status    Status // Set on KindCompleted
	Err       error  // Set when Status is StatusFailed

	op *Operation
	hs *handshake
}

type handshake struct {
	once sync.Once
	ch   chan struct{}
}

// Ack releases the worker. Calling it more than once is harmless.
func (u Update) Ack() {
	if u.hs == nil {
		return
	}
	u.hs.once.Do(func() {
		if u.Kind == KindCompleted {
			u.op.finished.Store(true)
		}
		close(u.hs.ch)
	})
}

// Operation is a running layout. Its updates arrive on an unbuffered
// channel; the last one is always KindCompleted, including after
// cancellation and failure.
type Operation struct {
	algorithm string
	updates   chan Update
	cancel    context.CancelFunc
	done      chan struct{}
	finished  atomic.Bool
}

// Updates returns the channel the worker publishes on. It is never closed;
// stop receiving after the KindCompleted update.
func (o *Operation) Updates() <-chan Update { return o.updates }

// Cancel asks the worker to stop. The terminal update still follows.
func (o *Operation) Cancel() { o.cancel() }

// Done is closed when the worker goroutine has exited.
func (o *Operation) Done() <-chan struct{} { return o.done }

// Finished reports whether the terminal update has been acknowledged.
func (o *Operation) Finished() bool { return o.finished.Load() }

// Algorithm returns the name of the algorithm being run.
func (o *Operation) Algorithm() string { return o.algorithm }

func (o *Operation) publish(ctx context.Context, u Update) error {
	u.op = o
	u.hs = &handshake{ch: make(chan struct{})}
	if u.Kind == KindCompleted {
		o.updates <- u
	} else {
		select {
		case o.updates <- u:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// The handshake is not interruptible: once the foreground has the update
	// it owns the graph until it acknowledges.
	<-u.hs.ch
	return nil
}

// Engine runs one layout algorithm asynchronously. At most one operation is
// in flight at a time.
//
// Engine methods must be called from a single foreground goroutine.
type Engine struct {
	algorithm Algorithm
	margin    float64
	sorting   bool
	logger    *log.Logger

	current *Operation
}

// Option configures an Engine.
type Option func(*Engine)

// WithMargin sets the inset applied on all sides of the target rectangle.
func WithMargin(m float64) Option {
	return func(e *Engine) { e.margin = m }
}

// WithSorting enables layout-order sorting of vertices before each run.
func WithSorting(enabled bool) Option {
	return func(e *Engine) { e.sorting = enabled }
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine for the given algorithm. A nil algorithm
// selects FruchtermanReingold.
func NewEngine(a Algorithm, opts ...Option) *Engine {
	if a == nil {
		a = NewFruchtermanReingold()
	}
	e := &Engine{
		algorithm: a,
		margin:    DefaultMargin,
		logger:    log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Algorithm returns the configured algorithm.
func (e *Engine) Algorithm() Algorithm { return e.algorithm }

// SetAlgorithm replaces the algorithm used by the next run.
func (e *Engine) SetAlgorithm(a Algorithm) error {
	if a == nil {
		return errors.InvalidArgument("SetAlgorithm", "algorithm must not be nil")
	}
	if e.Busy() {
		return errors.InvalidState("SetAlgorithm", "layout in progress")
	}
	e.algorithm = a
	return nil
}

// Margin returns the inset applied to target rectangles.
func (e *Engine) Margin() float64 { return e.margin }

// Usable returns the area an algorithm may place vertices in for the given
// target rectangle.
func (e *Engine) Usable(rect geom.Rect) geom.Rect { return rect.Inset(e.margin) }

// Busy reports whether an operation has been started and its terminal update
// not yet acknowledged.
func (e *Engine) Busy() bool {
	return e.current != nil && !e.current.Finished()
}

// Cancel cancels the operation in flight, if any.
func (e *Engine) Cancel() {
	if e.Busy() {
		e.current.Cancel()
	}
}

// LayOutAsync starts laying out g inside rect on a new worker goroutine.
//
// It fails with an invalid-state error while another operation is in flight
// and with an argument error when rect shrunk by the margin is empty. The
// caller must receive and acknowledge every update of the returned operation.
func (e *Engine) LayOutAsync(ctx context.Context, g *graph.Graph, rect geom.Rect) (*Operation, error) {
	if e.Busy() {
		return nil, errors.InvalidState("LayOutAsync", "layout in progress")
	}
	if g == nil {
		return nil, errors.InvalidArgument("LayOutAsync", "graph must not be nil")
	}
	bounds := e.Usable(rect)
	if bounds.Empty() {
		return nil, errors.InvalidArgument("LayOutAsync",
			"rectangle %v leaves no room inside margin %v", rect, e.margin)
	}

	vertices := g.Vertices()
	if e.sorting {
		vertices = SortVertices(vertices)
	}

	ctx, cancel := context.WithCancel(ctx)
	op := &Operation{
		algorithm: e.algorithm.Name(),
		updates:   make(chan Update),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	job := &Job{
		g:        g,
		vertices: vertices,
		bounds:   bounds,
	}
	job.publish = func(ctx context.Context, n int) error {
		observability.Layout().OnLayoutIteration(ctx, op.algorithm, n)
		return op.publish(ctx, Update{Kind: KindIteration, Iteration: n})
	}
	e.current = op

	e.logger.Debug("layout started", "algorithm", op.algorithm, "vertices", len(vertices), "bounds", bounds)
	go e.run(ctx, e.algorithm, op, job)
	return op, nil
}

func (e *Engine) run(ctx context.Context, a Algorithm, op *Operation, job *Job) {
	defer close(op.done)
	defer op.cancel()

	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, op.algorithm, len(job.vertices))

	err := runAlgorithm(ctx, a, job)
	status := StatusSucceeded
	switch {
	case ctx.Err() != nil && (err == nil || errors.IsCancellation(err)):
		status, err = StatusCancelled, nil
	case err != nil:
		status = StatusFailed
		err = errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s layout failed", op.algorithm)
	}

	elapsed := time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, op.algorithm, status.String(), elapsed, err)
	if err != nil {
		e.logger.Warn("layout failed", "algorithm", op.algorithm, "err", err)
	} else {
		e.logger.Debug("layout finished", "algorithm", op.algorithm,
			"status", status, "iterations", job.iteration, "elapsed", elapsed)
	}

	_ = op.publish(context.WithoutCancel(ctx), Update{
		Kind:      KindCompleted,
		Iteration: job.iteration,
		Status:    status,
		Err:       err,
	})
}

func runAlgorithm(ctx context.Context, a Algorithm, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Run(ctx, job)
}

// LayOut runs a layout to completion on the calling goroutine's behalf,
// acknowledging every update. It returns the failure error, or ctx.Err()
// when the run was cancelled.
func (e *Engine) LayOut(ctx context.Context, g *graph.Graph, rect geom.Rect) error {
	op, err := e.LayOutAsync(ctx, g, rect)
	if err != nil {
		return err
	}
	for u := range op.Updates() {
		u.Ack()
		if u.Kind != KindCompleted {
			continue
		}
		switch u.Status {
		case StatusFailed:
			return u.Err
		case StatusCancelled:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return context.Canceled
		}
		return nil
	}
	return nil
}

// TransformLayout rescales the locations of every unlocked vertex from one
// rectangle to another, without running any algorithm. Both rectangles are
// shrunk by the margin first. When from equals to, no location is touched.
func (e *Engine) TransformLayout(g *graph.Graph, from, to geom.Rect) error {
	if e.Busy() {
		return errors.InvalidState("TransformLayout", "layout in progress")
	}
	if from == to {
		return nil
	}
	src, dst := e.Usable(from), e.Usable(to)
	if src.Empty() || dst.Empty() {
		return errors.InvalidArgument("TransformLayout",
			"rectangles %v and %v leave no room inside margin %v", from, to, e.margin)
	}
	Rescale(g, src, dst)
	return nil
}

// Rescale maps every unlocked vertex location proportionally from src to
// dst.
func Rescale(g *graph.Graph, src, dst geom.Rect) {
	sx, sy := dst.W/src.W, dst.H/src.H
	for _, v := range g.Vertices() {
		if graph.IsLocked(v.Meta) {
			continue
		}
		v.Location = geom.Pt(
			dst.X+(v.Location.X-src.X)*sx,
			dst.Y+(v.Location.Y-src.Y)*sy,
		)
	}
}
