package layout

import (
	"context"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
)

// Algorithm computes vertex locations for one layout run.
//
// Run is called on the engine's worker goroutine. It writes locations only
// through [Job.Move] and calls [Job.Yield] to publish intermediate results;
// between a Yield and its return the foreground may read the graph. Run
// should return ctx.Err() promptly once ctx is cancelled.
type Algorithm interface {
	Name() string
	Run(ctx context.Context, job *Job) error
}

// Job is the worker-side view of a layout run.
type Job struct {
	g         *graph.Graph
	vertices  []*graph.Vertex
	bounds    geom.Rect
	iteration int
	publish   func(ctx context.Context, iteration int) error
}

// NewJob creates a job that publishes nothing. It is used by synchronous
// callers and tests that drive an Algorithm directly.
func NewJob(g *graph.Graph, bounds geom.Rect) *Job {
	return &Job{g: g, vertices: g.Vertices(), bounds: bounds}
}

// Graph returns the graph being laid out.
func (j *Job) Graph() *graph.Graph { return j.g }

// Vertices returns the vertices in layout order. Sorting, when enabled, has
// already been applied.
func (j *Job) Vertices() []*graph.Vertex { return j.vertices }

// Bounds returns the usable area, already shrunk by the engine margin.
func (j *Job) Bounds() geom.Rect { return j.bounds }

// Iteration returns the number of completed Yield calls.
func (j *Job) Iteration() int { return j.iteration }

// Locked reports whether v must keep its location.
func (j *Job) Locked(v *graph.Vertex) bool { return graph.IsLocked(v.Meta) }

// Move sets the location of v. Locked vertices are left unchanged.
func (j *Job) Move(v *graph.Vertex, p geom.Point) {
	if j.Locked(v) {
		return
	}
	v.Location = p
}

// Yield publishes the current locations and blocks until the foreground has
// acknowledged them. It returns ctx.Err() without publishing once ctx is
// done.
func (j *Job) Yield(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.iteration++
	if j.publish == nil {
		return nil
	}
	return j.publish(ctx, j.iteration)
}
