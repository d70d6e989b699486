// Package layout computes vertex locations asynchronously.
//
// An [Algorithm] is a narrow strategy: it reads the [Job], writes locations
// through [Job.Move] and publishes progress with [Job.Yield]. The [Engine]
// runs one algorithm at a time on a worker goroutine and adds what every
// algorithm shares: the margin inset, optional layout-order sorting, locked
// vertices, cancellation, and failure recovery.
//
// # Handshake
//
// The worker and the foreground meet on an unbuffered channel. Each
// [Update] blocks the worker until the foreground calls [Update.Ack], so the
// foreground may read vertex locations while it holds an unacknowledged
// update:
//
//	op, err := engine.LayOutAsync(ctx, g, rect)
//	if err != nil {
//	    return err
//	}
//	for u := range op.Updates() {
//	    redraw(g) // worker is parked
//	    u.Ack()
//	    if u.Kind == layout.KindCompleted {
//	        break
//	    }
//	}
//
// The last update is always [KindCompleted], also after [Engine.Cancel] or
// when the algorithm returns an error or panics. Cancellation is reported as
// [StatusCancelled], not as an error. Failures carry a LAYOUT_FAILED error.
//
// # Algorithms
//
//   - [FruchtermanReingold]: force-directed, one update per iteration
//   - [Circle], [Spiral], [Sinusoid], [Grid], [Random]: geometric placements
//   - [Layered]: ranked placement by the Graphviz dot engine
//   - [Null]: keeps the current locations
//
// [ByName] resolves an algorithm from configuration.
package layout
