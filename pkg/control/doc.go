// Package control ties the graph, the layout engine and the drawer into an
// interactive view.
//
// A [Control] owns the device size and the viewport.Transform, runs layouts
// through the [layout.Engine] handshake, keeps the selection in sync with the
// selected metadata key, and turns pointer events into gestures:
//
//   - a press on a vertex selects it; dragging moves the selection on release
//   - a press on empty space starts a marquee (Ctrl adds, Shift subtracts)
//   - the middle button or the pan modifier pans, the wheel zooms
//   - Escape drops the gesture without committing it
//
// Every method runs on one foreground goroutine. While [Control.IsDrawing]
// is true, methods that touch vertex state fail with an INVALID_STATE error
// and leave everything as it was. Layouts are driven by [Control.Pump] from
// an event loop or by [Control.Wait]:
//
//	c, _ := control.New(geom.Sz(800, 600), control.WithListener(l))
//	_ = c.SetGraph(g)
//	if err := c.DrawGraph(ctx, true); err != nil {
//	    return err
//	}
//	if err := c.Wait(ctx); err != nil {
//	    return err
//	}
//	png, err := c.ExportImage(1600, 1200)
//
// Hosts observe the control through a [Listener]; embed [NoopListener] to
// implement only the callbacks of interest.
package control
