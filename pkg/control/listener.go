package control

import (
	"time"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/layout"
)

// PointerEvent is one pointer input in device pixels.
type PointerEvent struct {
	Pos    geom.Point
	Button Button
	Mods   Modifiers
	Time   time.Time // Zero means now
}

// Listener receives the notifications of a Control. Every method is called
// on the goroutine that called into the Control. Embed NoopListener to
// implement only some of them.
type Listener interface {
	SelectionChanged()

	// GraphMouseDown and GraphMouseUp report pointer presses; v is the
	// vertex under the pointer or nil.
	GraphMouseDown(v *graph.Vertex, ev PointerEvent)
	GraphMouseUp(v *graph.Vertex, ev PointerEvent)
	VertexClick(v *graph.Vertex, ev PointerEvent)
	VertexDoubleClick(v *graph.Vertex, ev PointerEvent)

	// PreviewVertexToolTip is called before a tooltip is shown. The
	// listener may replace *tip; an empty tip is still reported.
	PreviewVertexToolTip(v *graph.Vertex, tip *string)
	VertexMouseHover(v *graph.Vertex, tip string)
	VertexMouseLeave(v *graph.Vertex)

	GraphZoomChanged(zoom float64)
	GraphTranslationChanged(pan geom.Point)

	// DrawingGraph reports the start of a draw, with or without a layout.
	DrawingGraph(layOut bool)
	LayoutIterationCompleted(iteration int)
	// GraphDrawn reports the end of a draw. err is set when the layout
	// failed.
	GraphDrawn(status layout.Status, err error)

	VerticesMoved(vs []*graph.Vertex)
}

// NoopListener ignores every notification.
type NoopListener struct{}

func (NoopListener) SelectionChanged()                             {}
func (NoopListener) GraphMouseDown(*graph.Vertex, PointerEvent)    {}
func (NoopListener) GraphMouseUp(*graph.Vertex, PointerEvent)      {}
func (NoopListener) VertexClick(*graph.Vertex, PointerEvent)       {}
func (NoopListener) VertexDoubleClick(*graph.Vertex, PointerEvent) {}
func (NoopListener) PreviewVertexToolTip(*graph.Vertex, *string)   {}
func (NoopListener) VertexMouseHover(*graph.Vertex, string)        {}
func (NoopListener) VertexMouseLeave(*graph.Vertex)                {}
func (NoopListener) GraphZoomChanged(float64)                      {}
func (NoopListener) GraphTranslationChanged(geom.Point)            {}
func (NoopListener) DrawingGraph(bool)                             {}
func (NoopListener) LayoutIterationCompleted(int)                  {}
func (NoopListener) GraphDrawn(layout.Status, error)               {}
func (NoopListener) VerticesMoved([]*graph.Vertex)                 {}
