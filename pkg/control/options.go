package control

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/johnjohndoe/netmap/pkg/layout"
	"github.com/johnjohndoe/netmap/pkg/render"
)

// Defaults for the pointer gestures.
const (
	DefaultDragThreshold     = 4.0 // Device pixels before a press becomes a drag
	DefaultEdgeTolerance     = 3.0 // Device pixels around an edge that still hit it
	DefaultDoubleClickWindow = 500 * time.Millisecond
)

// Option configures a Control.
type Option func(*Control)

// WithMouseSelectionMode sets what a click selects. The default is
// SelectVertexAndIncidentEdges.
func WithMouseSelectionMode(m MouseSelectionMode) Option {
	return func(c *Control) { c.mode = m }
}

// WithVertexDrag enables or disables dragging selected vertices.
func WithVertexDrag(enabled bool) Option {
	return func(c *Control) { c.allowDrag = enabled }
}

// WithPanModifier sets the modifier that turns a press into a pan. The
// default is ModAlt. The middle button always pans.
func WithPanModifier(m Modifiers) Option {
	return func(c *Control) { c.panMod = m }
}

// WithDragThreshold sets how far, in device pixels, the pointer must move
// before a press becomes a drag.
func WithDragThreshold(px float64) Option {
	return func(c *Control) {
		if px >= 0 {
			c.threshold = px
		}
	}
}

// WithHoverTiming sets the tooltip dwell and timeout. See hover.New.
func WithHoverTiming(dwell, timeout time.Duration) Option {
	return func(c *Control) { c.dwell, c.timeout = dwell, timeout }
}

// WithStyle sets the drawing defaults.
func WithStyle(s render.Style) Option {
	return func(c *Control) { c.style = s }
}

// WithAlgorithm sets the layout algorithm. The default is
// layout.FruchtermanReingold.
func WithAlgorithm(a layout.Algorithm) Option {
	return func(c *Control) { c.algorithm = a }
}

// WithMargin sets the layout margin in logical units.
func WithMargin(m float64) Option {
	return func(c *Control) { c.margin = m }
}

// WithSorting enables layout-order sorting before each layout.
func WithSorting(enabled bool) Option {
	return func(c *Control) { c.sorting = enabled }
}

// WithListener sets the notification receiver.
func WithListener(l Listener) Option {
	return func(c *Control) {
		if l != nil {
			c.listener = l
		}
	}
}

// WithLogger sets the logger for state transitions and layout runs.
func WithLogger(l *log.Logger) Option {
	return func(c *Control) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now for pointer events without a timestamp and
// for Tick.
func WithClock(now func() time.Time) Option {
	return func(c *Control) {
		if now != nil {
			c.now = now
		}
	}
}
