// Package viewport maps logical graph coordinates to device pixels.
//
// A [Transform] composes three stages, applied in order:
//
//  1. Layout scale s: the logical canvas is the device size divided by s, so
//     layouts run on a smaller rectangle and the result is inflated by s.
//  2. Render zoom z about ZoomCenter c: p -> c + (p-c)*z.
//  3. Render pan: a final translation.
//
// Only the layout scale feeds the logical rectangle handed to layouts. Zoom
// and pan change presentation only.
//
// Transform is a plain value. Callers that need to change it temporarily,
// such as image export, keep a copy and assign it back, which restores every
// field bit for bit.
package viewport

import (
	"math"

	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/geom"
)

const (
	// MinScale and MaxScale bound both the layout scale and the zoom.
	MinScale = 1.0
	MaxScale = 10.0

	// WheelFactor is the zoom multiplier applied per wheel notch.
	WheelFactor = 1.10
)

// Transform is the layout scale, zoom and pan triple.
type Transform struct {
	LayoutScale float64
	Zoom        float64
	ZoomCenter  geom.Point // In layout-scaled device coordinates, before zoom
	Pan         geom.Point // Device pixels

	// Stretch is an extra per-axis factor applied with the layout scale. It is
	// zero (meaning 1) on live transforms and set by ForExport.
	Stretch geom.Point
}

// Default returns the identity transform.
func Default() Transform {
	return Transform{LayoutScale: 1, Zoom: 1}
}

func (t Transform) stretch() geom.Point {
	s := t.Stretch
	if s.X == 0 {
		s.X = 1
	}
	if s.Y == 0 {
		s.Y = 1
	}
	return s
}

func (t Transform) layoutScale() float64 {
	if t.LayoutScale == 0 {
		return 1
	}
	return t.LayoutScale
}

func (t Transform) zoom() float64 {
	if t.Zoom == 0 {
		return 1
	}
	return t.Zoom
}

// LogicalRect returns the rectangle layouts run on for a device of the given
// size: the device size divided by the layout scale. It ignores zoom and pan.
func (t Transform) LogicalRect(device geom.Size) geom.Rect {
	return geom.RectFromSize(device.Scale(1 / t.layoutScale()))
}

// Scales returns the combined per-axis factor from logical to device lengths.
func (t Transform) Scales() (sx, sy float64) {
	st := t.stretch()
	k := t.layoutScale() * t.zoom()
	return k * st.X, k * st.Y
}

// ToDeviceLength converts a logical length to device pixels using the smaller
// of the two axis factors.
func (t Transform) ToDeviceLength(l float64) float64 {
	sx, sy := t.Scales()
	return l * math.Min(sx, sy)
}

// ToDevice maps a logical point to device pixels.
func (t Transform) ToDevice(p geom.Point) geom.Point {
	st := t.stretch()
	s, z, c := t.layoutScale(), t.zoom(), t.ZoomCenter
	a := geom.Pt(p.X*s*st.X, p.Y*s*st.Y)
	return c.Add(a.Sub(c).Scale(z)).Add(t.Pan)
}

// ToLogical maps a device point back to logical coordinates. It is the
// inverse of ToDevice.
func (t Transform) ToLogical(p geom.Point) geom.Point {
	st := t.stretch()
	s, z, c := t.layoutScale(), t.zoom(), t.ZoomCenter
	a := p.Sub(t.Pan).Sub(c).Scale(1 / z).Add(c)
	return geom.Pt(a.X/(s*st.X), a.Y/(s*st.Y))
}

// ToDeviceRect maps a logical rectangle to device pixels.
func (t Transform) ToDeviceRect(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(
		t.ToDevice(geom.Pt(r.Left(), r.Top())),
		t.ToDevice(geom.Pt(r.Right(), r.Bottom())),
	)
}

// ToLogicalRect maps a device rectangle to logical coordinates.
func (t Transform) ToLogicalRect(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(
		t.ToLogical(geom.Pt(r.Left(), r.Top())),
		t.ToLogical(geom.Pt(r.Right(), r.Bottom())),
	)
}

// Visible returns the logical rectangle currently shown on a device of the
// given size.
func (t Transform) Visible(device geom.Size) geom.Rect {
	return t.ToLogicalRect(geom.RectFromSize(device))
}

// ValidScale reports whether f lies in [MinScale, MaxScale].
func ValidScale(f float64) bool {
	return f >= MinScale && f <= MaxScale
}

// ClampScale limits f to [MinScale, MaxScale].
func ClampScale(f float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, f))
}

// WithLayoutScale returns t with a new layout scale.
func (t Transform) WithLayoutScale(s float64) (Transform, error) {
	if !ValidScale(s) {
		return t, errors.InvalidArgument("SetLayoutScale",
			"layout scale %v outside [%v, %v]", s, MinScale, MaxScale)
	}
	t.LayoutScale = s
	return t, nil
}

// WithZoom returns t with a new zoom, keeping the current zoom center.
func (t Transform) WithZoom(z float64) (Transform, error) {
	if !ValidScale(z) {
		return t, errors.InvalidArgument("SetZoom",
			"zoom %v outside [%v, %v]", z, MinScale, MaxScale)
	}
	t.Zoom = z
	return t, nil
}

// WithPan returns t with a new pan. The result is not clamped.
func (t Transform) WithPan(p geom.Point) Transform {
	t.Pan = p
	return t
}

// WithZoomCenter moves the zoom center to c while adjusting pan so that no
// point changes its device position.
func (t Transform) WithZoomCenter(c geom.Point) Transform {
	t.Pan = t.Pan.Add(c.Sub(t.ZoomCenter).Scale(t.zoom() - 1))
	t.ZoomCenter = c
	return t
}

// ZoomAt multiplies the zoom by factor around the device point under the
// cursor. The point under the cursor stays in place unless clamping the
// zoom or the pan forces it to move.
func (t Transform) ZoomAt(device geom.Size, cursor geom.Point, factor float64) Transform {
	z := t.zoom()
	anchor := cursor.Sub(t.Pan).Sub(t.ZoomCenter).Scale(1 / z).Add(t.ZoomCenter)
	t = t.WithZoomCenter(anchor)
	t.Zoom = ClampScale(z * factor)
	return t.ClampPan(device)
}

// PanBounds returns the allowed pan range for a device of the given size.
// On each axis pan <= c*(z-1) and pan >= -(extent*s - c)*(z-1), where extent
// is the logical extent, so the drawing always covers the device.
func (t Transform) PanBounds(device geom.Size) (lo, hi geom.Point) {
	st := t.stretch()
	s, z, c := t.layoutScale(), t.zoom(), t.ZoomCenter
	ext := t.LogicalRect(device)
	hi = geom.Pt(c.X*(z-1), c.Y*(z-1))
	lo = geom.Pt(
		-(ext.W*s*st.X-c.X)*(z-1),
		-(ext.H*s*st.Y-c.Y)*(z-1),
	)
	return lo, hi
}

// ClampPan limits the pan to PanBounds.
func (t Transform) ClampPan(device geom.Size) Transform {
	lo, hi := t.PanBounds(device)
	t.Pan = geom.Pt(clamp(t.Pan.X, lo.X, hi.X), clamp(t.Pan.Y, lo.Y, hi.Y))
	return t
}

// ForExport returns a copy of t for rendering at rx by ry times the live
// device size. Pan, zoom center and stretch are scaled so the export shows
// the same view.
func (t Transform) ForExport(rx, ry float64) Transform {
	st := t.stretch()
	t.Pan = geom.Pt(t.Pan.X*rx, t.Pan.Y*ry)
	t.ZoomCenter = geom.Pt(t.ZoomCenter.X*rx, t.ZoomCenter.Y*ry)
	t.Stretch = geom.Pt(st.X*rx, st.Y*ry)
	return t
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, v))
}
