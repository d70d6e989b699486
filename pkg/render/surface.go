package render

import (
	"image"
	"image/color"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/viewport"
)

// Surface is a 2D drawing target in device pixels. A zero fill or stroke
// color (alpha 0) means the part is not drawn.
type Surface interface {
	Size() geom.Size
	Clear(bg color.NRGBA)
	Ellipse(center geom.Point, rx, ry float64, fill, stroke color.NRGBA, width float64)
	Polygon(pts []geom.Point, fill, stroke color.NRGBA, width float64)
	Line(from, to geom.Point, c color.NRGBA, width float64, dash []float64)
	// Text draws s with its anchor (ax, ay) in [0,1]x[0,1] of the text box
	// placed at the point.
	Text(at geom.Point, s string, c color.NRGBA, size, ax, ay float64)
	Image(r geom.Rect, img image.Image, alpha uint8)
}

// Primitive is one drawing instruction in logical coordinates.
type Primitive interface {
	Draw(s Surface, t viewport.Transform)
}

// Ellipse is an axis-aligned ellipse.
type Ellipse struct {
	Center       geom.Point
	RX, RY       float64
	Fill, Stroke color.NRGBA
	Width        float64
}

func (e Ellipse) Draw(s Surface, t viewport.Transform) {
	sx, sy := t.Scales()
	s.Ellipse(t.ToDevice(e.Center), e.RX*sx, e.RY*sy, e.Fill, e.Stroke, t.ToDeviceLength(e.Width))
}

// Polygon is a closed polygon.
type Polygon struct {
	Points       []geom.Point
	Fill, Stroke color.NRGBA
	Width        float64
	// Hairline draws the outline Width device pixels wide regardless of zoom.
	Hairline bool
}

func (p Polygon) Draw(s Surface, t viewport.Transform) {
	pts := make([]geom.Point, len(p.Points))
	for i, q := range p.Points {
		pts[i] = t.ToDevice(q)
	}
	w := p.Width
	if !p.Hairline {
		w = t.ToDeviceLength(w)
	}
	s.Polygon(pts, p.Fill, p.Stroke, w)
}

// Line is a straight segment.
type Line struct {
	From, To geom.Point
	Color    color.NRGBA
	Width    float64
	Dash     []float64 // Device pixels
	Hairline bool
}

func (l Line) Draw(s Surface, t viewport.Transform) {
	w := l.Width
	if !l.Hairline {
		w = t.ToDeviceLength(w)
	}
	s.Line(t.ToDevice(l.From), t.ToDevice(l.To), l.Color, w, l.Dash)
}

// Text is a single line of text.
type Text struct {
	At     geom.Point
	Text   string
	Color  color.NRGBA
	Size   float64
	AX, AY float64
}

func (x Text) Draw(s Surface, t viewport.Transform) {
	s.Text(t.ToDevice(x.At), x.Text, x.Color, t.ToDeviceLength(x.Size), x.AX, x.AY)
}

// Picture draws an image scaled into a rectangle.
type Picture struct {
	Rect  geom.Rect
	Image image.Image
	Alpha uint8
}

func (p Picture) Draw(s Surface, t viewport.Transform) {
	s.Image(t.ToDeviceRect(p.Rect), p.Image, p.Alpha)
}

// TextSize estimates the logical extent of s at the given font size. Sinks
// use a monospaced face whose advance is about 0.6 of the size.
func TextSize(s string, size float64) geom.Size {
	n := 0
	for range s {
		n++
	}
	return geom.Sz(float64(n)*size*0.6, size*1.2)
}
