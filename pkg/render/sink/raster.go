package sink

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/fogleman/gg"

	"github.com/johnjohndoe/netmap/pkg/geom"
)

// faceHeight is the pixel height of gg's built-in font face. Text sizes
// are emulated by scaling around the anchor.
const faceHeight = 13

// Raster is a render.Surface backed by an in-memory RGBA bitmap.
type Raster struct {
	dc *gg.Context
}

// NewRaster creates a transparent w by h bitmap.
func NewRaster(w, h int) *Raster {
	return &Raster{dc: gg.NewContext(w, h)}
}

func (r *Raster) Size() geom.Size {
	return geom.Sz(float64(r.dc.Width()), float64(r.dc.Height()))
}

func (r *Raster) Clear(bg color.NRGBA) {
	r.dc.SetColor(bg)
	r.dc.Clear()
}

func (r *Raster) Ellipse(c geom.Point, rx, ry float64, fill, stroke color.NRGBA, width float64) {
	r.dc.DrawEllipse(c.X, c.Y, rx, ry)
	r.paint(fill, stroke, width)
}

func (r *Raster) Polygon(pts []geom.Point, fill, stroke color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	r.dc.NewSubPath()
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()
	r.paint(fill, stroke, width)
}

func (r *Raster) Line(from, to geom.Point, c color.NRGBA, width float64, dash []float64) {
	if c.A == 0 || width <= 0 {
		return
	}
	r.dc.SetDash(dash...)
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
	r.dc.SetDash()
}

func (r *Raster) Text(at geom.Point, s string, c color.NRGBA, size, ax, ay float64) {
	if s == "" || c.A == 0 || size <= 0 {
		return
	}
	k := size / faceHeight
	r.dc.Push()
	r.dc.Translate(at.X, at.Y)
	r.dc.Scale(k, k)
	r.dc.SetColor(c)
	// gg anchors ay=0 at the baseline and ay=1 at the top.
	r.dc.DrawStringAnchored(s, 0, 0, ax, 1-ay)
	r.dc.Pop()
}

func (r *Raster) Image(rect geom.Rect, img image.Image, alpha uint8) {
	if img == nil || alpha == 0 || rect.Empty() {
		return
	}
	b := img.Bounds()
	if b.Empty() {
		return
	}
	if alpha < 255 {
		faded := image.NewNRGBA(b)
		draw.DrawMask(faded, b, img, b.Min, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
		img = faded
	}
	r.dc.Push()
	r.dc.Translate(rect.X, rect.Y)
	r.dc.Scale(rect.W/float64(b.Dx()), rect.H/float64(b.Dy()))
	r.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	r.dc.Pop()
}

// Bitmap returns the image drawn so far.
func (r *Raster) Bitmap() image.Image { return r.dc.Image() }

// EncodePNG writes the bitmap as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) paint(fill, stroke color.NRGBA, width float64) {
	if fill.A > 0 {
		r.dc.SetColor(fill)
		r.dc.FillPreserve()
	}
	if stroke.A > 0 && width > 0 {
		r.dc.SetColor(stroke)
		r.dc.SetLineWidth(width)
		r.dc.StrokePreserve()
	}
	r.dc.ClearPath()
}
