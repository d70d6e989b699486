package sink

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/render"
)

// SVG is a render.Surface that records an SVG document.
type SVG struct {
	size geom.Size
	body bytes.Buffer
}

// NewSVG creates an empty w by h document.
func NewSVG(w, h float64) *SVG {
	return &SVG{size: geom.Sz(w, h)}
}

func (s *SVG) Size() geom.Size { return s.size }

// Clear discards everything drawn so far and paints the background.
func (s *SVG) Clear(bg color.NRGBA) {
	s.body.Reset()
	if bg.A == 0 {
		return
	}
	fmt.Fprintf(&s.body, `  <rect x="0" y="0" width="%.1f" height="%.1f"%s/>`+"\n",
		s.size.W, s.size.H, paint("fill", bg))
}

func (s *SVG) Ellipse(c geom.Point, rx, ry float64, fill, stroke color.NRGBA, width float64) {
	fmt.Fprintf(&s.body, `  <ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f"%s%s/>`+"\n",
		c.X, c.Y, rx, ry, paint("fill", fill), strokeAttrs(stroke, width, nil))
}

func (s *SVG) Polygon(pts []geom.Point, fill, stroke color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	fmt.Fprintf(&s.body, `  <polygon points="%s"%s%s/>`+"\n",
		points(pts), paint("fill", fill), strokeAttrs(stroke, width, nil))
}

func (s *SVG) Line(from, to geom.Point, c color.NRGBA, width float64, dash []float64) {
	if c.A == 0 || width <= 0 {
		return
	}
	fmt.Fprintf(&s.body, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"%s/>`+"\n",
		from.X, from.Y, to.X, to.Y, strokeAttrs(c, width, dash))
}

func (s *SVG) Text(at geom.Point, str string, c color.NRGBA, size, ax, ay float64) {
	if str == "" || c.A == 0 || size <= 0 {
		return
	}
	var esc bytes.Buffer
	xml.EscapeText(&esc, []byte(str))
	fmt.Fprintf(&s.body, `  <text x="%.2f" y="%.2f" font-family="monospace" font-size="%.2f" text-anchor="%s" dominant-baseline="%s"%s>%s</text>`+"\n",
		at.X, at.Y, size, textAnchor(ax), baseline(ay), paint("fill", c), esc.String())
}

func (s *SVG) Image(r geom.Rect, img image.Image, alpha uint8) {
	if img == nil || alpha == 0 || r.Empty() {
		return
	}
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return
	}
	opacity := ""
	if alpha < 255 {
		opacity = fmt.Sprintf(` opacity="%.3f"`, float64(alpha)/255)
	}
	fmt.Fprintf(&s.body, `  <image x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="none"%s href="data:image/png;base64,%s"/>`+"\n",
		r.X, r.Y, r.W, r.H, opacity, base64.StdEncoding.EncodeToString(raw.Bytes()))
}

// Bytes returns the complete document.
func (s *SVG) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.size.W, s.size.H, s.size.W, s.size.H)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func paint(attr string, c color.NRGBA) string {
	if c.A == 0 {
		return fmt.Sprintf(` %s="none"`, attr)
	}
	hex := render.HexColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	if c.A == 255 {
		return fmt.Sprintf(` %s="%s"`, attr, hex)
	}
	return fmt.Sprintf(` %s="%s" %s-opacity="%.3f"`, attr, hex, attr, float64(c.A)/255)
}

func strokeAttrs(c color.NRGBA, width float64, dash []float64) string {
	if c.A == 0 || width <= 0 {
		return ""
	}
	out := paint("stroke", c) + fmt.Sprintf(` stroke-width="%.2f"`, width)
	if len(dash) > 0 {
		parts := make([]string, len(dash))
		for i, d := range dash {
			parts[i] = fmt.Sprintf("%.1f", d)
		}
		out += fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, " "))
	}
	return out
}

func points(pts []geom.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func textAnchor(ax float64) string {
	switch {
	case ax < 0.25:
		return "start"
	case ax > 0.75:
		return "end"
	}
	return "middle"
}

func baseline(ay float64) string {
	switch {
	case ay < 0.25:
		return "hanging"
	case ay > 0.75:
		return "text-after-edge"
	}
	return "central"
}
