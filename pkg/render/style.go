package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/graph"
)

// Style holds the defaults used for elements without metadata overrides.
// Lengths are logical units and scale with the layout scale and zoom.
type Style struct {
	VertexShape  graph.Shape
	VertexColor  color.NRGBA
	VertexRadius float64

	EdgeWidth float64
	EdgeColor color.NRGBA

	SelectedVertexColor color.NRGBA
	SelectedEdgeColor   color.NRGBA

	// FilteredAlpha is the alpha, 0 to 255, of elements whose visibility is
	// VisibilityFiltered.
	FilteredAlpha uint8

	LabelColor color.NRGBA
	FontSize   float64

	Background   color.NRGBA
	ArrowSize    float64 // Length of directed-edge arrowheads
	MarqueeColor color.NRGBA
}

// DefaultStyle returns the built-in appearance.
func DefaultStyle() Style {
	return Style{
		VertexShape:         graph.ShapeDisk,
		VertexColor:         MustParseColor("#000000"),
		VertexRadius:        3,
		EdgeWidth:           1,
		EdgeColor:           MustParseColor("#808080"),
		SelectedVertexColor: MustParseColor("#ff0000"),
		SelectedEdgeColor:   MustParseColor("#ff0000"),
		FilteredAlpha:       10,
		LabelColor:          MustParseColor("#000000"),
		FontSize:            10,
		Background:          MustParseColor("#ffffff"),
		ArrowSize:           6,
		MarqueeColor:        MustParseColor("#3080f0"),
	}
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	var alpha uint8 = 255
	if len(s) == 9 && s[0] == '#' {
		a, err := colorful.Hex("#" + s[7:9] + "0000")
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "color %q", s)
		}
		alpha, _, _ = a.RGB255()
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "color %q", s)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustParseColor is like ParseColor but panics on malformed input. It is
// meant for constants.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// HexColor formats c as "#rrggbb", or "#rrggbbaa" when it is translucent.
func HexColor(c color.NRGBA) string {
	h := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
	if c.A == 255 {
		return h
	}
	const digits = "0123456789abcdef"
	return h + string([]byte{digits[c.A>>4], digits[c.A&0xf]})
}

// Blend mixes a toward b by t in [0, 1]. Alpha is interpolated linearly.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(alpha + 0.5)}
}

// WithAlpha scales the alpha of c by a/255.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = uint8((uint16(c.A)*uint16(a) + 127) / 255)
	return c
}
