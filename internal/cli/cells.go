package cli

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/render"
)

// cellAspect is the height of a terminal cell in device pixels; its width
// is one. Cells are about twice as tall as wide.
const cellAspect = 2

// cell is one character of a cellSurface.
type cell struct {
	r  rune
	fg color.NRGBA
}

// cellSurface is a render.Surface on a grid of terminal cells. Shapes are
// reduced to glyphs; translucent colors are blended with the background.
type cellSurface struct {
	cols, rows int
	cells      []cell
	bg         color.NRGBA
}

func newCellSurface(cols, rows int) *cellSurface {
	s := &cellSurface{cols: max(cols, 1), rows: max(rows, 1)}
	s.cells = make([]cell, s.cols*s.rows)
	s.Clear(color.NRGBA{A: 255})
	return s
}

// toDevice returns the device point at the center of a cell.
func toDevice(col, row int) geom.Point {
	return geom.Pt(float64(col)+0.5, (float64(row)+0.5)*cellAspect)
}

func (s *cellSurface) Size() geom.Size {
	return geom.Sz(float64(s.cols), float64(s.rows*cellAspect))
}

func (s *cellSurface) Clear(bg color.NRGBA) {
	s.bg = bg
	for i := range s.cells {
		s.cells[i] = cell{r: ' '}
	}
}

func (s *cellSurface) at(p geom.Point) (int, int, bool) {
	col := int(math.Floor(p.X))
	row := int(math.Floor(p.Y / cellAspect))
	return col, row, col >= 0 && col < s.cols && row >= 0 && row < s.rows
}

func (s *cellSurface) put(col, row int, r rune, c color.NRGBA) {
	if c.A == 0 || col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return
	}
	if c.A < 255 {
		c = render.Blend(s.bg, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}, float64(c.A)/255)
	}
	s.cells[row*s.cols+col] = cell{r: r, fg: c}
}

func (s *cellSurface) plot(p geom.Point, r rune, c color.NRGBA) {
	if col, row, ok := s.at(p); ok {
		s.put(col, row, r, c)
	}
}

func (s *cellSurface) Ellipse(center geom.Point, rx, ry float64, fill, stroke color.NRGBA, width float64) {
	if rx >= 1.5 && stroke.A > 0 {
		steps := int(2 * math.Pi * max(rx, ry))
		for i := range steps {
			a := 2 * math.Pi * float64(i) / float64(steps)
			s.plot(geom.Pt(center.X+rx*math.Cos(a), center.Y+ry*math.Sin(a)), '·', stroke)
		}
	}
	switch {
	case fill.A > 0:
		s.plot(center, '●', fill)
	case stroke.A > 0:
		s.plot(center, '○', stroke)
	}
}

func (s *cellSurface) Polygon(pts []geom.Point, fill, stroke color.NRGBA, width float64) {
	if len(pts) == 0 {
		return
	}
	if stroke.A > 0 && len(pts) > 1 {
		for i := range pts {
			s.Line(pts[i], pts[(i+1)%len(pts)], stroke, width, nil)
		}
	}
	// Faint fills such as the marquee stay see-through.
	if fill.A >= 128 {
		var c geom.Point
		for _, p := range pts {
			c = c.Add(p)
		}
		s.plot(c.Scale(1/float64(len(pts))), '■', fill)
	}
}

func (s *cellSurface) Line(from, to geom.Point, c color.NRGBA, width float64, dash []float64) {
	c0, r0, _ := s.at(from)
	c1, r1, _ := s.at(to)
	glyph := lineGlyph(to.X-from.X, (to.Y-from.Y)/cellAspect)

	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for i := 0; ; i++ {
		if len(dash) == 0 || i%2 == 0 {
			s.put(c0, r0, glyph, c)
		}
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// lineGlyph picks a box-drawing character for a direction in cell units.
func lineGlyph(dx, dy float64) rune {
	switch {
	case math.Abs(dy) <= math.Abs(dx)/2:
		return '─'
	case math.Abs(dx) <= math.Abs(dy)/2:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	}
	return '╱'
}

func (s *cellSurface) Text(at geom.Point, str string, c color.NRGBA, size, ax, ay float64) {
	runes := []rune(str)
	col, row, _ := s.at(geom.Pt(at.X-ax*float64(len(runes)), at.Y-ay*cellAspect+cellAspect/2))
	for i, r := range runes {
		s.put(col+i, row, r, c)
	}
}

func (s *cellSurface) Image(r geom.Rect, img image.Image, alpha uint8) {
	s.plot(r.Center(), '▣', color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: alpha})
}

// String renders the grid with one lipgloss style per run of equal color.
func (s *cellSurface) String() string {
	var b strings.Builder
	bg := lipgloss.Color(render.HexColor(opaque(s.bg)))
	for row := range s.rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := s.cells[row*s.cols : (row+1)*s.cols]
		for i := 0; i < len(line); {
			j := i
			var run strings.Builder
			for j < len(line) && line[j].fg == line[i].fg {
				run.WriteRune(line[j].r)
				j++
			}
			style := lipgloss.NewStyle().Background(bg)
			if line[i].fg.A > 0 {
				style = style.Foreground(lipgloss.Color(render.HexColor(line[i].fg)))
			}
			b.WriteString(style.Render(run.String()))
			i = j
		}
	}
	return b.String()
}

// glyphs returns the grid without colors, for tests.
func (s *cellSurface) glyphs() string {
	var b strings.Builder
	for row := range s.rows {
		for col := range s.cols {
			b.WriteRune(s.cells[row*s.cols+col].r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
