// Package geom provides the small set of 2D value types shared by the layout,
// viewport and rendering packages.
//
// All types are plain values. Rectangles are stored as origin plus size, with
// the origin at the top-left corner and Y growing downward, which matches the
// device coordinate system of every rendering surface.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a location or a displacement in 2D space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Vec converts p to a gonum vector.
func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// FromVec converts a gonum vector to a Point.
func FromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return FromVec(r2.Add(p.Vec(), q.Vec())) }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return FromVec(r2.Sub(p.Vec(), q.Vec())) }

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point { return FromVec(r2.Scale(f, p.Vec())) }

// Mul returns the element-wise product of p and q.
func (p Point) Mul(q Point) Point { return Point{X: p.X * q.X, Y: p.Y * q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return r2.Norm(r2.Sub(p.Vec(), q.Vec())) }

// Size is a width and height pair.
type Size struct {
	W, H float64
}

// Sz is shorthand for Size{W: w, H: h}.
func Sz(w, h float64) Size { return Size{W: w, H: h} }

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Scale multiplies both dimensions by f.
func (s Size) Scale(f float64) Size { return Size{W: s.W * f, H: s.H * f} }

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromSize returns the rectangle with origin (0,0) and the given size.
func RectFromSize(s Size) Rect { return Rect{W: s.W, H: s.H} }

// RectFromPoints returns the normalized rectangle spanning a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// Left returns the minimum X coordinate.
func (r Rect) Left() float64 { return r.X }

// Top returns the minimum Y coordinate.
func (r Rect) Top() float64 { return r.Y }

// Right returns the maximum X coordinate.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the maximum Y coordinate.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Inset shrinks the rectangle by m on all four sides. A negative m grows it.
// The result may be empty when m exceeds half of either dimension.
func (r Rect) Inset(m float64) Rect {
	return Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether r and s overlap, touching edges included.
func (r Rect) Intersects(s Rect) bool {
	return r.X <= s.Right() && s.X <= r.Right() && r.Y <= s.Bottom() && s.Y <= r.Bottom()
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	x0, y0 := math.Min(r.X, s.X), math.Min(r.Y, s.Y)
	x1, y1 := math.Max(r.Right(), s.Right()), math.Max(r.Bottom(), s.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Clamp returns p moved to the nearest point inside r.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: math.Max(r.X, math.Min(r.Right(), p.X)),
		Y: math.Max(r.Y, math.Min(r.Bottom(), p.Y)),
	}
}

// Box converts r to a gonum box.
func (r Rect) Box() r2.Box {
	return r2.Box{Min: r2.Vec{X: r.X, Y: r.Y}, Max: r2.Vec{X: r.Right(), Y: r.Bottom()}}
}

// SquareAround returns the square of half-width h centred on p.
func SquareAround(p Point, h float64) Rect {
	return Rect{X: p.X - h, Y: p.Y - h, W: 2 * h, H: 2 * h}
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	ab := r2.Sub(b.Vec(), a.Vec())
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := r2.Dot(r2.Sub(p.Vec(), a.Vec()), ab) / l2
	t = math.Max(0, math.Min(1, t))
	proj := r2.Add(a.Vec(), r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p.Vec(), proj))
}
