package layout

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/johnjohndoe/netmap/pkg/geom"
)

// Circle places vertices evenly on the largest circle that fits the bounds,
// starting at twelve o'clock and going clockwise in layout order.
type Circle struct{}

func (Circle) Name() string { return "circle" }

func (Circle) Run(ctx context.Context, job *Job) error {
	vs := job.Vertices()
	b := job.Bounds()
	c := b.Center()
	r := math.Min(b.W, b.H) / 2
	if len(vs) == 1 {
		job.Move(vs[0], c)
		return job.Yield(ctx)
	}
	step := 2 * math.Pi / float64(len(vs))
	for i, v := range vs {
		a := float64(i)*step - math.Pi/2
		job.Move(v, geom.Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a)))
	}
	return job.Yield(ctx)
}

// Spiral places vertices on an Archimedean spiral from the center outward.
type Spiral struct {
	Turns float64 // Zero means 3
}

func (Spiral) Name() string { return "spiral" }

func (s Spiral) Run(ctx context.Context, job *Job) error {
	vs := job.Vertices()
	b := job.Bounds()
	c := b.Center()
	r := math.Min(b.W, b.H) / 2
	turns := s.Turns
	if turns <= 0 {
		turns = 3
	}
	last := float64(max(len(vs)-1, 1))
	for i, v := range vs {
		t := float64(i) / last
		a := 2 * math.Pi * turns * t
		job.Move(v, geom.Pt(c.X+r*t*math.Cos(a), c.Y+r*t*math.Sin(a)))
	}
	return job.Yield(ctx)
}

// Sinusoid places vertices along one period of a sine wave spanning the
// bounds. Vertical runs the wave top to bottom instead of left to right.
type Sinusoid struct {
	Vertical bool
}

func (s Sinusoid) Name() string {
	if s.Vertical {
		return "sinusoid-vertical"
	}
	return "sinusoid-horizontal"
}

func (s Sinusoid) Run(ctx context.Context, job *Job) error {
	vs := job.Vertices()
	b := job.Bounds()
	c := b.Center()
	last := float64(max(len(vs)-1, 1))
	for i, v := range vs {
		t := float64(i) / last
		if len(vs) == 1 {
			t = 0.5
		}
		wave := math.Sin(2 * math.Pi * t)
		if s.Vertical {
			job.Move(v, geom.Pt(c.X+wave*b.W/2, b.Y+t*b.H))
		} else {
			job.Move(v, geom.Pt(b.X+t*b.W, c.Y-wave*b.H/2))
		}
	}
	return job.Yield(ctx)
}

// Grid places vertices row by row at the centers of equal cells. The column
// count follows the aspect ratio of the bounds.
type Grid struct{}

func (Grid) Name() string { return "grid" }

func (Grid) Run(ctx context.Context, job *Job) error {
	vs := job.Vertices()
	if len(vs) == 0 {
		return job.Yield(ctx)
	}
	b := job.Bounds()
	n := float64(len(vs))
	cols := max(1, int(math.Ceil(math.Sqrt(n*b.W/b.H))))
	rows := int(math.Ceil(n / float64(cols)))
	cw, ch := b.W/float64(cols), b.H/float64(rows)
	for i, v := range vs {
		col, row := i%cols, i/cols
		job.Move(v, geom.Pt(b.X+(float64(col)+0.5)*cw, b.Y+(float64(row)+0.5)*ch))
	}
	return job.Yield(ctx)
}

// Random places vertices uniformly inside the bounds.
type Random struct {
	Seed uint64
}

func (Random) Name() string { return "random" }

func (r Random) Run(ctx context.Context, job *Job) error {
	rng := rand.New(rand.NewPCG(r.Seed, ^r.Seed))
	b := job.Bounds()
	for _, v := range job.Vertices() {
		job.Move(v, geom.Pt(b.X+rng.Float64()*b.W, b.Y+rng.Float64()*b.H))
	}
	return job.Yield(ctx)
}

// Null leaves every location as it is. Hosts use it to draw a graph whose
// locations they computed themselves.
type Null struct{}

func (Null) Name() string { return "null" }

func (Null) Run(context.Context, *Job) error { return nil }
