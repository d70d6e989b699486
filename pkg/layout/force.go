package layout

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
)

// FruchtermanReingold is an iterative force-directed layout. Every vertex
// repels every other vertex and edges pull their endpoints together; the
// maximum step shrinks linearly to zero over the run.
//
// Repulsion is the quadratic part and is computed in parallel chunks.
// Locked vertices exert forces but never move.
type FruchtermanReingold struct {
	Iterations  int     // Number of iterations; each one is published
	Temperature float64 // Initial maximum step as a fraction of the bounds width
	Seed        uint64  // Seed for the initial placement of unplaced vertices
	Workers     int     // Repulsion goroutines; zero means GOMAXPROCS
}

// NewFruchtermanReingold returns the algorithm with default settings.
func NewFruchtermanReingold() *FruchtermanReingold {
	return &FruchtermanReingold{Iterations: 100, Temperature: 0.1, Seed: 1}
}

func (*FruchtermanReingold) Name() string { return "fruchterman-reingold" }

// Run implements Algorithm.
func (f *FruchtermanReingold) Run(ctx context.Context, job *Job) error {
	vs := job.Vertices()
	n := len(vs)
	if n == 0 {
		return nil
	}
	b := job.Bounds()
	iterations := max(f.Iterations, 1)
	k := math.Sqrt(b.W * b.H / float64(n))
	t0 := f.Temperature
	if t0 <= 0 {
		t0 = 0.1
	}
	t0 *= b.W

	rng := rand.New(rand.NewPCG(f.Seed, f.Seed^0x9e3779b97f4a7c15))
	placeUnplaced(job, rng)

	index := make(map[*graph.Vertex]int, n)
	pos := make([]r2.Vec, n)
	locked := make([]bool, n)
	for i, v := range vs {
		index[v] = i
		pos[i] = v.Location.Vec()
		locked[i] = job.Locked(v)
	}
	disp := make([]r2.Vec, n)

	for it := 0; it < iterations; it++ {
		if err := f.repulse(ctx, pos, disp, k); err != nil {
			return err
		}
		for _, e := range job.Graph().Edges() {
			if e.IsSelfLoop() {
				continue
			}
			u, ok1 := index[e.From()]
			v, ok2 := index[e.To()]
			if !ok1 || !ok2 {
				continue
			}
			delta := r2.Sub(pos[u], pos[v])
			d := math.Max(r2.Norm(delta), 0.01)
			force := r2.Scale(d/k, delta)
			disp[u] = r2.Sub(disp[u], force)
			disp[v] = r2.Add(disp[v], force)
		}

		temp := t0 * (1 - float64(it)/float64(iterations))
		for i, v := range vs {
			if locked[i] {
				continue
			}
			d := r2.Norm(disp[i])
			if d > 0 {
				pos[i] = r2.Add(pos[i], r2.Scale(math.Min(d, temp)/d, disp[i]))
			}
			pos[i] = b.Clamp(geom.FromVec(pos[i])).Vec()
			job.Move(v, geom.FromVec(pos[i]))
		}

		if err := job.Yield(ctx); err != nil {
			return err
		}
	}
	return nil
}

// repulse resets disp and accumulates the repulsive displacement of every
// vertex.
func (f *FruchtermanReingold) repulse(ctx context.Context, pos, disp []r2.Vec, k float64) error {
	n := len(pos)
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (n + workers - 1) / workers
	k2 := k * k

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				var sum r2.Vec
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					delta := r2.Sub(pos[i], pos[j])
					d := r2.Norm(delta)
					if d < 0.01 {
						// Coincident vertices are pushed apart along a fixed
						// direction derived from their indices.
						a := float64(i*31+j*17) * 0.618
						delta, d = r2.Vec{X: math.Cos(a), Y: math.Sin(a)}, 0.01
					} else {
						delta = r2.Scale(1/d, delta)
					}
					sum = r2.Add(sum, r2.Scale(k2/d, delta))
				}
				disp[i] = sum
			}
			return nil
		})
	}
	return g.Wait()
}

// placeUnplaced gives a random location inside the bounds to every unlocked
// vertex that lies outside them or shares its location with an earlier
// vertex.
func placeUnplaced(job *Job, rng *rand.Rand) {
	b := job.Bounds()
	seen := make(map[geom.Point]bool, len(job.Vertices()))
	for _, v := range job.Vertices() {
		if job.Locked(v) {
			seen[v.Location] = true
			continue
		}
		if b.Contains(v.Location) && !seen[v.Location] {
			seen[v.Location] = true
			continue
		}
		p := geom.Pt(b.X+rng.Float64()*b.W, b.Y+rng.Float64()*b.H)
		job.Move(v, p)
		seen[p] = true
	}
}
