package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"time"

	"github.com/charmbracelet/log"

	"github.com/johnjohndoe/netmap/pkg/cache"
	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

// Runner runs the pipeline with caching. It holds no per-run state, so one
// Runner may serve several goroutines with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means the DefaultKeyer and a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute builds the scene, lays it out and exports every requested format.
func (r *Runner) Execute(ctx context.Context, sc *scene.Scene, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	g, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	c, err := r.NewControl(opts)
	if err != nil {
		return nil, err
	}
	if err := c.SetGraph(g); err != nil {
		return nil, err
	}

	result := &Result{
		Graph:     g,
		Control:   c,
		SceneHash: sc.Hash(),
		Stats: Stats{
			VertexCount: g.VertexCount(),
			EdgeCount:   g.EdgeCount(),
		},
	}

	layoutStart := time.Now()
	positions, hit, iterations, err := r.LayOutWithCacheInfo(ctx, c, result.SceneHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = positions
	result.CacheInfo.LayoutHit = hit
	result.Stats.Iterations = iterations
	result.Stats.LayoutTime = time.Since(layoutStart)
	r.Logger.Info("computed layout",
		"vertices", g.VertexCount(),
		"algorithm", opts.Algorithm,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, c, positions, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// NewControl creates a Control sized and configured from opts, with the
// layout scale already applied.
func (r *Runner) NewControl(opts Options) (*control.Control, error) {
	opts.SetDefaults()
	r.applyLogger(&opts)
	alg, err := opts.NewAlgorithm()
	if err != nil {
		return nil, err
	}
	copts := append([]control.Option{
		control.WithAlgorithm(alg),
		control.WithMargin(opts.Margin),
		control.WithSorting(opts.Sorting),
		control.WithLogger(opts.Logger),
	}, opts.Control...)
	c, err := control.New(geom.Sz(float64(opts.Width), float64(opts.Height)), copts...)
	if err != nil {
		return nil, err
	}
	if err := c.SetLayoutScale(opts.LayoutScale); err != nil {
		return nil, err
	}
	return c, nil
}

// iterationCounter counts layout iterations on the way to the control's own
// listener.
type iterationCounter struct {
	control.Listener
	n  int
	fn func(int)
}

func (l *iterationCounter) LayoutIterationCompleted(n int) {
	l.n = n
	if l.fn != nil {
		l.fn(n)
	}
	l.Listener.LayoutIterationCompleted(n)
}

// LayOutWithCacheInfo places the vertices of the control's graph, from the
// cache when possible. It reports the positions, whether they came from the
// cache, and the number of iterations run.
func (r *Runner) LayOutWithCacheInfo(ctx context.Context, c *control.Control, sceneHash string, opts Options) (scene.Positions, bool, int, error) {
	opts.SetDefaults()
	key := r.Keyer.LayoutKey(sceneHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var p scene.Positions
			if err := p.UnmarshalJSON(data); err == nil {
				p.Apply(c.Graph())
				if err := c.DrawGraph(ctx, false); err != nil {
					return nil, false, 0, err
				}
				return p, true, 0, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", key)
		}
	}

	prev := c.Listener()
	counter := &iterationCounter{Listener: prev, fn: opts.OnIteration}
	c.SetListener(counter)
	defer c.SetListener(prev)
	if err := c.DrawGraph(ctx, true); err != nil {
		return nil, false, 0, err
	}
	if err := c.Wait(ctx); err != nil {
		return nil, false, counter.n, err
	}
	// A cancelled run still settles, so Wait alone can report success.
	if err := ctx.Err(); err != nil {
		return nil, false, counter.n, err
	}

	p := scene.Snapshot(c.Graph())
	if data, err := p.MarshalJSON(); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("caching layout failed", "err", err)
		}
	}
	return p, false, counter.n, nil
}

// RenderWithCacheInfo exports every format in opts.Formats from the current
// view. It reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *control.Control, positions scene.Positions, opts Options) (map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	if err := c.SetZoom(opts.Zoom); err != nil {
		return nil, false, err
	}
	c.SetPan(opts.Pan)

	posHash := positions.Hash()
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(posHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
			continue
		}
		allCached = false

		data, err := Export(c, positions, format, opts.ExportWidth, opts.ExportHeight)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if format != FormatJSON {
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		}
	}
	return artifacts, allCached, nil
}

// Export renders one format from the control's current view.
func Export(c *control.Control, positions scene.Positions, format string, w, h int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		img, err := c.ExportImage(w, h)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case FormatSVG:
		return c.ExportSVG(w, h)
	case FormatJSON:
		if err := positions.WriteJSON(&buf); err != nil {
			return nil, err
		}
	default:
		return nil, ValidateFormat(format)
	}
	return buf.Bytes(), nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
