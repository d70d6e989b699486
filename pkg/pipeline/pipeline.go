// Package pipeline runs the load → layout → export sequence shared by the
// command-line tools and the preview server.
//
// The layout stage drives a control.Control through its asynchronous
// handshake and caches the resulting vertex positions; the export stage
// renders the requested formats from those positions and caches the bytes:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, sc, pipeline.Options{
//	    Algorithm: "fruchterman-reingold",
//	    Formats:   []string{pipeline.FormatPNG},
//	})
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/johnjohndoe/netmap/pkg/cache"
	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/layout"
	"github.com/johnjohndoe/netmap/pkg/scene"
	"github.com/johnjohndoe/netmap/pkg/viewport"
)

const (
	DefaultWidth     = 800
	DefaultHeight    = 600
	DefaultAlgorithm = "fruchterman-reingold"
	DefaultSeed      = uint64(42)
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json" // Vertex positions
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: png, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	// Layout
	Width       int     `json:"width,omitempty"`  // Device pixels of the view
	Height      int     `json:"height,omitempty"` // Device pixels of the view
	Algorithm   string  `json:"algorithm,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`
	Iterations  int     `json:"iterations,omitempty"` // Force-directed only
	LayoutScale float64 `json:"layout_scale,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
	Sorting     bool    `json:"sorting,omitempty"`
	Refresh     bool    `json:"refresh,omitempty"` // Ignore cached positions

	// Export
	Formats      []string   `json:"formats,omitempty"`
	ExportWidth  int        `json:"export_width,omitempty"`  // Defaults to Width
	ExportHeight int        `json:"export_height,omitempty"` // Defaults to Height
	Zoom         float64    `json:"zoom,omitempty"`
	Pan          geom.Point `json:"pan,omitempty"`
	Style        string     `json:"style,omitempty"` // Identifies the style in Control for artifact keys

	// Runtime
	Logger      *log.Logger      `json:"-"`
	Control     []control.Option `json:"-"` // Style, hover timing and the like
	OnIteration func(n int)      `json:"-"` // Called on the caller's goroutine
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.LayoutScale == 0 {
		o.LayoutScale = 1
	}
	if o.Margin == 0 {
		o.Margin = layout.DefaultMargin
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.ExportWidth == 0 {
		o.ExportWidth = o.Width
	}
	if o.ExportHeight == 0 {
		o.ExportHeight = o.Height
	}
	if o.Zoom == 0 {
		o.Zoom = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks every field.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Width < 0 || o.Height < 0 || o.ExportWidth < 0 || o.ExportHeight < 0 {
		return fmt.Errorf("sizes must be positive")
	}
	if !viewport.ValidScale(o.LayoutScale) {
		return fmt.Errorf("layout scale %v outside [%v, %v]", o.LayoutScale, viewport.MinScale, viewport.MaxScale)
	}
	if !viewport.ValidScale(o.Zoom) {
		return fmt.Errorf("zoom %v outside [%v, %v]", o.Zoom, viewport.MinScale, viewport.MaxScale)
	}
	if _, err := o.NewAlgorithm(); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// NewAlgorithm resolves Algorithm and applies Seed and Iterations where the
// algorithm has them.
func (o *Options) NewAlgorithm() (layout.Algorithm, error) {
	a, err := layout.ByName(o.Algorithm)
	if err != nil {
		return nil, err
	}
	switch alg := a.(type) {
	case *layout.FruchtermanReingold:
		alg.Seed = o.Seed
		if o.Iterations > 0 {
			alg.Iterations = o.Iterations
		}
	case layout.Random:
		alg.Seed = o.Seed
		a = alg
	}
	return a, nil
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm:   o.Algorithm,
		Width:       float64(o.Width),
		Height:      float64(o.Height),
		LayoutScale: o.LayoutScale,
		Margin:      o.Margin,
		Sorting:     o.Sorting,
		Seed:        o.Seed,
		Iterations:  o.Iterations,
	}
}

// ArtifactKeyOpts returns cache key options for one export.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.ExportWidth,
		Height: o.ExportHeight,
		Zoom:   o.Zoom,
		Pan:    [2]float64{o.Pan.X, o.Pan.Y},
		Style:  o.Style,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Graph     *graph.Graph
	Control   *control.Control
	SceneHash string
	Positions scene.Positions
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	VertexCount int
	EdgeCount   int
	Iterations  int
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // Every artifact came from the cache
}
