// Package config loads netmap settings for the command-line tools.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. netmap.toml in the working directory, or the file named by --config
//  3. NETMAP_* environment variables (NETMAP_PAN_MODIFIER sets pan-modifier)
//  4. command-line flags that were set explicitly
//
// Keys are flat and spelled like the flags, so a config file reads
//
//	layout = "circle"
//	zoom = 2
//	pan-modifier = "ctrl"
//	vertex-color = "#2060c0"
package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/pipeline"
	"github.com/johnjohndoe/netmap/pkg/render"
)

// DefaultFile is the config file read from the working directory.
const DefaultFile = "netmap.toml"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "NETMAP_"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every setting the commands share.
type Config struct {
	// View and layout
	Width      int     `koanf:"width"`
	Height     int     `koanf:"height"`
	Layout     string  `koanf:"layout"`
	Seed       uint64  `koanf:"seed"`
	Iterations int     `koanf:"iterations"`
	Scale      float64 `koanf:"scale"`
	Margin     float64 `koanf:"margin"`
	Sort       bool    `koanf:"sort"`
	Zoom       float64 `koanf:"zoom"`
	PanX       float64 `koanf:"pan-x"`
	PanY       float64 `koanf:"pan-y"`
	Refresh    bool    `koanf:"refresh"`

	// Interaction
	Selection     string        `koanf:"selection"`
	Drag          bool          `koanf:"drag"`
	PanModifier   string        `koanf:"pan-modifier"`
	DragThreshold float64       `koanf:"drag-threshold"`
	HoverDelay    time.Duration `koanf:"hover-delay"`
	HoverTimeout  time.Duration `koanf:"hover-timeout"`

	// Style
	Shape         string  `koanf:"shape"`
	Radius        float64 `koanf:"radius"`
	VertexColor   string  `koanf:"vertex-color"`
	EdgeColor     string  `koanf:"edge-color"`
	EdgeWidth     float64 `koanf:"edge-width"`
	SelectedColor string  `koanf:"selected-color"`
	LabelColor    string  `koanf:"label-color"`
	FontSize      float64 `koanf:"font-size"`
	Background    string  `koanf:"background"`

	// Cache
	Cache      string `koanf:"cache"`
	CacheDir   string `koanf:"cache-dir"`
	RedisURL   string `koanf:"redis-url"`
	CacheScope string `koanf:"cache-scope"` // Key prefix for servers sharing one redis

	// Server
	Addr string `koanf:"addr"`
}

// Defaults returns the built-in settings as a koanf map.
func Defaults() map[string]interface{} {
	s := render.DefaultStyle()
	return map[string]interface{}{
		"width":          pipeline.DefaultWidth,
		"height":         pipeline.DefaultHeight,
		"layout":         pipeline.DefaultAlgorithm,
		"seed":           pipeline.DefaultSeed,
		"iterations":     0,
		"scale":          1.0,
		"margin":         0.0,
		"sort":           false,
		"zoom":           1.0,
		"pan-x":          0.0,
		"pan-y":          0.0,
		"refresh":        false,
		"selection":      control.SelectVertexAndIncidentEdges.String(),
		"drag":           true,
		"pan-modifier":   "alt",
		"drag-threshold": control.DefaultDragThreshold,
		"hover-delay":    "0s",
		"hover-timeout":  "0s",
		"shape":          s.VertexShape.String(),
		"radius":         s.VertexRadius,
		"vertex-color":   render.HexColor(s.VertexColor),
		"edge-color":     render.HexColor(s.EdgeColor),
		"edge-width":     s.EdgeWidth,
		"selected-color": render.HexColor(s.SelectedVertexColor),
		"label-color":    render.HexColor(s.LabelColor),
		"font-size":      s.FontSize,
		"background":     render.HexColor(s.Background),
		"cache":          CacheFile,
		"cache-dir":      "",
		"redis-url":      "",
		"cache-scope":    "",
		"addr":           "localhost:8080",
	}
}

// Load loads configuration from defaults, config file, environment variables
// and flags. A missing netmap.toml is ignored; a missing --config file is an
// error.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, explicit := DefaultFile, false
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			path, explicit = p, true
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// AddFlags registers the view, layout and style flags shared by the
// rendering commands, with the same defaults as Defaults.
func AddFlags(fs *pflag.FlagSet) {
	d := render.DefaultStyle()
	fs.String("config", "", "config file (default ./"+DefaultFile+")")
	fs.Int("width", pipeline.DefaultWidth, "view width in pixels")
	fs.Int("height", pipeline.DefaultHeight, "view height in pixels")
	fs.String("layout", pipeline.DefaultAlgorithm, "layout algorithm")
	fs.Uint64("seed", pipeline.DefaultSeed, "random seed for force-directed and random layouts")
	fs.Int("iterations", 0, "force-directed iterations (0 = algorithm default)")
	fs.Float64("scale", 1, "layout scale, 1 to 10")
	fs.Float64("margin", 0, "layout margin in logical units (0 = default)")
	fs.Bool("sort", false, "sort vertices by layout order before laying out")
	fs.Float64("zoom", 1, "zoom, 1 to 10")
	fs.Float64("pan-x", 0, "horizontal pan in pixels")
	fs.Float64("pan-y", 0, "vertical pan in pixels")
	fs.Bool("refresh", false, "ignore cached positions")
	fs.String("shape", d.VertexShape.String(), "default vertex shape")
	fs.Float64("radius", d.VertexRadius, "default vertex radius")
	fs.String("vertex-color", render.HexColor(d.VertexColor), "default vertex color")
	fs.String("edge-color", render.HexColor(d.EdgeColor), "default edge color")
	fs.String("background", render.HexColor(d.Background), "background color")
	fs.String("cache", CacheFile, "cache backend: file, redis or none")
	fs.String("redis-url", "", "redis URL for the redis cache backend")
	fs.String("cache-scope", "", "prefix for cache keys, to keep projects apart in one cache")
}

// Pan returns the configured pan offset.
func (c *Config) Pan() geom.Point { return geom.Pt(c.PanX, c.PanY) }

// Style builds the drawing style, starting from render.DefaultStyle.
func (c *Config) Style() (render.Style, error) {
	s := render.DefaultStyle()
	if c.Shape != "" {
		shape, ok := graph.ParseShape(c.Shape)
		if !ok {
			return s, fmt.Errorf("unknown shape %q", c.Shape)
		}
		s.VertexShape = shape
	}
	if c.Radius > 0 {
		s.VertexRadius = c.Radius
	}
	if c.EdgeWidth > 0 {
		s.EdgeWidth = c.EdgeWidth
	}
	if c.FontSize > 0 {
		s.FontSize = c.FontSize
	}
	colors := []struct {
		value string
		dst   []*color.NRGBA
	}{
		{c.VertexColor, []*color.NRGBA{&s.VertexColor}},
		{c.EdgeColor, []*color.NRGBA{&s.EdgeColor}},
		{c.SelectedColor, []*color.NRGBA{&s.SelectedVertexColor, &s.SelectedEdgeColor}},
		{c.LabelColor, []*color.NRGBA{&s.LabelColor}},
		{c.Background, []*color.NRGBA{&s.Background}},
	}
	for _, cf := range colors {
		if cf.value == "" {
			continue
		}
		col, err := render.ParseColor(cf.value)
		if err != nil {
			return s, err
		}
		for _, d := range cf.dst {
			*d = col
		}
	}
	return s, nil
}

// StyleName identifies the style in artifact cache keys.
func (c *Config) StyleName() string {
	return strings.Join([]string{
		c.Shape, fmt.Sprint(c.Radius), c.VertexColor, c.EdgeColor, fmt.Sprint(c.EdgeWidth),
		c.SelectedColor, c.LabelColor, fmt.Sprint(c.FontSize), c.Background,
	}, "|")
}

// ControlOptions maps the interaction and style settings to control options.
func (c *Config) ControlOptions() ([]control.Option, error) {
	mode, ok := control.ParseMouseSelectionMode(c.Selection)
	if !ok {
		return nil, fmt.Errorf("unknown selection mode %q (want none, vertex or vertex-and-edges)", c.Selection)
	}
	mod, ok := control.ParseModifier(c.PanModifier)
	if !ok {
		return nil, fmt.Errorf("unknown pan modifier %q (want shift, ctrl or alt)", c.PanModifier)
	}
	style, err := c.Style()
	if err != nil {
		return nil, err
	}
	return []control.Option{
		control.WithMouseSelectionMode(mode),
		control.WithVertexDrag(c.Drag),
		control.WithPanModifier(mod),
		control.WithDragThreshold(c.DragThreshold),
		control.WithHoverTiming(c.HoverDelay, c.HoverTimeout),
		control.WithStyle(style),
	}, nil
}

// PipelineOptions maps the settings to pipeline options for the given
// output formats.
func (c *Config) PipelineOptions(formats ...string) (pipeline.Options, error) {
	copts, err := c.ControlOptions()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Width:       c.Width,
		Height:      c.Height,
		Algorithm:   c.Layout,
		Seed:        c.Seed,
		Iterations:  c.Iterations,
		LayoutScale: c.Scale,
		Margin:      c.Margin,
		Sorting:     c.Sort,
		Refresh:     c.Refresh,
		Formats:     formats,
		Zoom:        c.Zoom,
		Pan:         c.Pan(),
		Style:       c.StyleName(),
		Control:     copts,
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
