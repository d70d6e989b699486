// Package scene reads graph fixtures for the command-line tools.
//
// A scene lists vertices and edges with optional positions and appearance.
// TOML and JSON are accepted:
//
//	[[vertex]]
//	id = "gw"
//	name = "gateway"
//	x = 40
//	y = 60
//	shape = "solid-square"
//	color = "#2060c0"
//
//	[[vertex]]
//	id = "db"
//	tooltip = "primary database"
//
//	[[edge]]
//	from = "gw"
//	to = "db"
//	directed = true
//
// Vertex IDs are kept in the built graph, so [Positions] taken from one
// build apply to the next.
package scene

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/johnjohndoe/netmap/pkg/cache"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/render"
)

// Scene is a decoded fixture.
type Scene struct {
	Vertices []Vertex `toml:"vertex" json:"vertices"`
	Edges    []Edge   `toml:"edge" json:"edges"`

	// dir resolves relative image paths.
	dir string
}

// Vertex describes one vertex. Only ID is required.
type Vertex struct {
	ID          string   `toml:"id" json:"id"`
	Name        string   `toml:"name,omitempty" json:"name,omitempty"`
	X           *float64 `toml:"x,omitempty" json:"x,omitempty"`
	Y           *float64 `toml:"y,omitempty" json:"y,omitempty"`
	Label       string   `toml:"label,omitempty" json:"label,omitempty"`
	ToolTip     string   `toml:"tooltip,omitempty" json:"tooltip,omitempty"`
	Shape       string   `toml:"shape,omitempty" json:"shape,omitempty"`
	Color       string   `toml:"color,omitempty" json:"color,omitempty"`
	LabelColor  string   `toml:"label_color,omitempty" json:"label_color,omitempty"`
	Radius      float64  `toml:"radius,omitempty" json:"radius,omitempty"`
	Alpha       *int     `toml:"alpha,omitempty" json:"alpha,omitempty"`
	Visibility  string   `toml:"visibility,omitempty" json:"visibility,omitempty"`
	Locked      bool     `toml:"locked,omitempty" json:"locked,omitempty"`
	Selected    bool     `toml:"selected,omitempty" json:"selected,omitempty"`
	LayoutOrder *float64 `toml:"layout_order,omitempty" json:"layout_order,omitempty"`
	Image       string   `toml:"image,omitempty" json:"image,omitempty"`
}

// Edge describes one edge between two vertex IDs.
type Edge struct {
	From       string  `toml:"from" json:"from"`
	To         string  `toml:"to" json:"to"`
	Directed   bool    `toml:"directed,omitempty" json:"directed,omitempty"`
	Label      string  `toml:"label,omitempty" json:"label,omitempty"`
	Color      string  `toml:"color,omitempty" json:"color,omitempty"`
	Width      float64 `toml:"width,omitempty" json:"width,omitempty"`
	Alpha      *int    `toml:"alpha,omitempty" json:"alpha,omitempty"`
	Visibility string  `toml:"visibility,omitempty" json:"visibility,omitempty"`
	Selected   bool    `toml:"selected,omitempty" json:"selected,omitempty"`
}

// Hash identifies the scene content for cache keys.
func (s *Scene) Hash() string {
	data, _ := json.Marshal(s)
	return cache.Hash(data)
}

// Build creates a graph from the scene. Vertices without a position stay at
// the origin until a layout places them.
func (s *Scene) Build() (*graph.Graph, error) {
	g := graph.New()
	for i, sv := range s.Vertices {
		v, err := g.AddVertexWithID(sv.ID, sv.Name)
		if err != nil {
			return nil, fmt.Errorf("vertex %d (%q): %w", i, sv.ID, err)
		}
		if sv.X != nil && sv.Y != nil {
			v.Location = geom.Pt(*sv.X, *sv.Y)
		}
		if err := s.applyVertex(v.Meta, sv); err != nil {
			return nil, fmt.Errorf("vertex %q: %w", sv.ID, err)
		}
	}
	for _, se := range s.Edges {
		from, ok := g.Vertex(se.From)
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown vertex %q", se.From, se.To, se.From)
		}
		to, ok := g.Vertex(se.To)
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown vertex %q", se.From, se.To, se.To)
		}
		e, err := g.AddEdge(from, to, se.Directed)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", se.From, se.To, err)
		}
		if err := applyEdge(e.Meta, se); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", se.From, se.To, err)
		}
	}
	return g, nil
}

func (s *Scene) applyVertex(m *graph.Metadata, sv Vertex) error {
	if sv.Label != "" {
		m.Set(graph.KeyLabel, graph.String(sv.Label))
	}
	if sv.ToolTip != "" {
		m.Set(graph.KeyToolTip, graph.String(sv.ToolTip))
	}
	if sv.Shape != "" {
		shape, ok := graph.ParseShape(sv.Shape)
		if !ok {
			return fmt.Errorf("unknown shape %q", sv.Shape)
		}
		m.Set(graph.KeyShape, graph.Enum(shape))
	}
	if err := setColor(m, graph.KeyColor, sv.Color); err != nil {
		return err
	}
	if err := setColor(m, graph.KeyLabelColor, sv.LabelColor); err != nil {
		return err
	}
	if sv.Radius > 0 {
		m.Set(graph.KeyRadius, graph.Float(sv.Radius))
	}
	if sv.LayoutOrder != nil {
		m.Set(graph.KeyLayoutOrder, graph.Float(*sv.LayoutOrder))
	}
	if sv.Locked {
		m.Set(graph.KeyLocked, graph.Bool(true))
	}
	if sv.Image != "" {
		img, err := s.loadImage(sv.Image)
		if err != nil {
			return err
		}
		m.Set(graph.KeyImage, graph.Image(img))
	}
	return applyCommon(m, sv.Alpha, sv.Visibility, sv.Selected)
}

func applyEdge(m *graph.Metadata, se Edge) error {
	if se.Label != "" {
		m.Set(graph.KeyLabel, graph.String(se.Label))
	}
	if err := setColor(m, graph.KeyColor, se.Color); err != nil {
		return err
	}
	if se.Width > 0 {
		m.Set(graph.KeyWidth, graph.Float(se.Width))
	}
	return applyCommon(m, se.Alpha, se.Visibility, se.Selected)
}

func applyCommon(m *graph.Metadata, alpha *int, visibility string, selected bool) error {
	if alpha != nil {
		if *alpha < 0 || *alpha > 255 {
			return fmt.Errorf("alpha %d outside [0, 255]", *alpha)
		}
		m.Set(graph.KeyAlpha, graph.Int(*alpha))
	}
	if visibility != "" {
		vis, ok := graph.ParseVisibility(visibility)
		if !ok {
			return fmt.Errorf("unknown visibility %q", visibility)
		}
		m.Set(graph.KeyVisibility, graph.Enum(vis))
	}
	if selected {
		m.Set(graph.KeySelected, graph.Bool(true))
	}
	return nil
}

func setColor(m *graph.Metadata, key, s string) error {
	if s == "" {
		return nil
	}
	c, err := render.ParseColor(s)
	if err != nil {
		return err
	}
	m.Set(key, graph.Color(c))
	return nil
}

func (s *Scene) loadImage(path string) (image.Image, error) {
	if !filepath.IsAbs(path) && s.dir != "" {
		path = filepath.Join(s.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}
