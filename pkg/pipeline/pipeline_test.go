package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/johnjohndoe/netmap/pkg/cache"
	"github.com/johnjohndoe/netmap/pkg/layout"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %dx%d", opts.Width, opts.Height)
	}
	if opts.ExportWidth != DefaultWidth || opts.ExportHeight != DefaultHeight {
		t.Errorf("export size = %dx%d, want the view size", opts.ExportWidth, opts.ExportHeight)
	}
	if opts.Algorithm != DefaultAlgorithm || opts.Seed != DefaultSeed {
		t.Errorf("algorithm = %q seed %d", opts.Algorithm, opts.Seed)
	}
	if opts.LayoutScale != 1 || opts.Zoom != 1 {
		t.Errorf("scale = %v zoom = %v", opts.LayoutScale, opts.Zoom)
	}
	if opts.Margin != layout.DefaultMargin {
		t.Errorf("margin = %v", opts.Margin)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger not set")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero value", Options{}, false},
		{"negative size", Options{Width: -1}, true},
		{"zoom too large", Options{Zoom: 11}, true},
		{"scale too small", Options{LayoutScale: 0.5}, true},
		{"unknown algorithm", Options{Algorithm: "sugiyama-deluxe"}, true},
		{"alias", Options{Algorithm: "fr"}, false},
		{"bad format", Options{Formats: []string{"gif"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAlgorithmAppliesSeed(t *testing.T) {
	opts := Options{Algorithm: "fruchterman-reingold", Seed: 7, Iterations: 12}
	a, err := opts.NewAlgorithm()
	if err != nil {
		t.Fatal(err)
	}
	fr, ok := a.(*layout.FruchtermanReingold)
	if !ok {
		t.Fatalf("algorithm = %T", a)
	}
	if fr.Seed != 7 || fr.Iterations != 12 {
		t.Errorf("seed = %d iterations = %d", fr.Seed, fr.Iterations)
	}

	opts = Options{Algorithm: "random", Seed: 9}
	a, _ = opts.NewAlgorithm()
	if r, ok := a.(layout.Random); !ok || r.Seed != 9 {
		t.Errorf("random = %#v", a)
	}
}

const ring = `
[[vertex]]
id = "a"
[[vertex]]
id = "b"
[[vertex]]
id = "c"

[[edge]]
from = "a"
to = "b"
[[edge]]
from = "b"
to = "c"
`

func TestExecute(t *testing.T) {
	sc, err := scene.Read(strings.NewReader(ring), scene.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{
		Width:     200,
		Height:    100,
		Algorithm: "circle",
		Formats:   []string{FormatPNG, FormatSVG, FormatJSON},
	}
	ctx := context.Background()
	first, err := r.Execute(ctx, sc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if first.Stats.VertexCount != 3 || first.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if len(first.Positions) != 3 {
		t.Errorf("positions = %v", first.Positions)
	}

	img, err := png.Decode(bytes.NewReader(first.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("png artifact: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png size = %v", b)
	}
	if !bytes.Contains(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact is not svg")
	}
	p, err := scene.ReadPositions(bytes.NewReader(first.Artifacts[FormatJSON]))
	if err != nil || len(p) != 3 {
		t.Errorf("json artifact = %v, %v", p, err)
	}

	second, err := r.Execute(ctx, sc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run missed the layout cache")
	}
	for id, loc := range first.Positions {
		if second.Positions[id] != loc {
			t.Errorf("%s at %v, was %v", id, second.Positions[id], loc)
		}
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("svg differs between runs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, sc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh used the cached layout")
	}
}

func TestExecuteReportsIterations(t *testing.T) {
	sc, _ := scene.Read(strings.NewReader(ring), scene.FormatTOML)
	var seen []int
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), sc, Options{
		Algorithm:   "fr",
		Iterations:  4,
		Formats:     []string{FormatJSON},
		OnIteration: func(n int) { seen = append(seen, n) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) == 0 || res.Stats.Iterations != seen[len(seen)-1] {
		t.Errorf("iterations seen %v, stats %d", seen, res.Stats.Iterations)
	}
	if res.Control.IsDrawing() {
		t.Error("control still drawing after Execute")
	}
}

func TestExecuteCancelled(t *testing.T) {
	sc, _ := scene.Read(strings.NewReader(ring), scene.FormatTOML)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(ctx, sc, Options{Algorithm: "fr"}); err == nil {
		t.Error("Execute succeeded on a cancelled context")
	}
}
