package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/pipeline"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("cacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}

	if !strings.Contains(dir, ".cache") {
		t.Errorf("cacheDir() = %q, should contain '.cache'", dir)
	}
}

func TestCacheDirStructure(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/ignored")
	dir, err := cacheDir(&config.Config{CacheDir: "/srv/netmap"})
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/netmap" {
		t.Errorf("cacheDir() = %q, want the configured directory", dir)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, suffix, want string
	}{
		{"lab.toml", "", ".png", "lab.png"},
		{"dir/lab.json", "", ".positions.json", "dir/lab.positions.json"},
		{"lab.toml", "out.svg", ".png", "out.svg"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.input, tt.output, tt.suffix, got, tt.want)
		}
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]string{
		"a.png":  pipeline.FormatPNG,
		"a.SVG":  pipeline.FormatSVG,
		"a.json": pipeline.FormatJSON,
		"a":      pipeline.FormatPNG,
	}
	for path, want := range tests {
		if got := formatFor(path); got != want {
			t.Errorf("formatFor(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestNewRunnerCacheScope(t *testing.T) {
	c := New(&strings.Builder{}, LogInfo)
	opts := pipeline.Options{}
	opts.SetDefaults()

	tests := []struct {
		scope  string
		prefix string
	}{
		{"", "layout:"},
		{"lab", "lab:layout:"},
	}
	for _, tt := range tests {
		t.Run("scope="+tt.scope, func(t *testing.T) {
			r, err := c.newRunner(context.Background(), &config.Config{Cache: config.CacheNone, CacheScope: tt.scope})
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			if r.Cache == nil {
				t.Fatal("runner has no cache")
			}
			if key := r.Keyer.LayoutKey("abc", opts.LayoutKeyOpts()); !strings.HasPrefix(key, tt.prefix) {
				t.Errorf("LayoutKey() = %q, want prefix %q", key, tt.prefix)
			}
		})
	}
}
