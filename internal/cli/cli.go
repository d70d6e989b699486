package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/johnjohndoe/netmap/pkg/buildinfo"
	"github.com/johnjohndoe/netmap/pkg/cache"
	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/pipeline"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "netmap"

	// redisPrefix namespaces netmap keys in a shared redis.
	redisPrefix = "netmap:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "netmap lays out and explores network graphs",
		Long: `netmap draws graphs of vertices and edges described in a TOML or JSON scene
file. It lays them out with force-directed, geometric or layered algorithms,
exports PNG and SVG images, and lets you select, drag, pan and zoom in the
terminal or through a small HTTP preview server.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.CacheScope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.CacheScope+":")
	}
	return pipeline.NewRunner(cache.Observe(store), keyer, c.Logger), nil
}

// newCache opens the backend named by cfg.Cache. An unusable cache
// directory falls back to no caching; an unreachable redis is an error.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("cache backend redis needs --redis-url")
		}
		return cache.NewRedisCache(ctx, cfg.RedisURL, redisPrefix)
	case config.CacheFile, "":
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q (want file, redis or none)", cfg.Cache)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/netmap/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives "<input base><suffix>" when no output was given.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadScene loads the scene and the configuration for a command.
func loadScene(cmd *cobra.Command, path string) (*scene.Scene, *config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	sc, err := scene.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return sc, cfg, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// formatFor picks the export format from an output file extension.
func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return pipeline.FormatSVG
	case ".json":
		return pipeline.FormatJSON
	}
	return pipeline.FormatPNG
}
