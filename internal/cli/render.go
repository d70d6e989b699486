package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

// renderOpts holds the flags of the render command that are not settings.
type renderOpts struct {
	output       string // output file, or base path for several formats
	formats      string // comma-separated formats; default from the output extension
	exportWidth  int    // export size in pixels; 0 means the view size
	exportHeight int
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Lay out a scene and export it as PNG, SVG or positions JSON",
		Long: `Lay out a scene and export it.

The layout runs asynchronously; every iteration is drawn before the next one
starts. Vertex positions are cached, so rendering the same scene again with a
different zoom, pan or export size skips the layout. Use --refresh to force a
new one.`,
		Example: `  netmap render lab.toml -o lab.png
  netmap render lab.toml -f png,svg --layout circle --zoom 2
  netmap render lab.toml -o lab.svg --export-width 1600 --export-height 1200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cfg, err := loadScene(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], sc, cfg, opts)
		},
	}

	config.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png, svg, json (comma-separated)")
	cmd.Flags().IntVar(&opts.exportWidth, "export-width", 0, "export width in pixels (default: --width)")
	cmd.Flags().IntVar(&opts.exportHeight, "export-height", 0, "export height in pixels (default: --height)")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, sc *scene.Scene, cfg *config.Config, ro renderOpts) error {
	formats := parseFormats(ro.formats)
	if len(formats) == 0 {
		formats = []string{formatFor(outputPath(input, ro.output, ".png"))}
	}
	opts, err := cfg.PipelineOptions(formats...)
	if err != nil {
		return err
	}
	if ro.exportWidth > 0 {
		opts.ExportWidth = ro.exportWidth
	}
	if ro.exportHeight > 0 {
		opts.ExportHeight = ro.exportHeight
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d vertices (%s)...", len(sc.Vertices), opts.Algorithm))
	opts.OnIteration = func(n int) {
		spinner.SetMessage(fmt.Sprintf("Laying out %d vertices (%s), iteration %d...", len(sc.Vertices), opts.Algorithm, n))
	}
	spinner.Start()

	result, err := runner.Execute(ctx, sc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(input, ro.output, result.Artifacts, formats)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.VertexCount, result.Stats.EdgeCount, result.Stats.Iterations, result.CacheInfo.LayoutHit)
	return nil
}

// writeArtifacts writes each artifact and returns the paths written. With
// several formats the output is a base path and gets one extension each.
func writeArtifacts(input, output string, artifacts map[string][]byte, formats []string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		path := outputPath(input, output, "."+f)
		if len(formats) > 1 {
			base := input
			if output != "" {
				base = output
			}
			path = strings.TrimSuffix(base, filepath.Ext(base)) + "." + f
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
