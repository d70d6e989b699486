package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

// layoutCommand creates the layout command for computing vertex positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		showTable bool
	)

	cmd := &cobra.Command{
		Use:   "layout [scene]",
		Short: "Compute vertex positions for a scene",
		Long: `Compute vertex positions for a scene.

The output is a JSON list of {id, x, y} entries in logical coordinates, the
same as 'render -f json'. Locked vertices keep the position given in the
scene. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cfg, err := loadScene(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], sc, cfg, output, showTable)
		},
	}

	config.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <scene>.positions.json)")
	cmd.Flags().BoolVar(&showTable, "table", false, "also print the positions as a table")

	return cmd
}

// runLayout lays out the scene and writes the positions.
func (c *CLI) runLayout(ctx context.Context, input string, sc *scene.Scene, cfg *config.Config, output string, showTable bool) error {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := sc.Build()
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	ctrl, err := runner.NewControl(opts)
	if err != nil {
		return err
	}
	if err := ctrl.SetGraph(g); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Algorithm))
	opts.OnIteration = func(n int) {
		spinner.SetMessage(fmt.Sprintf("Computing %s layout, iteration %d...", opts.Algorithm, n))
	}
	spinner.Start()

	positions, cacheHit, iterations, err := runner.LayOutWithCacheInfo(ctx, ctrl, sc.Hash(), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done("Computed layout", "vertices", g.VertexCount(), "cached", cacheHit)

	path := outputPath(input, output, ".positions.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if err := positions.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(g.VertexCount(), g.EdgeCount(), iterations, cacheHit)
	if showTable {
		printNewline()
		fmt.Println(positionsTable(positions))
	}
	printNewline()
	printNextStep("Render", "netmap render "+input)

	return nil
}
