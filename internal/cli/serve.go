package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnjohndoe/netmap/internal/server"
	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

// serveCommand creates the HTTP preview command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "Serve a live scene over HTTP",
		Long: `Lay out a scene and serve it over HTTP until interrupted.

  GET    /status       state, counts, zoom and pan
  GET    /image.png    PNG of the current view (?width=&height=)
  GET    /image.svg    SVG of the current view (?width=&height=)
  POST   /layout       lay out again (?algorithm=name, ?wait=true)
  DELETE /layout       cancel the running layout
  GET    /selection    selected vertex and edge IDs
  POST   /selection    replace the selection: {"vertices": [...], "edges": [...]}
  POST   /zoom         {"zoom": 2, "pan": {"x": 0, "y": 0}}`,
		Example: `  netmap serve lab.toml --addr :8080
  curl -o lab.png 'localhost:8080/image.png?width=1600&height=1200'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cfg, err := loadScene(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), sc, cfg)
		},
	}

	config.AddFlags(cmd.Flags())
	cmd.Flags().String("addr", server.DefaultAddr, "listen address")

	return cmd
}

// runServe lays the scene out through the cache, then hands the control to
// the server.
func (c *CLI) runServe(ctx context.Context, sc *scene.Scene, cfg *config.Config) error {
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
	_, cacheHit, _, err := runner.LayOutWithCacheInfo(ctx, ctrl, sc.Hash(), opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done("Computed layout", "vertices", g.VertexCount(), "cached", cacheHit)
	if err := ctrl.SetZoom(opts.Zoom); err != nil {
		return err
	}
	ctrl.SetPan(opts.Pan)

	printSuccess("Serving %d vertices on http://%s", g.VertexCount(), cfg.Addr)
	printDetail("Press Ctrl+C to stop")

	export := geom.Sz(float64(opts.ExportWidth), float64(opts.ExportHeight))
	return server.New(ctrl, export, c.Logger).ListenAndServe(ctx, cfg.Addr)
}
