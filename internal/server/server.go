// Package server serves a live Control over HTTP.
//
// One goroutine, started by [Server.Run], owns the Control. Handlers never
// touch it directly: they submit closures to that goroutine and wait for
// them, so the Control sees the same single foreground caller it sees in
// the terminal viewer. Between requests the goroutine pumps layout updates
// and advances the hover clock.
//
// # Endpoints
//
//	GET    /status          state, counts, zoom and pan
//	GET    /image.png       PNG export (?width=&height=)
//	GET    /image.svg       SVG export (?width=&height=)
//	POST   /layout          relayout (?algorithm=name, ?wait=true)
//	DELETE /layout          cancel the running layout
//	GET    /selection       selected vertex and edge IDs
//	POST   /selection       replace the selection
//	POST   /zoom            set zoom and optionally pan
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/geom"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "localhost:8080"

	pumpInterval    = 20 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Server exposes a Control over HTTP.
type Server struct {
	ctrl    *control.Control
	logger  *log.Logger
	export  geom.Size
	reqs    chan func(ctx context.Context, c *control.Control)
	stopped chan struct{}
	router  chi.Router
}

// errStopped is returned to requests that arrive after Run has returned.
var errStopped = errors.New("server stopped")

// New creates a server for ctrl. export is the default image size when a
// request does not name one. A nil logger discards output.
func New(ctrl *control.Control, export geom.Size, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		ctrl:    ctrl,
		logger:  logger,
		export:  export,
		reqs:    make(chan func(context.Context, *control.Control)),
		stopped: make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler. Requests block until Run is serving.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/status", s.handleStatus)
	r.Get("/image.png", s.handlePNG)
	r.Get("/image.svg", s.handleSVG)
	r.Post("/layout", s.handleLayout)
	r.Delete("/layout", s.handleCancelLayout)
	r.Get("/selection", s.handleGetSelection)
	r.Post("/selection", s.handleSetSelection)
	r.Post("/zoom", s.handleZoom)
	return r
}

// Run owns the Control until ctx ends. A layout still in flight at that
// point is cancelled and awaited. Run must be called once.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)
	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()
	for {
		select {
		case fn := <-s.reqs:
			fn(ctx, s.ctrl)
		case now := <-ticker.C:
			s.ctrl.Pump()
			s.ctrl.Tick(now)
		case <-ctx.Done():
			if s.ctrl.IsDrawing() {
				s.ctrl.Cancel()
				_ = s.ctrl.Wait(context.Background())
			}
			return nil
		}
	}
}

// do runs fn on the owning goroutine and waits for it. The run context
// passed to fn outlives the request, so layouts started by fn keep going
// after the response is written.
func (s *Server) do(ctx context.Context, fn func(run context.Context, c *control.Control)) error {
	done := make(chan struct{})
	wrapped := func(run context.Context, c *control.Control) {
		defer close(done)
		fn(run, c)
	}
	select {
	case s.reqs <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return errStopped
	}
	<-done
	return nil
}

// ListenAndServe runs the owner loop and an HTTP server on addr until ctx
// ends, then shuts both down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(ctx) })
	g.Go(func() error {
		s.logger.Info("serving", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
