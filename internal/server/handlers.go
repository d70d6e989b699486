package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/layout"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Status describes the served control.
type Status struct {
	State     string  `json:"state"`
	Algorithm string  `json:"algorithm"`
	Vertices  int     `json:"vertices"`
	Edges     int     `json:"edges"`
	Selected  int     `json:"selected"`
	Zoom      float64 `json:"zoom"`
	Pan       point   `json:"pan"`
	Error     string  `json:"error,omitempty"`
}

// Selection lists selected element IDs in selection order.
type Selection struct {
	Vertices []string `json:"vertices"`
	Edges    []string `json:"edges"`
}

// ZoomRequest is the body of POST /zoom. Pan is left alone when omitted.
type ZoomRequest struct {
	Zoom float64 `json:"zoom"`
	Pan  *point  `json:"pan,omitempty"`
}

func status(c *control.Control) Status {
	t := c.Transform()
	st := Status{
		State:     c.State().String(),
		Algorithm: c.Algorithm().Name(),
		Vertices:  c.Graph().VertexCount(),
		Edges:     c.Graph().EdgeCount(),
		Selected:  len(c.SelectedVertices()),
		Zoom:      t.Zoom,
		Pan:       point{t.Pan.X, t.Pan.Y},
	}
	if err := c.Err(); err != nil {
		st.Error = errors.UserMessage(err)
	}
	return st
}

func selection(c *control.Control) Selection {
	sel := Selection{Vertices: []string{}, Edges: []string{}}
	for _, v := range c.SelectedVertices() {
		sel.Vertices = append(sel.Vertices, v.ID)
	}
	for _, e := range c.SelectedEdges() {
		sel.Edges = append(sel.Edges, e.ID)
	}
	return sel
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st Status
	if err := s.do(r.Context(), func(_ context.Context, c *control.Control) { st = status(c) }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// maxExportSide bounds each side of a requested export.
const maxExportSide = 8192

// exportSize reads ?width= and ?height=, falling back to the server default.
func (s *Server) exportSize(r *http.Request) (int, int, error) {
	w, h := int(s.export.W), int(s.export.H)
	for _, q := range []struct {
		name string
		dst  *int
	}{{"width", &w}, {"height", &h}} {
		v := r.URL.Query().Get(q.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.InvalidArgument("export", "%s %q is not a number", q.name, v)
		}
		if n > maxExportSide {
			return 0, 0, errors.InvalidArgument("export", "%s %d exceeds %d", q.name, n, maxExportSide)
		}
		*q.dst = n
	}
	return w, h, nil
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.exportSize(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var img image.Image
	if err := s.do(r.Context(), func(_ context.Context, c *control.Control) {
		img, err = c.ExportImage(width, height)
	}); err != nil {
		writeError(w, err)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode png"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.exportSize(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var data []byte
	if err := s.do(r.Context(), func(_ context.Context, c *control.Control) {
		data, err = c.ExportSVG(width, height)
	}); err != nil {
		writeError(w, err)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

// handleLayout starts a relayout. With ?wait=true the response is sent when
// the layout ends, and a client that goes away cancels it.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var algo layout.Algorithm
	if name := r.URL.Query().Get("algorithm"); name != "" {
		a, err := layout.ByName(name)
		if err != nil {
			writeError(w, err)
			return
		}
		algo = a
	}
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	var (
		st  Status
		err error
	)
	if derr := s.do(r.Context(), func(run context.Context, c *control.Control) {
		if algo != nil {
			if err = c.SetAlgorithm(algo); err != nil {
				return
			}
		}
		if err = c.DrawGraph(run, true); err != nil {
			return
		}
		if wait {
			err = c.Wait(r.Context())
		}
		st = status(c)
	}); derr != nil {
		writeError(w, derr)
		return
	}
	if err != nil && !errors.IsCancellation(err) {
		writeError(w, err)
		return
	}
	code := http.StatusAccepted
	if wait {
		code = http.StatusOK
	}
	writeJSON(w, code, st)
}

// handleCancelLayout cancels a running layout and waits for it to stop.
func (s *Server) handleCancelLayout(w http.ResponseWriter, r *http.Request) {
	var st Status
	if err := s.do(r.Context(), func(_ context.Context, c *control.Control) {
		c.Cancel()
		_ = c.Wait(context.Background())
		st = status(c)
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	var sel Selection
	if err := s.do(r.Context(), func(_ context.Context, c *control.Control) { sel = selection(c) }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req Selection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode selection"))
		return
	}
	var (
		sel Selection
		err error
	)
	if derr := s.do(r.Context(), func(_ context.Context, c *control.Control) {
		var (
			vs []*graph.Vertex
			es []*graph.Edge
		)
		if vs, es, err = resolve(c.Graph(), req); err != nil {
			return
		}
		if err = c.SetSelected(vs, es); err != nil {
			return
		}
		sel = selection(c)
	}); derr != nil {
		writeError(w, derr)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// resolve looks up the vertices and edges a selection names.
func resolve(g *graph.Graph, sel Selection) ([]*graph.Vertex, []*graph.Edge, error) {
	vs := make([]*graph.Vertex, 0, len(sel.Vertices))
	for _, id := range sel.Vertices {
		v, ok := g.Vertex(id)
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "vertex %q not found", id)
		}
		vs = append(vs, v)
	}
	byID := make(map[string]*graph.Edge, g.EdgeCount())
	for _, e := range g.Edges() {
		byID[e.ID] = e
	}
	es := make([]*graph.Edge, 0, len(sel.Edges))
	for _, id := range sel.Edges {
		e, ok := byID[id]
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "edge %q not found", id)
		}
		es = append(es, e)
	}
	return vs, es, nil
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode zoom"))
		return
	}
	var (
		st  Status
		err error
	)
	if derr := s.do(r.Context(), func(_ context.Context, c *control.Control) {
		if err = c.SetZoom(req.Zoom); err != nil {
			return
		}
		if req.Pan != nil {
			c.SetPan(geom.Pt(req.Pan.X, req.Pan.Y))
		}
		st = status(c)
	}); derr != nil {
		writeError(w, derr)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// httpStatus maps error codes to response codes.
func httpStatus(err error) int {
	if err == errStopped || errors.IsCancellation(err) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidState:
		return http.StatusConflict
	case errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, httpStatus(err), map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}
