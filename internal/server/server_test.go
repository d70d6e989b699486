package server

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/layout"
	"github.com/johnjohndoe/netmap/pkg/observability"
)

// stalled runs until it is cancelled.
type stalled struct{}

func (stalled) Name() string { return "stalled" }

func (stalled) Run(ctx context.Context, _ *layout.Job) error {
	<-ctx.Done()
	return ctx.Err()
}

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	var vs []*graph.Vertex
	for _, id := range []string{"a", "b", "c"} {
		v, err := g.AddVertexWithID(id, "")
		if err != nil {
			t.Fatal(err)
		}
		vs = append(vs, v)
	}
	for i := 1; i < len(vs); i++ {
		if _, err := g.AddEdge(vs[i-1], vs[i], false); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// startServer runs a server for a fresh control until the test ends.
func startServer(t *testing.T, algo layout.Algorithm) (*Server, *graph.Graph) {
	t.Helper()
	ctrl, err := control.New(geom.Sz(200, 100), control.WithAlgorithm(algo))
	if err != nil {
		t.Fatal(err)
	}
	g := newGraph(t)
	if err := ctrl.SetGraph(g); err != nil {
		t.Fatal(err)
	}
	s := New(ctrl, geom.Sz(320, 160), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() = %v", err)
		}
	})
	return s, g
}

func newTestServer(t *testing.T, algo layout.Algorithm) (*httptest.Server, *graph.Graph) {
	t.Helper()
	s, g := startServer(t, algo)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, g
}

func request(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", resp.Request.URL.Path, err)
	}
	return v
}

func TestStatus(t *testing.T) {
	ts, _ := newTestServer(t, layout.Circle{})

	resp := request(t, ts, http.MethodGet, "/status", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("no request ID header")
	}
	st := decode[Status](t, resp)
	if st.Vertices != 3 || st.Edges != 2 || st.Algorithm != "circle" || st.Zoom != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestLayoutAndExport(t *testing.T) {
	ts, _ := newTestServer(t, layout.Null{})

	resp := request(t, ts, http.MethodPost, "/layout?algorithm=circle&wait=true", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d", resp.StatusCode)
	}
	st := decode[Status](t, resp)
	if st.State != control.Stable.String() || st.Algorithm != "circle" {
		t.Errorf("after layout: %+v", st)
	}

	tests := []struct {
		name        string
		path        string
		contentType string
		check       func(t *testing.T, resp *http.Response)
	}{
		{
			name:        "png default size",
			path:        "/image.png",
			contentType: "image/png",
			check: func(t *testing.T, resp *http.Response) {
				img, err := png.Decode(resp.Body)
				if err != nil {
					t.Fatal(err)
				}
				if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 160 {
					t.Errorf("bounds = %v", b)
				}
			},
		},
		{
			name:        "png requested size",
			path:        "/image.png?width=64&height=32",
			contentType: "image/png",
			check: func(t *testing.T, resp *http.Response) {
				img, err := png.Decode(resp.Body)
				if err != nil {
					t.Fatal(err)
				}
				if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
					t.Errorf("bounds = %v", b)
				}
			},
		},
		{
			name:        "svg",
			path:        "/image.svg",
			contentType: "image/svg+xml",
			check: func(t *testing.T, resp *http.Response) {
				body, err := io.ReadAll(resp.Body)
				if err != nil {
					t.Fatal(err)
				}
				if !strings.Contains(string(body), "<svg") {
					t.Errorf("not an svg document: %.80s", body)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, ts, http.MethodGet, tt.path, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q", ct)
			}
			tt.check(t, resp)
		})
	}
}

func TestErrors(t *testing.T) {
	ts, _ := newTestServer(t, layout.Circle{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		code   string
	}{
		{"unknown algorithm", http.MethodPost, "/layout?algorithm=bogus", "", http.StatusNotFound, "NOT_FOUND"},
		{"bad width", http.MethodGet, "/image.png?width=wide", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"zero size", http.MethodGet, "/image.svg?width=0", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"oversized width", http.MethodGet, "/image.png?width=100000", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"oversized height", http.MethodGet, "/image.svg?height=8193", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown vertex", http.MethodPost, "/selection", `{"vertices":["zz"]}`, http.StatusNotFound, "NOT_FOUND"},
		{"unknown edge", http.MethodPost, "/selection", `{"edges":["zz"]}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad selection body", http.MethodPost, "/selection", `{`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"zoom out of range", http.MethodPost, "/zoom", `{"zoom":20}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			body := decode[map[string]string](t, resp)
			if body["code"] != tt.code || body["error"] == "" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestSelection(t *testing.T) {
	ts, g := newTestServer(t, layout.Circle{})
	request(t, ts, http.MethodPost, "/layout?wait=true", "")

	edge := g.Edges()[0]
	resp := request(t, ts, http.MethodPost, "/selection",
		`{"vertices":["c","a"],"edges":["`+edge.ID+`"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	sel := decode[Selection](t, request(t, ts, http.MethodGet, "/selection", ""))
	if !slices.Equal(sel.Vertices, []string{"c", "a"}) || !slices.Equal(sel.Edges, []string{edge.ID}) {
		t.Errorf("selection = %+v", sel)
	}

	request(t, ts, http.MethodPost, "/selection", `{}`)
	sel = decode[Selection](t, request(t, ts, http.MethodGet, "/selection", ""))
	if len(sel.Vertices) != 0 || len(sel.Edges) != 0 {
		t.Errorf("selection after clear = %+v", sel)
	}
}

func TestZoom(t *testing.T) {
	ts, _ := newTestServer(t, layout.Circle{})
	request(t, ts, http.MethodPost, "/layout?wait=true", "")

	resp := request(t, ts, http.MethodPost, "/zoom", `{"zoom":2,"pan":{"x":-10,"y":-5}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	st := decode[Status](t, resp)
	if st.Zoom != 2 || st.Pan != (point{-10, -5}) {
		t.Errorf("status = %+v", st)
	}
}

func TestCallsDuringLayoutConflict(t *testing.T) {
	ts, _ := newTestServer(t, stalled{})

	resp := request(t, ts, http.MethodPost, "/layout", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("layout status = %d", resp.StatusCode)
	}
	if st := decode[Status](t, resp); st.State == control.Stable.String() {
		t.Errorf("state after start = %q", st.State)
	}

	for _, path := range []string{"/selection", "/layout"} {
		resp := request(t, ts, http.MethodPost, path, `{"vertices":["a"]}`)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("POST %s during layout = %d, want %d", path, resp.StatusCode, http.StatusConflict)
		}
	}
	if resp := request(t, ts, http.MethodGet, "/image.png", ""); resp.StatusCode != http.StatusConflict {
		t.Errorf("export during layout = %d", resp.StatusCode)
	}

	resp = request(t, ts, http.MethodDelete, "/layout", "")
	if st := decode[Status](t, resp); st.State != control.Stable.String() {
		t.Errorf("state after cancel = %q", st.State)
	}
	if resp := request(t, ts, http.MethodPost, "/selection", `{"vertices":["a"]}`); resp.StatusCode != http.StatusOK {
		t.Errorf("selection after cancel = %d", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	requests  []string
	responses []int
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, _ := startServer(t, layout.Circle{})
	for _, path := range []string{"/status", "/missing"} {
		s.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if !slices.Equal(hooks.requests, []string{"GET /status", "GET /missing"}) {
		t.Errorf("requests = %v", hooks.requests)
	}
	if !slices.Equal(hooks.responses, []int{http.StatusOK, http.StatusNotFound}) {
		t.Errorf("responses = %v", hooks.responses)
	}
}

func TestRequestsAfterStop(t *testing.T) {
	ctrl, err := control.New(geom.Sz(200, 100))
	if err != nil {
		t.Fatal(err)
	}
	s := New(ctrl, geom.Sz(100, 100), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status after stop = %d", rec.Code)
	}
}
