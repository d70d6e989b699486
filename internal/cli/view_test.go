package cli

import (
	"context"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

var black = color.NRGBA{A: 255}

func TestCellSurfaceGlyphs(t *testing.T) {
	tests := []struct {
		name string
		draw func(s *cellSurface)
		want string
	}{
		{
			name: "horizontal line",
			draw: func(s *cellSurface) { s.Line(geom.Pt(0.5, 1), geom.Pt(3.5, 1), black, 1, nil) },
			want: "──── \n     \n",
		},
		{
			name: "vertical line",
			draw: func(s *cellSurface) { s.Line(geom.Pt(2.5, 0.5), geom.Pt(2.5, 3.5), black, 1, nil) },
			want: "  │  \n  │  \n",
		},
		{
			name: "dashed line",
			draw: func(s *cellSurface) { s.Line(geom.Pt(0.5, 1), geom.Pt(4.5, 1), black, 1, []float64{2, 2}) },
			want: "─ ─ ─\n     \n",
		},
		{
			name: "filled vertex",
			draw: func(s *cellSurface) { s.Ellipse(toDevice(1, 1), 0.5, 0.5, black, color.NRGBA{}, 1) },
			want: "     \n ●   \n",
		},
		{
			name: "outlined vertex",
			draw: func(s *cellSurface) { s.Ellipse(toDevice(4, 0), 0.5, 0.5, color.NRGBA{}, black, 1) },
			want: "    ○\n     \n",
		},
		{
			name: "centered text",
			draw: func(s *cellSurface) { s.Text(toDevice(2, 1), "abc", black, 10, 0.5, 0.5) },
			want: "     \n abc \n",
		},
		{
			name: "transparent is skipped",
			draw: func(s *cellSurface) { s.Line(geom.Pt(0, 0), geom.Pt(4, 0), color.NRGBA{}, 1, nil) },
			want: "     \n     \n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newCellSurface(5, 2)
			tt.draw(s)
			if got := s.glyphs(); got != tt.want {
				t.Errorf("glyphs =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestCellSurfaceSize(t *testing.T) {
	s := newCellSurface(80, 20)
	if got := s.Size(); got != geom.Sz(80, 40) {
		t.Errorf("Size() = %v", got)
	}
	col, row, ok := s.at(toDevice(7, 3))
	if !ok || col != 7 || row != 3 {
		t.Errorf("cell center maps to (%d, %d, %v)", col, row, ok)
	}
}

func TestLineGlyph(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   rune
	}{
		{10, 0, '─'},
		{0, -5, '│'},
		{3, 3, '╲'},
		{-3, -3, '╲'},
		{3, -3, '╱'},
	}
	for _, tt := range tests {
		if got := lineGlyph(tt.dx, tt.dy); got != tt.want {
			t.Errorf("lineGlyph(%v, %v) = %q, want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

const triangle = `
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

func newTestViewModel(t *testing.T) *viewModel {
	t.Helper()
	t.Chdir(t.TempDir())
	sc, err := scene.Read(strings.NewReader(triangle), scene.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Layout = "circle"
	m, err := New(&strings.Builder{}, LogInfo).newViewModel(context.Background(), "triangle.toml", sc, cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// settle pumps the model until the layout is done.
func settle(t *testing.T, m *viewModel) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for m.ctrl.IsDrawing() {
		if time.Now().After(deadline) {
			t.Fatal("layout did not finish")
		}
		m.Update(tickMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
}

func TestViewModelLaysOutOnFirstSize(t *testing.T) {
	m := newTestViewModel(t)
	if v := m.View(); v != "starting..." {
		t.Errorf("View() before size = %q", v)
	}
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 23})
	if !m.ctrl.IsDrawing() {
		t.Fatal("no layout started")
	}
	settle(t, m)

	if m.surface.rows != 20 || m.surface.cols != 60 {
		t.Errorf("surface = %dx%d", m.surface.cols, m.surface.rows)
	}
	if m.listener.status != "ready" {
		t.Errorf("status = %q", m.listener.status)
	}
	view := m.View()
	if !strings.Contains(view, "3 vertices") || !strings.Contains(view, "2 edges") {
		t.Errorf("status bar missing from view:\n%s", view)
	}
	if !strings.Contains(m.surface.glyphs(), "●") {
		t.Errorf("no vertex drawn:\n%s", m.surface.glyphs())
	}
}

func TestViewModelKeys(t *testing.T) {
	m := newTestViewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 23})
	settle(t, m)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if n := len(m.ctrl.SelectedVertices()); n != 3 {
		t.Errorf("select all selected %d", n)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if n := len(m.ctrl.SelectedVertices()); n != 0 {
		t.Errorf("deselect left %d", n)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	if z := m.ctrl.Transform().Zoom; z != 1.25 {
		t.Errorf("zoom = %v", z)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	if z := m.ctrl.Transform().Zoom; z != 1 {
		t.Errorf("zoom after reset = %v", z)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestViewModelClickSelects(t *testing.T) {
	m := newTestViewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 23})
	settle(t, m)

	v, _ := m.ctrl.Graph().Vertex("b")
	p := m.ctrl.Transform().ToDevice(v.Location)
	x := int(math.Floor(p.X))
	y := int(math.Floor(p.Y/cellAspect)) + viewHeaderRows

	m.Update(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m.Update(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonNone, Action: tea.MouseActionRelease})

	sel := m.ctrl.SelectedVertices()
	if len(sel) != 1 || sel[0] != v {
		t.Errorf("selected %v, want b", names(sel))
	}
	if n := len(m.ctrl.SelectedEdges()); n != 2 {
		t.Errorf("selected %d edges, want both edges of b", n)
	}
}

func names(vs []*graph.Vertex) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func TestViewModelWheelZooms(t *testing.T) {
	m := newTestViewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 23})
	settle(t, m)

	wheel := tea.MouseMsg{X: 30, Y: viewHeaderRows + 10, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress}
	m.Update(wheel)
	if z := m.ctrl.Transform().Zoom; math.Abs(z-1.1) > 1e-9 {
		t.Errorf("zoom after wheel up = %v, want 1.1", z)
	}
	if len(m.ctrl.SelectedVertices()) != 0 || m.ctrl.Dragging() {
		t.Error("wheel was taken as a press")
	}
	wheel.Button = tea.MouseButtonWheelDown
	m.Update(wheel)
	if z := m.ctrl.Transform().Zoom; math.Abs(z-1) > 1e-9 {
		t.Errorf("zoom after wheel down = %v, want 1", z)
	}
}
