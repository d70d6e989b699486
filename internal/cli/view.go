package cli

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/johnjohndoe/netmap/pkg/config"
	"github.com/johnjohndoe/netmap/pkg/control"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
	"github.com/johnjohndoe/netmap/pkg/layout"
	"github.com/johnjohndoe/netmap/pkg/pipeline"
	"github.com/johnjohndoe/netmap/pkg/scene"
)

const (
	viewHeaderRows = 1
	viewFooterRows = 2
	viewTick       = 40 * time.Millisecond
)

var (
	viewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewTipStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var positionsFile string

	cmd := &cobra.Command{
		Use:   "view [scene]",
		Short: "Explore a scene in the terminal",
		Long: `Explore a scene in the terminal with the mouse.

  click            select a vertex and its edges (ctrl toggles)
  drag vertex      move the selection
  drag background  marquee select (ctrl adds, shift removes)
  middle drag      pan; the pan modifier (default alt) pans with the left button
  wheel            zoom around the pointer
  esc              cancel the drag or the running layout

Keys: r relayout, a select all, d deselect, i invert, +/- zoom, 0 reset view,
s save a PNG next to the scene, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cfg, err := loadScene(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), args[0], sc, cfg, positionsFile)
		},
	}

	config.AddFlags(cmd.Flags())
	cmd.Flags().StringVar(&positionsFile, "positions", "", "start from positions written by 'netmap layout'")

	return cmd
}

// runView builds the control and runs the bubbletea program until quit.
func (c *CLI) runView(ctx context.Context, input string, sc *scene.Scene, cfg *config.Config, positionsFile string) error {
	m, err := c.newViewModel(ctx, input, sc, cfg, positionsFile)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	final, err := p.Run()
	if fm, ok := final.(*viewModel); ok && fm.ctrl.IsDrawing() {
		fm.ctrl.Cancel()
		_ = fm.ctrl.Wait(context.Background())
	}
	return err
}

func (c *CLI) newViewModel(ctx context.Context, input string, sc *scene.Scene, cfg *config.Config, positionsFile string) (*viewModel, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	g, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	laidOut := false
	if positionsFile != "" {
		f, err := os.Open(positionsFile)
		if err != nil {
			return nil, err
		}
		p, err := scene.ReadPositions(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read positions %s: %w", positionsFile, err)
		}
		p.Apply(g)
		laidOut = true
	}

	l := &viewListener{}
	opts.Control = append(opts.Control, control.WithListener(l))
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	ctrl, err := runner.NewControl(opts)
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetGraph(g); err != nil {
		return nil, err
	}
	return &viewModel{
		ctx:      ctx,
		input:    input,
		ctrl:     ctrl,
		listener: l,
		laidOut:  laidOut,
		export:   geom.Sz(float64(opts.Width), float64(opts.Height)),
	}, nil
}

// viewListener keeps the control notifications the status bar shows.
type viewListener struct {
	control.NoopListener
	iteration int
	status    string
}

func (l *viewListener) DrawingGraph(layOut bool) {
	l.iteration = 0
	if layOut {
		l.status = "laying out"
	}
}

func (l *viewListener) LayoutIterationCompleted(n int) {
	l.iteration = n
	l.status = fmt.Sprintf("laying out, iteration %d", n)
}

func (l *viewListener) GraphDrawn(s layout.Status, err error) {
	switch {
	case err != nil:
		l.status = "layout failed: " + err.Error()
	case s == layout.StatusCancelled:
		l.status = "layout cancelled"
	default:
		l.status = "ready"
	}
}

func (l *viewListener) VertexDoubleClick(v *graph.Vertex, _ control.PointerEvent) {
	l.status = "opened " + v.Label()
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(viewTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// viewModel is the bubbletea model of the viewer. The bubbletea event loop
// is the control's foreground goroutine: every control call happens in
// Update or View.
type viewModel struct {
	ctx      context.Context
	input    string
	ctrl     *control.Control
	listener *viewListener
	surface  *cellSurface
	laidOut  bool
	started  bool
	button   control.Button
	export   geom.Size
	err      error
}

func (m *viewModel) Init() tea.Cmd {
	return tick()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		m.ctrl.Pump()
		m.ctrl.Tick(time.Time(msg))
		return m, tick()
	case tea.KeyMsg:
		return m, m.key(msg)
	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *viewModel) resize(cols, rows int) {
	rows = max(rows-viewHeaderRows-viewFooterRows, 1)
	m.surface = newCellSurface(cols, rows)
	m.setErr(m.ctrl.Resize(m.surface.Size()))
	if !m.started {
		m.started = true
		m.setErr(m.ctrl.DrawGraph(m.ctx, !m.laidOut))
	}
}

func (m *viewModel) key(msg tea.KeyMsg) tea.Cmd {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		m.setErr(m.ctrl.KeyDown(control.KeyEscape))
	case "r":
		m.setErr(m.ctrl.DrawGraph(m.ctx, true))
	case "a":
		m.setErr(m.ctrl.SelectAll())
	case "d":
		m.setErr(m.ctrl.DeselectAll())
	case "i":
		m.setErr(m.ctrl.InvertSelection())
	case "+", "=":
		m.setErr(m.ctrl.SetZoom(min(m.ctrl.Transform().Zoom*1.25, 10)))
	case "-":
		m.setErr(m.ctrl.SetZoom(max(m.ctrl.Transform().Zoom/1.25, 1)))
	case "0":
		m.setErr(m.ctrl.SetZoom(1))
		m.ctrl.SetPan(geom.Point{})
	case "s":
		m.setErr(m.save())
	}
	return nil
}

// pointerEvent converts a mouse message to device pixels below the header.
func (m *viewModel) pointerEvent(msg tea.MouseMsg) control.PointerEvent {
	ev := control.PointerEvent{Pos: toDevice(msg.X, msg.Y-viewHeaderRows)}
	if msg.Shift {
		ev.Mods |= control.ModShift
	}
	if msg.Ctrl {
		ev.Mods |= control.ModCtrl
	}
	if msg.Alt {
		ev.Mods |= control.ModAlt
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		ev.Button = control.ButtonLeft
	case tea.MouseButtonMiddle:
		ev.Button = control.ButtonMiddle
	case tea.MouseButtonRight:
		ev.Button = control.ButtonRight
	}
	return ev
}

func (m *viewModel) mouse(msg tea.MouseMsg) {
	if m.surface == nil {
		return
	}
	ev := m.pointerEvent(msg)
	if msg.Y < viewHeaderRows || msg.Y >= viewHeaderRows+m.surface.rows {
		m.ctrl.PointerLeave()
		return
	}
	switch {
	case tea.MouseEvent(msg).IsWheel():
		notches := 1.0
		if msg.Button == tea.MouseButtonWheelDown {
			notches = -1
		}
		m.setErr(m.ctrl.Wheel(ev, notches))
	case msg.Action == tea.MouseActionPress:
		m.button = ev.Button
		m.setErr(m.ctrl.PointerDown(ev))
	case msg.Action == tea.MouseActionRelease:
		// Terminals often report releases without the button.
		if ev.Button == control.ButtonNone {
			ev.Button = m.button
		}
		m.button = control.ButtonNone
		m.setErr(m.ctrl.PointerUp(ev))
	case msg.Action == tea.MouseActionMotion:
		if ev.Button == control.ButtonNone {
			ev.Button = m.button
		}
		m.setErr(m.ctrl.PointerMove(ev))
	}
}

// save exports the current view as a PNG next to the scene.
func (m *viewModel) save() error {
	img, err := m.ctrl.ExportImage(int(m.export.W), int(m.export.H))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	path := outputPath(m.input, "", ".png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	m.listener.status = "saved " + path
	return nil
}

func (m *viewModel) setErr(err error) {
	if err != nil {
		m.err = err
	}
}

func (m *viewModel) View() string {
	if m.surface == nil {
		return "starting..."
	}
	g := m.ctrl.Graph()
	var b strings.Builder
	b.WriteString(viewTitleStyle.Render(fmt.Sprintf("netmap · %s", m.input)))
	b.WriteByte('\n')

	m.ctrl.Render(m.surface)
	b.WriteString(m.surface.String())
	b.WriteByte('\n')

	t := m.ctrl.Transform()
	status := fmt.Sprintf("%d vertices · %d edges · %d selected · zoom %.2f · %s",
		g.VertexCount(), g.EdgeCount(), len(m.ctrl.SelectedVertices()), t.Zoom, m.listener.status)
	b.WriteString(viewStatusStyle.Render(status))
	b.WriteByte('\n')

	switch {
	case m.err != nil:
		b.WriteString(viewErrorStyle.Render(m.err.Error()))
	default:
		if v, tip, ok := m.ctrl.ToolTip(); ok {
			if tip == "" {
				tip = v.ID
			}
			b.WriteString(viewTipStyle.Render(tip))
		}
	}
	return b.String()
}
