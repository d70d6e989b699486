package hover

import (
	"fmt"
	"slices"
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func show(s string) Event[string] { return Event[string]{Kind: Show, Element: s} }
func hide(s string) Event[string] { return Event[string]{Kind: Hide, Element: s} }

func TestTracker(t *testing.T) {
	type step struct {
		move bool // Move when true, Tick otherwise
		el   string
		ok   bool
		ms   int
		want []Event[string]
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "show after dwell",
			steps: []step{
				{move: true, el: "a", ok: true, ms: 0},
				{ms: 50},
				{ms: 100, want: []Event[string]{show("a")}},
				{ms: 150},
			},
		},
		{
			name: "moving before dwell restarts the wait",
			steps: []step{
				{move: true, el: "a", ok: true, ms: 0},
				{move: true, el: "b", ok: true, ms: 80},
				{ms: 120},
				{ms: 180, want: []Event[string]{show("b")}},
			},
		},
		{
			name: "leaving hides",
			steps: []step{
				{move: true, el: "a", ok: true, ms: 0},
				{ms: 100, want: []Event[string]{show("a")}},
				{move: true, ok: false, ms: 200, want: []Event[string]{hide("a")}},
				{ms: 400},
			},
		},
		{
			name: "switching element hides then shows after dwell",
			steps: []step{
				{move: true, el: "a", ok: true, ms: 0},
				{ms: 100, want: []Event[string]{show("a")}},
				{move: true, el: "b", ok: true, ms: 150, want: []Event[string]{hide("a")}},
				{ms: 250, want: []Event[string]{show("b")}},
			},
		},
		{
			name: "timeout hides and does not reshow",
			steps: []step{
				{move: true, el: "a", ok: true, ms: 0},
				{ms: 100, want: []Event[string]{show("a")}},
				{ms: 1100, want: []Event[string]{hide("a")}},
				{move: true, el: "a", ok: true, ms: 1200},
				{ms: 2000},
				{move: true, el: "b", ok: true, ms: 2100},
				{ms: 2200, want: []Event[string]{show("b")}},
			},
		},
		{
			name: "resting on the same element does not restart dwell",
			steps: []step{
				{move: true, el: "a", ok: true, ms: 0},
				{move: true, el: "a", ok: true, ms: 60},
				{move: true, el: "a", ok: true, ms: 100, want: []Event[string]{show("a")}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New[string](100*time.Millisecond, time.Second)
			for i, s := range tt.steps {
				var got []Event[string]
				if s.move {
					got = tr.Move(s.el, s.ok, at(s.ms))
				} else {
					got = tr.Tick(at(s.ms))
				}
				if !slices.Equal(got, s.want) {
					t.Fatalf("step %d at %dms: got %v, want %v", i, s.ms, got, s.want)
				}
			}
		})
	}
}

func TestTrackerReset(t *testing.T) {
	tr := New[int](10*time.Millisecond, -1)
	tr.Move(7, true, at(0))
	tr.Tick(at(10))
	if el, ok := tr.Showing(); !ok || el != 7 {
		t.Fatalf("Showing = %v, %v", el, ok)
	}

	if got := tr.Reset(); !slices.Equal(got, []Event[int]{{Kind: Hide, Element: 7}}) {
		t.Errorf("Reset = %v", got)
	}
	if got := tr.Reset(); got != nil {
		t.Errorf("second Reset = %v, want nothing", got)
	}
	if got := tr.Tick(at(1000)); got != nil {
		t.Errorf("Tick after Reset = %v", got)
	}
}

func TestTrackerNegativeTimeoutNeverHides(t *testing.T) {
	tr := New[int](10*time.Millisecond, -1)
	tr.Move(1, true, at(0))
	tr.Tick(at(10))
	if got := tr.Tick(at(1_000_000)); got != nil {
		t.Errorf("Tick = %v, want nothing", got)
	}
}

func TestTrackerSuspend(t *testing.T) {
	tr := New[string](10*time.Millisecond, time.Second)
	tr.Move("a", true, at(0))
	tr.Tick(at(10))

	if got := tr.Suspend(); !slices.Equal(got, []Event[string]{hide("a")}) {
		t.Errorf("Suspend = %v", got)
	}
	if got := tr.Move("b", true, at(20)); got != nil {
		t.Errorf("Move while suspended = %v", got)
	}
	if got := tr.Tick(at(100)); got != nil {
		t.Errorf("Tick while suspended = %v", got)
	}

	tr.Resume()
	tr.Move("b", true, at(200))
	if got := tr.Tick(at(210)); !slices.Equal(got, []Event[string]{show("b")}) {
		t.Errorf("after Resume = %v", got)
	}
}

func ExampleTracker() {
	tr := New[string](200*time.Millisecond, 0)
	start := time.Now()

	fmt.Println(tr.Move("router", true, start))
	fmt.Println(tr.Tick(start.Add(250 * time.Millisecond)))
	fmt.Println(tr.Move("", false, start.Add(300*time.Millisecond)))
	// Output:
	// []
	// [{show router}]
	// [{hide router}]
}
