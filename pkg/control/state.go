package control

// LayoutState is the drawing status of a Control. It changes only through
// the Control's own methods.
type LayoutState int

const (
	Stable LayoutState = iota
	LayoutRequired
	LayingOut
	LayoutIterationCompleted
	LayoutCompleted
	TransformRequired
)

var stateNames = [...]string{
	Stable:                   "stable",
	LayoutRequired:           "layout-required",
	LayingOut:                "laying-out",
	LayoutIterationCompleted: "layout-iteration-completed",
	LayoutCompleted:          "layout-completed",
	TransformRequired:        "transform-required",
}

func (s LayoutState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// IsDrawing reports whether the state is anything but Stable.
func (s LayoutState) IsDrawing() bool { return s != Stable }

// MouseSelectionMode controls what a click selects.
type MouseSelectionMode int

const (
	SelectNothing MouseSelectionMode = iota
	SelectVertexOnly
	SelectVertexAndIncidentEdges
)

func (m MouseSelectionMode) String() string {
	switch m {
	case SelectNothing:
		return "none"
	case SelectVertexOnly:
		return "vertex"
	case SelectVertexAndIncidentEdges:
		return "vertex-and-edges"
	}
	return "unknown"
}

// ParseMouseSelectionMode parses the names returned by String.
func ParseMouseSelectionMode(s string) (MouseSelectionMode, bool) {
	for _, m := range []MouseSelectionMode{SelectNothing, SelectVertexOnly, SelectVertexAndIncidentEdges} {
		if m.String() == s {
			return m, true
		}
	}
	return SelectNothing, false
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every key in m2 is held.
func (m Modifiers) Has(m2 Modifiers) bool { return m2 != 0 && m&m2 == m2 }

// ParseModifier parses "shift", "ctrl" or "alt".
func ParseModifier(s string) (Modifiers, bool) {
	switch s {
	case "shift":
		return ModShift, true
	case "ctrl", "control":
		return ModCtrl, true
	case "alt":
		return ModAlt, true
	}
	return 0, false
}

// Key is a keyboard key the controller reacts to.
type Key int

const (
	KeyEscape Key = iota + 1
)
