package graph

// Reserved metadata keys understood by the layout engine and the drawer.
// Callers may store any other key for their own use.
const (
	// KeyColor overrides the vertex or edge color (KindColor).
	KeyColor = "netmap.color"
	// KeyShape overrides the vertex shape (KindEnum, Shape).
	KeyShape = "netmap.shape"
	// KeyRadius overrides the vertex radius in logical units (KindFloat).
	KeyRadius = "netmap.radius"
	// KeyLabel is drawn on or next to the element (KindString).
	KeyLabel = "netmap.label"
	// KeyLabelColor overrides the label text color (KindColor).
	KeyLabelColor = "netmap.label-color"
	// KeyVisibility controls drawing (KindEnum, Visibility).
	KeyVisibility = "netmap.visibility"
	// KeySelected is present exactly when the element is selected (KindBool).
	KeySelected = "netmap.selected"
	// KeyLayoutOrder orders vertices for sortable layouts (KindFloat or KindInt).
	KeyLayoutOrder = "netmap.layout-order"
	// KeyLocked excludes a vertex from relocation by layouts (KindBool).
	KeyLocked = "netmap.locked"
	// KeyAlpha overrides opacity, 0 transparent to 255 opaque (KindFloat or KindInt).
	KeyAlpha = "netmap.alpha"
	// KeyWidth overrides the edge width in logical units (KindFloat).
	KeyWidth = "netmap.width"
	// KeyImage is drawn for vertices with ShapeImage (KindImage).
	KeyImage = "netmap.image"
	// KeyToolTip is the default tooltip text for a vertex (KindString).
	KeyToolTip = "netmap.tooltip"
)

// Shape is the drawn shape of a vertex.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeDisk
	ShapeSquare
	ShapeSolidSquare
	ShapeDiamond
	ShapeSolidDiamond
	ShapeTriangle
	ShapeSolidTriangle
	ShapeLabel
	ShapeImage
)

var shapeNames = map[Shape]string{
	ShapeCircle:        "circle",
	ShapeDisk:          "disk",
	ShapeSquare:        "square",
	ShapeSolidSquare:   "solid-square",
	ShapeDiamond:       "diamond",
	ShapeSolidDiamond:  "solid-diamond",
	ShapeTriangle:      "triangle",
	ShapeSolidTriangle: "solid-triangle",
	ShapeLabel:         "label",
	ShapeImage:         "image",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsSolid reports whether the shape is filled rather than outlined.
func (s Shape) IsSolid() bool {
	switch s {
	case ShapeDisk, ShapeSolidSquare, ShapeSolidDiamond, ShapeSolidTriangle:
		return true
	}
	return false
}

// ParseShape resolves a shape name as produced by Shape.String.
func ParseShape(name string) (Shape, bool) {
	for s, n := range shapeNames {
		if n == name {
			return s, true
		}
	}
	return ShapeCircle, false
}

// Visibility controls whether and how an element is drawn.
type Visibility int

const (
	// VisibilityShow draws the element normally.
	VisibilityShow Visibility = iota
	// VisibilityHide skips the element entirely.
	VisibilityHide
	// VisibilityFiltered draws the element at the drawer's filtered alpha.
	VisibilityFiltered
)

func (v Visibility) String() string {
	switch v {
	case VisibilityShow:
		return "show"
	case VisibilityHide:
		return "hide"
	case VisibilityFiltered:
		return "filtered"
	}
	return "unknown"
}

// ParseVisibility resolves a visibility name.
func ParseVisibility(name string) (Visibility, bool) {
	switch name {
	case "show", "":
		return VisibilityShow, true
	case "hide":
		return VisibilityHide, true
	case "filtered":
		return VisibilityFiltered, true
	}
	return VisibilityShow, false
}

// VisibilityOf returns the element's visibility, VisibilityShow when unset.
func VisibilityOf(m *Metadata) Visibility {
	v, ok := EnumValue[Visibility](m, KeyVisibility)
	if !ok {
		return VisibilityShow
	}
	return v
}

// IsSelected reports whether the selected marker is present.
func IsSelected(m *Metadata) bool { return m.Has(KeySelected) }

// IsLocked reports whether the element carries a true locked flag.
func IsLocked(m *Metadata) bool {
	b, ok := m.Bool(KeyLocked)
	return ok && b
}
