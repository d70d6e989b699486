package scene

import (
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/johnjohndoe/netmap/pkg/cache"
	"github.com/johnjohndoe/netmap/pkg/geom"
	"github.com/johnjohndoe/netmap/pkg/graph"
)

// Positions maps vertex IDs to logical locations.
type Positions map[string]geom.Point

// Snapshot records the location of every vertex of g.
func Snapshot(g *graph.Graph) Positions {
	p := make(Positions, g.VertexCount())
	for _, v := range g.Vertices() {
		p[v.ID] = v.Location
	}
	return p
}

// Apply moves the vertices of g to their recorded locations. Locked vertices
// and vertices without a record keep theirs. It returns the number of
// vertices moved.
func (p Positions) Apply(g *graph.Graph) int {
	n := 0
	for _, v := range g.Vertices() {
		if graph.IsLocked(v.Meta) {
			continue
		}
		if loc, ok := p[v.ID]; ok {
			v.Location = loc
			n++
		}
	}
	return n
}

type positionEntry struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// MarshalJSON writes the positions as a list sorted by ID, so equal
// positions always encode to the same bytes.
func (p Positions) MarshalJSON() ([]byte, error) {
	out := make([]positionEntry, 0, len(p))
	for _, id := range slices.Sorted(maps.Keys(p)) {
		out = append(out, positionEntry{ID: id, X: p[id].X, Y: p[id].Y})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the list written by MarshalJSON.
func (p *Positions) UnmarshalJSON(data []byte) error {
	var in []positionEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = make(Positions, len(in))
	for _, e := range in {
		(*p)[e.ID] = geom.Pt(e.X, e.Y)
	}
	return nil
}

// Hash identifies the positions for artifact cache keys.
func (p Positions) Hash() string {
	data, _ := json.Marshal(p)
	return cache.Hash(data)
}

// WriteJSON writes indented positions to w.
func (p Positions) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadPositions decodes positions written by WriteJSON.
func ReadPositions(r io.Reader) (Positions, error) {
	var p Positions
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	return p, nil
}
