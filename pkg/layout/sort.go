package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/johnjohndoe/netmap/pkg/graph"
)

// SortVertices orders vertices by their layout-order key. When no vertex
// carries the key the input order is returned unchanged. Otherwise vertices
// without a key sort last, and equal keys keep their input order.
func SortVertices(vs []*graph.Vertex) []*graph.Vertex {
	out := slices.Clone(vs)
	keyed := false
	for _, v := range vs {
		if _, ok := v.Meta.Float(graph.KeyLayoutOrder); ok {
			keyed = true
			break
		}
	}
	if !keyed {
		return out
	}
	slices.SortStableFunc(out, func(a, b *graph.Vertex) int {
		return cmp.Compare(sortKey(a), sortKey(b))
	})
	return out
}

func sortKey(v *graph.Vertex) float64 {
	if f, ok := v.Meta.Float(graph.KeyLayoutOrder); ok && !math.IsNaN(f) {
		return f
	}
	return math.Inf(1)
}
