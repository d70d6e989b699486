// Package graph provides the vertex and edge model drawn by netmap.
//
// A [Graph] owns its vertices and edges. Each [Vertex] carries a logical
// location, written by layout algorithms and vertex drags, and a [Metadata]
// map of per-element overrides. Each [Edge] references two vertices of the
// same graph and may be directed.
//
// # Metadata
//
// Metadata is a tagged-variant map from string keys to [Value]s. A Value holds
// exactly one of bool, int, float, string, color, enum, image or point, and
// typed getters report ok=false on a kind mismatch instead of converting:
//
//	v.Meta.Set(graph.KeyColor, graph.Color(color.NRGBA{R: 255, A: 255}))
//	v.Meta.Set(graph.KeyShape, graph.Enum(graph.ShapeSolidDiamond))
//	r, ok := v.Meta.Float(graph.KeyRadius)
//
// Keys prefixed with "netmap." are reserved and listed in keys.go. Any other
// key is free for callers.
//
// # Selection
//
// [KeySelected] is present exactly when the element is selected. The drawer
// consults this key rather than a separate selection set, so code that
// selects elements must keep both in step.
//
// # Concurrency
//
// Graph is not safe for concurrent use. A running layout owns vertex
// locations between iteration handshakes; see package layout.
package graph
