// Package render draws graphs through a retained visual tree.
//
// A [Drawer] converts each vertex and edge into a [Visual]: a list of
// [Primitive]s in logical coordinates plus the geometry used for hit
// testing. Visuals live in a [Tree] keyed by element, so selecting a vertex
// or dragging it rebuilds one visual instead of the whole drawing:
//
//	d := render.NewDrawer(render.DefaultStyle())
//	d.DrawGraph(g, dc)   // full rebuild
//	d.RedrawVertex(v, dc) // one element
//	d.Tree().Render(surface, transform, dc.Background)
//
// Appearance comes from per-element metadata with [Style] as the fallback.
// Hidden elements get no visual; filtered elements are drawn with
// Style.FilteredAlpha.
//
// [Tree.Render] maps primitives to device pixels with a
// viewport.Transform and draws them on a [Surface]. Sinks for bitmaps and
// SVG documents live in package sink.
package render
