// Package sink provides drawing surfaces for the render package.
//
//   - [Raster]: an RGBA bitmap drawn with fogleman/gg, encodable as PNG
//   - [SVG]: a vector document built as text
//
// Both implement render.Surface in device pixels, so the same visual tree
// can be shown on screen, exported as an image, or written as SVG:
//
//	r := sink.NewRaster(800, 600)
//	tree.Render(r, transform, style.Background)
//	err := r.EncodePNG(w)
//
// Raster text uses gg's built-in 7x13 face scaled to the requested size, so
// no font files are needed.
package sink
