package control

import (
	"context"
	"image"
	"time"

	"github.com/johnjohndoe/netmap/pkg/errors"
	"github.com/johnjohndoe/netmap/pkg/observability"
	"github.com/johnjohndoe/netmap/pkg/render"
	"github.com/johnjohndoe/netmap/pkg/render/sink"
)

// ExportImage renders the current view into a w by h bitmap. The view is
// stretched so the export shows what the live view shows. The live
// transform and size are left exactly as they were.
func (c *Control) ExportImage(w, h int) (image.Image, error) {
	start := time.Now()
	r, err := c.export("ExportImage", w, h, func() render.Surface { return sink.NewRaster(w, h) })
	observability.Render().OnExport(context.Background(), "png", w, h, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return r.(*sink.Raster).Bitmap(), nil
}

// ExportSVG renders the current view as a w by h SVG document.
func (c *Control) ExportSVG(w, h int) ([]byte, error) {
	start := time.Now()
	s, err := c.export("ExportSVG", w, h, func() render.Surface { return sink.NewSVG(float64(w), float64(h)) })
	observability.Render().OnExport(context.Background(), "svg", w, h, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s.(*sink.SVG).Bytes(), nil
}

func (c *Control) export(op string, w, h int, newSurface func() render.Surface) (render.Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.InvalidArgument(op, "size %dx%d must be positive", w, h)
	}
	if err := c.checkStable(op); err != nil {
		return nil, err
	}

	saved := c.tr
	defer func() { c.tr = saved }()
	c.tr = saved.ForExport(float64(w)/c.size.W, float64(h)/c.size.H)

	s := newSurface()
	tree := c.drawer.Tree()
	marquee, hasMarquee := tree.Overlay(render.OverlayMarquee)
	ghost, hasGhost := tree.Overlay(render.OverlayDrag)
	tree.RemoveOverlay(render.OverlayMarquee)
	tree.RemoveOverlay(render.OverlayDrag)
	c.Render(s)
	if hasMarquee {
		tree.SetOverlay(render.OverlayMarquee, marquee)
	}
	if hasGhost {
		tree.SetOverlay(render.OverlayDrag, ghost)
	}
	c.logger.Debug("exported", "op", op, "width", w, "height", h)
	return s, nil
}
