package wbexport

import (
	"context"
	"image/color"
	"log/slog"
	"sort"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbraster"
)

// Padding is the default margin added on each side of the scene.
const Padding = 10

// sortByZIndex returns a copy of `objs`, sorted by ascending z-index.
// Elements with the same index keep their relative order.
func sortByZIndex(objs []wbelement.Drawable) []wbelement.Drawable {
	sorted := append([]wbelement.Drawable(nil), objs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ZIndex() < sorted[j].ZIndex() })
	return sorted
}

// Compose paints the scaled scene on a new canvas, with `padding`
// pixels around `e`. Elements are inserted by z-index and rendered once.
// Painting failures are returned as *wbraster.RenderError.
func Compose(ctx context.Context, plan ScalePlan, e Extent, objs []wbelement.Drawable, padding int, background color.Color) (*wbraster.Canvas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	canvas, err := wbraster.NewCanvas(plan.PixelWidth+2*padding, plan.PixelHeight+2*padding)
	if err != nil {
		return nil, err
	}
	canvas.Background = background
	canvas.AbsolutePan(e.Left-float64(padding), e.Top-float64(padding))
	canvas.RenderOnAddRemove = false
	if err = canvas.Add(sortByZIndex(objs)...); err != nil {
		return nil, err
	}
	if err = canvas.RenderAll(); err != nil {
		return nil, err
	}
	Logger().Debug("composed canvas",
		slog.Int("width", canvas.Width()), slog.Int("height", canvas.Height()), slog.Int("elements", len(objs)))
	return canvas, nil
}
