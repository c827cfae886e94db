package wbraster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/felder/squiggy/wbelement"
	"github.com/srwiley/rasterx"
)

// RenderError reports the element which could not be painted.
type RenderError struct {
	Index int    // position in the input list
	Type  string // normalized type tag
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering element %d (%q): %s", e.Index, e.Type, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Canvas is a raster surface holding an ordered list of elements.
// A Canvas is not safe for concurrent use.
type Canvas struct {
	// RenderOnAddRemove triggers a full render after each Add
	RenderOnAddRemove bool

	// Background is painted before the elements,
	// opaque white by default.
	Background color.Color

	img        *image.RGBA
	panX, panY float64
	objects    []wbelement.Drawable
	renders    int
}

// NewCanvas returns an empty canvas, with RenderOnAddRemove enabled.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wbraster: invalid canvas size %dx%d", width, height)
	}
	return &Canvas{
		RenderOnAddRemove: true,
		Background:        color.White,
		img:               image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Width returns the width of the canvas, in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the height of the canvas, in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// AbsolutePan sets the element space point
// shown at the top left corner of the canvas.
func (c *Canvas) AbsolutePan(x, y float64) {
	c.panX, c.panY = x, y
}

// ViewMatrix maps element space to canvas pixels.
func (c *Canvas) ViewMatrix() rasterx.Matrix2D {
	return rasterx.Identity.Translate(-c.panX, -c.panY)
}

// Add appends the elements, which are painted in insertion order.
func (c *Canvas) Add(objs ...wbelement.Drawable) error {
	c.objects = append(c.objects, objs...)
	if c.RenderOnAddRemove {
		return c.RenderAll()
	}
	return nil
}

// Objects returns the elements, in paint order.
func (c *Canvas) Objects() []wbelement.Drawable { return c.objects }

// RenderAll clears the canvas and paints every element.
// The first failure aborts the rendering.
func (c *Canvas) RenderAll() error {
	c.renders++
	bg := c.Background
	if bg == nil {
		bg = color.Transparent
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	rd := NewRenderer(c.img)
	view := c.ViewMatrix()
	for _, obj := range c.objects {
		if err := obj.Draw(rd, view, 1); err != nil {
			base := obj.Base()
			return &RenderError{Index: base.Index, Type: base.Kind, Err: err}
		}
	}
	return nil
}

// Renders returns the number of RenderAll calls.
func (c *Canvas) Renders() int { return c.renders }

// Image returns the raster of the last rendering.
func (c *Canvas) Image() *image.RGBA { return c.img }
