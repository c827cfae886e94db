package wbelement

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/felder/squiggy/wbpath"
	"github.com/srwiley/rasterx"
)

// Rect is an axis aligned rectangle, in canvas space.
type Rect struct {
	Left, Top, Width, Height float64
}

// Right returns Left + Width
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns Top + Height
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Driver knows how to do the actual paint operations,
// without any knowledge of the whiteboard elements.
// The matrix `m` maps the local space of the element
// (or the pixel space of an image) to device pixels.
type Driver interface {
	FillPath(p wbpath.Path, m rasterx.Matrix2D, fill Pattern, opacity float64, evenOdd bool)
	StrokePath(p wbpath.Path, m rasterx.Matrix2D, stroke Pattern, opacity float64, options StrokeOptions)
	// DrawImage paints the `src` region of `img`.
	DrawImage(img image.Image, src image.Rectangle, m rasterx.Matrix2D, opacity float64)
}

// Drawable is the renderable form of a descriptor.
type Drawable interface {
	// Base exposes the properties common to every element.
	Base() *Object

	// BoundingRect returns the canvas space extent of the element,
	// accounting for its transform and stroke.
	BoundingRect() Rect

	// ZIndex is the layering index, lower values are painted first.
	ZIndex() float64

	// Rescale multiplies the scale of the element by `factor`, and moves
	// its position toward (anchorX, anchorY) accordingly.
	Rescale(anchorX, anchorY, factor float64)

	// Draw paints the element. `view` is applied after the
	// element transform, and `opacity` is inherited from the parent.
	Draw(d Driver, view rasterx.Matrix2D, opacity float64) error
}

// Object holds the properties shared by all the elements.
// The local box of an element has size Width x Height
// and is centered on the local origin.
type Object struct {
	Kind  string // normalized type tag
	Index int    // position in the input list

	Left, Top        float64
	Width, Height    float64
	ScaleX, ScaleY   float64
	Angle            float64 // in degrees, clockwise
	OriginX, OriginY float64 // fraction of the box, 0.5 is the center
	FlipX, FlipY     bool
	Opacity          float64
	Visible          bool
	Z                float64

	Style Style
}

func (o *Object) Base() *Object { return o }

func (o *Object) ZIndex() float64 { return o.Z }

func (o *Object) Rescale(anchorX, anchorY, factor float64) {
	o.ScaleX *= factor
	o.ScaleY *= factor
	o.Left = anchorX + (o.Left-anchorX)*factor
	o.Top = anchorY + (o.Top-anchorY)*factor
}

// strokeExtent is the stroke width added to the box.
func (o *Object) strokeExtent() float64 {
	if o.Style.paintsStroke() {
		return o.Style.StrokeOptions.Width
	}
	return 0
}

// Matrix maps the local space of the element to its parent space.
func (o *Object) Matrix() rasterx.Matrix2D {
	sw := o.strokeExtent()
	dimX, dimY := (o.Width+sw)*o.ScaleX, (o.Height+sw)*o.ScaleY
	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	// (Left, Top) is the origin point, which is moved to the center
	return rasterx.Identity.
		Translate(o.Left, o.Top).
		Rotate(o.Angle*math.Pi/180).
		Translate((0.5-o.OriginX)*dimX, (0.5-o.OriginY)*dimY).
		Scale(sx, sy)
}

func (o *Object) BoundingRect() Rect {
	return o.boundsIn(rasterx.Identity)
}

// boundsIn returns the extent of the box, transformed by `parent`.
func (o *Object) boundsIn(parent rasterx.Matrix2D) Rect {
	m := parent.Mult(o.Matrix())
	sw := o.strokeExtent()
	hw, hh := (o.Width+sw)/2, (o.Height+sw)/2
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}} {
		x, y := m.Transform(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// paint draws the background, then `outline` with the style of the element.
func (o *Object) paint(d Driver, m rasterx.Matrix2D, outline wbpath.Path, opacity float64) {
	st := o.Style
	if st.Background != nil {
		var box wbpath.Path
		box.AddRect(-o.Width/2, -o.Height/2, o.Width/2, o.Height/2)
		d.FillPath(box, m, st.Background, opacity, false)
	}
	fill := func() {
		if st.Fill != nil {
			d.FillPath(outline, m, st.Fill, opacity, st.EvenOdd)
		}
	}
	stroke := func() {
		if st.paintsStroke() {
			d.StrokePath(outline, m, st.Stroke, opacity, st.StrokeOptions)
		}
	}
	if st.StrokeFirst {
		stroke()
		fill()
	} else {
		fill()
		stroke()
	}
}

// unsupported lists the properties which are understood
// but not rendered, with a predicate telling if the value
// has an effect.
var unsupported = [...]struct {
	key       string
	hasEffect func(raw json.RawMessage) bool
}{
	{"shadow", func(raw json.RawMessage) bool { return !isNull(raw) }},
	{"clipPath", func(raw json.RawMessage) bool { return !isNull(raw) }},
	{"filters", func(raw json.RawMessage) bool {
		var l []json.RawMessage
		return json.Unmarshal(raw, &l) != nil || len(l) != 0
	}},
	{"skewX", isNonZero},
	{"skewY", isNonZero},
}

func isNonZero(raw json.RawMessage) bool {
	var f float64
	return json.Unmarshal(raw, &f) != nil || f != 0
}

// parseOrigin accepts the keywords of fabric and numbers.
func parseOrigin(d Descriptor, key, low, high string) (float64, error) {
	raw := d.Raw(key)
	if raw == nil {
		return 0.5, nil // objects are centered by default
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, invalid(key, err)
	}
	switch s {
	case low:
		return 0, nil
	case "center":
		return 0.5, nil
	case high:
		return 1, nil
	}
	return 0, invalid(key, fmt.Errorf("unknown value %q", s))
}

// parseObject reads the common properties. Width and height
// are read with the given defaults: some elements compute them.
func (b *builder) parseObject(d Descriptor, width, height float64) (Object, error) {
	o := Object{Kind: b.kind, Index: b.index}
	var err error
	for _, field := range [...]struct {
		key string
		ptr *float64
		def float64
	}{
		{"left", &o.Left, 0},
		{"top", &o.Top, 0},
		{"width", &o.Width, width},
		{"height", &o.Height, height},
		{"scaleX", &o.ScaleX, 1},
		{"scaleY", &o.ScaleY, 1},
		{"angle", &o.Angle, 0},
		{"opacity", &o.Opacity, 1},
		{"zIndex", &o.Z, 0},
	} {
		if *field.ptr, err = d.Float(field.key, field.def); err != nil {
			return o, err
		}
	}
	if o.Width < 0 || o.Height < 0 {
		return o, invalid("width", fmt.Errorf("negative dimensions %gx%g", o.Width, o.Height))
	}
	if o.OriginX, err = parseOrigin(d, "originX", "left", "right"); err != nil {
		return o, err
	}
	if o.OriginY, err = parseOrigin(d, "originY", "top", "bottom"); err != nil {
		return o, err
	}
	if o.FlipX, err = d.Bool("flipX", false); err != nil {
		return o, err
	}
	if o.FlipY, err = d.Bool("flipY", false); err != nil {
		return o, err
	}
	if o.Visible, err = d.Bool("visible", true); err != nil {
		return o, err
	}
	o.Opacity = clamp01(o.Opacity)

	for _, u := range unsupported {
		if raw := d.Raw(u.key); raw != nil && u.hasEffect(raw) {
			if err := b.handleError(u.key); err != nil {
				return o, err
			}
		}
	}

	o.Style, err = b.parseStyle(d, o.Width, o.Height)
	return o, err
}
