package wbelement

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/felder/squiggy/wbpath"
	"github.com/srwiley/rasterx"
)

// Shape is an element drawn from a single outline:
// rectangles, ellipses, lines, polygons and paths.
type Shape struct {
	Object
	Outline wbpath.Path // in local space
}

func (s *Shape) Draw(d Driver, view rasterx.Matrix2D, opacity float64) error {
	if !s.Visible {
		return nil
	}
	s.paint(d, view.Mult(s.Matrix()), s.Outline, opacity*s.Opacity)
	return nil
}

func buildRect(b *builder, d Descriptor) (Drawable, error) {
	w, err := d.RequiredFloat("width")
	if err != nil {
		return nil, err
	}
	h, err := d.RequiredFloat("height")
	if err != nil {
		return nil, err
	}
	o, err := b.parseObject(d, w, h)
	if err != nil {
		return nil, err
	}
	rx, err := d.Float("rx", 0)
	if err != nil {
		return nil, err
	}
	ry, err := d.Float("ry", 0)
	if err != nil {
		return nil, err
	}
	s := &Shape{Object: o}
	hw, hh := o.Width/2, o.Height/2
	if rx > 0 || ry > 0 {
		if rx == 0 {
			rx = ry
		} else if ry == 0 {
			ry = rx
		}
		s.Outline.AddRoundRect(-hw, -hh, hw, hh, rx, ry)
	} else {
		s.Outline.AddRect(-hw, -hh, hw, hh)
	}
	return s, nil
}

func buildCircle(b *builder, d Descriptor) (Drawable, error) {
	r, err := d.RequiredFloat("radius")
	if err != nil {
		return nil, err
	}
	if r < 0 {
		return nil, invalid("radius", fmt.Errorf("negative value %g", r))
	}
	return buildEllipseShape(b, d, r, r)
}

func buildEllipse(b *builder, d Descriptor) (Drawable, error) {
	rx, err := d.RequiredFloat("rx")
	if err != nil {
		return nil, err
	}
	ry, err := d.RequiredFloat("ry")
	if err != nil {
		return nil, err
	}
	if rx < 0 || ry < 0 {
		return nil, invalid("rx", fmt.Errorf("negative radii %g, %g", rx, ry))
	}
	return buildEllipseShape(b, d, rx, ry)
}

// buildEllipseShape ignores width and height, which
// are always derived from the radii.
func buildEllipseShape(b *builder, d Descriptor, rx, ry float64) (Drawable, error) {
	o, err := b.parseObject(d, 2*rx, 2*ry)
	if err != nil {
		return nil, err
	}
	o.Width, o.Height = 2*rx, 2*ry
	s := &Shape{Object: o}
	s.Outline.AddEllipse(0, 0, rx, ry)
	return s, nil
}

func buildTriangle(b *builder, d Descriptor) (Drawable, error) {
	w, err := d.RequiredFloat("width")
	if err != nil {
		return nil, err
	}
	h, err := d.RequiredFloat("height")
	if err != nil {
		return nil, err
	}
	o, err := b.parseObject(d, w, h)
	if err != nil {
		return nil, err
	}
	s := &Shape{Object: o}
	hw, hh := o.Width/2, o.Height/2
	s.Outline.Start(wbpath.Point{X: -hw, Y: hh})
	s.Outline.Line(wbpath.Point{X: 0, Y: -hh})
	s.Outline.Line(wbpath.Point{X: hw, Y: hh})
	s.Outline.Stop(true)
	return s, nil
}

// buildLine reads the end points of the segment, whose bounding box
// defines the element box. Lines are never filled.
func buildLine(b *builder, d Descriptor) (Drawable, error) {
	var pts [4]float64
	for i, key := range [...]string{"x1", "y1", "x2", "y2"} {
		v, err := d.Float(key, 0)
		if err != nil {
			return nil, err
		}
		pts[i] = v
	}
	x1, y1, x2, y2 := pts[0], pts[1], pts[2], pts[3]
	w, h := math.Abs(x2-x1), math.Abs(y2-y1)
	o, err := b.parseObject(d, w, h)
	if err != nil {
		return nil, err
	}
	o.Width, o.Height = w, h
	o.Style.Fill = nil
	if !d.Has("left") {
		o.Left = math.Min(x1, x2) + o.OriginX*w
	}
	if !d.Has("top") {
		o.Top = math.Min(y1, y2) + o.OriginY*h
	}
	s := &Shape{Object: o}
	sx, sy := 1., 1.
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	s.Outline.Start(wbpath.Point{X: -sx * w / 2, Y: -sy * h / 2})
	s.Outline.Line(wbpath.Point{X: sx * w / 2, Y: sy * h / 2})
	return s, nil
}

func buildPolyline(b *builder, d Descriptor) (Drawable, error) {
	return buildPoly(b, d, false)
}

func buildPolygon(b *builder, d Descriptor) (Drawable, error) {
	return buildPoly(b, d, true)
}

func buildPoly(b *builder, d Descriptor, closed bool) (Drawable, error) {
	if !d.Has("points") {
		return nil, fmt.Errorf("%w %q", ErrMissingProperty, "points")
	}
	var points []wbpath.Point
	if err := d.Decode("points", &points); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, invalid("points", fmt.Errorf("expected at least 2 points, got %d", len(points)))
	}
	var p wbpath.Path
	p.Start(points[0])
	for _, pt := range points[1:] {
		p.Line(pt)
	}
	p.Stop(closed)
	return b.outlineShape(d, p)
}

func buildPath(b *builder, d Descriptor) (Drawable, error) {
	raw := d.Raw("path")
	if raw == nil {
		return nil, fmt.Errorf("%w %q", ErrMissingProperty, "path")
	}
	var (
		p   wbpath.Path
		err error
	)
	var data string
	if json.Unmarshal(raw, &data) == nil {
		p, err = wbpath.ParseSVG(data)
	} else {
		var cmds []wbpath.Command
		cmds, err = decodeCommands(raw)
		if err == nil {
			p, err = wbpath.Compile(cmds)
		}
	}
	if err != nil {
		return nil, invalid("path", err)
	}
	return b.outlineShape(d, p)
}

// decodeCommands reads the fabric form [["M", 0, 0], ["L", 10, 10]]
func decodeCommands(raw json.RawMessage) ([]wbpath.Command, error) {
	var items [][]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]wbpath.Command, len(items))
	for i, item := range items {
		if len(item) == 0 {
			return nil, fmt.Errorf("empty command at index %d", i)
		}
		var op string
		if err := json.Unmarshal(item[0], &op); err != nil || len(op) != 1 {
			return nil, fmt.Errorf("invalid operator at index %d", i)
		}
		args := make([]float64, len(item)-1)
		for j, a := range item[1:] {
			if err := json.Unmarshal(a, &args[j]); err != nil {
				return nil, fmt.Errorf("invalid argument at index %d: %s", i, err)
			}
		}
		out[i] = wbpath.Command{Op: op[0], Args: args}
	}
	return out, nil
}

// outlineShape sizes the element box after the exact bounds of
// `p`, and moves `p` to local space by removing the path offset,
// which defaults to the center of the bounds.
func (b *builder) outlineShape(d Descriptor, p wbpath.Path) (Drawable, error) {
	bounds, ok := p.Bounds()
	if !ok {
		return nil, invalid("path", fmt.Errorf("empty outline"))
	}
	o, err := b.parseObject(d, bounds.W, bounds.H)
	if err != nil {
		return nil, err
	}
	o.Width, o.Height = bounds.W, bounds.H
	offset := wbpath.Point{X: bounds.X + bounds.W/2, Y: bounds.Y + bounds.H/2}
	if err := d.Decode("pathOffset", &offset); err != nil {
		return nil, err
	}
	if !d.Has("left") {
		o.Left = bounds.X + o.OriginX*bounds.W
	}
	if !d.Has("top") {
		o.Top = bounds.Y + o.OriginY*bounds.H
	}
	p.Translate(-offset.X, -offset.Y)
	return &Shape{Object: o, Outline: p}, nil
}
