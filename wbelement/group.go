package wbelement

import (
	"fmt"
	"math"

	"github.com/srwiley/rasterx"
)

// Group is a list of elements positioned relative
// to the center of the group.
type Group struct {
	Object
	Children []Drawable
}

func (g *Group) Draw(d Driver, view rasterx.Matrix2D, opacity float64) error {
	if !g.Visible {
		return nil
	}
	m := view.Mult(g.Matrix())
	if g.Style.Background != nil {
		g.paint(d, m, nil, opacity*g.Opacity)
	}
	for i, child := range g.Children {
		if err := child.Draw(d, m, opacity*g.Opacity); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

func buildGroup(b *builder, d Descriptor) (Drawable, error) {
	if !d.Has("objects") {
		return nil, fmt.Errorf("%w %q", ErrMissingProperty, "objects")
	}
	var objects []Descriptor
	if err := d.Decode("objects", &objects); err != nil {
		return nil, err
	}
	children := make([]Drawable, len(objects))
	for i, obj := range objects {
		child, err := build(b.opts, b.index, obj)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		children[i] = child
	}

	// size defaults to the extent of the children
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, child := range children {
		r := child.BoundingRect()
		minX, minY = math.Min(minX, r.Left), math.Min(minY, r.Top)
		maxX, maxY = math.Max(maxX, r.Right()), math.Max(maxY, r.Bottom())
	}
	w, h := 0., 0.
	if len(children) != 0 {
		w, h = 2*math.Max(math.Abs(minX), math.Abs(maxX)), 2*math.Max(math.Abs(minY), math.Abs(maxY))
	}

	o, err := b.parseObject(d, w, h)
	if err != nil {
		return nil, err
	}
	background := o.Style.Background
	o.Style = Style{Background: background} // children carry their own style
	return &Group{Object: o, Children: children}, nil
}
