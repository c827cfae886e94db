// Implements an abstract representation of
// whiteboard outlines, expressed in the local space
// of an element, which can then be consumed by a painting driver
// after applying the element transform.
package wbpath

import (
	"fmt"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Point is a location in the local space of an element.
type Point struct{ X, Y float64 }

// Bounds defines a bounding box, such as a path extent.
type Bounds struct{ X, Y, W, H float64 }

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different path commands
type Operation interface {
	command() pathCommand
}

type MoveTo Point

type LineTo Point

type QuadTo [2]Point

type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic operations.
// Higher-level shapes are reduced to a path.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", op.X, op.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", op.X, op.Y)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", op[0].X, op[0].Y, op[1].X, op[1].Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", op[0].X, op[0].Y,
				op[1].X, op[1].Y, op[2].X, op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Translate shifts every point of the path in place.
func (p Path) Translate(dx, dy float64) {
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			p[i] = MoveTo{op.X + dx, op.Y + dy}
		case LineTo:
			p[i] = LineTo{op.X + dx, op.Y + dy}
		case QuadTo:
			for j := range op {
				op[j].X += dx
				op[j].Y += dy
			}
			p[i] = op
		case CubicTo:
			for j := range op {
				op[j].X += dx
				op[j].Y += dy
			}
			p[i] = op
		}
	}
}

// toFixed applies `m` to the local point (x, y).
func toFixed(m rasterx.Matrix2D, pt Point) fixed.Point26_6 {
	x, y := m.Transform(pt.X, pt.Y)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// AddTo sends the path to `q` after applying the transform `m`,
// which maps local coordinates to device pixels.
func (p Path) AddTo(q rasterx.Adder, m rasterx.Matrix2D) {
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			q.Stop(false) // implicit close if currently in path.
			q.Start(toFixed(m, Point(op)))
		case LineTo:
			q.Line(toFixed(m, Point(op)))
		case QuadTo:
			q.QuadBezier(toFixed(m, op[0]), toFixed(m, op[1]))
		case CubicTo:
			q.CubeBezier(toFixed(m, op[0]), toFixed(m, op[1]), toFixed(m, op[2]))
		case Close:
			q.Stop(true)
		}
	}
	q.Stop(false)
}
