package wbexport

import (
	"fmt"
	"math"

	"github.com/felder/squiggy/wbelement"
)

// Extent is the union of element bounding rectangles.
type Extent struct {
	Left, Top, Right, Bottom float64
}

// NewExtent returns the unbounded extent, neutral for Add and Union.
func NewExtent() Extent {
	return Extent{Left: math.Inf(1), Top: math.Inf(1), Right: math.Inf(-1), Bottom: math.Inf(-1)}
}

// Add extends `e` to contain `r`.
func (e *Extent) Add(r wbelement.Rect) {
	e.Left = math.Min(e.Left, r.Left)
	e.Top = math.Min(e.Top, r.Top)
	e.Right = math.Max(e.Right, r.Right())
	e.Bottom = math.Max(e.Bottom, r.Bottom())
}

// Union returns the smallest extent containing `e` and `other`.
func (e Extent) Union(other Extent) Extent {
	return Extent{
		Left:   math.Min(e.Left, other.Left),
		Top:    math.Min(e.Top, other.Top),
		Right:  math.Max(e.Right, other.Right),
		Bottom: math.Max(e.Bottom, other.Bottom),
	}
}

// Empty returns true if nothing has been added.
func (e Extent) Empty() bool { return e.Right < e.Left || e.Bottom < e.Top }

func (e Extent) Width() float64 { return e.Right - e.Left }

func (e Extent) Height() float64 { return e.Bottom - e.Top }

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// Aggregate folds the bounding rectangles of `objs`.
// It returns ErrEmptyScene if `objs` is empty, and a
// *wbelement.DeserializationError for the element making
// the extent size overflow.
func Aggregate(objs []wbelement.Drawable) (Extent, error) {
	if len(objs) == 0 {
		return Extent{}, ErrEmptyScene
	}
	e := NewExtent()
	for _, obj := range objs {
		e.Add(obj.BoundingRect())
		if !finite(e.Width()) || !finite(e.Height()) {
			base := obj.Base()
			return Extent{}, &wbelement.DeserializationError{
				Index: base.Index,
				Type:  base.Kind,
				Err:   fmt.Errorf("%w: scene size out of range", wbelement.ErrInvalidProperty),
			}
		}
	}
	return e, nil
}
