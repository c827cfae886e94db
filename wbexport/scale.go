package wbexport

import (
	"math"

	"github.com/felder/squiggy/wbelement"
)

// MaxDimension is the default size limit of the exported scene,
// before padding.
const MaxDimension = 2048

// ScalePlan is the uniform scale applied to the scene.
type ScalePlan struct {
	Factor        float64 // in (0, 1]
	Width, Height float64 // scaled size of the extent

	// Rounded half up, these are the canvas size without padding.
	PixelWidth, PixelHeight int
}

func roundHalfUp(v float64) int { return int(math.Floor(v + 0.5)) }

// PlanScale returns the factor fitting `e` in `maxDimension`.
// Only the larger dimension drives the factor, which is 1 when
// `e` already fits.
func PlanScale(e Extent, maxDimension float64) ScalePlan {
	w, h := e.Width(), e.Height()
	factor := 1.
	if w > maxDimension && w >= h {
		factor = maxDimension / w
	} else if h > maxDimension && h > w {
		factor = maxDimension / h
	}
	plan := ScalePlan{Factor: factor, Width: w, Height: h}
	if factor != 1 {
		plan.Width, plan.Height = w*factor, h*factor
	}
	plan.PixelWidth, plan.PixelHeight = roundHalfUp(plan.Width), roundHalfUp(plan.Height)
	return plan
}

// Apply rescales every element toward the top left corner of `e`,
// which stays fixed. Nothing is modified when Factor is 1.
func (p ScalePlan) Apply(e Extent, objs []wbelement.Drawable) {
	if p.Factor == 1 {
		return
	}
	for _, obj := range objs {
		obj.Rescale(e.Left, e.Top, p.Factor)
	}
}
