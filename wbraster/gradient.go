package wbraster

import (
	"image/color"
	"math"

	"github.com/felder/squiggy/wbelement"
	"github.com/srwiley/rasterx"
)

const epsilonF = 1e-5

// invert returns the inverse of `m`, or false if
// `m` is singular.
func invert(m rasterx.Matrix2D) (rasterx.Matrix2D, bool) {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return rasterx.Matrix2D{}, false
	}
	return rasterx.Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// gradientColorFunc returns the color of each pixel, computed
// in the local space of the element: `m` maps local space to pixels.
// Colors are padded outside the ramp.
func gradientColorFunc(grad wbelement.Gradient, m rasterx.Matrix2D, opacity float64) (rasterx.ColorFunc, bool) {
	inv, ok := invert(m)
	if !ok || len(grad.Stops) == 0 {
		return nil, false
	}
	var param func(x, y float64) float64
	if grad.Radial {
		cx, cy, r1, r2 := grad.X2, grad.Y2, grad.R1, grad.R2
		param = func(x, y float64) float64 {
			d := math.Hypot(x-cx, y-cy)
			if math.Abs(r2-r1) < epsilonF {
				if d < r2 {
					return 0
				}
				return 1
			}
			return (d - r1) / (r2 - r1)
		}
	} else {
		dx, dy := grad.X2-grad.X1, grad.Y2-grad.Y1
		l2 := dx*dx + dy*dy
		param = func(x, y float64) float64 {
			if l2 < epsilonF {
				return 1
			}
			return ((x-grad.X1)*dx + (y-grad.Y1)*dy) / l2
		}
	}
	return func(x, y int) color.Color {
		lx, ly := inv.Transform(float64(x)+0.5, float64(y)+0.5)
		return stopColor(grad.Stops, param(lx, ly), opacity)
	}, true
}

// stopColor interpolates the stops at `t`, in non premultiplied space.
func stopColor(stops []wbelement.GradStop, t, opacity float64) color.NRGBA {
	c := stops[len(stops)-1].Color
	switch {
	case t <= stops[0].Offset:
		c = stops[0].Color
	case t < stops[len(stops)-1].Offset:
		for i := 1; i < len(stops); i++ {
			s0, s1 := stops[i-1], stops[i]
			if t >= s1.Offset {
				continue
			}
			span := s1.Offset - s0.Offset
			if span < epsilonF {
				c = s1.Color
				break
			}
			f := (t - s0.Offset) / span
			c = color.NRGBA{
				R: lerp(s0.Color.R, s1.Color.R, f),
				G: lerp(s0.Color.G, s1.Color.G, f),
				B: lerp(s0.Color.B, s1.Color.B, f),
				A: lerp(s0.Color.A, s1.Color.A, f),
			}
			break
		}
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a)*(1-f) + float64(b)*f + 0.5)
}
