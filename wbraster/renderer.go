// Implements a raster backend to paint whiteboard
// elements, by wrapping rasterx.
package wbraster

import (
	"image"
	"image/color"
	"math"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var _ wbelement.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer paints into an RGBA image.
type Renderer struct {
	img    *image.RGBA
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
}

// NewRenderer returns a renderer drawing into `img`,
// with a rasterx.ScannerGV.
func NewRenderer(img *image.RGBA) *Renderer {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	return &Renderer{
		img:    img,
		dasher: rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, img, img.Bounds())),
		filler: rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, img, img.Bounds())),
	}
}

// resolve gradient color
func setColorFromPattern(pattern wbelement.Pattern, opacity float64, m rasterx.Matrix2D, scanner rasterx.Scanner) bool {
	switch pattern := pattern.(type) {
	case wbelement.PlainColor:
		scanner.SetColor(rasterx.ApplyOpacity(pattern, opacity))
	case wbelement.Gradient:
		fn, ok := gradientColorFunc(pattern, m, opacity)
		if !ok {
			return false
		}
		scanner.SetColor(fn)
	default:
		return false
	}
	return true
}

func (rd *Renderer) FillPath(p wbpath.Path, m rasterx.Matrix2D, fill wbelement.Pattern, opacity float64, evenOdd bool) {
	if len(p) == 0 || opacity <= 0 {
		return
	}
	rd.filler.Clear()
	rd.filler.SetWinding(!evenOdd)
	p.AddTo(rd.filler, m)
	if setColorFromPattern(fill, opacity, m, rd.filler.Scanner) {
		rd.filler.Draw()
	}
	rd.filler.SetWinding(true) // default is true
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		wbelement.Miter: rasterx.Miter,
		wbelement.Round: rasterx.Round,
		wbelement.Bevel: rasterx.Bevel,
	}

	capToFunc = [...]rasterx.CapFunc{
		wbelement.ButtCap:   rasterx.ButtCap,
		wbelement.SquareCap: rasterx.SquareCap,
		wbelement.RoundCap:  rasterx.RoundCap,
	}
)

// lineScale is the factor applied by `m` to lengths,
// exact for uniform scales.
func lineScale(m rasterx.Matrix2D) float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

func (rd *Renderer) StrokePath(p wbpath.Path, m rasterx.Matrix2D, stroke wbelement.Pattern, opacity float64, options wbelement.StrokeOptions) {
	scale := lineScale(m)
	width := options.Width * scale
	if len(p) == 0 || opacity <= 0 || width <= 0 {
		return
	}
	var dash []float64
	if len(options.Dash) != 0 {
		dash = make([]float64, len(options.Dash))
		for i, v := range options.Dash {
			dash[i] = v * scale
		}
	}
	capFn := capToFunc[options.Cap]
	rd.dasher.Clear()
	rd.dasher.SetStroke(
		fixed.Int26_6(width*64), fixed.Int26_6(options.MiterLimit*64), capFn, capFn,
		rasterx.FlatGap, joinToJoin[options.Join], dash, options.DashOffset*scale,
	)
	p.AddTo(rd.dasher, m)
	if setColorFromPattern(stroke, opacity, m, rd.dasher.Scanner) {
		rd.dasher.Draw()
	}
}

func (rd *Renderer) DrawImage(img image.Image, src image.Rectangle, m rasterx.Matrix2D, opacity float64) {
	if opacity <= 0 || src.Empty() {
		return
	}
	var opts *draw.Options
	if opacity < 1 {
		mask := image.NewUniform(color.Alpha{A: uint8(opacity*0xff + 0.5)})
		opts = &draw.Options{SrcMask: mask}
	}
	s2d := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
	draw.BiLinear.Transform(rd.img, s2d, img, src, draw.Over, opts)
}
