// Implements a PDF backend to paint whiteboard elements,
// by wrapping github.com/jung-kurt/gofpdf.
package wbpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbpath"
	"github.com/jung-kurt/gofpdf"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var _ wbelement.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer writes the paint operations to the current page of a PDF.
// Coordinates are in points, with the Y axis pointing down.
type Renderer struct {
	pdf    *gofpdf.Fpdf
	height float64 // of the page, to convert image transforms
	images int
}

// implements rasterx.Adder, writing the path commands
type pather struct {
	pdf *gofpdf.Fpdf
}

// NewRenderer return a renderer which will
// write to the given `pdf`, whose unit must be the point.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	_, h := pdf.GetPageSize()
	return &Renderer{pdf: pdf, height: h}
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func (p pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
}

func (p pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
}

func (p pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveTo(cx, cy, x, y)
}

func (p pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

// flatColor returns the color used for a pattern:
// gradients are approximated by the color at their middle.
func flatColor(pattern wbelement.Pattern) (color.NRGBA, bool) {
	switch pattern := pattern.(type) {
	case wbelement.PlainColor:
		return pattern.NRGBA, true
	case wbelement.Gradient:
		if len(pattern.Stops) == 0 {
			return color.NRGBA{}, false
		}
		for i, stop := range pattern.Stops {
			if stop.Offset >= 0.5 {
				if i == 0 {
					return stop.Color, true
				}
				prev := pattern.Stops[i-1]
				f := (0.5 - prev.Offset) / (stop.Offset - prev.Offset)
				return mix(prev.Color, stop.Color, f), true
			}
		}
		return pattern.Stops[len(pattern.Stops)-1].Color, true
	}
	return color.NRGBA{}, false
}

func mix(a, b color.NRGBA, f float64) color.NRGBA {
	l := func(u, v uint8) uint8 { return uint8(float64(u)*(1-f) + float64(v)*f + 0.5) }
	return color.NRGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

func (rd *Renderer) FillPath(p wbpath.Path, m rasterx.Matrix2D, fill wbelement.Pattern, opacity float64, evenOdd bool) {
	c, ok := flatColor(fill)
	if !ok || len(p) == 0 {
		return
	}
	rd.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	rd.pdf.SetAlpha(opacity*float64(c.A)/255, "Normal")
	p.AddTo(pather{rd.pdf}, m)
	styleStr := "f"
	if evenOdd {
		styleStr = "f*"
	}
	rd.pdf.DrawPath(styleStr)
}

var (
	capToStyle = [...]string{
		wbelement.ButtCap:   "butt",
		wbelement.SquareCap: "square",
		wbelement.RoundCap:  "round",
	}
	joinToStyle = [...]string{
		wbelement.Miter: "miter",
		wbelement.Round: "round",
		wbelement.Bevel: "bevel",
	}
)

// lineScale is the factor applied by `m` to lengths,
// exact for uniform scales.
func lineScale(m rasterx.Matrix2D) float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

func (rd *Renderer) StrokePath(p wbpath.Path, m rasterx.Matrix2D, stroke wbelement.Pattern, opacity float64, options wbelement.StrokeOptions) {
	c, ok := flatColor(stroke)
	scale := lineScale(m)
	if !ok || len(p) == 0 || options.Width*scale <= 0 {
		return
	}
	rd.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	rd.pdf.SetAlpha(opacity*float64(c.A)/255, "Normal")
	rd.pdf.SetLineWidth(options.Width * scale)
	rd.pdf.SetLineCapStyle(capToStyle[options.Cap])
	rd.pdf.SetLineJoinStyle(joinToStyle[options.Join])
	dash := make([]float64, len(options.Dash))
	for i, v := range options.Dash {
		dash[i] = v * scale
	}
	rd.pdf.SetDashPattern(dash, options.DashOffset*scale)
	p.AddTo(pather{rd.pdf}, m)
	rd.pdf.DrawPath("D")
}

// toPDFMatrix conjugates `m` by the flip of the Y axis, so that
// it can be used as a PDF transformation.
func toPDFMatrix(m rasterx.Matrix2D, h float64) gofpdf.TransformMatrix {
	return gofpdf.TransformMatrix{
		A: m.A, B: -m.B,
		C: -m.C, D: m.D,
		E: m.C*h + m.E,
		F: h - m.D*h - m.F,
	}
}

func (rd *Renderer) DrawImage(img image.Image, src image.Rectangle, m rasterx.Matrix2D, opacity float64) {
	if src.Empty() || opacity <= 0 {
		return
	}
	crop := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(crop, crop.Bounds(), img, src.Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		rd.pdf.SetError(err)
		return
	}
	rd.images++
	name := fmt.Sprintf("img%d", rd.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	rd.pdf.RegisterImageOptionsReader(name, opts, &buf)

	rd.pdf.SetAlpha(opacity, "Normal")
	rd.pdf.TransformBegin()
	rd.pdf.Transform(toPDFMatrix(m, rd.height))
	rd.pdf.ImageOptions(name, float64(src.Min.X), float64(src.Min.Y), float64(src.Dx()), float64(src.Dy()), false, opts, 0, "")
	rd.pdf.TransformEnd()
}

// Scene is what is painted on the page.
type Scene struct {
	Width, Height float64 // page size, in points
	Background    color.Color
	View          rasterx.Matrix2D // maps element space to the page
	Objects       []wbelement.Drawable
}

// Write renders the scene as a single page PDF.
func Write(out io.Writer, scene Scene) error {
	if scene.Width <= 0 || scene.Height <= 0 {
		return fmt.Errorf("wbpdf: invalid page size %gx%g", scene.Width, scene.Height)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: scene.Width, Ht: scene.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if scene.Background != nil {
		bg := color.NRGBAModel.Convert(scene.Background).(color.NRGBA)
		if bg.A != 0 {
			pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
			pdf.SetAlpha(float64(bg.A)/255, "Normal")
			pdf.Rect(0, 0, scene.Width, scene.Height, "F")
		}
	}

	rd := NewRenderer(pdf)
	for _, obj := range scene.Objects {
		if err := obj.Draw(rd, scene.View, 1); err != nil {
			base := obj.Base()
			return fmt.Errorf("wbpdf: element %d (%q): %w", base.Index, base.Kind, err)
		}
		if err := pdf.Error(); err != nil {
			return err
		}
	}
	return pdf.Output(out)
}
