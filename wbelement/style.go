package wbelement

import (
	"encoding/json"
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// Pattern is either PlainColor or Gradient
type Pattern interface {
	isPattern()
}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// PlainColor is a uniform color.
type PlainColor struct {
	color.NRGBA
}

// NewPlainColor returns a PlainColor from the given RGBA components
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{color.NRGBA{R: r, G: g, B: b, A: a}}
}

// GradStop is one color of a gradient. Stop opacity
// is already merged in the alpha channel.
type GradStop struct {
	Offset float64
	Color  color.NRGBA
}

// Gradient is a linear or radial color ramp,
// with coordinates expressed in the local space of the element.
//
// For linear gradients, (X1, Y1) and (X2, Y2) are the end points
// of the ramp. For radial gradients, (X2, Y2) is the center, and
// the ramp goes from R1 to R2.
type Gradient struct {
	Radial         bool
	X1, Y1, X2, Y2 float64
	R1, R2         float64
	Stops          []GradStop // sorted by offset
}

// JoinMode type to specify how segments join.
type JoinMode uint8

const (
	Miter JoinMode = iota
	Round
	Bevel
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

// StrokeOptions parametrize the stroking of an outline.
// Lengths are in the local space of the element.
type StrokeOptions struct {
	Width      float64
	Cap        CapMode
	Join       JoinMode
	MiterLimit float64
	Dash       []float64 // nil for a solid line
	DashOffset float64
}

// Style holds the painting properties of an element.
type Style struct {
	Fill, Stroke Pattern // nil disable painting
	Background   Pattern // painted on the element box, nil for none
	EvenOdd      bool
	StrokeFirst  bool

	StrokeOptions StrokeOptions
}

// DefaultStyle fills black, with no stroke, as fabric objects do.
var DefaultStyle = Style{
	Fill:          NewPlainColor(0, 0, 0, 0xff),
	StrokeOptions: StrokeOptions{Width: 1, MiterLimit: 4},
}

// paintsStroke returns true if a visible stroke is drawn.
func (s Style) paintsStroke() bool {
	return s.Stroke != nil && s.StrokeOptions.Width > 0
}

// parseStyle reads the style properties. `w` and `h` are
// the dimensions of the element box, used to resolve gradients.
func (b *builder) parseStyle(d Descriptor, w, h float64) (Style, error) {
	st := DefaultStyle
	var err error
	if raw := d.props["fill"]; raw != nil {
		if st.Fill, err = b.parsePattern("fill", raw, w, h); err != nil {
			return st, err
		}
	}
	if raw := d.props["stroke"]; raw != nil {
		if st.Stroke, err = b.parsePattern("stroke", raw, w, h); err != nil {
			return st, err
		}
	}
	if raw := d.props["backgroundColor"]; raw != nil {
		if st.Background, err = b.parsePattern("backgroundColor", raw, w, h); err != nil {
			return st, err
		}
	}

	opts := &st.StrokeOptions
	if opts.Width, err = d.Float("strokeWidth", 1); err != nil {
		return st, err
	}
	if opts.Width < 0 {
		return st, invalid("strokeWidth", fmt.Errorf("negative value %g", opts.Width))
	}
	if opts.MiterLimit, err = d.Float("strokeMiterLimit", 4); err != nil {
		return st, err
	}
	if opts.DashOffset, err = d.Float("strokeDashOffset", 0); err != nil {
		return st, err
	}
	if err = d.Decode("strokeDashArray", &opts.Dash); err != nil {
		return st, err
	}
	opts.Dash = normalizeDash(opts.Dash)

	s, err := d.String("strokeLineCap", "butt")
	if err != nil {
		return st, err
	}
	switch s {
	case "butt":
		opts.Cap = ButtCap
	case "round":
		opts.Cap = RoundCap
	case "square":
		opts.Cap = SquareCap
	default:
		return st, invalid("strokeLineCap", fmt.Errorf("unknown value %q", s))
	}
	if s, err = d.String("strokeLineJoin", "miter"); err != nil {
		return st, err
	}
	switch s {
	case "miter":
		opts.Join = Miter
	case "round":
		opts.Join = Round
	case "bevel":
		opts.Join = Bevel
	default:
		return st, invalid("strokeLineJoin", fmt.Errorf("unknown value %q", s))
	}
	if s, err = d.String("fillRule", "nonzero"); err != nil {
		return st, err
	}
	switch s {
	case "nonzero":
	case "evenodd":
		st.EvenOdd = true
	default:
		return st, invalid("fillRule", fmt.Errorf("unknown value %q", s))
	}
	if s, err = d.String("paintFirst", "fill"); err != nil {
		return st, err
	}
	st.StrokeFirst = s == "stroke"
	return st, nil
}

// normalizeDash drops invalid dash arrays and repeats odd ones,
// so that on and off lengths alternate.
func normalizeDash(dash []float64) []float64 {
	if len(dash) == 0 {
		return nil
	}
	sum := 0.
	for _, v := range dash {
		if v < 0 {
			return nil
		}
		sum += v
	}
	if sum == 0 {
		return nil
	}
	if len(dash)%2 == 1 {
		dash = append(dash, dash...)
	}
	return dash
}

// parsePattern decodes a color string or a gradient object.
// A nil Pattern is returned for null, empty and transparent values.
func (b *builder) parsePattern(key string, raw json.RawMessage, w, h float64) (Pattern, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		c, err := parseColor(s)
		if err != nil {
			return nil, invalid(key, err)
		}
		if c == nil {
			return nil, nil
		}
		return PlainColor{*c}, nil
	}
	var grad gradientDescriptor
	if err := json.Unmarshal(raw, &grad); err != nil {
		return nil, invalid(key, err)
	}
	return b.parseGradient(key, grad, w, h)
}

// gradientDescriptor is the fabric serialization of a gradient
type gradientDescriptor struct {
	Type              string             `json:"type"`
	Coords            map[string]float64 `json:"coords"`
	ColorStops        json.RawMessage    `json:"colorStops"`
	OffsetX           float64            `json:"offsetX"`
	OffsetY           float64            `json:"offsetY"`
	GradientUnits     string             `json:"gradientUnits"`
	GradientTransform []float64          `json:"gradientTransform"`
}

type colorStopDescriptor struct {
	Offset  float64  `json:"offset"`
	Color   string   `json:"color"`
	Opacity *float64 `json:"opacity"`
}

func (b *builder) parseGradient(key string, grad gradientDescriptor, w, h float64) (Pattern, error) {
	var out Gradient
	switch grad.Type {
	case "linear":
	case "radial":
		out.Radial = true
	default:
		return nil, invalid(key, fmt.Errorf("unknown gradient type %q", grad.Type))
	}
	if len(grad.GradientTransform) != 0 && !isIdentity(grad.GradientTransform) {
		if err := b.handleError(key + ".gradientTransform"); err != nil {
			return nil, err
		}
	}

	stops, err := parseColorStops(grad.ColorStops)
	if err != nil {
		return nil, invalid(key, err)
	}
	if len(stops) == 0 {
		return nil, nil
	}
	out.Stops = stops

	unitX, unitY := 1., 1.
	if grad.GradientUnits == "percentage" {
		unitX, unitY = w, h
	}
	// coords are relative to the top left corner of the box,
	// which is at (-w/2, -h/2) in local space
	c := grad.Coords
	out.X1 = c["x1"]*unitX + grad.OffsetX - w/2
	out.Y1 = c["y1"]*unitY + grad.OffsetY - h/2
	out.X2 = c["x2"]*unitX + grad.OffsetX - w/2
	out.Y2 = c["y2"]*unitY + grad.OffsetY - h/2
	if out.Radial {
		out.R1 = c["r1"] * unitX
		out.R2 = c["r2"] * unitX
	}
	return out, nil
}

func isIdentity(m []float64) bool {
	if len(m) != 6 {
		return false
	}
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}

// parseColorStops accepts the list form [{offset, color, opacity}]
// and the legacy map form {"0": "red", "1": "blue"}.
func parseColorStops(raw json.RawMessage) ([]GradStop, error) {
	if isNull(raw) {
		return nil, nil
	}
	var list []colorStopDescriptor
	if err := json.Unmarshal(raw, &list); err != nil {
		var m map[string]string
		if err2 := json.Unmarshal(raw, &m); err2 != nil {
			return nil, err
		}
		for off, col := range m {
			f, err := strconv.ParseFloat(strings.TrimSpace(off), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid stop offset %q", off)
			}
			list = append(list, colorStopDescriptor{Offset: f, Color: col})
		}
	}
	out := make([]GradStop, 0, len(list))
	for _, stop := range list {
		c, err := parseColor(stop.Color)
		if err != nil {
			return nil, err
		}
		var nc color.NRGBA // transparent
		if c != nil {
			nc = *c
		}
		if stop.Opacity != nil {
			nc.A = clampByte(float64(nc.A) * clamp01(*stop.Opacity))
		}
		out = append(out, GradStop{Offset: clamp01(stop.Offset), Color: nc})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out, nil
}
