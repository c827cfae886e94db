package wbelement

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// optionnalColor is nil for "none" or "transparent"
type optionnalColor *color.NRGBA

// parseColor decodes a CSS color, as used in fabric
// fill, stroke and backgroundColor properties.
func parseColor(s string) (optionnalColor, error) {
	s = strings.TrimSpace(s)
	low := strings.ToLower(s)
	switch {
	case low == "" || low == "none" || low == "transparent":
		return nil, nil
	case strings.HasPrefix(low, "#"):
		return parseHexColor(low)
	case strings.HasPrefix(low, "rgb"):
		return parseFunctionalColor(low, "rgb")
	case strings.HasPrefix(low, "hsl"):
		return parseFunctionalColor(low, "hsl")
	}
	c, ok := colornames.Map[low]
	if !ok {
		return nil, fmt.Errorf("unknown color %q", s)
	}
	return &color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}

// ParseColor is the exported form of the color syntax of the elements.
// It returns nil for "none" and "transparent".
func ParseColor(s string) (color.Color, error) {
	c, err := parseColor(s)
	if c == nil || err != nil {
		return nil, err
	}
	return *c, nil
}

func parseHexColor(s string) (optionnalColor, error) {
	alpha := uint8(0xff)
	switch len(s) {
	case 5: // #rgba
		a, err := strconv.ParseUint(s[4:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		alpha = uint8(a * 0x11)
		s = s[:4]
	case 9: // #rrggbbaa
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %s", s, err)
	}
	r, g, b := c.RGB255()
	return &color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// parseFunctionalColor handles rgb(), rgba(), hsl() and hsla()
func parseFunctionalColor(s, fn string) (optionnalColor, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	args := splitOnCommaOrSpace(strings.ReplaceAll(s[open+1:end], "/", " "))
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	alpha := 1.
	if len(args) == 4 {
		a, err := parseComponent(args[3], 1)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q: %s", s, err)
		}
		alpha = a
	}
	var c color.NRGBA
	if fn == "rgb" {
		var comps [3]uint8
		for i := range comps {
			v, err := parseComponent(args[i], 255)
			if err != nil {
				return nil, fmt.Errorf("invalid color %q: %s", s, err)
			}
			comps[i] = clampByte(v)
		}
		c = color.NRGBA{R: comps[0], G: comps[1], B: comps[2]}
	} else {
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q: %s", s, err)
		}
		sat, err := parseComponent(args[1], 1)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q: %s", s, err)
		}
		light, err := parseComponent(args[2], 1)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q: %s", s, err)
		}
		for h < 0 {
			h += 360
		}
		for h >= 360 {
			h -= 360
		}
		c.R, c.G, c.B = colorful.Hsl(h, clamp01(sat), clamp01(light)).Clamped().RGB255()
	}
	c.A = clampByte(alpha * 255)
	return &c, nil
}

// parseComponent reads a number or a percentage of `scale`
func parseComponent(v string, scale float64) (float64, error) {
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		return f / 100 * scale, err
	}
	return strconv.ParseFloat(v, 64)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clampByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f + 0.5)
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' '
		})
}
