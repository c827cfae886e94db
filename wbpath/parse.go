package wbpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errParamMismatch = errors.New("wbpath: parameter mismatch")
	errNoMoveTo      = errors.New("wbpath: path data must start with a moveto")
)

// Command is one path instruction, such as the
// fabric serialized form ["C", x1, y1, x2, y2, x, y].
// Lower case operators use relative coordinates.
type Command struct {
	Op   byte
	Args []float64
}

// argCounts is the number of parameters each operator consumes.
var argCounts = map[byte]int{
	'm': 2, 'l': 2, 'h': 1, 'v': 1,
	'c': 6, 's': 4, 'q': 4, 't': 2,
	'a': 7, 'z': 0,
}

// pathCursor is used while compiling path data
type pathCursor struct {
	path             Path
	placeX, placeY   float64 // current point
	startX, startY   float64 // start of the current sub path
	cntlPtX, cntlPtY float64 // last control point, reflected by S and T
	lastKey          byte
	inPath           bool
}

// Compile converts the commands to a path.
func Compile(cmds []Command) (Path, error) {
	var c pathCursor
	for i, cmd := range cmds {
		if err := c.addSeg(cmd.Op, cmd.Args); err != nil {
			return nil, fmt.Errorf("command %d (%c): %w", i, cmd.Op, err)
		}
	}
	return c.path, nil
}

// ParseSVG compiles SVG path data, such as "M0 0 L10 10 Z".
func ParseSVG(d string) (Path, error) {
	cmds, err := splitSVG(d)
	if err != nil {
		return nil, err
	}
	return Compile(cmds)
}

// splitSVG tokenizes SVG path data into commands.
func splitSVG(d string) ([]Command, error) {
	var (
		cmds []Command
		cur  *Command
	)
	for i := 0; i < len(d); {
		ch := d[i]
		switch {
		case ch == ' ' || ch == ',' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case isCommandLetter(ch):
			cmds = append(cmds, Command{Op: ch})
			cur = &cmds[len(cmds)-1]
			i++
		default:
			if cur == nil {
				return nil, errNoMoveTo
			}
			// arc flags may be written without separators
			if (cur.Op == 'A' || cur.Op == 'a') && isFlagIndex(len(cur.Args)) {
				if ch != '0' && ch != '1' {
					return nil, fmt.Errorf("wbpath: invalid arc flag %q", ch)
				}
				cur.Args = append(cur.Args, float64(ch-'0'))
				i++
				continue
			}
			n := scanNumber(d[i:])
			if n == 0 {
				return nil, fmt.Errorf("wbpath: unexpected character %q at offset %d", ch, i)
			}
			v, err := strconv.ParseFloat(d[i:i+n], 64)
			if err != nil {
				return nil, err
			}
			cur.Args = append(cur.Args, v)
			i += n
		}
	}
	return cmds, nil
}

func isCommandLetter(ch byte) bool {
	_, ok := argCounts[ch|0x20]
	return ok && ch != 'e' && ch != 'E'
}

// isFlagIndex returns true if the n-th argument of an arc is a flag.
func isFlagIndex(n int) bool {
	k := n % 7
	return k == 3 || k == 4
}

// scanNumber returns the length of the number at the start of s,
// or 0 if s does not start with a number.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && '0' <= s[k] && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func (c *pathCursor) reflectControlQuad() {
	switch c.lastKey {
	case 'q', 'Q', 'T', 't':
		c.cntlPtX, c.cntlPtY = 2*c.placeX-c.cntlPtX, 2*c.placeY-c.cntlPtY
	default:
		c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
	}
}

func (c *pathCursor) reflectControlCube() {
	switch c.lastKey {
	case 'c', 'C', 's', 'S':
		c.cntlPtX, c.cntlPtY = 2*c.placeX-c.cntlPtX, 2*c.placeY-c.cntlPtY
	default:
		c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
	}
}

// addSeg decodes one operator and its (possibly repeated) parameters.
func (c *pathCursor) addSeg(key byte, points []float64) error {
	count, ok := argCounts[key|0x20]
	if !ok {
		return fmt.Errorf("wbpath: unknown path operator %q", key)
	}
	if count == 0 {
		if len(points) != 0 {
			return errParamMismatch
		}
		return c.segment(key, nil)
	}
	if len(points) == 0 || len(points)%count != 0 {
		return errParamMismatch
	}
	for i := 0; i < len(points); i += count {
		k := key
		if i > 0 { // implicit lineto after a moveto
			switch key {
			case 'M':
				k = 'L'
			case 'm':
				k = 'l'
			}
		}
		if err := c.segment(k, points[i:i+count]); err != nil {
			return err
		}
	}
	return nil
}

func (c *pathCursor) segment(key byte, p []float64) error {
	if !c.inPath && key != 'M' && key != 'm' {
		return errNoMoveTo
	}
	rel := key >= 'a'
	var dx, dy float64
	if rel {
		dx, dy = c.placeX, c.placeY
	}
	switch key {
	case 'M', 'm':
		c.placeX, c.placeY = p[0]+dx, p[1]+dy
		c.startX, c.startY = c.placeX, c.placeY
		c.path.Start(Point{c.placeX, c.placeY})
		c.inPath = true
	case 'Z', 'z':
		c.path.Stop(true)
		c.placeX, c.placeY = c.startX, c.startY
	case 'L', 'l':
		c.placeX, c.placeY = p[0]+dx, p[1]+dy
		c.path.Line(Point{c.placeX, c.placeY})
	case 'H', 'h':
		c.placeX = p[0] + dx
		c.path.Line(Point{c.placeX, c.placeY})
	case 'V', 'v':
		c.placeY = p[0] + dy
		c.path.Line(Point{c.placeX, c.placeY})
	case 'Q', 'q':
		c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
		c.placeX, c.placeY = p[2]+dx, p[3]+dy
		c.path.QuadBezier(Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
	case 'T', 't':
		c.reflectControlQuad()
		c.placeX, c.placeY = p[0]+dx, p[1]+dy
		c.path.QuadBezier(Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
	case 'C', 'c':
		b := Point{p[0] + dx, p[1] + dy}
		c.cntlPtX, c.cntlPtY = p[2]+dx, p[3]+dy
		c.placeX, c.placeY = p[4]+dx, p[5]+dy
		c.path.CubeBezier(b, Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
	case 'S', 's':
		c.reflectControlCube()
		b := Point{c.cntlPtX, c.cntlPtY}
		c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
		c.placeX, c.placeY = p[2]+dx, p[3]+dy
		c.path.CubeBezier(b, Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
	case 'A', 'a':
		pts := append([]float64(nil), p...)
		pts[5] += dx
		pts[6] += dy
		ra, rb := math.Abs(pts[0]), math.Abs(pts[1])
		if ra == 0 || rb == 0 { // degenerate arcs are straight lines
			c.placeX, c.placeY = pts[5], pts[6]
			c.path.Line(Point{c.placeX, c.placeY})
			break
		}
		if pts[5] == c.placeX && pts[6] == c.placeY {
			break // no-op arc
		}
		cx, cy := findEllipseCenter(&ra, &rb, pts[2]*math.Pi/180, c.placeX,
			c.placeY, pts[5], pts[6], pts[4] == 0, pts[3] == 0)
		pts[0], pts[1] = ra, rb
		c.placeX, c.placeY = c.path.addArc(pts, cx, cy, c.placeX, c.placeY)
	default:
		return fmt.Errorf("wbpath: unknown path operator %q", strings.ToUpper(string(key)))
	}
	c.lastKey = key
	return nil
}
