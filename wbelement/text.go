package wbelement

import (
	"fmt"
	"strings"

	"github.com/felder/squiggy/wbpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/text/unicode/norm"
)

// layout constants of fabric text objects
const (
	defaultFontSize   = 40
	defaultLineHeight = 1.16
	fontSizeMult      = 1.13
	fontSizeFraction  = 0.222
)

// FontFace measures and outlines text.
// Implementations must be safe for concurrent use.
type FontFace interface {
	Name() string

	// Advance returns the width of `s` rendered at `size`.
	Advance(s string, size float64) (float64, error)

	// AppendOutline adds the glyphs of `s` to `p`, starting
	// on the baseline at (x, y). Y axis points down.
	AppendOutline(p *wbpath.Path, s string, size, x, y float64) error
}

// FontResolver provides the font faces, by name.
type FontResolver interface {
	Face(name string) (FontFace, error)
}

// TextAlign is the horizontal alignment of the lines
type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Text is a text, itext or textbox element.
// The glyph outlines are computed on the first draw.
type Text struct {
	Object
	Lines      []string
	FontSize   float64
	LineHeight float64
	Align      TextAlign

	face    FontFace
	widths  []float64 // of each line
	outline wbpath.Path
}

// textHeight returns the box height for `n` lines.
func textHeight(n int, size, lineHeight float64) float64 {
	if n == 0 {
		return 0
	}
	return float64(n-1)*size*lineHeight*fontSizeMult + size*fontSizeMult
}

func (t *Text) layout() error {
	var p wbpath.Path
	lineH := t.FontSize * t.LineHeight * fontSizeMult
	maxH := t.FontSize * fontSizeMult
	top := -t.Height / 2
	for i, line := range t.Lines {
		x := -t.Width / 2
		switch t.Align {
		case AlignCenter:
			x += (t.Width - t.widths[i]) / 2
		case AlignRight:
			x += t.Width - t.widths[i]
		}
		y := top + float64(i)*lineH + maxH*(1-fontSizeFraction)
		if err := t.face.AppendOutline(&p, line, t.FontSize, x, y); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	t.outline = p
	return nil
}

func (t *Text) Draw(d Driver, view rasterx.Matrix2D, opacity float64) error {
	if !t.Visible {
		return nil
	}
	if t.outline == nil {
		if err := t.layout(); err != nil {
			return err
		}
	}
	t.paint(d, view.Mult(t.Matrix()), t.outline, opacity*t.Opacity)
	return nil
}

// wrapLines breaks the lines on spaces so that
// they fit in `width`. Words larger than `width` are kept whole.
func wrapLines(face FontFace, lines []string, size, width float64) ([]string, error) {
	var out []string
	for _, line := range lines {
		words := strings.Split(line, " ")
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			w, err := face.Advance(candidate, size)
			if err != nil {
				return nil, err
			}
			if w > width && current != "" {
				out = append(out, current)
				current = word
			} else {
				current = candidate
			}
		}
		out = append(out, current)
	}
	return out, nil
}

var textUnsupported = [...]string{"styles", "underline", "linethrough", "overline", "textBackgroundColor", "charSpacing"}

func buildText(b *builder, d Descriptor) (Drawable, error) {
	if !d.Has("text") {
		return nil, fmt.Errorf("%w %q", ErrMissingProperty, "text")
	}
	content, err := d.String("text", "")
	if err != nil {
		return nil, err
	}
	content = norm.NFC.String(strings.ReplaceAll(content, "\r\n", "\n"))

	size, err := d.Float("fontSize", defaultFontSize)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, invalid("fontSize", fmt.Errorf("expected positive value, got %g", size))
	}
	lineHeight, err := d.Float("lineHeight", defaultLineHeight)
	if err != nil {
		return nil, err
	}
	align, err := d.String("textAlign", "left")
	if err != nil {
		return nil, err
	}
	for _, key := range textUnsupported {
		if raw := d.Raw(key); raw != nil && isSet(raw) {
			if err := b.handleError(key); err != nil {
				return nil, err
			}
		}
	}

	family, err := d.String("fontFamily", b.opts.FontName)
	if err != nil {
		return nil, err
	}
	if b.opts.Fonts == nil {
		return nil, fmt.Errorf("%w %q: no font resolver", ErrUnknownFont, family)
	}
	face, err := b.opts.Fonts.Face(family)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrUnknownFont, family, err)
	}

	t := &Text{FontSize: size, LineHeight: lineHeight, face: face}
	switch {
	case strings.HasPrefix(align, "center"):
		t.Align = AlignCenter
	case strings.HasPrefix(align, "right"):
		t.Align = AlignRight
	}
	t.Lines = strings.Split(content, "\n")

	// a textbox keeps its width, and wraps its lines
	fixedWidth := -1.
	if b.kind == "textbox" && d.Has("width") {
		if fixedWidth, err = d.Float("width", 0); err != nil {
			return nil, err
		}
		if t.Lines, err = wrapLines(face, t.Lines, size, fixedWidth); err != nil {
			return nil, err
		}
	}

	t.widths = make([]float64, len(t.Lines))
	maxWidth := 0.
	for i, line := range t.Lines {
		if t.widths[i], err = face.Advance(line, size); err != nil {
			return nil, err
		}
		if t.widths[i] > maxWidth {
			maxWidth = t.widths[i]
		}
	}
	if fixedWidth < 0 {
		fixedWidth = maxWidth
	}
	height := textHeight(len(t.Lines), size, lineHeight)

	// text dimensions are always computed from the content
	t.Object, err = b.parseObject(d.With("width", fixedWidth).With("height", height), fixedWidth, height)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// isSet returns false for the empty values of fabric:
// false, 0, "", {} and [].
func isSet(raw []byte) bool {
	switch strings.Join(strings.Fields(string(raw)), "") {
	case "false", "0", `""`, "{}", "[]":
		return false
	}
	return true
}
