package wbraster

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbpath"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrFontNotFound is returned by FontBook.Face for unregistered names.
var ErrFontNotFound = errors.New("wbraster: font not found")

var _ wbelement.FontFace = (*Font)(nil)

// Font is a TrueType or OpenType font, registered under a fixed name.
// It is safe for concurrent use.
type Font struct {
	name    string
	font    *sfnt.Font
	buffers sync.Pool // of *sfnt.Buffer
}

// LoadFont parses the font file content.
func LoadFont(name string, data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("wbraster: parsing font %q: %w", name, err)
	}
	return &Font{name: name, font: f}, nil
}

// LoadFontFile reads and parses the font file at `path`.
func LoadFontFile(name, path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wbraster: reading font: %w", err)
	}
	return LoadFont(name, data)
}

var (
	defaultFont     *Font
	defaultFontOnce sync.Once
)

// DefaultFont returns the embedded Go Regular font,
// registered as wbelement.DefaultFontName.
func DefaultFont() *Font {
	defaultFontOnce.Do(func() {
		f, err := LoadFont(wbelement.DefaultFontName, goregular.TTF)
		if err != nil {
			panic(err) // the embedded font is valid
		}
		defaultFont = f
	})
	return defaultFont
}

func (f *Font) Name() string { return f.name }

func (f *Font) buffer() *sfnt.Buffer {
	if b, ok := f.buffers.Get().(*sfnt.Buffer); ok {
		return b
	}
	return new(sfnt.Buffer)
}

func toPPEM(size float64) fixed.Int26_6 { return fixed.Int26_6(size * 64) }

// glyphs calls fn for each rune of `s`, with the pen position
// relative to the start of the text.
func (f *Font) glyphs(s string, size float64, fn func(b *sfnt.Buffer, g sfnt.GlyphIndex, pen fixed.Int26_6) error) (fixed.Int26_6, error) {
	b := f.buffer()
	defer f.buffers.Put(b)
	ppem := toPPEM(size)
	var (
		pen   fixed.Int26_6
		prev  sfnt.GlyphIndex
		first = true
	)
	for _, r := range s {
		g, err := f.font.GlyphIndex(b, r)
		if err != nil {
			return 0, err
		}
		if !first {
			// fonts without kerning return ErrNotFound
			if k, err := f.font.Kern(b, prev, g, ppem, font.HintingNone); err == nil {
				pen += k
			}
		}
		if fn != nil {
			if err := fn(b, g, pen); err != nil {
				return 0, err
			}
		}
		adv, err := f.font.GlyphAdvance(b, g, ppem, font.HintingNone)
		if err != nil {
			return 0, err
		}
		pen += adv
		prev, first = g, false
	}
	return pen, nil
}

// Advance returns the width of `s` at the given size.
func (f *Font) Advance(s string, size float64) (float64, error) {
	w, err := f.glyphs(s, size, nil)
	return float64(w) / 64, err
}

// AppendOutline adds the glyph outlines of `s` to `p`,
// starting on the baseline at (x, y).
func (f *Font) AppendOutline(p *wbpath.Path, s string, size, x, y float64) error {
	ppem := toPPEM(size)
	pt := func(a fixed.Point26_6, pen fixed.Int26_6) wbpath.Point {
		return wbpath.Point{X: x + float64(pen+a.X)/64, Y: y + float64(a.Y)/64}
	}
	_, err := f.glyphs(s, size, func(b *sfnt.Buffer, g sfnt.GlyphIndex, pen fixed.Int26_6) error {
		segments, err := f.font.LoadGlyph(b, g, ppem, nil)
		if err != nil {
			return fmt.Errorf("loading glyph %d: %w", g, err)
		}
		open := false
		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				p.Stop(open)
				p.Start(pt(seg.Args[0], pen))
				open = true
			case sfnt.SegmentOpLineTo:
				p.Line(pt(seg.Args[0], pen))
			case sfnt.SegmentOpQuadTo:
				p.QuadBezier(pt(seg.Args[0], pen), pt(seg.Args[1], pen))
			case sfnt.SegmentOpCubeTo:
				p.CubeBezier(pt(seg.Args[0], pen), pt(seg.Args[1], pen), pt(seg.Args[2], pen))
			}
		}
		p.Stop(open)
		return nil
	})
	return err
}

// FontBook resolves fonts by name. It is safe for concurrent use.
type FontBook struct {
	mu    sync.RWMutex
	fonts map[string]*Font
}

var _ wbelement.FontResolver = (*FontBook)(nil)

// NewFontBook returns a book with the given fonts.
func NewFontBook(fonts ...*Font) *FontBook {
	fb := &FontBook{fonts: make(map[string]*Font)}
	for _, f := range fonts {
		fb.Add(f)
	}
	return fb
}

// Add registers `f` under its name, replacing any previous font.
func (fb *FontBook) Add(f *Font) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.fonts[f.name] = f
}

func (fb *FontBook) Face(name string) (wbelement.FontFace, error) {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	f, ok := fb.fonts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFontNotFound, name)
	}
	return f, nil
}
