package wbraster

import (
	"errors"
	"testing"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbpath"
)

func TestDefaultFont(t *testing.T) {
	f := DefaultFont()
	if f.Name() != wbelement.DefaultFontName {
		t.Errorf("unexpected font name %s", f.Name())
	}
	if w, err := f.Advance("", 12); err != nil || w != 0 {
		t.Errorf("expected empty advance, got %g %v", w, err)
	}
	w1, err := f.Advance("i", 40)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := f.Advance("iiii", 40)
	if err != nil {
		t.Fatal(err)
	}
	if w1 <= 0 || w2 < 3.9*w1 {
		t.Errorf("inconsistent advances %g %g", w1, w2)
	}
	w3, _ := f.Advance("iiii", 80)
	if w3 < 1.9*w2 {
		t.Errorf("advance should scale with size: %g %g", w2, w3)
	}

	var p wbpath.Path
	if err = f.AppendOutline(&p, "Ho", 40, 10, 50); err != nil {
		t.Fatal(err)
	}
	b, ok := p.Bounds()
	if !ok {
		t.Fatal("empty outline")
	}
	// glyphs are above the baseline, after the start point
	if b.X < 10 || b.Y+b.H > 51 || b.Y > 50-20 {
		t.Errorf("unexpected outline bounds %v", b)
	}

	p = p[:0]
	if err = f.AppendOutline(&p, "  ", 40, 0, 0); err != nil || len(p) != 0 {
		t.Errorf("expected empty outline for spaces, got %v %v", p, err)
	}
}

func TestFontBook(t *testing.T) {
	fb := NewFontBook(DefaultFont())
	if _, err := fb.Face(wbelement.DefaultFontName); err != nil {
		t.Fatal(err)
	}
	if _, err := fb.Face("Comic Sans"); !errors.Is(err, ErrFontNotFound) {
		t.Errorf("expected ErrFontNotFound, got %v", err)
	}
	if _, err := LoadFont("broken", []byte("not a font")); err == nil {
		t.Error("expected error for invalid font data")
	}
	if _, err := LoadFontFile("missing", "testdata/missing.ttf"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderText(t *testing.T) {
	c, _ := NewCanvas(200, 80)
	c.RenderOnAddRemove = false
	c.Add(deserialize(t, map[string]interface{}{
		"type": "text", "text": "Hello", "left": 10, "top": 10, "originX": "left", "originY": "top",
		"fontFamily": "Arial, sans-serif", "fill": "#000",
	}))
	if err := c.RenderAll(); err != nil {
		t.Fatal(err)
	}
	dark := 0
	img := c.Image()
	for y := 0; y < 80; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark < 100 {
		t.Errorf("expected painted glyphs, got %d dark pixels", dark)
	}
}
