package wbelement

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/felder/squiggy/wbpath"
	"github.com/srwiley/rasterx"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDataURLSources(t *testing.T) {
	svg := "data:image/svg+xml;charset=utf-8," + url.PathEscape(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 3"><rect width="4" height="3" fill="red"/></svg>`)
	for _, test := range []struct {
		src  string
		w, h float64
		size image.Point
	}{
		{pngDataURL(t, 30, 20), 0, 0, image.Pt(30, 20)},
		{pngDataURL(t, 30, 20), 50, 50, image.Pt(30, 20)}, // bitmaps are not resampled
		{svg, 0, 0, image.Pt(4, 3)},
		{svg, 40, 30, image.Pt(40, 30)},
	} {
		img, err := loadImage(test.src, test.w, test.h)
		if err != nil {
			t.Fatalf("%.40s: %s", test.src, err)
		}
		if got := img.Bounds().Size(); got != test.size {
			t.Errorf("%.40s: expected size %v, got %v", test.src, test.size, got)
		}
	}

	for _, src := range []string{
		"data:image/png;base64",            // missing comma
		"data:image/png;base64,!!!!",       // invalid payload
		"data:text/plain,not%20an%20image", // not an image
	} {
		if _, err := loadImage(src, 0, 0); err == nil {
			t.Errorf("%s: expected error", src)
		}
	}
}

func TestImageElement(t *testing.T) {
	d := mustDescriptor(t, map[string]interface{}{
		"type": "image", "src": pngDataURL(t, 30, 20), "left": 0, "top": 0, "originX": "left", "originY": "top",
	})
	dr, err := Deserialize(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := dr.BoundingRect(); got != (Rect{0, 0, 30, 20}) {
		t.Errorf("expected size of the bitmap, got %v", got)
	}

	// cropped
	d = mustDescriptor(t, map[string]interface{}{
		"type": "image", "src": pngDataURL(t, 30, 20), "width": 10, "height": 10, "cropX": 5, "cropY": 5,
	})
	dr, err = Deserialize(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var rec recordingDriver
	if err = dr.Draw(&rec, rasterx.Identity, 1); err != nil {
		t.Fatal(err)
	}
	if len(rec.images) != 1 || rec.images[0] != image.Rect(5, 5, 15, 15) {
		t.Errorf("unexpected source regions %v", rec.images)
	}
}

func TestImageFile(t *testing.T) {
	dir := t.TempDir()
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 30"><rect width="40" height="30" fill="red"/></svg>`
	path := filepath.Join(dir, "icon.svg")
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, src := range []string{path, "file://" + filepath.ToSlash(path)} {
		d := mustDescriptor(t, map[string]interface{}{"type": "image", "src": src})
		dr, err := Deserialize(d, Options{})
		if err != nil {
			t.Fatalf("%s: %s", src, err)
		}
		bitmap := dr.(*Image).Bitmap
		if size := bitmap.Bounds().Size(); size != image.Pt(40, 30) {
			t.Errorf("expected view box size, got %v", size)
		}
		if r, _, _, a := bitmap.At(20, 15).RGBA(); r != 0xffff || a != 0xffff {
			t.Errorf("expected red pixel, got %v", bitmap.At(20, 15))
		}
	}

	_, err := loadImage("http://example.com/a.png", 0, 0)
	if !errors.Is(err, ErrRemoteSource) {
		t.Errorf("expected ErrRemoteSource, got %v", err)
	}
}

// recordingDriver records the paint calls
type recordingDriver struct {
	fills, strokes []color.Color
	images         []image.Rectangle
	order          string // f for fills, s for strokes
}

func (rd *recordingDriver) FillPath(p wbpath.Path, m rasterx.Matrix2D, fill Pattern, opacity float64, evenOdd bool) {
	if c, ok := fill.(PlainColor); ok {
		rd.fills = append(rd.fills, c)
	}
	rd.order += "f"
}

func (rd *recordingDriver) StrokePath(p wbpath.Path, m rasterx.Matrix2D, stroke Pattern, opacity float64, options StrokeOptions) {
	if c, ok := stroke.(PlainColor); ok {
		rd.strokes = append(rd.strokes, c)
	}
	rd.order += "s"
}

func (rd *recordingDriver) DrawImage(img image.Image, src image.Rectangle, m rasterx.Matrix2D, opacity float64) {
	rd.images = append(rd.images, src)
}

func TestPaintOrder(t *testing.T) {
	red, blue := NewPlainColor(255, 0, 0, 255), NewPlainColor(0, 0, 255, 255)
	for _, test := range []struct {
		paintFirst string
		visible    bool
		order      string
	}{
		{"fill", true, "fs"},
		{"stroke", true, "sf"},
		{"fill", false, ""},
	} {
		d := mustDescriptor(t, map[string]interface{}{
			"type": "rect", "width": 10, "height": 10, "fill": "red", "stroke": "blue",
			"paintFirst": test.paintFirst, "visible": test.visible,
		})
		dr, err := Deserialize(d, Options{})
		if err != nil {
			t.Fatal(err)
		}
		var rec recordingDriver
		if err := dr.Draw(&rec, rasterx.Identity, 1); err != nil {
			t.Fatal(err)
		}
		if rec.order != test.order {
			t.Fatalf("%v: unexpected calls %q", test, rec.order)
		}
		if test.order != "" && (rec.fills[0] != red || rec.strokes[0] != blue) {
			t.Errorf("unexpected colors %v %v", rec.fills, rec.strokes)
		}
	}
}
