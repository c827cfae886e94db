package wbexport

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/felder/squiggy/wbelement"
	"golang.org/x/image/bmp"
)

func readScene(t *testing.T, input string) []wbelement.Descriptor {
	t.Helper()
	descs, err := ReadElements(strings.NewReader(input), 0)
	if err != nil {
		t.Fatal(err)
	}
	return descs
}

// splitOutput separates the image bytes from the trailing record.
func splitOutput(t *testing.T, out []byte) ([]byte, string) {
	t.Helper()
	i := bytes.LastIndexByte(out, '\n')
	if i < 0 {
		t.Fatalf("missing trailing record in %d bytes", len(out))
	}
	return out[:i], string(out[i+1:])
}

func TestExportSingleRect(t *testing.T) {
	descs := readScene(t, `[{"type":"rect","left":0,"top":0,"scaleX":1,"scaleY":1,"zIndex":0,"width":100,"height":100}]`)
	var out bytes.Buffer
	dims, err := Export(context.Background(), descs, &out)
	if err != nil {
		t.Fatal(err)
	}
	if dims != (Dimensions{Width: 120, Height: 120}) {
		t.Errorf("unexpected dimensions %v", dims)
	}
	data, record := splitOutput(t, out.Bytes())
	if record != `{"width":120,"height":120}` {
		t.Errorf("unexpected trailing record %q", record)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 120 {
		t.Errorf("unexpected image size %v", b)
	}
}

func TestExportLargeScene(t *testing.T) {
	descs := readScene(t, `[`+
		`{"type":"rect","originX":"left","originY":"top","left":0,"top":0,"width":1000,"height":100,"fill":"red"},`+
		`{"type":"rect","originX":"left","originY":"top","left":2000,"top":400,"width":1000,"height":100,"fill":"blue"}]`)
	var out bytes.Buffer
	dims, err := Export(context.Background(), descs, &out, WithFormat(BMP))
	if err != nil {
		t.Fatal(err)
	}
	if dims != (Dimensions{Width: 2068, Height: 361}) {
		t.Errorf("unexpected dimensions %v", dims)
	}
	data, record := splitOutput(t, out.Bytes())
	if record != `{"width":2068,"height":361}` {
		t.Errorf("unexpected trailing record %q", record)
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		x, y    int
		r, g, b uint32
	}{
		{12, 12, 0xffff, 0, 0},              // scaled red rect
		{2050, 345, 0, 0, 0xffff},           // scaled blue rect
		{1380, 286, 0, 0, 0xffff},           // blue rect starts at 2000*2048/3000
		{2060, 355, 0xffff, 0xffff, 0xffff}, // padding
		{1000, 200, 0xffff, 0xffff, 0xffff}, // between the rects
	} {
		if r, g, b, _ := img.At(test.x, test.y).RGBA(); r != test.r || g != test.g || b != test.b {
			t.Errorf("(%d, %d): expected %x %x %x, got %x %x %x", test.x, test.y, test.r, test.g, test.b, r, g, b)
		}
	}
}

func TestExportErrors(t *testing.T) {
	var out bytes.Buffer
	if _, err := Export(context.Background(), nil, &out); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("expected ErrEmptyScene, got %v", err)
	}

	descs := readScene(t, `[{"type":"rect","width":10,"height":10},{"type":"spaceship"}]`)
	_, err := Export(context.Background(), descs, &out)
	var de *wbelement.DeserializationError
	if !errors.As(err, &de) || de.Index != 1 || !errors.Is(err, wbelement.ErrUnknownType) {
		t.Errorf("expected DeserializationError, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Export(ctx, readScene(t, `[{"type":"rect","width":10,"height":10}]`), &out); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("unexpected output %d bytes", out.Len())
	}
}

func TestExportOptions(t *testing.T) {
	descs := readScene(t, `[{"type":"circle","radius":100}]`)
	var out bytes.Buffer
	dims, err := Export(context.Background(), descs, &out,
		WithMaxDimension(50), WithPadding(0), WithBackground(nil), WithChunkSize(64), WithBufferSize(128))
	if err != nil {
		t.Fatal(err)
	}
	if dims != (Dimensions{Width: 50, Height: 50}) {
		t.Fatalf("unexpected dimensions %v", dims)
	}
	data, _ := splitOutput(t, out.Bytes())
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("expected transparent corner")
	}
	if r, g, b, a := img.At(25, 25).RGBA(); r != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Error("expected black center")
	}
}
