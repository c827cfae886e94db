package wbexport

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/felder/squiggy/wbelement"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func collect(t *testing.T, chunks func(yield func([]byte, error) bool)) []byte {
	t.Helper()
	var out []byte
	for chunk, err := range chunks {
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, chunk...)
	}
	return out
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"png", "tiff", "bmp", "pdf"} {
		if f, err := ParseFormat(s); err != nil || string(f) != s {
			t.Errorf("%s: unexpected result %s %v", s, f, err)
		}
	}
	if _, err := ParseFormat("jpeg"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestChunkSizes(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)
	var sizes []int
	var out []byte
	for chunk, err := range Chunks(PNG, func(w io.Writer) error {
		// many small writes
		for i := 0; i < len(data); i += 7 {
			if _, err := w.Write(data[i:min(i+7, len(data))]); err != nil {
				return err
			}
		}
		return nil
	}, 1024) {
		if err != nil {
			t.Fatal(err)
		}
		sizes = append(sizes, len(chunk))
		out = append(out, chunk...)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("chunks differ from the encoded bytes")
	}
	for i, s := range sizes {
		if s > 1024 || (i < len(sizes)-1 && s != 1024) {
			t.Errorf("unexpected chunk sizes %v", sizes)
			break
		}
	}
}

func TestChunksEarlyStop(t *testing.T) {
	var encodeErr error
	encoded := make(chan struct{})
	chunks := Chunks(PNG, func(w io.Writer) error {
		defer close(encoded)
		for i := 0; i < 1000; i++ {
			if _, err := w.Write(make([]byte, 100)); err != nil {
				encodeErr = err
				return err
			}
		}
		return nil
	}, 100)
	for range chunks {
		break
	}
	// the encoder goroutine has returned when the iteration ends
	select {
	case <-encoded:
	default:
		t.Fatal("encoder still running")
	}
	if !errors.Is(encodeErr, errStopped) {
		t.Errorf("expected errStopped, got %v", encodeErr)
	}
}

func TestChunksError(t *testing.T) {
	failure := errors.New("disk full")
	var got []error
	for chunk, err := range Chunks(TIFF, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return failure
	}, 1024) {
		if err != nil {
			got = append(got, err)
		} else if string(chunk) != "partial" {
			t.Errorf("unexpected chunk %q", chunk)
		}
	}
	var ee *ExportError
	if len(got) != 1 || !errors.As(got[0], &ee) || ee.Format != TIFF || !errors.Is(ee, failure) {
		t.Errorf("expected one ExportError, got %v", got)
	}
}

func TestEncodeFormats(t *testing.T) {
	c := compose(t, []wbelement.Drawable{testRect(t, 0, 0, 30, 20, 0, "red")})
	cfg := DefaultConfig()
	decoders := map[Format]func(io.Reader) (image.Image, error){
		PNG:  png.Decode,
		TIFF: tiff.Decode,
		BMP:  bmp.Decode,
	}
	for format, decode := range decoders {
		cfg.Format = format
		data := collect(t, CanvasChunks(c, cfg))
		img, err := decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: %s", format, err)
		}
		if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
			t.Errorf("%s: unexpected size %v", format, b)
		}
		if r, g, b, _ := img.At(25, 20).RGBA(); r != 0xffff || g != 0 || b != 0 {
			t.Errorf("%s: expected red center", format)
		}
	}

	cfg.Format = PDF
	data := collect(t, CanvasChunks(c, cfg))
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("invalid PDF header %q", data[:min(10, len(data))])
	}
}
