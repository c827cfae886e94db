package wbexport

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"iter"

	"github.com/felder/squiggy/wbpdf"
	"github.com/felder/squiggy/wbraster"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
	PDF  Format = "pdf" // vector page, painted from the canvas elements
)

// ParseFormat validates the format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case PNG, TIFF, BMP, PDF:
		return f, nil
	}
	return "", fmt.Errorf("wbexport: unknown format %q", s)
}

// Encode writes the rendered canvas to `w`.
func Encode(w io.Writer, canvas *wbraster.Canvas, format Format, compression png.CompressionLevel) error {
	img := canvas.Image()
	switch format {
	case PNG, "":
		enc := png.Encoder{CompressionLevel: compression}
		return enc.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		return bmp.Encode(w, img)
	case PDF:
		return wbpdf.Write(w, wbpdf.Scene{
			Width:      float64(canvas.Width()),
			Height:     float64(canvas.Height()),
			Background: canvas.Background,
			View:       canvas.ViewMatrix(),
			Objects:    canvas.Objects(),
		})
	}
	return fmt.Errorf("wbexport: unknown format %q", format)
}

// DefaultChunkSize is the default size of the chunks
// produced by Chunks.
const DefaultChunkSize = 32 << 10

var errStopped = errors.New("wbexport: chunk consumer stopped")

// Chunks returns the lazy sequence of the bytes written by `encode`, cut in
// chunks of at most `size` bytes. The encoder runs in its own goroutine and
// is blocked until the previous chunk has been consumed.
// A yielded chunk is only valid until the next iteration.
// Encoding failures are yielded once, as *ExportError, and end the sequence.
func Chunks(format Format, encode func(w io.Writer) error, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		pr, pw := io.Pipe()
		done := make(chan struct{})
		go func() {
			defer close(done)
			pw.CloseWithError(encode(pw))
		}()
		defer func() {
			// unblocks the encoder when the consumer stops early
			pr.CloseWithError(errStopped)
			<-done
		}()

		buf := make([]byte, size)
		for {
			n, err := io.ReadFull(pr, buf)
			if n > 0 && !yield(buf[:n], nil) {
				return
			}
			switch err {
			case nil:
			case io.EOF, io.ErrUnexpectedEOF:
				return
			default:
				yield(nil, &ExportError{Format: format, Err: err})
				return
			}
		}
	}
}

// CanvasChunks encodes the canvas lazily, with Chunks.
func CanvasChunks(canvas *wbraster.Canvas, cfg Config) iter.Seq2[[]byte, error] {
	return Chunks(cfg.Format, func(w io.Writer) error {
		return Encode(w, canvas, cfg.Format, cfg.PNGCompression)
	}, cfg.ChunkSize)
}
