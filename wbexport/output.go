package wbexport

import (
	"bufio"
	"encoding/json"
	"io"
	"iter"
)

// DefaultBufferSize is the default size of the Writer buffer.
const DefaultBufferSize = 64 << 10

// Dimensions are the pixel size of the exported image,
// written after the image bytes.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Writer streams chunks to an output channel through a fixed size buffer.
// A chunk which does not fit in the free space of the buffer first
// flushes it, blocking until the channel accepts the bytes: the buffer
// never grows. After a failure, every call returns the same *OutputWriteError.
type Writer struct {
	out *bufio.Writer
	dst *countingWriter
	err error
}

// countingWriter counts the bytes accepted by the channel.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// NewWriter returns a Writer with a buffer of `size` bytes.
func NewWriter(w io.Writer, size int) *Writer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	dst := &countingWriter{w: w}
	return &Writer{out: bufio.NewWriterSize(dst, size), dst: dst}
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = &OutputWriteError{Written: w.dst.n, Err: err}
	}
	return w.err
}

func (w *Writer) flush() error {
	if err := w.out.Flush(); err != nil {
		return w.fail(err)
	}
	return nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if len(p) > w.out.Available() && w.out.Buffered() > 0 {
		if err := w.flush(); err != nil {
			return 0, err
		}
	}
	if len(p) > w.out.Available() {
		// larger than the whole buffer: written through
		n, err := w.out.Write(p)
		if err != nil {
			return n, w.fail(err)
		}
		return n, nil
	}
	n, _ := w.out.Write(p) // fits in the buffer
	return n, nil
}

// Written returns the number of bytes accepted by the output channel.
func (w *Writer) Written() int64 { return w.dst.n }

// Finish writes the trailing record: a newline followed by
// the JSON encoding of `dims`, and flushes the buffer.
// Nil is returned only when all the bytes are accepted.
func (w *Writer) Finish(dims Dimensions) error {
	if w.err != nil {
		return w.err
	}
	record, err := json.Marshal(dims)
	if err != nil {
		return w.fail(err)
	}
	if _, err := w.Write(append([]byte{'\n'}, record...)); err != nil {
		return err
	}
	return w.flush()
}

// Stream writes every chunk, then the trailing record.
// A chunk error stops the stream before the trailing record.
func Stream(w *Writer, chunks iter.Seq2[[]byte, error], dims Dimensions) error {
	for chunk, err := range chunks {
		if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	return w.Finish(dims)
}
