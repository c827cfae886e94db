package wbexport

import (
	"errors"
	"fmt"
)

// ErrEmptyScene is returned when there is no element to export.
var ErrEmptyScene = errors.New("wbexport: empty scene")

// InputParseError is returned for a malformed element list.
type InputParseError struct {
	Err error
}

func (e *InputParseError) Error() string { return fmt.Sprintf("parsing input: %s", e.Err) }

func (e *InputParseError) Unwrap() error { return e.Err }

// ExportError is returned when the canvas can't be encoded.
type ExportError struct {
	Format Format
	Err    error
}

func (e *ExportError) Error() string { return fmt.Sprintf("encoding %s: %s", e.Format, e.Err) }

func (e *ExportError) Unwrap() error { return e.Err }

// OutputWriteError is returned when the output channel fails.
// Written bytes have been accepted by the channel and can't be recalled.
type OutputWriteError struct {
	Written int64
	Err     error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("writing output (after %d bytes): %s", e.Written, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }
