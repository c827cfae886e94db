package wbexport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/felder/squiggy/wbelement"
)

// DefaultMaxInput is the default limit for the input line, in bytes.
const DefaultMaxInput = 64 << 20

// ReadElements reads the first line of `r`, which must be a JSON array
// of element descriptors. The end of the input also terminates the line.
// Errors are returned as *InputParseError.
func ReadElements(r io.Reader, maxBytes int64) ([]wbelement.Descriptor, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInput
	}
	br := bufio.NewReader(io.LimitReader(r, maxBytes+1))
	line, err := br.ReadBytes('\n')
	switch {
	case err == io.EOF:
		if int64(len(line)) > maxBytes {
			return nil, &InputParseError{Err: fmt.Errorf("input exceeds %d bytes", maxBytes)}
		}
		if len(bytes.TrimSpace(line)) == 0 {
			return nil, &InputParseError{Err: io.ErrUnexpectedEOF}
		}
	case err != nil:
		return nil, &InputParseError{Err: err}
	}
	var descs []wbelement.Descriptor
	if err := json.Unmarshal(line, &descs); err != nil {
		return nil, &InputParseError{Err: err}
	}
	if descs == nil { // null
		return nil, &InputParseError{Err: errors.New("expected a JSON array")}
	}
	return descs, nil
}
