package wbelement

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrUnknownType is returned for a descriptor whose type tag
	// has no registered builder.
	ErrUnknownType = errors.New("wbelement: unknown element type")
	// ErrMissingProperty is returned when a required property is absent.
	ErrMissingProperty = errors.New("wbelement: missing property")
	// ErrInvalidProperty is returned when a property has the wrong shape.
	ErrInvalidProperty = errors.New("wbelement: invalid property")
	// ErrUnsupportedProperty is returned, in StrictErrorMode, for
	// properties which are understood but cannot be rendered.
	ErrUnsupportedProperty = errors.New("wbelement: unsupported property")
	// ErrUnknownFont is returned when the font of a text element
	// cannot be resolved.
	ErrUnknownFont = errors.New("wbelement: unknown font")
)

// DeserializationError reports the element which could not be built.
type DeserializationError struct {
	Index int    // position in the input list, -1 if unknown
	Type  string // type tag, as given in the descriptor
	Err   error
}

func (e *DeserializationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("deserializing %q element: %s", e.Type, e.Err)
	}
	return fmt.Sprintf("deserializing element %d (%q): %s", e.Index, e.Type, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// ErrorMode is the for setting how the deserializer reacts to
// properties it does not render.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently drops the property.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning and drops the property.
	WarnErrorMode
	// StrictErrorMode fails the element.
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return "<unknown ErrorMode>"
	}
}

// ParseErrorMode is the inverse of ErrorMode.String.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch s {
	case "ignore":
		return IgnoreErrorMode, nil
	case "warn":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	}
	return 0, fmt.Errorf("wbelement: invalid error mode %q", s)
}

func (b *builder) handleError(key string) error {
	switch b.opts.ErrorMode {
	case StrictErrorMode:
		return fmt.Errorf("%w: %q", ErrUnsupportedProperty, key)
	case WarnErrorMode:
		if b.opts.Logger != nil {
			b.opts.Logger.Warn("ignoring unsupported property",
				slog.Int("index", b.index), slog.String("type", b.kind), slog.String("property", key))
		}
	}
	return nil
}
