package wbelement

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultFontName is the only font family text elements are rendered with.
const DefaultFontName = "HelveticaNeue-Light"

// Options configures the deserialization.
type Options struct {
	ErrorMode ErrorMode
	Logger    *slog.Logger // used in WarnErrorMode, may be nil
	Fonts     FontResolver // required by text elements
	FontName  string       // replaces every fontFamily, DefaultFontName if empty
	Workers   int          // for DeserializeAll, GOMAXPROCS if <= 0
}

func (opts Options) withDefaults() Options {
	if opts.FontName == "" {
		opts.FontName = DefaultFontName
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return opts
}

// builder holds the state of one element construction
type builder struct {
	opts  Options
	index int
	kind  string
}

type buildFunc func(b *builder, d Descriptor) (Drawable, error)

// builders maps the normalized type tags to constructors
var builders = map[string]buildFunc{
	"rect":     buildRect,
	"circle":   buildCircle,
	"ellipse":  buildEllipse,
	"triangle": buildTriangle,
	"line":     buildLine,
	"polyline": buildPolyline,
	"polygon":  buildPolygon,
	"path":     buildPath,
	"text":     buildText,
	"itext":    buildText,
	"textbox":  buildText,
	"image":    buildImage,
}

func init() {
	// break the initialization cycle buildGroup -> build -> builders
	builders["group"] = buildGroup
}

// NormalizeType lowers `kind` and removes dashes and underscores,
// so that "i-text", "IText" and "itext" are the same type.
func NormalizeType(kind string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, strings.ToLower(kind))
}

// Register adds or replaces the constructor for the elements of type `kind`.
// It must not be called concurrently with Deserialize.
func Register(kind string, fn func(d Descriptor, opts Options) (Drawable, error)) {
	builders[NormalizeType(kind)] = func(b *builder, d Descriptor) (Drawable, error) {
		return fn(d, b.opts)
	}
}

// build dispatches on the type tag, after replacing the font family.
func build(opts Options, index int, d Descriptor) (Drawable, error) {
	if !d.Has("type") {
		return nil, fmt.Errorf("%w %q", ErrMissingProperty, "type")
	}
	tag, err := d.String("type", "")
	if err != nil {
		return nil, err
	}
	kind := NormalizeType(tag)
	fn, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, tag)
	}
	if d.Has("fontFamily") {
		d = d.With("fontFamily", opts.FontName)
	}
	return fn(&builder{opts: opts, index: index, kind: kind}, d)
}

func deserialize(opts Options, index int, d Descriptor) (Drawable, error) {
	dr, err := build(opts, index, d)
	if err != nil {
		return nil, &DeserializationError{Index: index, Type: d.Type(), Err: err}
	}
	return dr, nil
}

// Deserialize builds one element. Errors are returned as *DeserializationError.
func Deserialize(d Descriptor, opts Options) (Drawable, error) {
	return deserialize(opts.withDefaults(), -1, d)
}

// DeserializeAll builds the elements concurrently, on at most
// `opts.Workers` goroutines. The output has the order of `descs`.
// The first failure cancels the remaining constructions.
func DeserializeAll(ctx context.Context, descs []Descriptor, opts Options) ([]Drawable, error) {
	opts = opts.withDefaults()
	out := make([]Drawable, len(descs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, d := range descs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			dr, err := deserialize(opts, i, d)
			if err != nil {
				return err
			}
			out[i] = dr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
