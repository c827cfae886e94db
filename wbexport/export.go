// Package wbexport converts a list of whiteboard elements into
// a single image, streamed with its final dimensions.
package wbexport

import (
	"context"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"runtime"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbraster"
)

// Config parametrizes an export.
type Config struct {
	MaxDimension   float64
	Padding        int
	Background     color.Color
	Format         Format
	PNGCompression png.CompressionLevel
	ChunkSize      int
	BufferSize     int

	Workers   int
	Fonts     wbelement.FontResolver
	FontName  string
	ErrorMode wbelement.ErrorMode
}

// DefaultConfig returns the settings of the whiteboard exporter:
// 2048 pixels at most, padded by 10 pixels on a white PNG.
func DefaultConfig() Config {
	return Config{
		MaxDimension:   MaxDimension,
		Padding:        Padding,
		Background:     color.White,
		Format:         PNG,
		PNGCompression: png.DefaultCompression,
		ChunkSize:      DefaultChunkSize,
		BufferSize:     DefaultBufferSize,
		Workers:        runtime.GOMAXPROCS(0),
		Fonts:          wbraster.NewFontBook(wbraster.DefaultFont()),
		FontName:       wbelement.DefaultFontName,
		ErrorMode:      wbelement.WarnErrorMode,
	}
}

// Option modifies a Config.
type Option func(*Config)

func WithMaxDimension(size float64) Option { return func(c *Config) { c.MaxDimension = size } }

func WithPadding(padding int) Option { return func(c *Config) { c.Padding = padding } }

func WithBackground(bg color.Color) Option { return func(c *Config) { c.Background = bg } }

func WithFormat(f Format) Option { return func(c *Config) { c.Format = f } }

func WithPNGCompression(level png.CompressionLevel) Option {
	return func(c *Config) { c.PNGCompression = level }
}

func WithChunkSize(size int) Option { return func(c *Config) { c.ChunkSize = size } }

func WithBufferSize(size int) Option { return func(c *Config) { c.BufferSize = size } }

func WithWorkers(n int) Option { return func(c *Config) { c.Workers = n } }

// WithFonts sets the fonts used by text elements, and the
// name every font family is replaced by.
func WithFonts(fonts wbelement.FontResolver, name string) Option {
	return func(c *Config) {
		c.Fonts = fonts
		c.FontName = name
	}
}

func WithErrorMode(mode wbelement.ErrorMode) Option { return func(c *Config) { c.ErrorMode = mode } }

// NewConfig applies `opts` over DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Render builds, scales and composes the elements. The returned dimensions
// are the pixel size of the canvas.
func Render(ctx context.Context, descs []wbelement.Descriptor, cfg Config) (*wbraster.Canvas, Dimensions, error) {
	logger := Logger()
	objs, err := wbelement.DeserializeAll(ctx, descs, wbelement.Options{
		ErrorMode: cfg.ErrorMode,
		Logger:    logger,
		Fonts:     cfg.Fonts,
		FontName:  cfg.FontName,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return nil, Dimensions{}, err
	}
	logger.Debug("deserialized elements", slog.Int("count", len(objs)))

	extent, err := Aggregate(objs)
	if err != nil {
		return nil, Dimensions{}, err
	}
	plan := PlanScale(extent, cfg.MaxDimension)
	plan.Apply(extent, objs)
	logger.Debug("planned scale",
		slog.Float64("left", extent.Left), slog.Float64("top", extent.Top),
		slog.Float64("width", extent.Width()), slog.Float64("height", extent.Height()),
		slog.Float64("factor", plan.Factor))

	canvas, err := Compose(ctx, plan, extent, objs, cfg.Padding, cfg.Background)
	if err != nil {
		return nil, Dimensions{}, err
	}
	return canvas, Dimensions{Width: canvas.Width(), Height: canvas.Height()}, nil
}

// Export renders the elements, then streams the encoded image to `out`,
// followed by a newline and the JSON encoded dimensions.
// Nothing is written to `out` unless the rendering succeeds.
func Export(ctx context.Context, descs []wbelement.Descriptor, out io.Writer, opts ...Option) (Dimensions, error) {
	cfg := NewConfig(opts...)
	canvas, dims, err := Render(ctx, descs, cfg)
	if err != nil {
		return Dimensions{}, err
	}
	if err = ctx.Err(); err != nil {
		return Dimensions{}, err
	}
	w := NewWriter(out, cfg.BufferSize)
	if err = Stream(w, CanvasChunks(canvas, cfg), dims); err != nil {
		return Dimensions{}, err
	}
	Logger().Debug("exported image", slog.String("format", string(cfg.Format)),
		slog.Int64("bytes", w.Written()), slog.Int("width", dims.Width), slog.Int("height", dims.Height))
	return dims, nil
}
