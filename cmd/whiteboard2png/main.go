// Command whiteboard2png reads a JSON list of whiteboard elements on its
// standard input, and writes the image of the scene on its standard output,
// followed by a newline and the JSON encoded image dimensions.
//
// Exit codes are 0 on success, 1 when the input can't be parsed or the output
// can't be written, and 2 for any other failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbexport"
	"github.com/felder/squiggy/wbraster"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	exitOK = iota
	exitIO
	exitExport
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}

type options struct {
	format       string
	maxDimension float64
	padding      int
	background   string
	fontPath     string
	fontName     string
	workers      int
	chunkSize    int
	bufferSize   int
	errorMode    string
	timeout      time.Duration
	maxInput     int64
	logLevel     string
	logFormat    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("whiteboard2png", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.format, "format", "png", "output format: png, tiff, bmp or pdf")
	fs.Float64Var(&opts.maxDimension, "max-dimension", wbexport.MaxDimension, "maximum scene size, before padding")
	fs.IntVar(&opts.padding, "padding", wbexport.Padding, "margin around the scene, in pixels")
	fs.StringVar(&opts.background, "background", "#fff", "canvas color, none for transparent")
	fs.StringVar(&opts.fontPath, "font", "", "TTF or OTF file used for text (default embedded Go Regular)")
	fs.StringVar(&opts.fontName, "font-name", wbelement.DefaultFontName, "font family assigned to every text")
	fs.IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "concurrent deserializations")
	fs.IntVar(&opts.chunkSize, "chunk-size", wbexport.DefaultChunkSize, "size of the encoded chunks")
	fs.IntVar(&opts.bufferSize, "buffer-size", wbexport.DefaultBufferSize, "size of the output buffer")
	fs.StringVar(&opts.errorMode, "errors", "warn", "unsupported properties: ignore, warn or strict")
	fs.DurationVar(&opts.timeout, "timeout", 0, "abort the export after this duration (0 for none)")
	fs.Int64Var(&opts.maxInput, "max-input", wbexport.DefaultMaxInput, "maximum input size, in bytes")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "text or json")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 0 {
		return opts, fmt.Errorf("unexpected arguments %v", fs.Args())
	}
	return opts, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}

// exportOptions converts the flags to export options.
func exportOptions(opts options) ([]wbexport.Option, error) {
	format, err := wbexport.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}
	background, err := wbelement.ParseColor(opts.background)
	if err != nil {
		return nil, fmt.Errorf("invalid background: %w", err)
	}
	mode, err := wbelement.ParseErrorMode(opts.errorMode)
	if err != nil {
		return nil, err
	}
	if opts.maxDimension <= 0 || opts.padding < 0 {
		return nil, fmt.Errorf("invalid size settings (max dimension %g, padding %d)", opts.maxDimension, opts.padding)
	}
	out := []wbexport.Option{
		wbexport.WithFormat(format),
		wbexport.WithBackground(background),
		wbexport.WithErrorMode(mode),
		wbexport.WithMaxDimension(opts.maxDimension),
		wbexport.WithPadding(opts.padding),
		wbexport.WithWorkers(opts.workers),
		wbexport.WithChunkSize(opts.chunkSize),
		wbexport.WithBufferSize(opts.bufferSize),
	}
	if opts.fontPath != "" {
		font, err := wbraster.LoadFontFile(opts.fontName, opts.fontPath)
		if err != nil {
			return nil, err
		}
		out = append(out, wbexport.WithFonts(wbraster.NewFontBook(font), opts.fontName))
	} else if opts.fontName != wbelement.DefaultFontName {
		// the embedded font, under the requested name
		font, err := wbraster.LoadFont(opts.fontName, goregular.TTF)
		if err != nil {
			return nil, err
		}
		out = append(out, wbexport.WithFonts(wbraster.NewFontBook(font), opts.fontName))
	}
	return out, nil
}

// exitCode maps an export failure to the process status.
func exitCode(err error) int {
	var (
		pe *wbexport.InputParseError
		we *wbexport.OutputWriteError
	)
	if errors.As(err, &pe) || errors.As(err, &we) {
		return exitIO
	}
	return exitExport
}

func run(stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitExport
	}
	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitExport
	}
	wbexport.SetLogger(logger)
	defer wbexport.SetLogger(nil)

	exportOpts, err := exportOptions(opts)
	if err != nil {
		logger.Error("invalid settings", slog.Any("error", err))
		return exitExport
	}

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	descs, err := wbexport.ReadElements(stdin, opts.maxInput)
	if err != nil {
		logger.Error("export failed", slog.Any("error", err))
		return exitCode(err)
	}
	dims, err := wbexport.Export(ctx, descs, stdout, exportOpts...)
	if err != nil {
		logger.Error("export failed", slog.Any("error", err))
		return exitCode(err)
	}
	logger.Info("exported whiteboard", slog.Int("elements", len(descs)),
		slog.Int("width", dims.Width), slog.Int("height", dims.Height))
	return exitOK
}
