package wbelement

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html/charset"
)

// ErrRemoteSource is returned for image sources requiring network access.
var ErrRemoteSource = errors.New("wbelement: remote image sources are not supported")

// Image is a bitmap element. The decoded bitmap is drawn
// with one pixel per local unit, starting at (CropX, CropY).
type Image struct {
	Object
	Bitmap       image.Image
	CropX, CropY float64
}

func (im *Image) Draw(d Driver, view rasterx.Matrix2D, opacity float64) error {
	if !im.Visible || im.Width == 0 || im.Height == 0 {
		return nil
	}
	m := view.Mult(im.Matrix())
	o := im.Bitmap.Bounds().Min
	src := image.Rect(int(im.CropX), int(im.CropY), int(im.CropX+im.Width+0.5), int(im.CropY+im.Height+0.5)).
		Add(o).Intersect(im.Bitmap.Bounds())
	if src.Empty() {
		return nil
	}
	if im.Style.Background != nil {
		im.paint(d, m, nil, opacity*im.Opacity)
	}
	// pixel (CropX, CropY) is at the top left corner of the box
	toLocal := rasterx.Identity.Translate(-im.Width/2-im.CropX-float64(o.X), -im.Height/2-im.CropY-float64(o.Y))
	d.DrawImage(im.Bitmap, src, m.Mult(toLocal), opacity*im.Opacity)
	return nil
}

func buildImage(b *builder, d Descriptor) (Drawable, error) {
	if !d.Has("src") {
		return nil, fmt.Errorf("%w %q", ErrMissingProperty, "src")
	}
	src, err := d.String("src", "")
	if err != nil {
		return nil, err
	}
	// an explicit size is used to rasterize vector sources
	w, err := d.Float("width", 0)
	if err != nil {
		return nil, err
	}
	h, err := d.Float("height", 0)
	if err != nil {
		return nil, err
	}
	bitmap, err := loadImage(src, w, h)
	if err != nil {
		return nil, invalid("src", err)
	}
	size := bitmap.Bounds().Size()
	o, err := b.parseObject(d, float64(size.X), float64(size.Y))
	if err != nil {
		return nil, err
	}
	o.Style.Fill, o.Style.Stroke = nil, nil // the bitmap is the content
	im := &Image{Object: o, Bitmap: bitmap}
	if im.CropX, err = d.Float("cropX", 0); err != nil {
		return nil, err
	}
	if im.CropY, err = d.Float("cropY", 0); err != nil {
		return nil, err
	}
	return im, nil
}

// loadImage resolves `src`, which is a data URL, a file URL
// or a local path.
func loadImage(src string, w, h float64) (image.Image, error) {
	if strings.HasPrefix(src, "data:") {
		du, err := dataurl.DecodeString(src)
		if err != nil {
			return nil, fmt.Errorf("invalid data URL: %s", err)
		}
		if du.ContentType() == "image/svg+xml" {
			return rasterizeSVG(du.Data, du.Params["charset"], w, h)
		}
		img, _, err := image.Decode(bytes.NewReader(du.Data))
		return img, err
	}

	path := src
	if u, err := url.Parse(src); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "file":
			path = u.Path
		case "http", "https":
			return nil, ErrRemoteSource
		default:
			return nil, fmt.Errorf("unsupported image source scheme %q", u.Scheme)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return rasterizeSVG(data, "", w, h)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// rasterizeSVG draws the SVG document, at the size of its view box
// unless (w, h) is positive.
func rasterizeSVG(data []byte, charsetLabel string, w, h float64) (image.Image, error) {
	var r io.Reader = bytes.NewReader(data)
	if charsetLabel != "" {
		var err error
		if r, err = charset.NewReaderLabel(charsetLabel, r); err != nil {
			return nil, err
		}
	}
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		w, h = icon.ViewBox.W, icon.ViewBox.H
	}
	iw, ih := int(w+0.5), int(h+0.5)
	if iw <= 0 || ih <= 0 {
		return nil, fmt.Errorf("invalid SVG size %gx%g", w, h)
	}
	icon.SetTarget(0, 0, float64(iw), float64(ih))
	img := image.NewRGBA(image.Rect(0, 0, iw, ih))
	scanner := rasterx.NewScannerGV(iw, ih, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(iw, ih, scanner), 1)
	return img, nil
}
