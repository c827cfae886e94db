package wbexport

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/felder/squiggy/wbelement"
	"github.com/felder/squiggy/wbraster"
	"github.com/srwiley/rasterx"
)

// testRect returns a rectangle positioned by its top left corner
func testRect(t *testing.T, left, top, width, height, z float64, fill string) wbelement.Drawable {
	t.Helper()
	d, err := wbelement.NewDescriptor(map[string]interface{}{
		"type": "rect", "left": left, "top": top, "width": width, "height": height,
		"originX": "left", "originY": "top", "zIndex": z, "fill": fill,
	})
	if err != nil {
		t.Fatal(err)
	}
	dr, err := wbelement.Deserialize(d, wbelement.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func compose(t *testing.T, objs []wbelement.Drawable) *wbraster.Canvas {
	t.Helper()
	e, err := Aggregate(objs)
	if err != nil {
		t.Fatal(err)
	}
	plan := PlanScale(e, MaxDimension)
	plan.Apply(e, objs)
	c, err := Compose(context.Background(), plan, e, objs, Padding, color.White)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func pixel(c *wbraster.Canvas, x, y int) color.RGBA {
	return c.Image().RGBAAt(x, y)
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 128, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func TestComposeSize(t *testing.T) {
	c := compose(t, []wbelement.Drawable{testRect(t, 0, 0, 100, 100, 0, "red")})
	if c.Width() != 120 || c.Height() != 120 {
		t.Fatalf("expected 120x120, got %dx%d", c.Width(), c.Height())
	}
	if c.Renders() != 1 {
		t.Errorf("expected one render, got %d", c.Renders())
	}
	if pixel(c, 5, 5) != white || pixel(c, 10, 10) != red || pixel(c, 109, 109) != red || pixel(c, 110, 110) != white {
		t.Errorf("unexpected padding")
	}
}

func TestZOrder(t *testing.T) {
	// the higher z-index is on top, whatever the input order
	for _, objs := range [][]wbelement.Drawable{
		{testRect(t, 0, 0, 50, 50, 2, "green"), testRect(t, 0, 0, 50, 50, 1, "red")},
		{testRect(t, 0, 0, 50, 50, 1, "red"), testRect(t, 0, 0, 50, 50, 2, "green")},
	} {
		c := compose(t, objs)
		if got := pixel(c, 30, 30); got != green {
			t.Errorf("expected green on top, got %v", got)
		}
	}

	// equal z-index keep the input order
	c := compose(t, []wbelement.Drawable{
		testRect(t, 0, 0, 50, 50, 0, "green"),
		testRect(t, 0, 0, 50, 50, 5, "blue"),
		testRect(t, 0, 0, 50, 50, 0, "red"),
	})
	if got := pixel(c, 30, 30); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("expected blue on top, got %v", got)
	}
	objs := []wbelement.Drawable{
		testRect(t, 0, 0, 50, 50, 0, "green"),
		testRect(t, 0, 0, 50, 50, -1, "blue"),
		testRect(t, 0, 0, 50, 50, 0, "red"),
	}
	c = compose(t, objs)
	if got := pixel(c, 30, 30); got != red {
		t.Errorf("expected red on top, got %v", got)
	}
	sorted := c.Objects()
	if sorted[0] != objs[1] || sorted[1] != objs[0] || sorted[2] != objs[2] {
		t.Error("unstable z-index sort")
	}
}

type brokenElement struct {
	wbelement.Object
}

func (b *brokenElement) Draw(d wbelement.Driver, view rasterx.Matrix2D, opacity float64) error {
	return errors.New("broken")
}

func TestComposeRenderError(t *testing.T) {
	broken := &brokenElement{wbelement.Object{Kind: "broken", Index: 1, Width: 10, Height: 10, ScaleX: 1, ScaleY: 1}}
	objs := []wbelement.Drawable{testRect(t, 0, 0, 10, 10, 0, "red"), broken}
	e, _ := Aggregate(objs)
	_, err := Compose(context.Background(), PlanScale(e, MaxDimension), e, objs, Padding, color.White)
	var re *wbraster.RenderError
	if !errors.As(err, &re) || re.Index != 1 {
		t.Errorf("expected RenderError, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err = Compose(ctx, PlanScale(e, MaxDimension), e, objs, Padding, color.White); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
