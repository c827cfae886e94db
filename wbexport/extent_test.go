package wbexport

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/felder/squiggy/wbelement"
)

func randomRects(rd *rand.Rand, n int) []wbelement.Rect {
	out := make([]wbelement.Rect, n)
	for i := range out {
		out[i] = wbelement.Rect{
			Left:   rd.Float64()*2000 - 1000,
			Top:    rd.Float64()*2000 - 1000,
			Width:  rd.Float64() * 500,
			Height: rd.Float64() * 500,
		}
	}
	return out
}

func fold(rects []wbelement.Rect) Extent {
	e := NewExtent()
	for _, r := range rects {
		e.Add(r)
	}
	return e
}

func TestExtentOrderIndependence(t *testing.T) {
	rd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		rects := randomRects(rd, 1+rd.Intn(30))
		ref := fold(rects)

		// explicit min and max
		for _, r := range rects {
			if r.Left < ref.Left || r.Top < ref.Top || r.Right() > ref.Right || r.Bottom() > ref.Bottom {
				t.Fatalf("%v not contained in %v", r, ref)
			}
		}

		rd.Shuffle(len(rects), func(i, j int) { rects[i], rects[j] = rects[j], rects[i] })
		if got := fold(rects); got != ref {
			t.Fatalf("order dependent extent: %v != %v", got, ref)
		}

		// partial folds, as computed by concurrent workers
		cut := rd.Intn(len(rects) + 1)
		if got := fold(rects[:cut]).Union(fold(rects[cut:])); got != ref {
			t.Fatalf("union differs: %v != %v", got, ref)
		}
	}
}

func TestExtentEmpty(t *testing.T) {
	e := NewExtent()
	if !e.Empty() {
		t.Error("expected empty extent")
	}
	e.Add(wbelement.Rect{Left: 1, Top: 2, Width: 0, Height: 0})
	if e.Empty() || e.Width() != 0 || e.Height() != 0 {
		t.Errorf("unexpected extent %v", e)
	}
	if _, err := Aggregate(nil); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("expected ErrEmptyScene, got %v", err)
	}
}

func TestAggregateOverflow(t *testing.T) {
	for _, objs := range [][]wbelement.Drawable{
		{testRect(t, 0, 0, 10, 10, 0, "red"), testRect(t, 1e308, 0, 10, 10, 0, "red"), testRect(t, -1e308, 0, 10, 10, 0, "red")},
		{testRect(t, 0, -1e308, 10, 10, 0, "red"), testRect(t, 0, 1e308, 10, 10, 0, "red")},
		{testRect(t, 0, 0, 1e308, 1e308, 0, "red"), testRect(t, -1e308, 0, 10, 10, 0, "red")},
	} {
		_, err := Aggregate(objs)
		var de *wbelement.DeserializationError
		if !errors.As(err, &de) || !errors.Is(err, wbelement.ErrInvalidProperty) {
			t.Errorf("expected DeserializationError, got %v", err)
		}
	}

	// large but representable
	e, err := Aggregate([]wbelement.Drawable{testRect(t, -1e300, 0, 10, 10, 0, "red"), testRect(t, 1e300, 0, 10, 10, 0, "red")})
	if err != nil {
		t.Fatal(err)
	}
	if plan := PlanScale(e, MaxDimension); plan.Factor <= 0 || plan.PixelWidth != MaxDimension {
		t.Errorf("unexpected plan %v", plan)
	}
}
