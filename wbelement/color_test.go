package wbelement

import (
	"encoding/json"
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#FF0000", color.NRGBA{255, 0, 0, 255}},
		{"#00ff0080", color.NRGBA{0, 255, 0, 128}},
		{"#0f08", color.NRGBA{0, 255, 0, 136}},
		{"rgb(0,0,0)", color.NRGBA{0, 0, 0, 255}},
		{"rgb(10%, 50%, 100%)", color.NRGBA{26, 128, 255, 255}},
		{"rgba(255, 0, 0, 0.5)", color.NRGBA{255, 0, 0, 128}},
		{"rgb(255 0 0 / 50%)", color.NRGBA{255, 0, 0, 128}},
		{"hsl(120, 100%, 50%)", color.NRGBA{0, 255, 0, 255}},
		{"hsla(240deg, 100%, 50%, 1)", color.NRGBA{0, 0, 255, 255}},
		{"red", color.NRGBA{255, 0, 0, 255}},
		{" DarkBlue ", color.NRGBA{0, 0, 139, 255}},
	} {
		c, err := parseColor(test.in)
		if err != nil {
			t.Fatalf("%s: %s", test.in, err)
		}
		if c == nil || *c != test.expected {
			t.Errorf("%s: expected %v, got %v", test.in, test.expected, c)
		}
	}

	for _, none := range []string{"", "none", "transparent", "Transparent"} {
		c, err := parseColor(none)
		if err != nil || c != nil {
			t.Errorf("%q: expected no color, got %v %v", none, c, err)
		}
	}

	for _, bad := range []string{"#ggg", "rgb(1,2)", "hsl(a, 1, 1)", "blurple"} {
		if _, err := parseColor(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestParseGradient(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "linear",
		"coords": {"x1": 0, "y1": 0, "x2": 100, "y2": 0},
		"colorStops": [{"offset": 1, "color": "blue"}, {"offset": 0, "color": "red", "opacity": 0.5}]
	}`)
	b := &builder{}
	p, err := b.parsePattern("fill", raw, 100, 50)
	if err != nil {
		t.Fatal(err)
	}
	grad, ok := p.(Gradient)
	if !ok {
		t.Fatalf("expected Gradient, got %T", p)
	}
	if grad.Radial || grad.X1 != -50 || grad.X2 != 50 || grad.Y1 != -25 {
		t.Errorf("unexpected gradient geometry %v", grad)
	}
	if len(grad.Stops) != 2 || grad.Stops[0].Color != (color.NRGBA{255, 0, 0, 128}) || grad.Stops[1].Offset != 1 {
		t.Errorf("unexpected stops %v", grad.Stops)
	}

	// legacy map form, with percentage units
	raw = json.RawMessage(`{
		"type": "radial", "gradientUnits": "percentage",
		"coords": {"x1": 0.5, "y1": 0.5, "x2": 0.5, "y2": 0.5, "r1": 0, "r2": 0.5},
		"colorStops": {"0": "white", "1": "black"}
	}`)
	p, err = b.parsePattern("fill", raw, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	grad = p.(Gradient)
	if !grad.Radial || grad.X2 != 0 || grad.Y2 != 0 || grad.R2 != 50 || len(grad.Stops) != 2 {
		t.Errorf("unexpected gradient %v", grad)
	}

	if _, err = b.parsePattern("fill", json.RawMessage(`{"type": "conic"}`), 1, 1); err == nil {
		t.Error("expected error for unknown gradient type")
	}
}

func TestNormalizeDash(t *testing.T) {
	for _, test := range []struct {
		in, out []float64
	}{
		{nil, nil},
		{[]float64{0, 0}, nil},
		{[]float64{5, -1}, nil},
		{[]float64{5, 2}, []float64{5, 2}},
		{[]float64{5, 2, 1}, []float64{5, 2, 1, 5, 2, 1}},
	} {
		got := normalizeDash(test.in)
		if len(got) != len(test.out) {
			t.Errorf("%v: expected %v, got %v", test.in, test.out, got)
			continue
		}
		for i := range got {
			if got[i] != test.out[i] {
				t.Errorf("%v: expected %v, got %v", test.in, test.out, got)
			}
		}
	}
}
