package main

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRun(t *testing.T) {
	input := `[{"type":"rect","left":0,"top":0,"scaleX":1,"scaleY":1,"zIndex":0,"width":100,"height":100}]` + "\n"
	var stdout, stderr bytes.Buffer
	if code := run(strings.NewReader(input), &stdout, &stderr, []string{"-log-level", "debug"}); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	out := stdout.Bytes()
	i := bytes.LastIndexByte(out, '\n')
	if i < 0 || string(out[i+1:]) != `{"width":120,"height":120}` {
		t.Fatalf("unexpected trailing record in %q", out[max(0, len(out)-40):])
	}
	if _, err := png.Decode(bytes.NewReader(out[:i])); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr.String(), "composed canvas") {
		t.Errorf("missing debug logs: %s", stderr.String())
	}
}

func TestRunExitCodes(t *testing.T) {
	rect := `[{"type":"rect","width":10,"height":10}]`
	for _, test := range []struct {
		name  string
		input string
		args  []string
		code  int
	}{
		{"malformed input", `[{"type":`, nil, 1},
		{"null input", "null\n", nil, 1},
		{"empty scene", "[]\n", nil, 2},
		{"unknown type", `[{"type":"spaceship"}]`, nil, 2},
		{"strict mode", `[{"type":"rect","width":10,"height":10,"shadow":"2px 2px 4px black"}]`, []string{"-errors", "strict"}, 2},
		{"too large", rect, []string{"-max-input", "10"}, 1},
		{"bad format", rect, []string{"-format", "gif"}, 2},
		{"bad background", rect, []string{"-background", "ultraviolet"}, 2},
		{"bad flag", rect, []string{"-frobnicate"}, 2},
		{"bad font", rect, []string{"-font", "/does/not/exist.ttf"}, 2},
		{"tiff", rect, []string{"-format", "tiff", "-background", "none"}, 0},
		{"pdf", rect, []string{"-format", "pdf", "-log-format", "json"}, 0},
		{"renamed font", `[{"type":"text","text":"hi","fontFamily":"Arial"}]`, []string{"-font-name", "Go"}, 0},
	} {
		var stdout, stderr bytes.Buffer
		code := run(strings.NewReader(test.input), &stdout, &stderr, test.args)
		if code != test.code {
			t.Errorf("%s: expected exit code %d, got %d (%s)", test.name, test.code, code, stderr.String())
		}
		if code != 0 && stdout.Len() != 0 {
			t.Errorf("%s: unexpected output", test.name)
		}
	}
}

func TestRunWriteFailure(t *testing.T) {
	var stderr bytes.Buffer
	code := run(strings.NewReader(`[{"type":"circle","radius":50}]`), failingWriter{}, &stderr, nil)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "closed pipe") {
		t.Errorf("missing error log: %s", stderr.String())
	}
}
