package main

import (
	"bytes"
	"image/png"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gogpu/oekaki"
)

const testScript = `{
  "width": 60, "height": 40,
  "steps": [
    {"op": "config", "tool": "pen", "color": "#ff0000", "size": 4},
    {"op": "stroke", "points": [[5, 20], [30, 20], [55, 20]]},
    {"op": "config", "tool": "marker"},
    {"op": "stroke", "points": [[30, 5], [30, 35]], "cancel": true},
    {"op": "undo"},
    {"op": "resize", "width": 80, "height": 40}
  ]
}`

func TestReplay(t *testing.T) {
	sc, err := readScript(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("readScript() error = %v", err)
	}
	e := oekaki.New(sc.Width, sc.Height, oekaki.WithRand(rand.New(rand.NewPCG(1, 1))))
	defer e.Close()

	if err := sc.replay(e); err != nil {
		t.Fatalf("replay() error = %v", err)
	}
	if e.Width() != 80 || e.Height() != 40 {
		t.Errorf("size = %dx%d, want 80x40", e.Width(), e.Height())
	}
	if e.Config().Tool != oekaki.ToolMarker {
		t.Errorf("tool = %v, want marker", e.Config().Tool)
	}

	data, err := e.PNG()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// The red pen line survives, the undone marker line does not.
	if r, g, _, _ := img.At(15, 20).RGBA(); r != 0xffff || g != 0 {
		t.Errorf("pen pixel = %#x,%#x; want red", r, g)
	}
	if r, g, b, _ := img.At(30, 8).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("undone marker pixel = %#x,%#x,%#x; want white", r, g, b)
	}
	if r, g, b, _ := img.At(70, 20).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("resized area pixel = %#x,%#x,%#x; want white", r, g, b)
	}
}

func TestReplayStampKeepsTool(t *testing.T) {
	sc, err := readScript(strings.NewReader(`{"width": 50, "height": 50, "steps": [
		{"op": "config", "tool": "brush"},
		{"op": "stamp", "at": [25, 25], "glyph": "X"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := oekaki.New(sc.Width, sc.Height)
	defer e.Close()
	if err := sc.replay(e); err != nil {
		t.Fatalf("replay() error = %v", err)
	}
	if e.Config().Tool != oekaki.ToolBrush {
		t.Errorf("tool after stamp = %v, want brush", e.Config().Tool)
	}
	if e.HistoryLen() != 2 {
		t.Errorf("HistoryLen() = %d, want 2", e.HistoryLen())
	}
}

func TestScriptBackground(t *testing.T) {
	sc, err := readScript(strings.NewReader(`{"width": 4, "height": 4, "background": "#00f", "steps": []}`))
	if err != nil {
		t.Fatal(err)
	}
	opts, err := sc.options()
	if err != nil {
		t.Fatal(err)
	}
	e := oekaki.New(sc.Width, sc.Height, opts...)
	defer e.Close()
	if r, g, b, _ := e.Image().At(1, 1).RGBA(); r != 0 || g != 0 || b != 0xffff {
		t.Errorf("background = %#x,%#x,%#x; want blue", r, g, b)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"bad json", `{`},
		{"no size", `{"steps": []}`},
		{"unknown field", `{"width": 1, "height": 1, "colour": "red"}`},
		{"unknown op", `{"width": 1, "height": 1, "steps": [{"op": "smudge"}]}`},
		{"unknown tool", `{"width": 1, "height": 1, "steps": [{"op": "config", "tool": "pencil"}]}`},
		{"bad color", `{"width": 1, "height": 1, "steps": [{"op": "config", "color": "red"}]}`},
		{"empty stroke", `{"width": 1, "height": 1, "steps": [{"op": "stroke"}]}`},
		{"stamp without point", `{"width": 1, "height": 1, "steps": [{"op": "stamp"}]}`},
		{"bad background", `{"width": 1, "height": 1, "background": "nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := readScript(strings.NewReader(tt.script))
			if err != nil {
				return
			}
			opts, err := sc.options()
			if err != nil {
				return
			}
			e := oekaki.New(sc.Width, sc.Height, opts...)
			defer e.Close()
			if err := sc.replay(e); err == nil {
				t.Error("script accepted, want an error")
			}
		})
	}
}
