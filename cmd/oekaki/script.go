package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/oekaki"
)

// script is a recorded drawing session: a canvas size and a list of steps
// replayed in order.
//
//	{
//	  "width": 400, "height": 300,
//	  "steps": [
//	    {"op": "config", "tool": "marker", "color": "#ff8800", "size": 6},
//	    {"op": "stroke", "points": [[10, 10], [60, 40], [120, 20]]},
//	    {"op": "stamp", "at": [200, 150], "glyph": "A"},
//	    {"op": "undo"},
//	    {"op": "resize", "width": 500, "height": 300},
//	    {"op": "clear"}
//	  ]
//	}
type script struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background,omitempty"`
	Steps      []step `json:"steps"`
}

type step struct {
	Op string `json:"op"`

	// config
	Tool  string   `json:"tool,omitempty"`
	Color string   `json:"color,omitempty"`
	Size  *float64 `json:"size,omitempty"`
	Glyph string   `json:"glyph,omitempty"`

	// stroke
	Points [][2]float64 `json:"points,omitempty"`
	Cancel bool         `json:"cancel,omitempty"`

	// stamp
	At *[2]float64 `json:"at,omitempty"`

	// resize
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

var (
	errEmptyStroke = errors.New("stroke has no points")
	errNoStampAt   = errors.New(`stamp needs "at"`)
)

func readScript(r io.Reader) (*script, error) {
	var s script
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("parse script: canvas size %dx%d", s.Width, s.Height)
	}
	return &s, nil
}

// options returns the engine options the script asks for.
func (s *script) options() ([]oekaki.Option, error) {
	if s.Background == "" {
		return nil, nil
	}
	bg, err := oekaki.ParseColor(s.Background)
	if err != nil {
		return nil, err
	}
	return []oekaki.Option{oekaki.WithBackground(bg)}, nil
}

// replay applies every step to e. It stops at the first invalid step.
func (s *script) replay(e *oekaki.Engine) error {
	for i, st := range s.Steps {
		if err := st.apply(e); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
	}
	return nil
}

func (st step) apply(e *oekaki.Engine) error {
	switch st.Op {
	case "config":
		return st.configure(e)
	case "stroke":
		if len(st.Points) == 0 {
			return errEmptyStroke
		}
		e.Handle(oekaki.Event{Kind: oekaki.EventStart, Point: pt(st.Points[0])})
		for _, p := range st.Points[1:] {
			e.Handle(oekaki.Event{Kind: oekaki.EventMove, Point: pt(p)})
		}
		end := oekaki.EventEnd
		if st.Cancel {
			end = oekaki.EventCancel
		}
		e.Handle(oekaki.Event{Kind: end})
	case "stamp":
		if st.At == nil {
			return errNoStampAt
		}
		prev := e.Config()
		cfg := prev
		cfg.Tool = oekaki.ToolStamp
		if st.Glyph != "" {
			cfg.StampGlyph = st.Glyph
		}
		e.SetConfig(cfg)
		e.StartStroke(pt(*st.At))
		e.SetConfig(prev)
	case "undo":
		e.Undo()
	case "clear":
		e.Clear()
	case "resize":
		e.Resize(st.Width, st.Height)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (st step) configure(e *oekaki.Engine) error {
	cfg := e.Config()
	if st.Tool != "" {
		tool, err := oekaki.ParseTool(st.Tool)
		if err != nil {
			return err
		}
		cfg.Tool = tool
	}
	if st.Color != "" {
		c, err := oekaki.ParseColor(st.Color)
		if err != nil {
			return err
		}
		cfg.Color = c
	}
	if st.Size != nil {
		cfg.Size = *st.Size
	}
	if st.Glyph != "" {
		cfg.StampGlyph = st.Glyph
	}
	e.SetConfig(cfg)
	return nil
}

func pt(p [2]float64) oekaki.Point {
	return oekaki.Pt(p[0], p[1])
}
