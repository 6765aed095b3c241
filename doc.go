// Package oekaki provides a freehand drawing engine for raster canvases.
//
// # Overview
//
// An [Engine] turns pointer samples into rendered strokes with a small set
// of tools (pen, marker, brush, eraser, stamp), keeps a bounded undo
// history and exports the result as PNG. Rendering goes through
// github.com/gogpu/gg, so the engine runs headless on the CPU.
//
// # Quick Start
//
//	e := oekaki.New(800, 600)
//	defer e.Close()
//
//	cfg := oekaki.DefaultToolConfig()
//	cfg.Tool = oekaki.ToolMarker
//	cfg.Color = gg.Hex("#FF8800")
//	e.SetConfig(cfg)
//
//	e.StartStroke(oekaki.Pt(100, 100))
//	e.ContinueStroke(oekaki.Pt(150, 120))
//	e.ContinueStroke(oekaki.Pt(200, 110))
//	e.EndStroke()
//
//	e.Undo() // back to the blank canvas
//
//	png, err := e.PNG()
//
// # Surfaces
//
// The Surface is the persistent raster and the only state that is exported.
// The Overlay has the same size and holds the live preview of pen and
// marker strokes; it is cleared on every render pass and composited onto
// the Surface when the stroke ends. Brush, eraser and stamp draw straight
// onto the Surface.
//
// # Tools
//
//   - Pen: smoothed path, width = size, round caps and joins, opaque.
//   - Marker: same path, width = size×3, square caps, opacity 0.35.
//   - Brush: translucent random dabs of radius size×1.5 along each segment.
//   - Eraser: background color, disc of radius size×1.5 then lines of width size×3.
//   - Stamp: one glyph at font size size×5, centered on the sample.
//
// # History
//
// Every undoable action (stroke, stamp, clear) pushes a copy of the Surface
// before it mutates anything, so [Engine.Undo] restores the exact previous
// raster. The history keeps 30 snapshots by default and has no redo: a new
// action after an undo discards the undone branch.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package oekaki
