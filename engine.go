package oekaki

import (
	"image"
	"io"
	"math/rand/v2"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/oekaki/internal/history"
)

// strokeState is the stroke state machine: Idle → Active → Idle.
type strokeState int

const (
	stateIdle strokeState = iota
	stateActive
)

// Engine is a freehand drawing engine.
//
// It owns a persistent Surface holding the accepted drawing, a transient
// Overlay used to preview pen and marker strokes, a bounded undo history of
// Surface snapshots and the current tool configuration. Pointer samples
// arrive through StartStroke, ContinueStroke and EndStroke (or Handle).
//
// Engine is NOT safe for concurrent use. Events of one stroke must be
// delivered in arrival order from a single goroutine.
type Engine struct {
	width  int
	height int

	surface layer
	overlay layer
	history *history.Ring

	background gg.RGBA
	config     ToolConfig // applies from the next stroke on
	stroke     ToolConfig // frozen copy for the active stroke

	state  strokeState
	points []Point

	rng   *rand.Rand
	fonts []*text.FontSource

	closed bool
}

// Ensure Engine implements io.Closer.
var _ io.Closer = (*Engine)(nil)

// New creates an engine with a blank Surface of the given size.
// Non-positive dimensions are clamped to 1. The blank canvas is pushed as
// the first history snapshot.
func New(width, height int, opts ...Option) *Engine {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	rng := options.rng
	if rng == nil {
		rng = newDefaultRand()
	}

	e := &Engine{
		history:    history.New(options.maxHistory),
		background: options.background,
		config:     options.config.Normalize(),
		rng:        rng,
		fonts:      options.fonts,
		points:     make([]Point, 0, 64),
	}
	e.Resize(width, height)
	e.saveState()
	return e
}

// Width returns the Surface width in pixels.
func (e *Engine) Width() int { return e.width }

// Height returns the Surface height in pixels.
func (e *Engine) Height() int { return e.height }

// Config returns the configuration that the next stroke will use.
func (e *Engine) Config() ToolConfig { return e.config }

// SetConfig replaces the tool configuration. The value is normalized and
// takes effect on the next stroke; an active stroke keeps its settings.
func (e *Engine) SetConfig(c ToolConfig) {
	e.config = c.Normalize()
}

// Drawing reports whether a stroke is active.
func (e *Engine) Drawing() bool { return e.state == stateActive }

// Resize reallocates Surface and Overlay at the new size. Existing Surface
// content is kept at the origin, clipped and unscaled, over a background
// fill. The Overlay is always cleared. Non-positive dimensions are clamped
// to 1; resizing to the current size only clears the Overlay.
func (e *Engine) Resize(width, height int) {
	if e.closed {
		return
	}
	width = max(width, 1)
	height = max(height, 1)

	if e.surface.pm != nil && width == e.width && height == e.height {
		e.overlay.clear()
		return
	}

	prev := e.surface
	pw, ph := e.width, e.height

	e.surface = newLayer(width, height)
	e.overlay.close()
	e.overlay = newLayer(width, height)
	e.width, e.height = width, height

	e.surface.fill(e.background)
	if prev.pm != nil {
		blit(e.surface.pm.Data(), width, height, prev.pm.Data(), pw, ph)
		prev.close()
	}

	Logger().Debug("oekaki: resize",
		"from_width", pw, "from_height", ph,
		"width", width, "height", height)
}

// StartStroke begins a stroke at p. The pre-stroke Surface is pushed to the
// history first, so the stroke undoes as one unit. A stamp is placed
// immediately and the engine returns to idle without needing EndStroke.
// Calling StartStroke while a stroke is active has no effect.
func (e *Engine) StartStroke(p Point) {
	if e.closed || e.state == stateActive {
		return
	}
	e.saveState()

	e.stroke = e.config
	e.state = stateActive
	e.points = append(e.points[:0], p)

	if e.stroke.Tool == ToolStamp {
		e.placeStamp(p)
		e.state = stateIdle
		e.points = e.points[:0]
		return
	}
	e.render()
}

// ContinueStroke appends p to the active stroke and renders it.
// It has no effect while idle.
func (e *Engine) ContinueStroke(p Point) {
	if e.state != stateActive {
		return
	}
	e.points = append(e.points, p)
	e.render()
}

// EndStroke finishes the active stroke. Pen and marker strokes are
// composited from the Overlay onto the Surface and the Overlay is cleared;
// the other tools already drew onto the Surface. It has no effect while idle.
func (e *Engine) EndStroke() {
	if e.state != stateActive {
		return
	}
	e.state = stateIdle

	if e.stroke.Tool.previewed() {
		e.commitOverlay()
	}
	e.points = e.points[:0]
}

// CancelStroke finalizes the active stroke after input capture was lost.
// It takes the same path as EndStroke, so no preview is left uncommitted.
func (e *Engine) CancelStroke() {
	e.EndStroke()
}

// Undo restores the Surface to the state before the most recent undoable
// action (stroke, stamp or clear). It returns false, and changes nothing,
// when there is nothing left to undo.
func (e *Engine) Undo() bool {
	if e.closed || e.state == stateActive {
		return false
	}
	s, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.surface.restore(s, e.background)
	return true
}

// CanUndo reports whether Undo would succeed.
func (e *Engine) CanUndo() bool {
	return !e.closed && e.history.Cursor() > 0
}

// HistoryLen returns the number of snapshots in the undo history.
func (e *Engine) HistoryLen() int {
	return e.history.Len()
}

// Clear fills the Surface with the background color. The previous content
// is pushed to the history first, so Clear can be undone. The Overlay is
// left untouched.
func (e *Engine) Clear() {
	if e.closed {
		return
	}
	e.saveState()
	e.surface.fill(e.background)
}

// Image returns a copy of the Surface.
func (e *Engine) Image() *image.RGBA {
	if e.closed {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return e.surface.pm.ToImage()
}

// OverlayImage returns a copy of the Overlay, the live preview of an active
// pen or marker stroke. It is transparent when no preview is pending.
func (e *Engine) OverlayImage() *image.RGBA {
	if e.closed {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return e.overlay.pm.ToImage()
}

// Close releases the Surface, Overlay and history.
// Close is idempotent; later operations are no-ops and exports fail with ErrClosed.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.state = stateIdle
	e.points = nil
	e.surface.close()
	e.overlay.close()
	e.history.Reset()
	return nil
}

// saveState pushes a snapshot of the Surface onto the history.
func (e *Engine) saveState() {
	if e.history.Push(e.width, e.height, e.surface.pm.Data()) {
		Logger().Debug("oekaki: history full, evicted oldest snapshot",
			"capacity", e.history.Cap())
	}
}

// commitOverlay composites the Overlay onto the Surface and clears it.
func (e *Engine) commitOverlay() {
	e.surface.compositeOver(e.overlay)
	e.overlay.clear()
}
