package oekaki

import (
	"math/rand/v2"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/oekaki/internal/history"
)

// Option configures an Engine during creation.
//
// Example:
//
//	// Default engine: 30 undo steps, white background, Go Regular stamps
//	e := oekaki.New(800, 600)
//
//	// Reproducible brush output
//	e := oekaki.New(800, 600, oekaki.WithRand(rand.New(rand.NewPCG(1, 2))))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	maxHistory int
	rng        *rand.Rand
	background gg.RGBA
	fonts      []*text.FontSource
	config     ToolConfig
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		maxHistory: history.DefaultCapacity,
		background: gg.White,
		config:     DefaultToolConfig(),
	}
}

// WithMaxHistory sets how many raster snapshots the undo history keeps.
// One slot always holds the current raster, so n snapshots allow n-1
// consecutive undos. Values below 1 keep the default of 30 and 1 is raised
// to 2 so a single undo stays possible.
func WithMaxHistory(n int) Option {
	return func(o *engineOptions) {
		switch {
		case n < 1:
		case n < minHistory:
			o.maxHistory = minHistory
		default:
			o.maxHistory = n
		}
	}
}

// minHistory is the smallest history that can undo one step.
const minHistory = 2

// WithRand injects the random source used by the brush.
// Pass a seeded generator to get reproducible brush strokes:
//
//	oekaki.WithRand(rand.New(rand.NewPCG(seed, 0)))
func WithRand(r *rand.Rand) Option {
	return func(o *engineOptions) {
		o.rng = r
	}
}

// WithBackground sets the opaque background color used by resize, clear
// and the eraser. The alpha component is forced to 1.
func WithBackground(c gg.RGBA) Option {
	return func(o *engineOptions) {
		c.A = 1
		o.background = c
	}
}

// WithFontSources sets the fonts used to render stamp glyphs.
// When several sources are given they are tried in order per glyph, so an
// emoji font can follow a text font.
// Without this option the Go Regular font is used.
func WithFontSources(sources ...*text.FontSource) Option {
	return func(o *engineOptions) {
		o.fonts = append(o.fonts[:0], sources...)
	}
}

// WithToolConfig sets the initial tool configuration.
func WithToolConfig(c ToolConfig) Option {
	return func(o *engineOptions) {
		o.config = c
	}
}

func newDefaultRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>17|1))
}
