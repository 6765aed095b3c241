package oekaki

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/text/unicode/norm"
)

// Tool selects the rendering algorithm used for a stroke.
type Tool int

const (
	// ToolPen draws a smoothed, opaque line previewed on the overlay.
	ToolPen Tool = iota
	// ToolMarker draws a wide, semi-transparent smoothed line previewed on the overlay.
	ToolMarker
	// ToolBrush sprays randomized translucent dabs directly onto the surface.
	ToolBrush
	// ToolEraser paints the background color directly onto the surface.
	ToolEraser
	// ToolStamp places a single glyph at the stroke start.
	ToolStamp
)

var toolNames = [...]string{
	ToolPen:    "pen",
	ToolMarker: "marker",
	ToolBrush:  "brush",
	ToolEraser: "eraser",
	ToolStamp:  "stamp",
}

// String returns the lower-case tool name.
func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// Valid reports whether t is one of the defined tools.
func (t Tool) Valid() bool {
	return t >= ToolPen && t <= ToolStamp
}

// previewed reports whether the tool renders to the overlay and commits on stroke end.
func (t Tool) previewed() bool {
	return t == ToolPen || t == ToolMarker
}

// ParseTool returns the tool with the given name (case-insensitive).
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if strings.EqualFold(name, n) {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Defaults for ToolConfig.
const (
	DefaultSize = 8

	// DefaultStampGlyph is covered by the bundled Go Regular font. Glyphs
	// such as emoji need an extra font passed through WithFontSources.
	DefaultStampGlyph = "♥"

	minSize = 1
)

// ToolConfig is the drawing configuration read by every render operation.
//
// The engine copies the configuration when a stroke starts, so changing it
// while a stroke is active takes effect on the next stroke.
type ToolConfig struct {
	Tool Tool

	// Color is the stroke color. Alpha is ignored: each tool applies its own opacity.
	Color gg.RGBA

	// Size is the base size in pixels. Tools derive their widths and radii from it.
	Size float64

	// StampGlyph is the short symbol placed by ToolStamp.
	StampGlyph string
}

// DefaultToolConfig returns a black 8px pen with a heart stamp.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		Tool:       ToolPen,
		Color:      gg.Black,
		Size:       DefaultSize,
		StampGlyph: DefaultStampGlyph,
	}
}

// Normalize returns a copy with an opaque color, a positive size, a known
// tool and an NFC-normalized, non-empty stamp glyph.
func (c ToolConfig) Normalize() ToolConfig {
	if !c.Tool.Valid() {
		c.Tool = ToolPen
	}
	c.Color.A = 1
	if !(c.Size >= minSize) { // also catches NaN
		c.Size = minSize
	}
	c.StampGlyph = norm.NFC.String(strings.TrimSpace(c.StampGlyph))
	if c.StampGlyph == "" {
		c.StampGlyph = DefaultStampGlyph
	}
	return c
}

// ParseColor parses a "#RGB" or "#RRGGBB" hex color into an opaque gg.RGBA.
func ParseColor(s string) (gg.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 3 && len(h) != 6 {
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	c := gg.Hex(h)
	c.A = 1
	return c, nil
}
