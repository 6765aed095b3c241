package oekaki

import (
	"math"

	"github.com/gogpu/gg"
)

// Per-tool rendering parameters. Widths and radii scale with ToolConfig.Size.
const (
	markerWidthScale = 3
	markerOpacity    = 0.35

	// dotExtent is the length of the segment drawn for a single-sample line,
	// long enough for the caps to produce a visible dot.
	dotExtent = 0.1

	brushRadiusScale = 1.5
	brushStepScale   = 0.3
	brushDabs        = 3
	brushMinOpacity  = 0.06
	brushOpacitySpan = 0.06

	eraserWidthScale = 3

	stampSizeScale = 5
)

// render runs the render pass of the active tool for the current points.
func (e *Engine) render() {
	switch e.stroke.Tool {
	case ToolPen, ToolMarker:
		e.overlay.clear()
		e.drawSmoothPath(e.overlay.dc)
	case ToolBrush:
		e.drawBrushSegment()
	case ToolEraser:
		e.drawEraserSegment()
	}
}

// lastSegment returns the two most recent points; a single point is
// returned as a zero-length segment.
func (e *Engine) lastSegment() (from, to Point) {
	n := len(e.points)
	if n == 1 {
		return e.points[0], e.points[0]
	}
	return e.points[n-2], e.points[n-1]
}

// drawSmoothPath strokes the whole point sequence onto dc. Consecutive
// midpoints are joined with quadratic curves whose control points are the
// samples themselves, which hides the joints between segments.
func (e *Engine) drawSmoothPath(dc *gg.Context) {
	pts := e.points
	if len(pts) == 0 {
		return
	}
	c := e.stroke.Color

	switch e.stroke.Tool {
	case ToolMarker:
		dc.SetRGBA(c.R, c.G, c.B, markerOpacity)
		dc.SetLineWidth(e.stroke.Size * markerWidthScale)
		dc.SetLineCap(gg.LineCapSquare)
	default:
		dc.SetRGBA(c.R, c.G, c.B, 1)
		dc.SetLineWidth(e.stroke.Size)
		dc.SetLineCap(gg.LineCapRound)
	}
	dc.SetLineJoin(gg.LineJoinRound)

	dc.ClearPath()
	dc.MoveTo(pts[0].X, pts[0].Y)
	if len(pts) == 1 {
		dc.LineTo(pts[0].X+dotExtent, pts[0].Y)
	} else {
		for i := 1; i < len(pts); i++ {
			prev := pts[i-1]
			mid := midpoint(prev, pts[i])
			dc.QuadraticTo(prev.X, prev.Y, mid.X, mid.Y)
		}
		last := pts[len(pts)-1]
		dc.LineTo(last.X, last.Y)
	}
	logDrawErr("stroke", dc.Stroke())
}

// drawBrushSegment sprays translucent dabs along the latest segment
// directly onto the Surface.
func (e *Engine) drawBrushSegment() {
	from, to := e.lastSegment()
	size := e.stroke.Size
	radius := size * brushRadiusScale
	steps := brushSteps(from, to, size)
	c := e.stroke.Color
	dc := e.surface.dc

	for i := 0; i <= steps; i++ {
		at := from.Lerp(to, float64(i)/float64(steps))
		for range brushDabs {
			ox := (e.rng.Float64() - 0.5) * size
			oy := (e.rng.Float64() - 0.5) * size
			alpha := brushMinOpacity + e.rng.Float64()*brushOpacitySpan
			dc.SetRGBA(c.R, c.G, c.B, alpha)
			dc.DrawCircle(at.X+ox, at.Y+oy, radius)
			logDrawErr("fill", dc.Fill())
		}
	}
}

// brushSteps returns how many subdivisions the brush uses between two
// samples: one per size×0.3 pixels of distance, at least one.
func brushSteps(from, to Point, size float64) int {
	n := int(math.Ceil(from.Distance(to) / (size * brushStepScale)))
	return max(n, 1)
}

// drawEraserSegment paints the background color over the latest segment
// directly onto the Surface: a disc for the first sample, then a round
// capped line between consecutive samples.
func (e *Engine) drawEraserSegment() {
	dc := e.surface.dc
	bg := e.background
	size := e.stroke.Size
	dc.SetRGBA(bg.R, bg.G, bg.B, 1)
	dc.ClearPath()

	if len(e.points) == 1 {
		p := e.points[0]
		dc.DrawCircle(p.X, p.Y, size*brushRadiusScale)
		logDrawErr("fill", dc.Fill())
		return
	}

	from, to := e.lastSegment()
	dc.SetLineWidth(size * eraserWidthScale)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(from.X, from.Y)
	dc.LineTo(to.X, to.Y)
	logDrawErr("stroke", dc.Stroke())
}

// placeStamp draws the stamp glyph centered on p directly onto the Surface.
func (e *Engine) placeStamp(p Point) {
	face, err := e.stampFace(e.stroke.Size * stampSizeScale)
	if err != nil {
		Logger().Warn("oekaki: stamp font unavailable", "err", err)
		return
	}
	glyph := e.stroke.StampGlyph
	for _, r := range glyph {
		if !face.HasGlyph(r) {
			Logger().Warn("oekaki: stamp glyph missing from fonts", "glyph", glyph, "rune", string(r))
			break
		}
	}

	c := e.stroke.Color
	dc := e.surface.dc
	dc.SetFont(face)
	dc.SetRGBA(c.R, c.G, c.B, 1)
	dc.DrawStringAnchored(glyph, p.X, p.Y, 0.5, 0.5)
}

// logDrawErr records a failed fill or stroke. The pass keeps going so the
// remaining samples of the stroke still render.
func logDrawErr(op string, err error) {
	if err != nil {
		Logger().Debug("oekaki: draw failed", "op", op, "err", err)
	}
}
