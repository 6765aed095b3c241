package oekaki

import "github.com/gogpu/gg"

// Point is a position in Surface-local pixel space, origin at the top-left.
// The input collaborator owns conversion from device or screen coordinates.
type Point = gg.Point

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// midpoint returns the point halfway between p and q.
func midpoint(p, q Point) Point {
	return p.Lerp(q, 0.5)
}
