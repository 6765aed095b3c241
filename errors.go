package oekaki

import "errors"

// Sentinel errors for the oekaki package.
var (
	// ErrClosed is returned by export operations on a closed Engine.
	ErrClosed = errors.New("oekaki: engine is closed")

	// ErrUnknownTool is returned by ParseTool for an unrecognized name.
	ErrUnknownTool = errors.New("oekaki: unknown tool")

	// ErrInvalidColor is returned by ParseColor for a malformed hex color.
	ErrInvalidColor = errors.New("oekaki: invalid color")

	// ErrNotDataURL is returned by DecodeDataURL when the input is not a
	// base64 image data URL.
	ErrNotDataURL = errors.New("oekaki: not an image data URL")
)
