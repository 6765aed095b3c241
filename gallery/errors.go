package gallery

import (
	"errors"
	"fmt"
)

// Sentinel errors for gallery operations.
var (
	// ErrNotFound is returned when a drawing or object does not exist.
	ErrNotFound = errors.New("gallery: not found")

	// ErrInvalidID is returned for ids that are not safe object key parts.
	ErrInvalidID = errors.New("gallery: invalid id")

	// ErrEmptyImage is returned when a save carries no image data.
	ErrEmptyImage = errors.New("gallery: image is required")
)

// StatusError is a non-2xx response from a remote gallery.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gallery: remote returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gallery: remote returned %d: %s", e.StatusCode, e.Message)
}

// Is reports a 404 response as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
