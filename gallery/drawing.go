package gallery

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultGalleryLimit is how many drawings a remote gallery listing returns.
const DefaultGalleryLimit = 30

// Drawing is a saved raster and the URL it can be loaded from.
// URL is either a PNG data URL (local records) or an HTTP URL.
type Drawing struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists drawings.
type Store interface {
	// Save stores PNG bytes under a new id.
	Save(ctx context.Context, png []byte) (Drawing, error)

	// List returns drawings, newest first.
	List(ctx context.Context) ([]Drawing, error)

	// FetchByIDs returns the drawings with the given ids in the order of
	// ids. Unknown ids are omitted.
	FetchByIDs(ctx context.Context, ids []string) ([]Drawing, error)

	// Delete removes a drawing. It returns ErrNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
}

// Remote is a Store that accepts ids chosen by the caller.
type Remote interface {
	Store
	SaveAs(ctx context.Context, id string, png []byte) (Drawing, error)
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id can be used as an object key part:
// 1 to 64 characters of [A-Za-z0-9_-], which includes canonical UUIDs.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// NewID returns a fresh random id.
func NewID() string {
	return uuid.NewString()
}

// sortNewest orders drawings by creation time, newest first.
// Ties keep their relative order.
func sortNewest(ds []Drawing) {
	slices.SortStableFunc(ds, func(a, b Drawing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func sortByID(ds []Drawing) {
	slices.SortFunc(ds, func(a, b Drawing) int {
		return strings.Compare(a.ID, b.ID)
	})
}
