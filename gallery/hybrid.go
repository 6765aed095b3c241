package gallery

import (
	"context"
	"log/slog"
	"time"

	"github.com/gogpu/oekaki"
)

// Hybrid saves every drawing locally first and then, when a remote is
// configured, uploads it under the same id. A successful upload replaces
// the local record with the remote one; a failed upload is logged and the
// local record is returned, so saving never fails because of the network.
//
// Reads and deletes go to the remote when one is configured and to the
// local store otherwise.
type Hybrid struct {
	local  *LocalStore
	remote Remote
	log    *slog.Logger
	now    func() time.Time
}

var _ Store = (*Hybrid)(nil)

// NewHybrid returns a store over local and the remote set with WithRemote.
func NewHybrid(local *LocalStore, opts ...Option) *Hybrid {
	o := newOptions(opts)
	return &Hybrid{
		local:  local,
		remote: o.remote,
		log:    o.log(),
		now:    o.now,
	}
}

// CloudMode reports whether a remote is configured.
func (h *Hybrid) CloudMode() bool { return h.remote != nil }

// Save stores png locally and then tries the remote.
func (h *Hybrid) Save(ctx context.Context, png []byte) (Drawing, error) {
	if len(png) == 0 {
		return Drawing{}, ErrEmptyImage
	}
	local := Drawing{
		ID:        NewID(),
		URL:       oekaki.EncodeDataURL(png),
		CreatedAt: h.now().UTC(),
	}
	if err := h.local.Put(local); err != nil {
		return Drawing{}, err
	}
	if h.remote == nil {
		return local, nil
	}

	remote, err := h.remote.SaveAs(ctx, local.ID, png)
	if err != nil {
		h.log.Warn("gallery: cloud save failed, kept local copy", "id", local.ID, "err", err)
		return local, nil
	}
	if err := h.local.Put(remote); err != nil {
		h.log.Warn("gallery: could not record cloud URL locally", "id", remote.ID, "err", err)
	}
	return remote, nil
}

// List returns the shared gallery, or every local drawing without a remote.
func (h *Hybrid) List(ctx context.Context) ([]Drawing, error) {
	if h.remote == nil {
		return h.local.List(ctx)
	}
	return h.remote.List(ctx)
}

// FetchByIDs returns the drawings with the given ids.
func (h *Hybrid) FetchByIDs(ctx context.Context, ids []string) ([]Drawing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if h.remote == nil {
		return h.local.FetchByIDs(ctx, ids)
	}
	return h.remote.FetchByIDs(ctx, ids)
}

// Delete removes a drawing.
func (h *Hybrid) Delete(ctx context.Context, id string) error {
	if h.remote == nil {
		return h.local.Delete(ctx, id)
	}
	return h.remote.Delete(ctx, id)
}
