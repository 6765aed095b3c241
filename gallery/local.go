package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/oekaki"
)

// LocalStore keeps drawings in a single JSON file, keyed by id, with the
// PNG inlined as a data URL. An unreadable or corrupt file reads as an
// empty store. There is no size limit and nothing expires.
//
// LocalStore is safe for concurrent use within one process.
type LocalStore struct {
	path string
	log  *slog.Logger
	now  func() time.Time

	mu sync.Mutex
}

var _ Store = (*LocalStore)(nil)

// OpenLocalStore returns a store backed by the file at path.
// The file is created on the first write.
func OpenLocalStore(path string, opts ...Option) *LocalStore {
	o := newOptions(opts)
	return &LocalStore{
		path: path,
		log:  o.log(),
		now:  o.now,
	}
}

// Path returns the backing file.
func (s *LocalStore) Path() string { return s.path }

// load reads the whole store. Callers hold s.mu.
func (s *LocalStore) load() map[string]Drawing {
	var m map[string]Drawing
	if err := readJSONFile(s.path, &m); err != nil {
		s.log.Warn("gallery: local store unreadable, starting empty", "path", s.path, "err", err)
		m = nil
	}
	if m == nil {
		m = make(map[string]Drawing)
	}
	return m
}

// Save stores png under a fresh id.
func (s *LocalStore) Save(_ context.Context, png []byte) (Drawing, error) {
	if len(png) == 0 {
		return Drawing{}, ErrEmptyImage
	}
	d := Drawing{
		ID:        NewID(),
		URL:       oekaki.EncodeDataURL(png),
		CreatedAt: s.now().UTC(),
	}
	if err := s.Put(d); err != nil {
		return Drawing{}, err
	}
	return d, nil
}

// Put inserts or replaces the record with d.ID.
func (s *LocalStore) Put(d Drawing) error {
	if d.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	m[d.ID] = d
	if err := writeJSONFile(s.path, m); err != nil {
		return fmt.Errorf("gallery: write local store: %w", err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *LocalStore) Get(id string) (Drawing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.load()[id]
	if !ok {
		return Drawing{}, ErrNotFound
	}
	return d, nil
}

// List returns every record, newest first.
func (s *LocalStore) List(context.Context) ([]Drawing, error) {
	s.mu.Lock()
	m := s.load()
	s.mu.Unlock()

	ds := make([]Drawing, 0, len(m))
	for _, d := range m {
		ds = append(ds, d)
	}
	// Map order is random; break creation time ties by id for a stable result.
	sortByID(ds)
	sortNewest(ds)
	return ds, nil
}

// FetchByIDs returns the records for ids in order, omitting unknown ids.
func (s *LocalStore) FetchByIDs(_ context.Context, ids []string) ([]Drawing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	m := s.load()
	s.mu.Unlock()

	ds := make([]Drawing, 0, len(ids))
	for _, id := range ids {
		if d, ok := m[id]; ok {
			ds = append(ds, d)
		}
	}
	return ds, nil
}

// Delete removes the record with the given id.
func (s *LocalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	if _, ok := m[id]; !ok {
		return ErrNotFound
	}
	delete(m, id)
	if err := writeJSONFile(s.path, m); err != nil {
		return fmt.Errorf("gallery: write local store: %w", err)
	}
	return nil
}
