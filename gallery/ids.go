package gallery

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// IDList is the persisted "my drawings" list: the ids of drawings made on
// this machine, most recent first. A missing or corrupt file reads as an
// empty list.
type IDList struct {
	path string
	log  *slog.Logger

	mu sync.Mutex
}

// OpenIDList returns the list stored in the file at path.
func OpenIDList(path string, opts ...Option) *IDList {
	o := newOptions(opts)
	return &IDList{path: path, log: o.log()}
}

func (l *IDList) load() []string {
	var ids []string
	if err := readJSONFile(l.path, &ids); err != nil {
		l.log.Warn("gallery: id list unreadable, starting empty", "path", l.path, "err", err)
		return nil
	}
	return ids
}

// IDs returns a copy of the list.
func (l *IDList) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Add puts id at the front of the list.
func (l *IDList) Add(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(slices.Insert(l.load(), 0, id))
}

// Remove drops every occurrence of id.
func (l *IDList) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := slices.DeleteFunc(l.load(), func(s string) bool { return s == id })
	return l.save(ids)
}

func (l *IDList) save(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if err := writeJSONFile(l.path, ids); err != nil {
		return fmt.Errorf("gallery: write id list: %w", err)
	}
	return nil
}
