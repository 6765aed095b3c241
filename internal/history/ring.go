// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package history keeps a bounded, linear undo history of raster snapshots.
//
// The history is a ring of fixed-capacity slots addressed through a cursor.
// Pushing after an undo discards everything after the cursor (no redo), and
// pushing into a full ring evicts the oldest snapshot. Slot buffers are
// reused when a discarded slot is overwritten, so steady-state drawing does
// not allocate a new raster per snapshot.
package history

// DefaultCapacity is the number of snapshots kept when no capacity is given.
const DefaultCapacity = 30

// Snapshot is a copy of a raster taken when it was pushed.
// Pix holds RGBA bytes, 4 per pixel, with a stride of Width*4.
type Snapshot struct {
	Width  int
	Height int
	Pix    []byte
}

// Ring is a bounded snapshot history with a cursor.
//
// Ring is NOT safe for concurrent use.
type Ring struct {
	slots  []Snapshot
	head   int // physical index of the oldest live snapshot
	n      int // number of live snapshots
	cursor int // logical index of the current snapshot, -1 when empty
}

// New creates a Ring holding at most capacity snapshots.
// A capacity below 1 selects DefaultCapacity.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Ring{
		slots:  make([]Snapshot, capacity),
		cursor: -1,
	}
}

// Cap returns the maximum number of snapshots.
func (r *Ring) Cap() int { return len(r.slots) }

// Len returns the number of live snapshots.
func (r *Ring) Len() int { return r.n }

// Cursor returns the logical index of the current snapshot,
// or -1 when the ring is empty.
func (r *Ring) Cursor() int { return r.cursor }

func (r *Ring) slot(i int) *Snapshot {
	return &r.slots[(r.head+i)%len(r.slots)]
}

// Push copies pix into a new snapshot placed right after the cursor.
// Snapshots after the cursor are dropped first. When the ring is full the
// oldest snapshot is evicted; Push reports whether that happened.
// The cursor ends on the new snapshot.
func (r *Ring) Push(width, height int, pix []byte) (evicted bool) {
	r.n = r.cursor + 1
	if r.n == len(r.slots) {
		r.head = (r.head + 1) % len(r.slots)
		r.n--
		evicted = true
	}

	s := r.slot(r.n)
	if cap(s.Pix) >= len(pix) {
		s.Pix = s.Pix[:len(pix)]
	} else {
		s.Pix = make([]byte, len(pix))
	}
	copy(s.Pix, pix)
	s.Width = width
	s.Height = height

	r.n++
	r.cursor = r.n - 1
	return evicted
}

// Current returns the snapshot under the cursor.
// The returned Pix is owned by the ring and stays valid until the next Push.
func (r *Ring) Current() (Snapshot, bool) {
	if r.cursor < 0 {
		return Snapshot{}, false
	}
	return *r.slot(r.cursor), true
}

// Undo returns the snapshot under the cursor and moves the cursor back one
// step. It fails when the cursor is on the first live snapshot or the ring
// is empty; the first snapshot is the floor that undo never crosses.
// The returned Pix is owned by the ring and stays valid until the next Push.
func (r *Ring) Undo() (Snapshot, bool) {
	if r.cursor <= 0 {
		return Snapshot{}, false
	}
	s := *r.slot(r.cursor)
	r.cursor--
	return s, true
}

// Reset drops every snapshot and releases the slot buffers.
func (r *Ring) Reset() {
	for i := range r.slots {
		r.slots[i] = Snapshot{}
	}
	r.head = 0
	r.n = 0
	r.cursor = -1
}
