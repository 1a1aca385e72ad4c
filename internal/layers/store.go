// Package layers holds the ordered collection of committed primitives for one
// canvas document together with the current selection.
package layers

import (
	"github.com/google/uuid"

	"github.com/example/notecanvas/internal/primitive"
)

// Store is an ordered, append-only (until removal) list of primitives. It is
// owned by a single canvas and is not safe for concurrent use.
type Store struct {
	items    []primitive.Primitive
	selected string

	newID    func() string
	changed  chan struct{}
	onChange func()
}

// Option configures a Store during creation.
type Option func(*Store)

// WithIDFunc overrides the id generator.
func WithIDFunc(fn func() string) Option { return func(s *Store) { s.newID = fn } }

// WithOnChange registers a callback invoked synchronously after every mutation.
func WithOnChange(fn func()) Option { return func(s *Store) { s.onChange = fn } }

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		newID:   uuid.NewString,
		changed: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Changed delivers a coalesced signal after mutations. At most one signal is
// buffered; consumers should redraw from Layers when it fires.
func (s *Store) Changed() <-chan struct{} { return s.changed }

func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
	if s.onChange != nil {
		s.onChange()
	}
}

// Add commits p with a fresh id and the next z index and returns the id.
func (s *Store) Add(p primitive.Primitive) string {
	p.ID = s.newID()
	p.Z = 0
	if n := len(s.items); n > 0 {
		p.Z = s.items[n-1].Z + 1
	}
	s.items = append(s.items, p)
	s.notify()
	return p.ID
}

// Remove deletes the primitive with id. Unknown ids are ignored. Removing the
// selected primitive clears the selection.
func (s *Store) Remove(id string) {
	idx := s.index(id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	s.notify()
}

// Update merges patch into the primitive with id. Unknown ids are ignored.
func (s *Store) Update(id string, patch primitive.Patch) {
	idx := s.index(id)
	if idx < 0 {
		return
	}
	s.items[idx] = s.items[idx].Apply(patch)
	s.notify()
}

// FindAtPoint returns the topmost primitive containing (x, y). Strokes are
// never returned.
func (s *Store) FindAtPoint(x, y float64) (primitive.Primitive, bool) {
	pt := primitive.Pt(x, y)
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Contains(pt) {
			return s.items[i], true
		}
	}
	return primitive.Primitive{}, false
}

// Clear removes every primitive and the selection. Calling it on an empty
// store is harmless.
func (s *Store) Clear() {
	s.items = nil
	s.selected = ""
	s.notify()
}

// Load replaces the contents with ps in slice order. Ids are kept when
// present and generated otherwise; z indices are renumbered from zero.
func (s *Store) Load(ps []primitive.Primitive) {
	s.items = make([]primitive.Primitive, 0, len(ps))
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if p.ID == "" || seen[p.ID] {
			p.ID = s.newID()
		}
		seen[p.ID] = true
		p.Z = i
		s.items = append(s.items, p)
	}
	s.selected = ""
	s.notify()
}

// Layers returns a copy of the committed primitives in ascending z order.
func (s *Store) Layers() []primitive.Primitive {
	out := make([]primitive.Primitive, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the primitive with id.
func (s *Store) Get(id string) (primitive.Primitive, bool) {
	if idx := s.index(id); idx >= 0 {
		return s.items[idx], true
	}
	return primitive.Primitive{}, false
}

// Len reports the number of committed primitives.
func (s *Store) Len() int { return len(s.items) }

// Select marks id as selected. Ids not in the store clear the selection.
func (s *Store) Select(id string) {
	if s.index(id) < 0 {
		id = ""
	}
	if s.selected == id {
		return
	}
	s.selected = id
	s.notify()
}

// Selected returns the selected id, if any.
func (s *Store) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	if s.selected == "" {
		return
	}
	s.selected = ""
	s.notify()
}

func (s *Store) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
