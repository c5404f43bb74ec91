// Package state holds the client-side entity stores: the latest
// known-good server data per entity type plus request lifecycle flags.
package state

import (
	"sync"
)

// Status is the lifecycle of the most recent fetch against a store.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Identifiable is implemented by every stored entity.
type Identifiable interface {
	GetID() string
}

// Ticket identifies one list fetch. Only the newest ticket may settle.
type Ticket uint64

// Store caches one entity type. At most one representation per id is
// held; any successful fetch or mutation replaces it wholesale.
//
// Stores are safe for concurrent use: fetch completions arrive on
// command goroutines. Whichever completion settles last wins, subject to
// the list ticket and detail focus guards.
type Store[T Identifiable] struct {
	mu sync.RWMutex

	items map[string]T
	order []string

	current  *T
	focusID  string
	listSeq  Ticket
	status   Status // list fetches only
	detail   Status // detail fetches for focusID
	err      error
	revision uint64
}

// NewStore returns an empty store.
func NewStore[T Identifiable]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

// Snapshot is an immutable copy of a store's state.
type Snapshot[T Identifiable] struct {
	Items        []T
	Current      *T
	Status       Status
	DetailStatus Status
	Err          error
	Revision     uint64
}

// Snapshot copies the store's state for rendering or selectors.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot[T]{
		Items:        s.listLocked(),
		Status:       s.status,
		DetailStatus: s.detail,
		Err:          s.err,
		Revision:     s.revision,
	}
	if s.current != nil {
		c := *s.current
		snap.Current = &c
	}
	return snap
}

// List returns the cached items in server order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Store[T]) listLocked() []T {
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Get looks up a cached item by id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Len returns the number of cached items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Current returns the detail slot.
func (s *Store[T]) Current() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		var zero T
		return zero, false
	}
	return *s.current, true
}

// FocusID returns the id the detail slot is currently tracking.
func (s *Store[T]) FocusID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focusID
}

// Status is the lifecycle of the list fetch.
func (s *Store[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// DetailStatus is the lifecycle of the detail fetch for FocusID.
func (s *Store[T]) DetailStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detail
}

func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Revision increases on every applied change. Views use it to skip
// recomputation when nothing changed.
func (s *Store[T]) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// BeginList marks a list fetch in flight and returns its ticket.
func (s *Store[T]) BeginList() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listSeq++
	s.status = StatusLoading
	s.revision++
	return s.listSeq
}

// ResolveList replaces the cached list with a fetch result. A result for
// a superseded ticket is dropped and false is returned.
func (s *Store[T]) ResolveList(t Ticket, items []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.listSeq {
		return false
	}
	s.replaceAllLocked(items)
	s.status = StatusSucceeded
	s.err = nil
	s.revision++
	return true
}

// RejectList records a failed list fetch. Cached items are kept so a
// transient failure shows stale data instead of an empty view.
func (s *Store[T]) RejectList(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.listSeq {
		return false
	}
	s.status = StatusFailed
	s.err = err
	s.revision++
	return true
}

// Focus points the detail slot at id and marks a detail fetch in flight.
// The previous detail stays visible until the new one settles.
func (s *Store[T]) Focus(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusID = id
	s.detail = StatusLoading
	s.revision++
}

// ResolveDetail stores a detail fetch result. It is dropped, returning
// false, when the viewer has since focused another id. A cached list
// entry for the same id is replaced too, keeping one representation.
func (s *Store[T]) ResolveDetail(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.GetID() != s.focusID {
		return false
	}
	c := item
	s.current = &c
	if _, ok := s.items[item.GetID()]; ok {
		s.items[item.GetID()] = item
	}
	s.detail = StatusSucceeded
	s.err = nil
	s.revision++
	return true
}

// RejectDetail records a failed detail fetch for id. The detail slot is
// cleared only when it holds a different entity, i.e. nothing relevant
// to the current navigation is left to show.
func (s *Store[T]) RejectDetail(id string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.focusID {
		return false
	}
	if s.current != nil && (*s.current).GetID() != id {
		s.current = nil
	}
	s.detail = StatusFailed
	s.err = err
	s.revision++
	return true
}

// Blur clears the detail slot when the viewer leaves a detail view.
func (s *Store[T]) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusID = ""
	s.current = nil
	s.detail = StatusIdle
	s.revision++
}

// Put inserts or replaces one confirmed entity, e.g. after a create or
// update. New ids are appended in arrival order.
func (s *Store[T]) Put(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(item)
	s.err = nil
	s.revision++
}

// PutAll inserts or replaces several confirmed entities.
func (s *Store[T]) PutAll(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.putLocked(item)
	}
	s.err = nil
	s.revision++
}

func (s *Store[T]) putLocked(item T) {
	id := item.GetID()
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = item
	if s.current != nil && (*s.current).GetID() == id {
		c := item
		s.current = &c
	}
}

// Remove drops an entity by id, clearing the detail slot if it held it.
// It reports whether the id was cached.
func (s *Store[T]) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	if ok {
		delete(s.items, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
	if s.current != nil && (*s.current).GetID() == id {
		s.current = nil
		ok = true
	}
	if s.focusID == id {
		s.focusID = ""
	}
	s.err = nil
	s.revision++
	return ok
}

// Hydrate seeds an idle, empty store from a persisted snapshot. It is a
// no-op once any data has arrived from the server.
func (s *Store[T]) Hydrate(items []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) > 0 || s.status != StatusIdle {
		return false
	}
	s.replaceAllLocked(items)
	s.revision++
	return true
}

// Reset empties the store, used on logout.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = nil
	s.current = nil
	s.focusID = ""
	s.listSeq++
	s.status = StatusIdle
	s.detail = StatusIdle
	s.err = nil
	s.revision++
}

// replaceAllLocked swaps in a new list. Duplicate ids in the input keep
// the last occurrence at the first occurrence's position.
func (s *Store[T]) replaceAllLocked(items []T) {
	s.items = make(map[string]T, len(items))
	s.order = make([]string, 0, len(items))
	for _, item := range items {
		s.putLocked(item)
	}
}
