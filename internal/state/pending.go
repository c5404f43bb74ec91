package state

import (
	"sync"

	"github.com/google/uuid"
)

// Tracked is either a confirmed entity (CorrelationID empty) or a
// locally-originated one that the server has not acknowledged yet.
type Tracked[T any] struct {
	Value         T
	CorrelationID string
}

// Confirmed reports whether the server has acknowledged the value.
func (t Tracked[T]) Confirmed() bool { return t.CorrelationID == "" }

// Pending tracks unacknowledged values grouped by scope, e.g. the
// project a member is being added to. Values never receive a fake
// server id; they are reconciled through the correlation id instead.
type Pending[T any] struct {
	mu      sync.Mutex
	byScope map[string][]Tracked[T]
}

func NewPending[T any]() *Pending[T] {
	return &Pending[T]{byScope: make(map[string][]Tracked[T])}
}

// Add records values under scope and returns the correlation id that
// later settles or rolls them back.
func (p *Pending[T]) Add(scope string, values ...T) string {
	id := uuid.NewString()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range values {
		p.byScope[scope] = append(p.byScope[scope], Tracked[T]{Value: v, CorrelationID: id})
	}
	return id
}

// Settle drops the entries of a correlation id after the server
// confirmed them; the confirmed values live in the entity store.
func (p *Pending[T]) Settle(scope, correlationID string) int {
	return p.drop(scope, correlationID)
}

// Rollback drops the entries of a correlation id after the server
// rejected them.
func (p *Pending[T]) Rollback(scope, correlationID string) int {
	return p.drop(scope, correlationID)
}

func (p *Pending[T]) drop(scope, correlationID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	entries := p.byScope[scope]
	kept := entries[:0:0]
	for _, e := range entries {
		if e.CorrelationID != correlationID {
			kept = append(kept, e)
		}
	}
	dropped := len(entries) - len(kept)
	if len(kept) == 0 {
		delete(p.byScope, scope)
	} else {
		p.byScope[scope] = kept
	}
	return dropped
}

// List returns the pending entries of scope in insertion order.
func (p *Pending[T]) List(scope string) []Tracked[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Tracked[T](nil), p.byScope[scope]...)
}

// Forget drops every entry of scope, e.g. when the project is deleted.
func (p *Pending[T]) Forget(scope string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.byScope, scope)
}

// Clear forgets every pending entry.
func (p *Pending[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byScope = make(map[string][]Tracked[T])
}

// Merge returns confirmed values followed by the pending entries of
// scope, which is what a view renders while a mutation is in flight.
func Merge[T any](confirmed []T, pending []Tracked[T]) []Tracked[T] {
	out := make([]Tracked[T], 0, len(confirmed)+len(pending))
	for _, v := range confirmed {
		out = append(out, Tracked[T]{Value: v})
	}
	return append(out, pending...)
}
