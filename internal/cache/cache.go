// Package cache persists the last known-good server data between runs so
// the dashboard has something to show before the first fetch settles.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot kinds, one per entity store.
const (
	KindProjects      = "projects"
	KindTasks         = "tasks"
	KindUsers         = "users"
	KindNotifications = "notifications"
	KindWorkLogs      = "worklogs"
)

// Entry is one cached entity in its wire encoding.
type Entry struct {
	ID      string `db:"id"`
	Payload string `db:"payload"`
}

// Snapshotter stores ordered entity snapshots per kind.
type Snapshotter interface {
	// Replace swaps the whole snapshot of kind, keeping entry order.
	Replace(ctx context.Context, kind string, entries []Entry) error
	// Put inserts or replaces one entry; new entries go last.
	Put(ctx context.Context, kind string, e Entry) error
	Delete(ctx context.Context, kind, id string) error
	Load(ctx context.Context, kind string) ([]Entry, error)
	// Clear drops everything, used on logout.
	Clear(ctx context.Context) error
}

// SyncLog records when each background refresher last ran.
type SyncLog interface {
	RecordSync(ctx context.Context, name string, at time.Time, syncErr error) error
	LastSync(ctx context.Context, name string) (time.Time, string, error)
}

// Cache is everything the entry point wires into coordinators and the
// poller.
type Cache interface {
	Snapshotter
	SyncLog
	Close() error
}

type identifiable interface {
	GetID() string
}

// Encode converts entities to entries.
func Encode[T identifiable](items []T) ([]Entry, error) {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", it.GetID(), err)
		}
		out = append(out, Entry{ID: it.GetID(), Payload: string(b)})
	}
	return out, nil
}

// Decode converts entries back to entities.
func Decode[T any](entries []Entry) ([]T, error) {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal([]byte(e.Payload), &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", e.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Save replaces the snapshot of kind with items.
func Save[T identifiable](ctx context.Context, s Snapshotter, kind string, items []T) error {
	entries, err := Encode(items)
	if err != nil {
		return err
	}
	return s.Replace(ctx, kind, entries)
}

// SaveOne inserts or replaces a single item in the snapshot of kind.
func SaveOne[T identifiable](ctx context.Context, s Snapshotter, kind string, item T) error {
	entries, err := Encode([]T{item})
	if err != nil {
		return err
	}
	return s.Put(ctx, kind, entries[0])
}

// Restore loads the snapshot of kind.
func Restore[T any](ctx context.Context, s Snapshotter, kind string) ([]T, error) {
	entries, err := s.Load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return Decode[T](entries)
}

// Nop is used when caching is disabled.
type Nop struct{}

func (Nop) Replace(context.Context, string, []Entry) error { return nil }
func (Nop) Put(context.Context, string, Entry) error { return nil }
func (Nop) Delete(context.Context, string, string) error { return nil }
func (Nop) Load(context.Context, string) ([]Entry, error) { return nil, nil }
func (Nop) Clear(context.Context) error { return nil }

func (Nop) RecordSync(context.Context, string, time.Time, error) error { return nil }

func (Nop) LastSync(context.Context, string) (time.Time, string, error) {
	return time.Time{}, "", nil
}

func (Nop) Close() error { return nil }
