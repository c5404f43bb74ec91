// Package coordinator orchestrates fetches and mutations: it calls the
// REST client, applies confirmed results to the entity stores, persists
// snapshots, and normalizes every failure to *apperr.Error.
//
// Coordinators never insert optimistically (member additions aside, which
// go through state.Pending) and leave store data untouched on failure.
package coordinator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

// API is the part of *api.Client the coordinators use.
type API interface {
	ProjectAPI
	TaskAPI
	CommentAPI
	UserAPI
	ProfileAPI
	NotificationAPI
	WorkLogAPI
}

// Deps are the collaborators shared by every coordinator.
type Deps struct {
	API    API
	State  *state.AppState
	Cache  cache.Snapshotter // nil disables persistence
	Logger zerolog.Logger
}

// Set bundles the coordinators the UI triggers.
type Set struct {
	Projects      *Projects
	Tasks         *Tasks
	Comments      *Comments
	Users         *Users
	Profiles      *Profiles
	Notifications *Notifications
	WorkLogs      *WorkLogs

	state *state.AppState
	base  base
}

// New builds every coordinator over the same state and cache.
func New(d Deps) *Set {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	b := base{cache: d.Cache, log: d.Logger.With().Str("component", "coordinator").Logger()}
	return &Set{
		Projects:      &Projects{api: d.API, state: d.State, base: b},
		Tasks:         &Tasks{api: d.API, state: d.State, base: b},
		Comments:      &Comments{api: d.API, state: d.State, base: b},
		Users:         &Users{api: d.API, state: d.State, base: b},
		Profiles:      &Profiles{api: d.API, state: d.State, base: b},
		Notifications: &Notifications{api: d.API, state: d.State, base: b},
		WorkLogs:      &WorkLogs{api: d.API, state: d.State, base: b},
		state:         d.State,
		base:          b,
	}
}

// Hydrate seeds empty stores from the snapshot cache so the previous
// session's data shows before the first fetch settles. Stores that
// already hold server data are left alone.
func (s *Set) Hydrate(ctx context.Context) {
	hydrate(ctx, s.base, s.state.Projects, cache.KindProjects)
	hydrate(ctx, s.base, s.state.Tasks, cache.KindTasks)
	hydrate(ctx, s.base, s.state.Users, cache.KindUsers)
	hydrate(ctx, s.base, s.state.Notifications, cache.KindNotifications)
	hydrate(ctx, s.base, s.state.WorkLogs, cache.KindWorkLogs)
}

// Logout forgets all session data, in memory and on disk.
func (s *Set) Logout(ctx context.Context) {
	s.state.Reset()
	if err := s.base.cache.Clear(ctx); err != nil {
		s.base.log.Warn().Err(err).Msg("clearing cache")
	}
}

func hydrate[T state.Identifiable](ctx context.Context, b base, store *state.Store[T], kind string) {
	items, err := cache.Restore[T](ctx, b.cache, kind)
	if err != nil {
		b.log.Warn().Err(err).Str("kind", kind).Msg("restoring snapshot")
		return
	}
	if len(items) == 0 {
		return
	}
	if store.Hydrate(items) {
		b.log.Debug().Str("kind", kind).Int("count", len(items)).Msg("hydrated from cache")
	}
}

// base carries persistence and logging for every coordinator.
type base struct {
	cache cache.Snapshotter
	log   zerolog.Logger
}

// Cache failures never fail an operation: the server result already
// landed in the store.
func (b base) persist(kind string, save func() error) {
	if err := save(); err != nil {
		b.log.Warn().Err(err).Str("kind", kind).Msg("writing snapshot")
	}
}

func saveAll[T state.Identifiable](ctx context.Context, b base, kind string, items []T) {
	b.persist(kind, func() error { return cache.Save(ctx, b.cache, kind, items) })
}

func saveOne[T state.Identifiable](ctx context.Context, b base, kind string, item T) {
	b.persist(kind, func() error { return cache.SaveOne(ctx, b.cache, kind, item) })
}

func (b base) forget(ctx context.Context, kind, id string) {
	if err := b.cache.Delete(ctx, kind, id); err != nil {
		b.log.Warn().Err(err).Str("kind", kind).Str("id", id).Msg("deleting snapshot entry")
	}
}

// fail normalizes err and logs it.
func (b base) fail(op, entity, id string, err error) error {
	wrapped := apperr.Wrap(op, entity, id, err)
	ev := b.log.Warn()
	if apperr.IsValidation(wrapped) {
		ev = b.log.Debug()
	}
	ev.Err(wrapped).Str("op", op).Str("entity", entity).Str("id", id).Msg("operation failed")
	return wrapped
}

// fetchList runs a list fetch under the store's ticket guard. A result
// superseded by a newer fetch is returned to the caller but not applied.
func fetchList[T state.Identifiable](
	ctx context.Context,
	b base,
	store *state.Store[T],
	entity, kind string,
	fetch func(context.Context) ([]T, error),
) ([]T, error) {
	ticket := store.BeginList()
	items, err := fetch(ctx)
	if err != nil {
		err = b.fail("list", entity, "", err)
		store.RejectList(ticket, err)
		return nil, err
	}
	if !store.ResolveList(ticket, items) {
		b.log.Debug().Str("entity", entity).Msg("dropped superseded list result")
		return items, nil
	}
	b.log.Debug().Str("entity", entity).Int("count", len(items)).Msg("list fetched")
	if kind != "" {
		saveAll(ctx, b, kind, items)
	}
	return items, nil
}

// fetchDetail fetches one entity into the store's detail slot. A result
// for an id the viewer has navigated away from is dropped.
func fetchDetail[T state.Identifiable](
	ctx context.Context,
	b base,
	store *state.Store[T],
	entity, id string,
	fetch func(context.Context, string) (T, error),
) (T, error) {
	store.Focus(id)
	item, err := fetch(ctx, id)
	if err != nil {
		err = b.fail("get", entity, id, err)
		store.RejectDetail(id, err)
		var zero T
		return zero, err
	}
	if !store.ResolveDetail(item) {
		b.log.Debug().Str("entity", entity).Str("id", id).Msg("dropped stale detail result")
	}
	return item, nil
}

// validate runs in.Validate and normalizes the failure.
func (b base) validate(op, entity, id string, in model.Validator) error {
	if err := in.Validate(); err != nil {
		return b.fail(op, entity, id, err)
	}
	return nil
}
