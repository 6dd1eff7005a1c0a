package session

import (
	"context"
	"sync"

	sourcingRepo "sourcing.GO/model/repository/sourcing"
	sourcingService "sourcing.GO/service/sourcing"
)

// Registry holds the active editing sessions, one per work-order key.
// A single browser session edits a record at a time; concurrent callers
// for the same key share the same session rather than racing two
// working copies.
type Registry struct {
	m sync.Map // work-order key -> *sourcingService.Session

	store        *sourcingRepo.RecordStore
	newScheduler func() sourcingService.Scheduler
}

var (
	once     sync.Once
	instance *Registry
)

// Configure sets up the singleton registry. Must run before GetInstance.
func Configure(store *sourcingRepo.RecordStore, newScheduler func() sourcingService.Scheduler) {
	once.Do(func() {
		instance = &Registry{store: store, newScheduler: newScheduler}
	})
}

func GetInstance() *Registry {
	return instance
}

// Open returns the active session for a key, opening one (and seeding the
// record on first access) if none exists.
func (r *Registry) Open(ctx context.Context, key string) (*sourcingService.Session, error) {
	if v, ok := r.m.Load(key); ok {
		return v.(*sourcingService.Session), nil
	}
	s, err := sourcingService.Open(ctx, key, r.store, r.newScheduler())
	if err != nil {
		return nil, err
	}
	actual, loaded := r.m.LoadOrStore(key, s)
	if loaded {
		// Lost the race; keep the winner's session and stop our timer.
		s.Close()
		return actual.(*sourcingService.Session), nil
	}
	return s, nil
}

// Get returns the active session for a key, or nil.
func (r *Registry) Get(key string) *sourcingService.Session {
	if v, ok := r.m.Load(key); ok {
		return v.(*sourcingService.Session)
	}
	return nil
}

// Close stops and drops the session for a key.
func (r *Registry) Close(key string) {
	if v, ok := r.m.LoadAndDelete(key); ok {
		v.(*sourcingService.Session).Close()
	}
}

// CloseAll stops every active session (shutdown path).
func (r *Registry) CloseAll() {
	r.m.Range(func(key, v interface{}) bool {
		v.(*sourcingService.Session).Close()
		r.m.Delete(key)
		return true
	})
}
