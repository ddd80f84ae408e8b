package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultStaleAfter is the staleness window applied when a fetch does not
// override it.
const DefaultStaleAfter = 5 * time.Minute

// Key identifies one cached query: a resource type, a scope discriminator and
// a scoping id. The zero value in Scope/ID is legitimate ("all videos" is
// {Resource: "videos"}).
type Key struct {
	Resource string
	Scope    string
	ID       string
}

type entry struct {
	value     any
	fetchedAt time.Time
	gen       uint64
}

type inflight struct {
	done  chan struct{}
	value any
	err   error
}

// Store is an in-process read cache. Concurrent fetches for the same key are
// deduplicated, and each key carries a generation counter: invalidation bumps
// the generation, so a fetch that completes against a stale generation is
// discarded instead of resurrecting old data (last write wins per key).
type Store struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	inflight   map[Key]*inflight
	gens       map[Key]uint64
	staleAfter time.Duration
}

func New(staleAfter time.Duration) *Store {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	s := &Store{
		entries:    make(map[Key]*entry),
		inflight:   make(map[Key]*inflight),
		gens:       make(map[Key]uint64),
		staleAfter: staleAfter,
	}
	go s.sweep()
	return s
}

// Get returns the cached value for key when it is still fresh.
func (s *Store) Get(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || time.Since(e.fetchedAt) >= s.staleAfter {
		return nil, false
	}
	return e.value, true
}

// Fetch returns the fresh cached value for key, or runs fetch and caches the
// result. Callers arriving while a fetch for the same key is in flight wait
// for that fetch instead of issuing their own.
func (s *Store) Fetch(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && time.Since(e.fetchedAt) < s.staleAfter {
		s.mu.Unlock()
		return e.value, nil
	}
	if f, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-f.done:
			return f.value, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &inflight{done: make(chan struct{})}
	s.inflight[key] = f
	gen := s.gens[key]
	s.mu.Unlock()

	value, err := fetch(ctx)

	s.mu.Lock()
	delete(s.inflight, key)
	if err == nil && s.gens[key] == gen {
		s.entries[key] = &entry{value: value, fetchedAt: time.Now(), gen: gen}
	}
	s.mu.Unlock()

	f.value = value
	f.err = err
	close(f.done)
	return value, err
}

// Invalidate drops every entry whose key matches pred and marks matching
// in-flight fetches stale so their results are discarded on completion.
func (s *Store) Invalidate(pred func(Key) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if pred(k) {
			delete(s.entries, k)
			s.gens[k]++
		}
	}
	for k := range s.inflight {
		if pred(k) {
			s.gens[k]++
		}
	}
}

// InvalidateKey drops a single entry.
func (s *Store) InvalidateKey(key Key) {
	s.Invalidate(func(k Key) bool { return k == key })
}

func (s *Store) sweep() {
	for {
		time.Sleep(10 * time.Minute)
		s.mu.Lock()
		for k, e := range s.entries {
			if time.Since(e.fetchedAt) >= s.staleAfter {
				delete(s.entries, k)
			}
		}
		s.mu.Unlock()
	}
}

// Fetched runs a typed fetch through the store.
func Fetched[T any](ctx context.Context, s *Store, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := s.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return t, nil
}
