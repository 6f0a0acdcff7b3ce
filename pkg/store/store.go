// Package store implements the console's keyed cache of server-owned
// resource collections. Each entry carries a stale/fresh status; reads of a
// stale key trigger a refetch through a registered fetch function, with
// concurrent reads of the same key sharing one outstanding call. All writes
// are atomic at collection granularity, and callers must treat returned
// values as immutable snapshots.
package store

import (
	"context"
	"fmt"
	"sync"
)

// Key names one cached collection.
type Key string

// Well-known collection keys.
const (
	KeyHoneypots   Key = "honeypots"
	KeyHoneytokens Key = "honeytokens"
	KeyEvents      Key = "events"
	KeyIncidents   Key = "incidents"
	KeySettings    Key = "notification-settings"
)

// IncidentEventsKey returns the cache key holding one incident's event
// timeline.
func IncidentEventsKey(incidentID string) Key {
	return Key("events:incident:" + incidentID)
}

// FetchFunc retrieves the authoritative value of a collection.
type FetchFunc func(ctx context.Context) (any, error)

// flight is one outstanding fetch, shared by concurrent readers.
type flight struct {
	seq  uint64
	done chan struct{}
	val  any
	err  error
}

type entry struct {
	fetch FetchFunc

	value any
	ok    bool // value has been populated at least once
	fresh bool

	gen uint64 // bumped on every write; identifies the latest local write

	// Fetch bookkeeping. Fetches are numbered in issue order; a result is
	// installed only if no later-issued fetch already resolved and no local
	// write superseded it (issue order wins, never completion order).
	nextSeq      uint64
	installedSeq uint64
	staleSeq     uint64 // results issued at or before this are discarded
	inflight     *flight
}

// Store is the cache of server-owned collections. It is the only shared
// mutable state in the console; all mutation goes through Set, Invalidate,
// and CompareAndRestore.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: map[Key]*entry{}}
}

func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Register associates key with a fetch function. Registering an already
// known key replaces its fetcher but keeps the cached value.
func (s *Store) Register(key Key, fetch FetchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(key).fetch = fetch
}

// Registered reports whether key has a fetch function.
func (s *Store) Registered(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && e.fetch != nil
}

// Get returns the cached value of key without touching the network.
// fresh reports whether the value is current; ok whether any value is held.
func (s *Store) Get(key Key) (value any, fresh, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[key]
	if !exists || !e.ok {
		return nil, false, false
	}
	return e.value, e.fresh, true
}

// Fetch returns the value of key, performing the registered fetch if the
// cached value is stale or missing. Concurrent calls for the same stale key
// share one outstanding fetch.
func (s *Store) Fetch(ctx context.Context, key Key) (any, error) {
	for {
		s.mu.Lock()
		e := s.entryLocked(key)
		if e.ok && e.fresh {
			v := e.value
			s.mu.Unlock()
			return v, nil
		}
		if e.fetch == nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("store: no fetcher registered for key %q", key)
		}

		if fl := e.inflight; fl != nil {
			s.mu.Unlock()
			select {
			case <-fl.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if fl.err != nil {
				return nil, fl.err
			}
			// The shared result may have been superseded while in flight;
			// loop to read whatever the store now considers current.
			continue
		}

		e.nextSeq++
		fl := &flight{seq: e.nextSeq, done: make(chan struct{})}
		e.inflight = fl
		fetch := e.fetch
		s.mu.Unlock()

		val, err := fetch(ctx)

		s.mu.Lock()
		fl.val, fl.err = val, err
		installed := false
		if err == nil && fl.seq > e.staleSeq && fl.seq > e.installedSeq {
			e.value = val
			e.ok = true
			e.fresh = true
			e.installedSeq = fl.seq
			e.gen++
			installed = true
		}
		if e.inflight == fl {
			e.inflight = nil
		}
		close(fl.done)
		s.mu.Unlock()

		if err != nil {
			return nil, err
		}
		if installed {
			return val, nil
		}
		// Discarded result: a newer write or fetch owns the view now.
	}
}

// Set overwrites the cached value of key without a server round trip, used
// for optimistic patches and for seeding from a mutation response. The value
// becomes the current view; any fetch already in flight is superseded.
// Returns the generation of the write, for CompareAndRestore.
func (s *Store) Set(key Key, value any) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.value = value
	e.ok = true
	e.fresh = true
	e.gen++
	e.staleSeq = e.nextSeq
	return e.gen
}

// Invalidate marks key stale so the next read refetches. Idempotent. A fetch
// already in flight is superseded: its result will be discarded and a new
// fetch issued on the next read.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.fresh = false
	e.staleSeq = e.nextSeq
	e.inflight = nil
}

// InvalidateAll marks every known key stale. Used on session failure.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		e.fresh = false
		e.staleSeq = e.nextSeq
		e.inflight = nil
	}
}

// Snapshot returns the current value and generation of key, for a mutation
// to pair with its own later patch.
func (s *Store) Snapshot(key Key) (value any, gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[key]
	if !exists {
		return nil, 0, false
	}
	return e.value, e.gen, e.ok
}

// CompareAndRestore puts value back only if the entry's generation still
// equals ifGen, i.e. the caller's own patch is still the latest write. A
// later mutation's patch is never clobbered. hadValue false restores the
// "never populated" state instead. Reports whether the restore happened.
func (s *Store) CompareAndRestore(key Key, value any, hadValue bool, ifGen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[key]
	if !exists || e.gen != ifGen {
		return false
	}
	e.value = value
	e.ok = hadValue
	e.fresh = false
	e.gen++
	return true
}

// Drop removes key from the store entirely, including its fetcher.
func (s *Store) Drop(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Lookup fetches key and asserts its value to T.
func Lookup[T any](ctx context.Context, s *Store, key Key) (T, error) {
	var zero T
	v, err := s.Fetch(ctx, key)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("store: key %q holds %T, not %T", key, v, zero)
	}
	return typed, nil
}
