package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/store"
)

func TestFetchCachesValue(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	var calls atomic.Int32
	s.Register(key, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "v1", nil
	})

	v, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "v1", v)

	// Second read is served from cache.
	v, err = s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "v1", v)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchUnregisteredKey(t *testing.T) {
	s := store.New()
	_, err := s.Fetch(context.Background(), store.Key("missing"))
	require.Error(t, err)
}

func TestInvalidateTriggersRefetch(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	var calls atomic.Int32
	s.Register(key, func(ctx context.Context) (any, error) {
		return int(calls.Add(1)), nil
	})

	v, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	s.Invalidate(key)

	// Stale value stays readable without the network.
	got, fresh, ok := s.Get(key)
	require.True(t, ok)
	require.False(t, fresh)
	require.Equal(t, 1, got)

	v, err = s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestInvalidateIdempotent(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	var calls atomic.Int32
	s.Register(key, func(ctx context.Context) (any, error) {
		return int(calls.Add(1)), nil
	})

	_, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)
	s.Invalidate(key)
	s.Invalidate(key)
	s.Invalidate(key)

	v, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.Equal(t, int32(2), calls.Load())
}

func TestConcurrentFetchesShareOneCall(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	s.Register(key, func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "shared", nil
	})

	const readers = 8
	var wg sync.WaitGroup
	results := make([]any, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.Fetch(context.Background(), key)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	<-started
	// Give the remaining readers time to join the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		require.Equal(t, "shared", v)
	}
}

func TestFetchErrorNotCached(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	boom := errors.New("boom")
	var calls atomic.Int32
	s.Register(key, func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	})

	_, err := s.Fetch(context.Background(), key)
	require.ErrorIs(t, err, boom)

	// The error does not poison the entry; the next read retries.
	v, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}

func TestSetSupersedesInflightFetch(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	release := make(chan struct{})
	started := make(chan struct{})
	s.Register(key, func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "remote", nil
	})

	done := make(chan any)
	go func() {
		v, err := s.Fetch(context.Background(), key)
		require.NoError(t, err)
		done <- v
	}()

	<-started
	s.Set(key, "local")
	close(release)

	// The fetch was issued before the write, so its result is discarded and
	// the reader sees the local write instead.
	require.Equal(t, "local", <-done)

	got, fresh, ok := s.Get(key)
	require.True(t, ok)
	require.True(t, fresh)
	require.Equal(t, "local", got)
}

func TestSupersededFetchResultDiscarded(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	s.Register(key, func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return "first", nil
		}
		return "second", nil
	})

	done := make(chan any)
	go func() {
		v, err := s.Fetch(context.Background(), key)
		require.NoError(t, err)
		done <- v
	}()

	<-started
	s.Invalidate(key)

	// A fresh fetch issued after the invalidation installs its result.
	v, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "second", v)

	// The superseded first fetch completes late; issue order wins, so its
	// result must not overwrite the newer one.
	close(release)
	require.Equal(t, "second", <-done)

	got, fresh, ok := s.Get(key)
	require.True(t, ok)
	require.True(t, fresh)
	require.Equal(t, "second", got)
}

func TestCompareAndRestore(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	s.Register(key, func(ctx context.Context) (any, error) { return "remote", nil })

	prev, _, hadValue := s.Snapshot(key)
	require.False(t, hadValue)

	gen := s.Set(key, "optimistic")
	require.True(t, s.CompareAndRestore(key, prev, hadValue, gen))

	// Restored entries are stale and, here, unpopulated.
	_, _, ok := s.Get(key)
	require.False(t, ok)
}

func TestCompareAndRestoreSkipsLaterWrite(t *testing.T) {
	s := store.New()
	key := store.Key("k")

	s.Set(key, "base")
	prev, _, hadValue := s.Snapshot(key)
	gen := s.Set(key, "patch-a")

	// A second mutation patches the same key before the first rolls back.
	s.Set(key, "patch-b")

	require.False(t, s.CompareAndRestore(key, prev, hadValue, gen))
	got, _, ok := s.Get(key)
	require.True(t, ok)
	require.Equal(t, "patch-b", got)
}

func TestFetchContextCancelledWhileJoined(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	release := make(chan struct{})
	started := make(chan struct{})
	s.Register(key, func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "v", nil
	})

	go func() {
		_, _ = s.Fetch(context.Background(), key)
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, key)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestDropRemovesEntry(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	s.Register(key, func(ctx context.Context) (any, error) { return "v", nil })
	require.True(t, s.Registered(key))

	_, err := s.Fetch(context.Background(), key)
	require.NoError(t, err)

	s.Drop(key)
	require.False(t, s.Registered(key))
	_, _, ok := s.Get(key)
	require.False(t, ok)
}

func TestLookupTypeMismatch(t *testing.T) {
	s := store.New()
	key := store.Key("k")
	s.Register(key, func(ctx context.Context) (any, error) { return 42, nil })

	_, err := store.Lookup[string](context.Background(), s, key)
	require.Error(t, err)

	v, err := store.Lookup[int](context.Background(), s, key)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}
