// Package memoize implements get-or-compute wrappers over a cache.Store.
// Go has no decorator syntax, so the function- and method-memoizer contracts
// become two constructor types, Cached and CachedMethod: instead of wrapping
// a variadic call, the caller supplies the key up front (typically produced
// by the cachekey package) and a compute closure, in the same shape as
// golang.org/x/sync/singleflight's Do — plus a shared backing cache,
// hit/miss accounting, and optional stampede suppression via a condition
// variable.
package memoize

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tkem/cachetools/cache"
)

// Stats is a hit/miss snapshot alongside the backing cache's size, mirroring
// a get-or-compute wrapper's cache_info tuple.
type Stats struct {
	Hits     uint64
	Misses   uint64
	MaxSize  int64
	CurrSize int64
}

// getOrInstall performs the unsuppressed get-or-compute: a miss runs compute
// outside any lock, then installs the result under a race-aware
// read-then-install-if-absent check — if a concurrent caller installed
// first, that winning value is returned instead of this caller's own
// (discarded) computation.
func getOrInstall[K comparable, V any](
	ctx context.Context,
	store cache.Store[K, V],
	key K,
	compute func(context.Context) (V, error),
	hits, misses *atomic.Uint64,
) (V, error) {
	if v, err := store.Get(key); err == nil {
		hits.Add(1)

		return v, nil
	}

	misses.Add(1)

	value, err := compute(ctx)
	if err != nil {
		var zero V

		return zero, err
	}

	return installRaceAware(store, key, value), nil
}

// getOrInstallSuppressed is getOrInstall plus stampede suppression: for a
// given key, at most one caller's compute runs at a time. Other callers
// under the same lock wait on cond until the key leaves pending, then
// re-check the cache and return its value as a hit.
func getOrInstallSuppressed[K comparable, V any](
	ctx context.Context,
	store cache.Store[K, V],
	key K,
	compute func(context.Context) (V, error),
	mu *sync.Mutex,
	cond *sync.Cond,
	pending map[K]struct{},
	hits, misses *atomic.Uint64,
) (V, error) {
	mu.Lock()

	for {
		if v, err := store.Get(key); err == nil {
			mu.Unlock()
			hits.Add(1)

			return v, nil
		}

		if _, busy := pending[key]; !busy {
			break
		}

		cond.Wait()
	}

	misses.Add(1)
	pending[key] = struct{}{}
	mu.Unlock()

	value, err := func() (v V, err error) {
		defer func() {
			mu.Lock()
			delete(pending, key)
			cond.Broadcast()
			mu.Unlock()
		}()

		v, err = compute(ctx)
		if err != nil {
			return v, err
		}

		return installRaceAware(store, key, v), nil
	}()

	if err != nil {
		var zero V

		return zero, err
	}

	return value, nil
}

// installRaceAware installs value for key unless another caller already
// installed one while this caller was computing, in which case that
// already-cached value is returned in place of this caller's own
// (discarded) computation — the Go equivalent of Python's
// dict.setdefault, which cache.Store.SetDefault implements directly. A
// ValueTooLarge rejection is swallowed the same way: the computed value
// is handed back uncached rather than surfaced as an error.
func installRaceAware[K comparable, V any](store cache.Store[K, V], key K, value V) V {
	v, err := store.SetDefault(key, value)
	if err != nil {
		return value
	}

	return v
}
