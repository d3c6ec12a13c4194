package memoize

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/tkem/cachetools/cache"
)

// receiverState is the per-receiver bookkeeping a CachedMethod needs: the
// pending set and hit/miss counters that Cached keeps at wrapper scope,
// scoped down to one receiver instead.
type receiverState[K comparable, V any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[K]struct{}

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CachedMethod memoizes a method's get-or-compute against a per-receiver
// cache. Go methods can't carry attached state the way an attribute
// assignment on self could, so per-receiver state is keyed by a weak
// reference to the receiver: looking a receiver up never keeps it alive,
// and a runtime.Cleanup drops its state once the receiver is collected.
type CachedMethod[R any, K comparable, V any] struct {
	cacheSelector func(*R) cache.Store[K, V]
	suppress      bool

	statesMu sync.Mutex
	states   map[weak.Pointer[R]]*receiverState[K, V]
}

// MethodOption configures a CachedMethod at construction time.
type MethodOption[R any, K comparable, V any] func(*CachedMethod[R, K, V])

// WithMethodStampedeSuppression enables per-receiver stampede suppression,
// the method-memoizer equivalent of WithStampedeSuppression.
func WithMethodStampedeSuppression[R any, K comparable, V any]() MethodOption[R, K, V] {
	return func(m *CachedMethod[R, K, V]) {
		m.suppress = true
	}
}

// NewCachedMethod builds a CachedMethod. cacheSelector resolves the backing
// cache for a given receiver; a nil result makes Do a passthrough for that
// receiver.
func NewCachedMethod[R any, K comparable, V any](
	cacheSelector func(*R) cache.Store[K, V],
	opts ...MethodOption[R, K, V],
) *CachedMethod[R, K, V] {
	m := &CachedMethod[R, K, V]{
		cacheSelector: cacheSelector,
		states:        make(map[weak.Pointer[R]]*receiverState[K, V]),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Do returns the cached value for key against self's backing cache,
// computing and installing it via compute on a miss.
func (m *CachedMethod[R, K, V]) Do(
	ctx context.Context,
	self *R,
	key K,
	compute func(context.Context) (V, error),
) (V, error) {
	store := m.cacheSelector(self)
	if store == nil {
		return compute(ctx)
	}

	st := m.stateFor(self)

	if st.cond == nil {
		return getOrInstall(ctx, store, key, compute, &st.hits, &st.misses)
	}

	return getOrInstallSuppressed(ctx, store, key, compute, &st.mu, st.cond, st.pending, &st.hits, &st.misses)
}

func (m *CachedMethod[R, K, V]) stateFor(self *R) *receiverState[K, V] {
	wp := weak.Make(self)

	m.statesMu.Lock()
	defer m.statesMu.Unlock()

	if st, ok := m.states[wp]; ok {
		return st
	}

	st := &receiverState[K, V]{}
	if m.suppress {
		st.pending = make(map[K]struct{})
		st.cond = sync.NewCond(&st.mu)
	}

	m.states[wp] = st

	runtime.AddCleanup(self, m.dropState, wp)

	return st
}

func (m *CachedMethod[R, K, V]) dropState(dead weak.Pointer[R]) {
	m.statesMu.Lock()
	delete(m.states, dead)
	m.statesMu.Unlock()
}

// peekState looks up a receiver's state without creating one, so that Info
// and Clear don't allocate bookkeeping for a receiver Do never ran for.
func (m *CachedMethod[R, K, V]) peekState(self *R) *receiverState[K, V] {
	wp := weak.Make(self)

	m.statesMu.Lock()
	defer m.statesMu.Unlock()

	return m.states[wp]
}

// Info returns a hit/miss snapshot for self's cache. Hits and Misses are zero
// if Do has never run for self; MaxSize and CurrSize come from self's cache
// whenever the selector returns one.
func (m *CachedMethod[R, K, V]) Info(self *R) Stats {
	var s Stats

	if st := m.peekState(self); st != nil {
		s.Hits = st.hits.Load()
		s.Misses = st.misses.Load()
	}

	if store := m.cacheSelector(self); store != nil {
		s.MaxSize = store.MaxSize()
		s.CurrSize = store.CurrSize()
	}

	return s
}

// Clear empties self's backing cache and resets its hit/miss counters.
func (m *CachedMethod[R, K, V]) Clear(self *R) {
	if store := m.cacheSelector(self); store != nil {
		store.Clear()
	}

	if st := m.peekState(self); st != nil {
		st.hits.Store(0)
		st.misses.Store(0)
	}
}
