package memoize

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tkem/cachetools/cache"
	"github.com/tkem/cachetools/circuitbreaker"
	"github.com/tkem/cachetools/logger"
	"github.com/tkem/cachetools/retry"
)

// Cached wraps a cache.Store with a thread-safe get-or-compute. Do looks up
// key; on a miss it runs compute outside any lock and installs the result.
// A nil backing store makes Do a pure passthrough: compute always runs and
// nothing is cached.
type Cached[K comparable, V any] struct {
	store cache.Store[K, V]

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[K]struct{}

	hits   atomic.Uint64
	misses atomic.Uint64

	retryOpts []retry.Option
	breaker   *circuitbreaker.CircuitBreaker
	log       logger.ILogger
}

// Option configures a Cached wrapper at construction time.
type Option[K comparable, V any] func(*Cached[K, V])

// WithStampedeSuppression ensures that, for a given key, at most one caller
// computes its value concurrently; other callers block until the result is
// installed and then observe it as a hit. Without it, concurrent misses on
// the same key may each compute independently and race to install — the
// earliest install wins, later ones are discarded in favor of it.
func WithStampedeSuppression[K comparable, V any]() Option[K, V] {
	return func(c *Cached[K, V]) {
		c.pending = make(map[K]struct{})
		c.cond = sync.NewCond(&c.mu)
	}
}

// WithRetry wraps the miss-path compute call in retry.Do, bounding
// transient failures from a flaky loader before they reach the caller.
func WithRetry[K comparable, V any](opts ...retry.Option) Option[K, V] {
	return func(c *Cached[K, V]) {
		c.retryOpts = opts
	}
}

// WithCircuitBreaker routes the miss-path compute call through cb, so a
// loader that is failing outright fails fast instead of piling up
// concurrent stampeding computations.
func WithCircuitBreaker[K comparable, V any](cb *circuitbreaker.CircuitBreaker) Option[K, V] {
	return func(c *Cached[K, V]) {
		c.breaker = cb
	}
}

// WithLogger attaches a logger to the wrapper. Cached stores it but does not
// write to it.
func WithLogger[K comparable, V any](l logger.ILogger) Option[K, V] {
	return func(c *Cached[K, V]) {
		c.log = l
	}
}

// NewCached builds a Cached wrapper over store.
func NewCached[K comparable, V any](store cache.Store[K, V], opts ...Option[K, V]) *Cached[K, V] {
	c := &Cached[K, V]{store: store}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do returns the cached value for key, computing and installing it via
// compute on a miss. compute always runs outside the wrapper's own lock; if
// WithRetry or WithCircuitBreaker was configured, compute is additionally
// wrapped by them, innermost retry first.
func (c *Cached[K, V]) Do(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	if c.store == nil {
		return compute(ctx)
	}

	wrapped := c.wrapCompute(compute)

	if c.cond == nil {
		return getOrInstall(ctx, c.store, key, wrapped, &c.hits, &c.misses)
	}

	return getOrInstallSuppressed(ctx, c.store, key, wrapped, &c.mu, c.cond, c.pending, &c.hits, &c.misses)
}

func (c *Cached[K, V]) wrapCompute(compute func(context.Context) (V, error)) func(context.Context) (V, error) {
	call := compute

	if len(c.retryOpts) > 0 {
		inner := call
		call = func(ctx context.Context) (V, error) {
			var v V

			err := retry.Do(ctx, func(ctx context.Context) error {
				var err error
				v, err = inner(ctx)

				return err
			}, c.retryOpts...)

			return v, err
		}
	}

	if c.breaker != nil {
		inner := call
		call = func(ctx context.Context) (V, error) {
			var v V

			err := c.breaker.Execute(func() error {
				var err error
				v, err = inner(ctx)

				return err
			})

			return v, err
		}
	}

	return call
}

// Info returns a snapshot of hit/miss accounting alongside the backing
// cache's current size.
func (c *Cached[K, V]) Info() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}

	if c.store != nil {
		s.MaxSize = c.store.MaxSize()
		s.CurrSize = c.store.CurrSize()
	}

	return s
}

// Clear empties the backing cache and resets the hit/miss counters.
func (c *Cached[K, V]) Clear() {
	if c.store != nil {
		c.store.Clear()
	}

	c.hits.Store(0)
	c.misses.Store(0)
}

// Store returns the backing cache, or nil for a passthrough wrapper.
//
//nolint:ireturn // Store is the package's declared capability interface
func (c *Cached[K, V]) Store() cache.Store[K, V] {
	return c.store
}
