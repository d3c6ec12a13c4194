// Package warmup bulk-populates a cache at startup with bounded
// concurrency, so a host application can pay the cost of a cold cache once
// up front instead of on the first request for each key.
package warmup

import (
	"context"
	"fmt"

	"github.com/tkem/cachetools/cache"
	"github.com/tkem/cachetools/metrics"
	"github.com/tkem/cachetools/workerpool"
)

// AsWarmupFunc adapts items, load, and opts into a cache.WarmupFunc, for
// passing to cache.WithWarmup: cache.NewFromConfig calls the returned
// function with its own workers count (cfg.WarmupWorkers), which takes
// precedence over any WithWorkers in opts.
func AsWarmupFunc[K comparable, V any](items []Item[K], load Loader[K, V], opts ...Option) cache.WarmupFunc[K, V] {
	return func(ctx context.Context, store cache.Store[K, V], workers int) error {
		allOpts := append(append([]Option{}, opts...), WithWorkers(workers))

		failures := Fill(ctx, store, items, load, allOpts...)
		if len(failures) > 0 {
			return fmt.Errorf("warmup: failed for %d of %d keys", len(failures), len(items))
		}

		return nil
	}
}

// Item is one key to load during warmup.
type Item[K comparable] struct {
	Key K
}

// Loader produces the value for a warmup Item. Errors are collected and
// returned from Fill rather than aborting the remaining items.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Option configures Fill.
type Option func(*config)

type config struct {
	workers int
	monitor interface{ Len() int }
}

// WithWorkers sets the number of concurrent loaders. Default: runtime.NumCPU
// (via workerpool's own default).
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// Fill loads every item in items through load and inserts the results into
// store, using a bounded-concurrency workerpool.Pool. It returns a map from
// key to the error its loader produced, for any items that failed; a nil
// map means every item loaded and installed successfully.
func Fill[K comparable, V any](
	ctx context.Context,
	store cache.Store[K, V],
	items []Item[K],
	load Loader[K, V],
	opts ...Option,
) map[K]error {
	cfg := &config{}

	for _, opt := range opts {
		opt(cfg)
	}

	var poolOpts []workerpool.Option[Item[K]]
	if cfg.workers > 0 {
		poolOpts = append(poolOpts, workerpool.WithWorkers[Item[K]](cfg.workers))
	}

	failuresCh := make(chan struct {
		key K
		err error
	}, len(items))

	handler := func(ctx context.Context, item Item[K]) {
		value, err := load(ctx, item.Key)
		if err != nil {
			failuresCh <- struct {
				key K
				err error
			}{item.Key, err}

			return
		}

		if err := store.Insert(item.Key, value); err != nil {
			failuresCh <- struct {
				key K
				err error
			}{item.Key, err}
		}
	}

	pool := workerpool.New(ctx, handler, poolOpts...)

	for _, item := range items {
		pool.Submit(item)
	}

	pool.Shutdown()
	close(failuresCh)

	var failures map[K]error

	for f := range failuresCh {
		if failures == nil {
			failures = make(map[K]error)
		}

		failures[f.key] = f.err
	}

	return failures
}

// FillMonitored is Fill plus queue-depth reporting through a
// metrics.ChannelMonitor: every submitted item passes through the monitor's
// channel before being handed to the worker pool, so a dashboard can watch
// warmup backlog drain in real time.
func FillMonitored[K comparable, V any](
	ctx context.Context,
	store cache.Store[K, V],
	items []Item[K],
	load Loader[K, V],
	monitor *metrics.ChannelMonitor[Item[K]],
	opts ...Option,
) map[K]error {
	go func() {
		for _, item := range items {
			if err := monitor.Send(ctx, item); err != nil {
				return
			}
		}

		monitor.Close()
	}()

	drained := make([]Item[K], 0, len(items))

	for {
		item, err := monitor.Receive(ctx)
		if err != nil {
			break
		}

		drained = append(drained, item)

		if len(drained) == len(items) {
			break
		}
	}

	return Fill(ctx, store, drained, load, opts...)
}
