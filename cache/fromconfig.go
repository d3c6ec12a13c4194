package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tkem/cachetools/config"
	"github.com/tkem/cachetools/metrics"
)

// WarmupFunc prepopulates store with up to workers concurrent loaders. The
// warmup package's Fill is the canonical implementation; warmup.AsWarmupFunc
// adapts a set of items and a loader into this shape. NewFromConfig only
// depends on this narrow function type rather than importing warmup
// directly, since warmup already imports cache for Store[K,V].
type WarmupFunc[K comparable, V any] func(ctx context.Context, store Store[K, V], workers int) error

// FromConfigOption configures the parts of NewFromConfig that config.CacheConfig
// itself cannot carry: the underlying engine's own construction options, and
// the warmup function run when cfg.WarmupWorkers > 0.
type FromConfigOption[K comparable, V any] func(*fromConfigSettings[K, V])

type fromConfigSettings[K comparable, V any] struct {
	engineOpts []Option[K, V]
	warmup     WarmupFunc[K, V]
}

// WithEngineOptions forwards opts to the underlying policy engine's
// constructor (e.g. WithLogger, WithMissing).
func WithEngineOptions[K comparable, V any](opts ...Option[K, V]) FromConfigOption[K, V] {
	return func(s *fromConfigSettings[K, V]) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithWarmup supplies the function NewFromConfig calls to prepopulate the
// store when cfg.WarmupWorkers > 0 — typically warmup.AsWarmupFunc wrapping
// a loader and a set of items. Without this option, a non-zero
// WarmupWorkers has nothing to run and is a no-op.
func WithWarmup[K comparable, V any](fill WarmupFunc[K, V]) FromConfigOption[K, V] {
	return func(s *fromConfigSettings[K, V]) {
		s.warmup = fill
	}
}

// NewFromConfig constructs a policy engine from a config.CacheConfig,
// letting a host application choose policy/size/TTL at deploy time instead
// of hardcoding a constructor call. If cfg.MetricsNamespace is set, the
// engine is wrapped with metrics.InstrumentedCache before being returned —
// MetricsSubsystem is applied alongside it if also set. If cfg.WarmupWorkers
// is greater than zero and a WithWarmup option supplied a fill function, the
// (possibly instrumented) store is prepopulated before NewFromConfig
// returns, bounded to WarmupWorkers concurrent loaders.
//
// The returned Store's concrete type depends on cfg.Policy and whether
// metrics wrapping applied; callers that need a specific engine's extra
// methods (e.g. TTL's Expire) should construct it directly instead.
func NewFromConfig[K comparable, V any](
	ctx context.Context,
	cfg config.CacheConfig,
	opts ...FromConfigOption[K, V],
) (Store[K, V], error) {
	settings := &fromConfigSettings[K, V]{}
	for _, opt := range opts {
		opt(settings)
	}

	engine, err := newPolicyEngine[K, V](cfg, settings.engineOpts)
	if err != nil {
		return nil, err
	}

	var store Store[K, V] = engine

	if cfg.MetricsNamespace != "" {
		reg := metrics.New(
			metrics.WithNamespace(cfg.MetricsNamespace),
			metrics.WithSubsystem(cfg.MetricsSubsystem),
		)
		store = metrics.NewInstrumentedCache[K, V](reg, strings.ToLower(cfg.Policy), store)
	}

	if cfg.WarmupWorkers > 0 && settings.warmup != nil {
		if err := settings.warmup(ctx, store, cfg.WarmupWorkers); err != nil {
			return store, fmt.Errorf("cache: warmup failed: %w", err)
		}
	}

	return store, nil
}

func newPolicyEngine[K comparable, V any](cfg config.CacheConfig, opts []Option[K, V]) (Store[K, V], error) {
	switch strings.ToLower(cfg.Policy) {
	case "lru":
		return NewLRU[K, V](cfg.MaxSize, opts...), nil
	case "mru":
		return NewMRU[K, V](cfg.MaxSize, opts...), nil
	case "lfu":
		return NewLFU[K, V](cfg.MaxSize, opts...), nil
	case "fifo":
		return NewFIFO[K, V](cfg.MaxSize, opts...), nil
	case "rr":
		return NewRR[K, V](cfg.MaxSize, nil, opts...), nil
	case "ttl":
		ttl := time.Duration(cfg.TTLSeconds) * time.Second

		return NewTTL[K, V](cfg.MaxSize, ttl, nil, opts...), nil
	default:
		return nil, fmt.Errorf("cache: unknown policy %q", cfg.Policy)
	}
}
