// Package cache implements a family of bounded in-memory caches sharing a
// common size-accounted Store contract, each with its own eviction policy:
// LRU, MRU, LFU, RR (random replacement), FIFO, and TTL.
//
// Every policy is safe for concurrent use — all mutations, including the
// ones eviction triggers internally, happen under a single mutex per cache
// instance.
package cache

import (
	"sync"

	"github.com/tkem/cachetools/logger"
)

// policyOps is the hook set a concrete policy (LRU, LFU, ...) implements so
// that base's Get/Insert/Delete/PopItem/Clear can stay policy-agnostic. It
// plays the same role here that heap.Interface plays for container/heap: the
// base holds no reference to it, every base* helper takes it as an explicit
// argument, so there is no self-referential embedding to reason about.
type policyOps[K comparable, V any] interface {
	onAccess(e *entry[K, V])
	onInsertNew(e *entry[K, V])
	onReinsert(e *entry[K, V])
	onRemove(e *entry[K, V])
	onClear()
	victim() (*entry[K, V], bool)
	keys() []K
}

// base is the shared mapping every policy engine embeds: the main K->entry
// map, size accounting, and the injectable sizeof/missing hooks. It carries
// no eviction logic of its own — see policyOps.
type base[K comparable, V any] struct {
	mu sync.Mutex

	items    map[K]*entry[K, V]
	maxsize  int64
	currsize int64
	nextSeq  int64

	sizeofFn  func(V) int64
	missingFn func(K) (V, error)
	log       logger.ILogger
}

// Option configures a cache engine at construction time. The same Option
// type is shared by every policy constructor.
type Option[K comparable, V any] func(*base[K, V])

// WithSizeOf overrides the default per-entry size function (which returns 1
// for every value, i.e. maxsize counts entries rather than bytes).
func WithSizeOf[K comparable, V any](f func(V) int64) Option[K, V] {
	return func(b *base[K, V]) {
		if f != nil {
			b.sizeofFn = f
		}
	}
}

// WithMissing installs a handler invoked when Get misses. Its result is
// stored via Insert (ValueTooLarge is swallowed) and returned to the caller.
// Without a handler, a miss surfaces ErrKeyNotPresent.
func WithMissing[K comparable, V any](f func(K) (V, error)) Option[K, V] {
	return func(b *base[K, V]) {
		b.missingFn = f
	}
}

// WithLogger attaches a logger used to report evictions, TTL expiry sweeps,
// and oversized-value rejections at Debug/Warning level. Without one, the
// cache logs nothing.
func WithLogger[K comparable, V any](l logger.ILogger) Option[K, V] {
	return func(b *base[K, V]) {
		b.log = l
	}
}

func newBase[K comparable, V any](maxsize int64, opts []Option[K, V]) *base[K, V] {
	b := &base[K, V]{
		items:    make(map[K]*entry[K, V]),
		maxsize:  maxsize,
		sizeofFn: func(V) int64 { return 1 },
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func baseGet[K comparable, V any](b *base[K, V], ops policyOps[K, V], key K) (V, error) {
	b.mu.Lock()
	if e, ok := b.items[key]; ok {
		ops.onAccess(e)
		v := e.value
		b.mu.Unlock()

		return v, nil
	}
	missing := b.missingFn
	b.mu.Unlock()

	var zero V
	if missing == nil {
		return zero, ErrKeyNotPresent
	}

	value, err := missing(key)
	if err != nil {
		return zero, err
	}

	if err := baseInsert(b, ops, key, value); err != nil && err != ErrValueTooLarge {
		return zero, err
	}

	return value, nil
}

func baseInsert[K comparable, V any](b *base[K, V], ops policyOps[K, V], key K, value V) error {
	size := b.sizeofFn(value)

	b.mu.Lock()
	defer b.mu.Unlock()

	if size > b.maxsize {
		if b.log != nil {
			b.log.Warningf("cache: rejecting value of size %d (maxsize %d)", size, b.maxsize)
		}

		return ErrValueTooLarge
	}

	if e, ok := b.items[key]; ok {
		oldSize := e.size
		if oldSize < size {
			makeRoom(b, ops, size-oldSize, key)
		}

		e.value = value
		e.size = size
		b.currsize += size - oldSize
		ops.onReinsert(e)

		return nil
	}

	makeRoom(b, ops, size, key)

	b.nextSeq++
	e := &entry[K, V]{key: key, value: value, size: size, seq: b.nextSeq}
	b.items[key] = e
	b.currsize += size
	ops.onInsertNew(e)

	return nil
}

// makeRoom evicts victims until inserting `need` additional bytes for key
// would fit under maxsize. It never evicts key itself (relevant for the
// replace-with-larger-value path, where key is already live).
func makeRoom[K comparable, V any](b *base[K, V], ops policyOps[K, V], need int64, key K) {
	for b.currsize+need > b.maxsize {
		victim, ok := ops.victim()
		if !ok || victim.key == key {
			return
		}

		removeEntry(b, ops, victim)
	}
}

func removeEntry[K comparable, V any](b *base[K, V], ops policyOps[K, V], e *entry[K, V]) {
	ops.onRemove(e)
	delete(b.items, e.key)
	b.currsize -= e.size

	if b.log != nil {
		b.log.Debugf("cache: evicted key=%v size=%d", e.key, e.size)
	}
}

func baseDelete[K comparable, V any](b *base[K, V], ops policyOps[K, V], key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.items[key]
	if !ok {
		return ErrKeyNotPresent
	}

	removeEntry(b, ops, e)

	return nil
}

func basePopItem[K comparable, V any](b *base[K, V], ops policyOps[K, V]) (K, V, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	victim, ok := ops.victim()
	if !ok {
		var zk K

		var zv V

		return zk, zv, ErrEmpty
	}

	k, v := victim.key, victim.value
	removeEntry(b, ops, victim)

	return k, v, nil
}

func baseContains[K comparable, V any](b *base[K, V], key K) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.items[key]

	return ok
}

func baseLen[K comparable, V any](b *base[K, V]) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

func baseCurrSize[K comparable, V any](b *base[K, V]) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currsize
}

func baseClear[K comparable, V any](b *base[K, V], ops policyOps[K, V]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = make(map[K]*entry[K, V])
	b.currsize = 0
	ops.onClear()
}

func basePop[K comparable, V any](b *base[K, V], ops policyOps[K, V], key K, def V) V {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.items[key]
	if !ok {
		return def
	}

	v := e.value
	removeEntry(b, ops, e)

	return v
}

func baseSetDefault[K comparable, V any](b *base[K, V], ops policyOps[K, V], key K, value V) (V, error) {
	b.mu.Lock()
	if e, ok := b.items[key]; ok {
		ops.onAccess(e)
		v := e.value
		b.mu.Unlock()

		return v, nil
	}
	b.mu.Unlock()

	if err := baseInsert(b, ops, key, value); err != nil {
		return value, err
	}

	return value, nil
}

func baseKeys[K comparable, V any](b *base[K, V], ops policyOps[K, V]) []K {
	b.mu.Lock()
	defer b.mu.Unlock()

	return ops.keys()
}
