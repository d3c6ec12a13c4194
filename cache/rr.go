package cache

import "math/rand/v2"

// RR is a cache that evicts a uniformly random live entry when it must make
// room (random replacement). The chooser function can be overridden for
// deterministic tests; it receives the number of live entries and returns
// the index (in Keys() order) of the victim to evict.
type RR[K comparable, V any] struct {
	base   *base[K, V]
	order  []*entry[K, V]
	choose func(n int) int
}

// NewRR creates an RR cache with the given capacity (in sizeof units). If
// choose is nil, a uniform random chooser (math/rand/v2) is used.
func NewRR[K comparable, V any](maxsize int64, choose func(n int) int, opts ...Option[K, V]) *RR[K, V] {
	if choose == nil {
		choose = func(n int) int { return rand.IntN(n) } //nolint:gosec // RR eviction does not need crypto rand
	}

	return &RR[K, V]{
		base:   newBase(maxsize, opts),
		choose: choose,
	}
}

func (c *RR[K, V]) onAccess(*entry[K, V])   {}
func (c *RR[K, V]) onReinsert(*entry[K, V]) {}

func (c *RR[K, V]) onInsertNew(e *entry[K, V]) {
	e.rrIndex = len(c.order)
	c.order = append(c.order, e)
}

func (c *RR[K, V]) onRemove(e *entry[K, V]) {
	last := len(c.order) - 1
	i := e.rrIndex
	c.order[i] = c.order[last]
	c.order[i].rrIndex = i
	c.order[last] = nil
	c.order = c.order[:last]
}

func (c *RR[K, V]) onClear() { c.order = nil }

func (c *RR[K, V]) victim() (*entry[K, V], bool) {
	if len(c.order) == 0 {
		return nil, false
	}

	return c.order[c.choose(len(c.order))], true
}

func (c *RR[K, V]) keys() []K {
	out := make([]K, len(c.order))
	for i, e := range c.order {
		out[i] = e.key
	}

	return out
}

func (c *RR[K, V]) Get(key K) (V, error)       { return baseGet(c.base, c, key) }
func (c *RR[K, V]) Contains(key K) bool         { return baseContains(c.base, key) }
func (c *RR[K, V]) Insert(key K, value V) error { return baseInsert(c.base, c, key, value) }
func (c *RR[K, V]) Delete(key K) error          { return baseDelete(c.base, c, key) }
func (c *RR[K, V]) Pop(key K, def V) V          { return basePop(c.base, c, key, def) }
func (c *RR[K, V]) SetDefault(key K, value V) (V, error) {
	return baseSetDefault(c.base, c, key, value)
}
func (c *RR[K, V]) PopItem() (K, V, error)  { return basePopItem(c.base, c) }
func (c *RR[K, V]) Clear()                  { baseClear(c.base, c) }
func (c *RR[K, V]) Len() int                { return baseLen(c.base) }
func (c *RR[K, V]) CurrSize() int64         { return baseCurrSize(c.base) }
func (c *RR[K, V]) MaxSize() int64          { return c.base.maxsize }
func (c *RR[K, V]) Keys() []K               { return baseKeys(c.base, c) }
func (c *RR[K, V]) GetSizeOf(value V) int64 { return c.base.sizeofFn(value) }
