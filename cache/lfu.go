package cache

import "sort"

// LFU is a cache that evicts its least frequently used entry. A new entry's
// frequency counter initializes to 0 on insert — so the first subsequent Get
// is counted as the entry's first use — and that rule applies consistently:
// Get, Insert (on both new entries and value replacement), and PopItem's tie
// break all operate on the same counter under the same convention.
//
// Ties are broken by insertion order: among entries with equal frequency,
// the oldest (lowest insertion sequence number) is evicted first.
//
// PopItem is O(n) in the number of live entries.
type LFU[K comparable, V any] struct {
	base *base[K, V]
}

// NewLFU creates an LFU cache with the given capacity (in sizeof units).
func NewLFU[K comparable, V any](maxsize int64, opts ...Option[K, V]) *LFU[K, V] {
	return &LFU[K, V]{base: newBase(maxsize, opts)}
}

func (c *LFU[K, V]) onAccess(e *entry[K, V])    { e.freq++ }
func (c *LFU[K, V]) onReinsert(e *entry[K, V])  { e.freq++ }
func (c *LFU[K, V]) onInsertNew(e *entry[K, V]) { e.freq = 0 }
func (c *LFU[K, V]) onRemove(*entry[K, V])      {}
func (c *LFU[K, V]) onClear()                   {}

func (c *LFU[K, V]) victim() (*entry[K, V], bool) {
	var best *entry[K, V]

	for _, e := range c.base.items {
		if best == nil || e.freq < best.freq || (e.freq == best.freq && e.seq < best.seq) {
			best = e
		}
	}

	if best == nil {
		return nil, false
	}

	return best, true
}

func (c *LFU[K, V]) keys() []K {
	snapshot := make([]*entry[K, V], 0, len(c.base.items))
	for _, e := range c.base.items {
		snapshot = append(snapshot, e)
	}

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].freq != snapshot[j].freq {
			return snapshot[i].freq < snapshot[j].freq
		}

		return snapshot[i].seq < snapshot[j].seq
	})

	out := make([]K, len(snapshot))
	for i, e := range snapshot {
		out[i] = e.key
	}

	return out
}

func (c *LFU[K, V]) Get(key K) (V, error)       { return baseGet(c.base, c, key) }
func (c *LFU[K, V]) Contains(key K) bool         { return baseContains(c.base, key) }
func (c *LFU[K, V]) Insert(key K, value V) error { return baseInsert(c.base, c, key, value) }
func (c *LFU[K, V]) Delete(key K) error          { return baseDelete(c.base, c, key) }
func (c *LFU[K, V]) Pop(key K, def V) V          { return basePop(c.base, c, key, def) }
func (c *LFU[K, V]) SetDefault(key K, value V) (V, error) {
	return baseSetDefault(c.base, c, key, value)
}
func (c *LFU[K, V]) PopItem() (K, V, error)  { return basePopItem(c.base, c) }
func (c *LFU[K, V]) Clear()                  { baseClear(c.base, c) }
func (c *LFU[K, V]) Len() int                { return baseLen(c.base) }
func (c *LFU[K, V]) CurrSize() int64         { return baseCurrSize(c.base) }
func (c *LFU[K, V]) MaxSize() int64          { return c.base.maxsize }
func (c *LFU[K, V]) Keys() []K               { return baseKeys(c.base, c) }
func (c *LFU[K, V]) GetSizeOf(value V) int64 { return c.base.sizeofFn(value) }
