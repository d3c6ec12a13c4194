package cache

import "container/list"

// FIFO is a cache that evicts in strict insertion order: Get never reorders
// the list, only Insert does (for brand-new keys — replacing an existing
// key's value does not move it either).
type FIFO[K comparable, V any] struct {
	base  *base[K, V]
	order *list.List
}

// NewFIFO creates a FIFO cache with the given capacity (in sizeof units).
func NewFIFO[K comparable, V any](maxsize int64, opts ...Option[K, V]) *FIFO[K, V] {
	return &FIFO[K, V]{
		base:  newBase(maxsize, opts),
		order: list.New(),
	}
}

func (c *FIFO[K, V]) onAccess(*entry[K, V])   {}
func (c *FIFO[K, V]) onReinsert(*entry[K, V]) {}
func (c *FIFO[K, V]) onInsertNew(e *entry[K, V]) {
	e.elem = c.order.PushBack(e)
}

func (c *FIFO[K, V]) onRemove(e *entry[K, V]) { c.order.Remove(e.elem) }
func (c *FIFO[K, V]) onClear()                { c.order.Init() }

func (c *FIFO[K, V]) victim() (*entry[K, V], bool) {
	front := c.order.Front()
	if front == nil {
		return nil, false
	}

	//nolint:forcetypeassert // order only ever holds *entry[K, V]
	return front.Value.(*entry[K, V]), true
}

func (c *FIFO[K, V]) keys() []K {
	out := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		//nolint:forcetypeassert // order only ever holds *entry[K, V]
		out = append(out, el.Value.(*entry[K, V]).key)
	}

	return out
}

func (c *FIFO[K, V]) Get(key K) (V, error)       { return baseGet(c.base, c, key) }
func (c *FIFO[K, V]) Contains(key K) bool         { return baseContains(c.base, key) }
func (c *FIFO[K, V]) Insert(key K, value V) error { return baseInsert(c.base, c, key, value) }
func (c *FIFO[K, V]) Delete(key K) error          { return baseDelete(c.base, c, key) }
func (c *FIFO[K, V]) Pop(key K, def V) V          { return basePop(c.base, c, key, def) }
func (c *FIFO[K, V]) SetDefault(key K, value V) (V, error) {
	return baseSetDefault(c.base, c, key, value)
}
func (c *FIFO[K, V]) PopItem() (K, V, error)  { return basePopItem(c.base, c) }
func (c *FIFO[K, V]) Clear()                  { baseClear(c.base, c) }
func (c *FIFO[K, V]) Len() int                { return baseLen(c.base) }
func (c *FIFO[K, V]) CurrSize() int64         { return baseCurrSize(c.base) }
func (c *FIFO[K, V]) MaxSize() int64          { return c.base.maxsize }
func (c *FIFO[K, V]) Keys() []K               { return baseKeys(c.base, c) }
func (c *FIFO[K, V]) GetSizeOf(value V) int64 { return c.base.sizeofFn(value) }
