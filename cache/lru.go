package cache

import "container/list"

// LRU is a cache that evicts its least recently used entry when it must
// make room. Get moves the accessed entry to the most-recently-used end;
// Insert of a new key appends there too. The order list is a
// container/list.List, which is internally a circular doubly linked list
// with a sentinel root element.
type LRU[K comparable, V any] struct {
	base  *base[K, V]
	order *list.List
}

// NewLRU creates an LRU cache with the given capacity (in sizeof units).
func NewLRU[K comparable, V any](maxsize int64, opts ...Option[K, V]) *LRU[K, V] {
	return &LRU[K, V]{
		base:  newBase(maxsize, opts),
		order: list.New(),
	}
}

func (c *LRU[K, V]) onAccess(e *entry[K, V])   { c.order.MoveToBack(e.elem) }
func (c *LRU[K, V]) onReinsert(e *entry[K, V]) { c.order.MoveToBack(e.elem) }
func (c *LRU[K, V]) onInsertNew(e *entry[K, V]) {
	e.elem = c.order.PushBack(e)
}

func (c *LRU[K, V]) onRemove(e *entry[K, V]) { c.order.Remove(e.elem) }
func (c *LRU[K, V]) onClear()                { c.order.Init() }

func (c *LRU[K, V]) victim() (*entry[K, V], bool) {
	front := c.order.Front()
	if front == nil {
		return nil, false
	}

	//nolint:forcetypeassert // order only ever holds *entry[K, V]
	return front.Value.(*entry[K, V]), true
}

func (c *LRU[K, V]) keys() []K {
	out := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		//nolint:forcetypeassert // order only ever holds *entry[K, V]
		out = append(out, el.Value.(*entry[K, V]).key)
	}

	return out
}

func (c *LRU[K, V]) Get(key K) (V, error)           { return baseGet(c.base, c, key) }
func (c *LRU[K, V]) Contains(key K) bool             { return baseContains(c.base, key) }
func (c *LRU[K, V]) Insert(key K, value V) error     { return baseInsert(c.base, c, key, value) }
func (c *LRU[K, V]) Delete(key K) error              { return baseDelete(c.base, c, key) }
func (c *LRU[K, V]) Pop(key K, def V) V              { return basePop(c.base, c, key, def) }
func (c *LRU[K, V]) SetDefault(key K, value V) (V, error) {
	return baseSetDefault(c.base, c, key, value)
}
func (c *LRU[K, V]) PopItem() (K, V, error) { return basePopItem(c.base, c) }
func (c *LRU[K, V]) Clear()                 { baseClear(c.base, c) }
func (c *LRU[K, V]) Len() int               { return baseLen(c.base) }
func (c *LRU[K, V]) CurrSize() int64        { return baseCurrSize(c.base) }
func (c *LRU[K, V]) MaxSize() int64         { return c.base.maxsize }
func (c *LRU[K, V]) Keys() []K              { return baseKeys(c.base, c) }
func (c *LRU[K, V]) GetSizeOf(value V) int64 { return c.base.sizeofFn(value) }
