package cache

import "container/list"

// MRU is a cache that evicts its most recently used entry when it must make
// room. It maintains the exact same access-ordered list as LRU (accessed and
// newly-inserted entries move to the tail); it only differs in which end
// popitem drains.
type MRU[K comparable, V any] struct {
	base  *base[K, V]
	order *list.List
}

// NewMRU creates an MRU cache with the given capacity (in sizeof units).
func NewMRU[K comparable, V any](maxsize int64, opts ...Option[K, V]) *MRU[K, V] {
	return &MRU[K, V]{
		base:  newBase(maxsize, opts),
		order: list.New(),
	}
}

func (c *MRU[K, V]) onAccess(e *entry[K, V])   { c.order.MoveToBack(e.elem) }
func (c *MRU[K, V]) onReinsert(e *entry[K, V]) { c.order.MoveToBack(e.elem) }
func (c *MRU[K, V]) onInsertNew(e *entry[K, V]) {
	e.elem = c.order.PushBack(e)
}

func (c *MRU[K, V]) onRemove(e *entry[K, V]) { c.order.Remove(e.elem) }
func (c *MRU[K, V]) onClear()                { c.order.Init() }

func (c *MRU[K, V]) victim() (*entry[K, V], bool) {
	back := c.order.Back()
	if back == nil {
		return nil, false
	}

	//nolint:forcetypeassert // order only ever holds *entry[K, V]
	return back.Value.(*entry[K, V]), true
}

func (c *MRU[K, V]) keys() []K {
	out := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		//nolint:forcetypeassert // order only ever holds *entry[K, V]
		out = append(out, el.Value.(*entry[K, V]).key)
	}

	return out
}

func (c *MRU[K, V]) Get(key K) (V, error)       { return baseGet(c.base, c, key) }
func (c *MRU[K, V]) Contains(key K) bool         { return baseContains(c.base, key) }
func (c *MRU[K, V]) Insert(key K, value V) error { return baseInsert(c.base, c, key, value) }
func (c *MRU[K, V]) Delete(key K) error          { return baseDelete(c.base, c, key) }
func (c *MRU[K, V]) Pop(key K, def V) V          { return basePop(c.base, c, key, def) }
func (c *MRU[K, V]) SetDefault(key K, value V) (V, error) {
	return baseSetDefault(c.base, c, key, value)
}
func (c *MRU[K, V]) PopItem() (K, V, error)  { return basePopItem(c.base, c) }
func (c *MRU[K, V]) Clear()                  { baseClear(c.base, c) }
func (c *MRU[K, V]) Len() int                { return baseLen(c.base) }
func (c *MRU[K, V]) CurrSize() int64         { return baseCurrSize(c.base) }
func (c *MRU[K, V]) MaxSize() int64          { return c.base.maxsize }
func (c *MRU[K, V]) Keys() []K               { return baseKeys(c.base, c) }
func (c *MRU[K, V]) GetSizeOf(value V) int64 { return c.base.sizeofFn(value) }
