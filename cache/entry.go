package cache

import "container/list"

// entry is the value a Store holds per live key: the user value, its
// accounted size, and whatever bookkeeping the owning policy needs. Each
// policy only ever touches the fields it owns; the rest stay zero.
type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64

	// seq is a monotonically increasing insertion sequence number, used by
	// LFU to break frequency ties in favor of the oldest entry.
	seq int64

	// freq is LFU's per-entry use counter.
	freq int

	// elem is the node handle into the policy's primary order list
	// (LRU/MRU/FIFO's single list, or TTL's access-order list).
	elem *list.Element

	// ttlElem is the node handle into the TTL engine's expiry queue.
	// Unused by every other policy.
	ttlElem *list.Element

	// expire is the entry's absolute expiration time in the TTL timer's
	// units, or 0 if the entry never expires. Unused outside TTL.
	expire int64

	// rrIndex is the entry's position in RR's live-key slice, maintained so
	// that delete-by-swap-with-last stays O(1). Unused outside RR.
	rrIndex int
}
