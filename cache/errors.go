package cache

import "errors"

// ErrKeyNotPresent is returned by Get and Delete when the key is not live —
// either it was never inserted, it was evicted, or (for TTL engines) it has
// expired.
var ErrKeyNotPresent = errors.New("cache: key not present")

// ErrValueTooLarge is returned by Insert when a single value's size exceeds
// the cache's maxsize. The cache is left unchanged.
var ErrValueTooLarge = errors.New("cache: value too large for cache")

// ErrEmpty is returned by PopItem when the cache holds no live entry.
var ErrEmpty = errors.New("cache: cache is empty")
