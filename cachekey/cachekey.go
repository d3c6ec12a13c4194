// Package cachekey implements a family of key codecs: pure functions that
// canonicalize a call site's positional and keyword arguments into a
// single, hashable, equality-comparable Key.
//
// Go has no native **kwargs, so keyword arguments are passed as an explicit
// slice of name/value pairs (KV). hashkey/typedkey sort that slice by name
// before folding it into the key, so keyword order never affects equality,
// while a positional argument and a keyword argument holding the same value
// always produce different keys (they fall on opposite sides of the
// internal marker).
package cachekey

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
)

// KV is a single keyword argument: its parameter name and value.
type KV struct {
	Name  string
	Value any
}

// Key is an opaque, comparable cache key produced by HashKey, TypedKey,
// MethodKey, or TypedMethodKey. Its hash is computed once at construction
// and cached on the value itself (both fields are plain comparable types,
// so Key is itself comparable and usable directly as a Go map key).
type Key struct {
	repr string
	sum  uint64
}

// Hash returns Key's precomputed hash. Two equal Keys always have equal
// hashes; it is provided for callers that want to shard or pre-bucket keys
// without paying for string comparison.
func (k Key) Hash() uint64 { return k.sum }

// String returns the key's canonical representation, useful for logging.
func (k Key) String() string { return k.repr }

const (
	positionalMarker = "\x00P\x00"
	keywordMarker    = "\x00K\x00"
)

func buildRepr(args []any, kwargs []KV, typed bool) string {
	sorted := append([]KV(nil), kwargs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	repr := positionalMarker
	for _, a := range args {
		repr += fmt.Sprintf("%#v", a)
		if typed {
			repr += "@" + reflect.TypeOf(a).String()
		}

		repr += "\x1f"
	}

	repr += keywordMarker
	for _, kv := range sorted {
		repr += kv.Name + "=" + fmt.Sprintf("%#v", kv.Value)
		if typed {
			repr += "@" + reflect.TypeOf(kv.Value).String()
		}

		repr += "\x1f"
	}

	return repr
}

func newKey(repr string) Key {
	h := fnv.New64a()
	_, _ = h.Write([]byte(repr)) //nolint:errcheck // hash.Hash.Write never fails

	return Key{repr: repr, sum: h.Sum64()}
}

// HashKey canonicalizes args and kwargs into a Key. Structurally equal
// bindings always produce equal keys regardless of keyword ordering;
// positional and keyword differences never collide.
func HashKey(args []any, kwargs ...KV) Key {
	return newKey(buildRepr(args, kwargs, false))
}

// TypedKey behaves like HashKey but additionally folds in the dynamic type
// of every positional and keyword value, so e.g. HashKey([]any{1}) and
// HashKey([]any{int64(1)}) collide while their TypedKey counterparts do not.
func TypedKey(args []any, kwargs ...KV) Key {
	return newKey(buildRepr(args, kwargs, true))
}

// MethodKey is HashKey over args/kwargs only — self is accepted for call-site
// symmetry with a method signature but deliberately ignored, since the
// receiver already selects which cache and lock apply.
func MethodKey(self any, args []any, kwargs ...KV) Key {
	_ = self

	return HashKey(args, kwargs...)
}

// TypedMethodKey is MethodKey plus type tagging, as TypedKey is to HashKey.
func TypedMethodKey(self any, args []any, kwargs ...KV) Key {
	_ = self

	return TypedKey(args, kwargs...)
}
