package cachekey_test

import (
	"testing"

	"github.com/tkem/cachetools/cachekey"
)

func TestHashKeyIgnoresKeywordOrder(t *testing.T) {
	t.Parallel()

	a := cachekey.HashKey([]any{1, 2}, cachekey.KV{Name: "x", Value: "a"}, cachekey.KV{Name: "y", Value: "b"})
	b := cachekey.HashKey([]any{1, 2}, cachekey.KV{Name: "y", Value: "b"}, cachekey.KV{Name: "x", Value: "a"})

	if a != b {
		t.Fatalf("expected keys to be equal regardless of keyword order: %v != %v", a, b)
	}

	if a.Hash() != b.Hash() {
		t.Fatalf("expected equal keys to have equal hashes")
	}
}

func TestHashKeyPositionalVersusKeywordNeverCollide(t *testing.T) {
	t.Parallel()

	positional := cachekey.HashKey([]any{"a"})
	keyword := cachekey.HashKey(nil, cachekey.KV{Name: "x", Value: "a"})

	if positional == keyword {
		t.Fatalf("expected positional and keyword bindings to produce distinct keys")
	}
}

func TestHashKeyStableAcrossCalls(t *testing.T) {
	t.Parallel()

	k1 := cachekey.HashKey([]any{1, "two", 3.0})
	k2 := cachekey.HashKey([]any{1, "two", 3.0})

	if k1 != k2 {
		t.Fatalf("expected identical args to produce the same key across calls")
	}
}

func TestHashKeyDistinctArgsDiffer(t *testing.T) {
	t.Parallel()

	k1 := cachekey.HashKey([]any{1})
	k2 := cachekey.HashKey([]any{2})

	if k1 == k2 {
		t.Fatalf("expected different args to produce different keys")
	}
}

func TestTypedKeyDistinguishesDynamicType(t *testing.T) {
	t.Parallel()

	untyped1 := cachekey.HashKey([]any{1})
	untyped2 := cachekey.HashKey([]any{int64(1)})

	if untyped1 != untyped2 {
		t.Fatalf("expected HashKey to treat 1 and int64(1) as equal")
	}

	typed1 := cachekey.TypedKey([]any{1})
	typed2 := cachekey.TypedKey([]any{int64(1)})

	if typed1 == typed2 {
		t.Fatalf("expected TypedKey to distinguish int from int64")
	}
}

func TestMethodKeyIgnoresReceiver(t *testing.T) {
	t.Parallel()

	type receiver struct{ id int }

	k1 := cachekey.MethodKey(&receiver{id: 1}, []any{"arg"})
	k2 := cachekey.MethodKey(&receiver{id: 2}, []any{"arg"})

	if k1 != k2 {
		t.Fatalf("expected MethodKey to ignore the receiver identity")
	}
}

func TestTypedMethodKeyMatchesTypedKeyOnArgs(t *testing.T) {
	t.Parallel()

	self := struct{}{}

	k1 := cachekey.TypedMethodKey(self, []any{1})
	k2 := cachekey.TypedKey([]any{1})

	if k1 != k2 {
		t.Fatalf("expected TypedMethodKey to match TypedKey over the same args")
	}
}

func TestKeyStringIsDeterministic(t *testing.T) {
	t.Parallel()

	k := cachekey.HashKey([]any{1, 2})
	if k.String() == "" {
		t.Fatalf("expected non-empty string representation")
	}

	if k.String() != cachekey.HashKey([]any{1, 2}).String() {
		t.Fatalf("expected repeated calls to produce the same string representation")
	}
}
