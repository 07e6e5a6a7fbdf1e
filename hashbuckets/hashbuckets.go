// Package hashbuckets implements the hashed two-level keyed container
// (spec §4.6): an outer segment tree over B bucket totals, with each bucket
// a small keyed container of its own.
package hashbuckets

import (
	"github.com/adolgert/samplerdome/corerr"
	"github.com/adolgert/samplerdome/keyed"
	"github.com/adolgert/samplerdome/segtree"
	"github.com/cornelk/hashmap"
)

// HashBuckets implements keyed.Keyed[K, T] by hashing each key into one of
// B fixed buckets, each bucket itself a keyed.Keyed container.
//
// Unlike the teacher's concurrent BucketMap (grounded on the same "hash
// into a bucket, relay/split on growth" idea but built for lock-free
// resizing under concurrent writers), B here never changes: spec §4.6
// fixes it at construction.
type HashBuckets[K comparable, T keyed.Weight] struct {
	outer       *segtree.Tree[T]
	bucketTotal []T // 1-indexed mirror of outer's leaves, len B+1
	buckets     []keyed.Keyed[K, T]
	b           int
	seed        uint64
	hashFn      func(K, uint64) uint64
	bucketOf    *hashmap.Map[K, int] // stable bucket_of(k) tracking (spec §8 variant-specific)
	size        int
}

// New builds a HashBuckets with nbuckets buckets (must be a power of two)
// seeded by seed. makeInner constructs a fresh empty inner container for
// each bucket (typically keyed.Removal over a segtree.Tree, or
// NewSmallBucket for tiny expected bucket loads).
func New[K comparable, T keyed.Weight](nbuckets int, seed uint64, hashFn func(K, uint64) uint64, makeInner func() keyed.Keyed[K, T]) (*HashBuckets[K, T], error) {
	if nbuckets <= 0 || nbuckets&(nbuckets-1) != 0 {
		return nil, &corerr.InvalidCapacityError{Msg: "hashbuckets: nbuckets must be a positive power of two"}
	}
	buckets := make([]keyed.Keyed[K, T], nbuckets)
	for i := range buckets {
		buckets[i] = makeInner()
	}
	return &HashBuckets[K, T]{
		outer:       segtree.New[T](nbuckets),
		bucketTotal: make([]T, nbuckets+1),
		buckets:     buckets,
		b:           nbuckets,
		seed:        seed,
		hashFn:      hashFn,
		bucketOf:    hashmap.New[K, int](),
	}, nil
}

// bucketIndex returns k's 1-based bucket, computing and caching it on
// first sight so bucket_of(k) never changes across k's lifetime.
func (h *HashBuckets[K, T]) bucketIndex(k K) int {
	if i, ok := h.bucketOf.Get(k); ok {
		return i
	}
	hv := h.hashFn(k, h.seed)
	return int(hv&uint64(h.b-1)) + 1
}

// BucketOf reports the bucket k is (or would be) assigned to, and whether
// it currently has a live entry there.
func (h *HashBuckets[K, T]) BucketOf(k K) (int, bool) {
	if i, ok := h.bucketOf.Get(k); ok {
		return i, true
	}
	return h.bucketIndex(k), false
}

// Set inserts or updates k's weight.
func (h *HashBuckets[K, T]) Set(k K, w T) {
	i := h.bucketIndex(k)
	inner := h.buckets[i-1]
	var old T
	existed := inner.Has(k)
	if existed {
		old, _ = inner.Get(k)
	} else {
		h.size++
	}
	inner.Set(k, w)
	h.bucketOf.Set(k, i)
	if delta := w - old; delta != 0 {
		h.bucketTotal[i] += delta
		h.outer.Update(i, h.bucketTotal[i])
	}
}

// Get returns k's weight, or NotFoundError if absent.
func (h *HashBuckets[K, T]) Get(k K) (T, error) {
	i, ok := h.bucketOf.Get(k)
	if !ok {
		var zero T
		return zero, &corerr.NotFoundError{Key: k}
	}
	return h.buckets[i-1].Get(k)
}

// Has reports whether k has a live entry.
func (h *HashBuckets[K, T]) Has(k K) bool {
	i, ok := h.bucketOf.Get(k)
	if !ok {
		return false
	}
	return h.buckets[i-1].Has(k)
}

// Erase removes k. Idempotent.
func (h *HashBuckets[K, T]) Erase(k K) {
	i, ok := h.bucketOf.Get(k)
	if !ok {
		return
	}
	inner := h.buckets[i-1]
	w, err := inner.Get(k)
	if err != nil {
		return
	}
	inner.Erase(k)
	h.bucketOf.Del(k)
	h.size--
	if w != 0 {
		h.bucketTotal[i] -= w
		h.outer.Update(i, h.bucketTotal[i])
	}
}

// Total returns the sum of all live weights, O(1).
func (h *HashBuckets[K, T]) Total() T { return h.outer.Total() }

// Choose draws a key with probability proportional to its weight: locate
// the bucket via the outer tree, then descend into that bucket with the
// remainder of u.
func (h *HashBuckets[K, T]) Choose(u T) (K, T, error) {
	i, _, err := h.outer.Choose(u)
	if err != nil {
		var zero K
		return zero, 0, err
	}
	left := h.outer.PrefixBefore(i)
	k, w, err := h.buckets[i-1].Choose(u - left)
	if err != nil {
		var zero K
		return zero, 0, &corerr.Internal{Msg: "bucket choose fell off the end despite valid outer selection"}
	}
	return k, w, nil
}

// Len returns the number of live keys across all buckets.
func (h *HashBuckets[K, T]) Len() int { return h.size }

// Clear empties every bucket and the outer tree.
func (h *HashBuckets[K, T]) Clear() {
	for _, b := range h.buckets {
		b.Clear()
	}
	for i := 1; i <= h.b; i++ {
		h.bucketTotal[i] = 0
		h.outer.Update(i, 0)
	}
	h.bucketOf = hashmap.New[K, int]()
	h.size = 0
}

// Iterate visits every live key, bucket by bucket.
func (h *HashBuckets[K, T]) Iterate(f func(K, T) bool) {
	for _, b := range h.buckets {
		cont := true
		b.Iterate(func(k K, w T) bool {
			cont = f(k, w)
			return cont
		})
		if !cont {
			return
		}
	}
}
