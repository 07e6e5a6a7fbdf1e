// Package treap implements the order-statistics keyed container (spec
// §4.7): a BST ordered by a 128-bit ordinate and heap-ordered by a random
// priority, augmented with subtree sums for weighted sampling.
//
// The split/merge shape is grounded on the teacher's Trees package
// (SBTree.go's maintain-by-rotation and base.go's rotateLeft/rotateRight),
// adapted from size-balancing by subtree size to priority-balancing by a
// random u64, and from an in-place array of nodes to ordinary pointers --
// a treap's rebalancing is driven by priority comparisons rather than the
// size thresholds SBTree recomputes on every insert, so there is no
// "maintain" pass to port: split and merge themselves keep the heap order.
package treap

import (
	"github.com/adolgert/samplerdome/corerr"
	"github.com/adolgert/samplerdome/ordinal"
	"github.com/alphadose/haxmap"
	"golang.org/x/exp/constraints"
)

// Weight is the nonnegative floating-point type this container sums.
type Weight interface {
	constraints.Float
}

type node[K comparable, T Weight] struct {
	ok          ordinal.Ordinate
	key         K
	w           T
	sum         T
	prio        uint64
	left, right *node[K, T]
}

func (n *node[K, T]) sumOf() T {
	if n == nil {
		return 0
	}
	return n.sum
}

func (n *node[K, T]) recompute() {
	n.sum = n.w + n.left.sumOf() + n.right.sumOf()
}

// Treap implements keyed.Keyed[K, T] via a randomized order-statistics
// tree keyed on a 128-bit ordinate derived from hashFn and a per-key
// insertion counter.
//
// The live key->ordinate index is github.com/alphadose/haxmap's Map, the
// same lock-free hash map keyed.Removal and keyed.Keep use for their
// key->slot index, rather than a bare Go map.
type Treap[K comparable, T Weight] struct {
	root    *node[K, T]
	hashFn  func(K, uint64) uint64
	seed    uint64
	counter uint64
	rng     uint64
	index   *haxmap.Map[K, ordinal.Ordinate]
	size    int
}

// New builds an empty Treap. seed determines both the ok(k) hash stream
// and the sequence of node priorities, so two Treaps built with the same
// seed and fed the same operations in the same order are identical.
func New[K comparable, T Weight](seed uint64, hashFn func(K, uint64) uint64) *Treap[K, T] {
	return &Treap[K, T]{
		hashFn: hashFn,
		seed:   seed,
		rng:    seed ^ ordinal.GoldenGamma,
		index:  haxmap.New[K, ordinal.Ordinate](),
	}
}

// nextPriority advances the treap's internal splitmix64 stream --
// deterministic given seed, unlike math/rand's global source.
func (t *Treap[K, T]) nextPriority() uint64 {
	t.rng += 0x9e3779b97f4a7c15
	z := t.rng
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// split partitions n into (left, right) such that every node in left has
// ok < at, and every node in right has ok >= at.
func split[K comparable, T Weight](n *node[K, T], at ordinal.Ordinate) (l, r *node[K, T]) {
	if n == nil {
		return nil, nil
	}
	if n.ok.Less(at) {
		l2, r2 := split(n.right, at)
		n.right = l2
		n.recompute()
		return n, r2
	}
	l2, r2 := split(n.left, at)
	n.left = r2
	n.recompute()
	return l2, n
}

// merge joins l and r, where every ok in l is less than every ok in r,
// maintaining heap order on prio (min-heap: smaller prio sits higher).
func merge[K comparable, T Weight](l, r *node[K, T]) *node[K, T] {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.prio < r.prio {
		l.right = merge(l.right, r)
		l.recompute()
		return l
	}
	r.left = merge(l, r.left)
	r.recompute()
	return r
}

func insertAt[K comparable, T Weight](n, fresh *node[K, T]) *node[K, T] {
	if n == nil {
		return fresh
	}
	if fresh.prio < n.prio {
		l, r := split(n, fresh.ok)
		fresh.left, fresh.right = l, r
		fresh.recompute()
		return fresh
	}
	if fresh.ok.Less(n.ok) {
		n.left = insertAt(n.left, fresh)
	} else {
		n.right = insertAt(n.right, fresh)
	}
	n.recompute()
	return n
}

// Set inserts or updates k's weight.
func (t *Treap[K, T]) Set(k K, w T) {
	if ok, exists := t.index.Get(k); exists {
		updateWeight(t.root, ok, w)
		return
	}
	t.counter++
	ok := ordinal.TreapOrdinate(t.hashFn, k, t.seed, t.counter)
	t.index.Set(k, ok)
	fresh := &node[K, T]{ok: ok, key: k, w: w, sum: w, prio: t.nextPriority()}
	t.root = insertAt(t.root, fresh)
	t.size++
}

func updateWeight[K comparable, T Weight](n *node[K, T], ok ordinal.Ordinate, w T) {
	if n == nil {
		return
	}
	if ok.Equal(n.ok) {
		n.w = w
		n.recompute()
		return
	}
	if ok.Less(n.ok) {
		updateWeight(n.left, ok, w)
	} else {
		updateWeight(n.right, ok, w)
	}
	n.recompute()
}

func find[K comparable, T Weight](n *node[K, T], ok ordinal.Ordinate) *node[K, T] {
	for n != nil {
		if ok.Equal(n.ok) {
			return n
		}
		if ok.Less(n.ok) {
			n = n.left
		} else {
			n = n.right
		}
	}
	return nil
}

// Get returns k's weight, or NotFoundError if absent.
func (t *Treap[K, T]) Get(k K) (T, error) {
	ok, exists := t.index.Get(k)
	if !exists {
		var zero T
		return zero, &corerr.NotFoundError{Key: k}
	}
	n := find(t.root, ok)
	if n == nil {
		var zero T
		return zero, &corerr.Internal{Msg: "treap index out of sync with tree"}
	}
	return n.w, nil
}

// Has reports whether k has a live entry.
func (t *Treap[K, T]) Has(k K) bool {
	_, exists := t.index.Get(k)
	return exists
}

func eraseAt[K comparable, T Weight](n *node[K, T], ok ordinal.Ordinate) *node[K, T] {
	if n == nil {
		return nil
	}
	if ok.Equal(n.ok) {
		return merge(n.left, n.right)
	}
	if ok.Less(n.ok) {
		n.left = eraseAt(n.left, ok)
	} else {
		n.right = eraseAt(n.right, ok)
	}
	n.recompute()
	return n
}

// Erase removes k. Idempotent.
func (t *Treap[K, T]) Erase(k K) {
	ok, exists := t.index.Get(k)
	if !exists {
		return
	}
	t.root = eraseAt(t.root, ok)
	t.index.Del(k)
	t.size--
}

// Total returns the sum of all live weights, O(1).
func (t *Treap[K, T]) Total() T { return t.root.sumOf() }

// Choose draws a key with probability proportional to its weight.
func (t *Treap[K, T]) Choose(u T) (K, T, error) {
	total := t.Total()
	if u < 0 || u >= total {
		var zero K
		return zero, 0, &corerr.OutOfRangeError{U: float64(u), Total: float64(total)}
	}
	n := t.root
	for n != nil {
		left := n.left.sumOf()
		if u < left {
			n = n.left
			continue
		}
		u -= left
		if u < n.w {
			return n.key, n.w, nil
		}
		u -= n.w
		n = n.right
	}
	var zero K
	return zero, 0, &corerr.Internal{Msg: "sum-walk fell off the end of the treap"}
}

// Len returns the number of live keys.
func (t *Treap[K, T]) Len() int { return t.size }

// Clear empties the container.
func (t *Treap[K, T]) Clear() {
	t.root = nil
	t.index = haxmap.New[K, ordinal.Ordinate]()
	t.size = 0
	t.counter = 0
}

// Iterate visits every live key in ascending ordinate order.
func (t *Treap[K, T]) Iterate(f func(K, T) bool) {
	var walk func(*node[K, T]) bool
	walk = func(n *node[K, T]) bool {
		if n == nil {
			return true
		}
		if !walk(n.left) {
			return false
		}
		if !f(n.key, n.w) {
			return false
		}
		return walk(n.right)
	}
	walk(t.root)
}
