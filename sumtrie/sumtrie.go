// Package sumtrie implements the PATRICIA sum-trie keyed container (spec
// §4.8): a crit-bit tree over a 128-bit ordinate derived from two
// independent hash streams, augmented with subtree sums for weighted
// sampling.
//
// The crit-bit splice/descend shape is grounded on the same Trees package
// that grounds treap (SBTree's recursive insert walking to an insertion
// point and splicing in a new node), adapted from a BST compare-by-value
// descent to a compare-by-bit descent, and from size augmentation to sum
// augmentation. Collision handling -- a small bucket of (key, weight)
// pairs living at a leaf whose ordinates collide -- follows the pattern of
// a hash trie's collision leaf (the same shape a persistent hash array
// mapped trie uses when two keys hash identically).
package sumtrie

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

// trieNode is either a branch (left/right != nil) or a leaf (both nil).
type trieNode[K comparable, T Weight] struct {
	crit        int
	left, right *trieNode[K, T]
	ok          ordinal.Ordinate
	entries     []collision[K, T]
	sum         T
}

type collision[K comparable, T Weight] struct {
	key K
	w   T
}

func (n *trieNode[K, T]) isLeaf() bool { return n.left == nil && n.right == nil }

// SumTrie implements keyed.Keyed[K, T] over a PATRICIA trie keyed by
// ok(k) = (hash(k, seed1) << 64) | hash(k, seed2).
//
// The live key->ordinate index is github.com/alphadose/haxmap's Map, the
// same lock-free hash map keyed.Removal and keyed.Keep use for their
// key->slot index, rather than a bare Go map.
type SumTrie[K comparable, T Weight] struct {
	root   *trieNode[K, T]
	hashFn func(K, uint64) uint64
	seed1  uint64
	seed2  uint64
	index  *haxmap.Map[K, ordinal.Ordinate]
	size   int
}

// New builds an empty SumTrie. seed2 is typically seed1 XOR
// ordinal.GoldenGamma to keep the two hash streams independent when the
// caller only supplies one seed.
func New[K comparable, T Weight](seed1, seed2 uint64, hashFn func(K, uint64) uint64) *SumTrie[K, T] {
	return &SumTrie[K, T]{
		hashFn: hashFn,
		seed1:  seed1,
		seed2:  seed2,
		index:  haxmap.New[K, ordinal.Ordinate](),
	}
}

func (s *SumTrie[K, T]) ordinateOf(k K) ordinal.Ordinate {
	return ordinal.KeyOrdinate(s.hashFn, k, s.seed1, s.seed2)
}

func newLeaf[K comparable, T Weight](ok ordinal.Ordinate, k K, w T) *trieNode[K, T] {
	return &trieNode[K, T]{ok: ok, entries: []collision[K, T]{{key: k, w: w}}, sum: w}
}

// findLeaf descends from n following ok's bits, always reaching a leaf.
func findLeaf[K comparable, T Weight](n *trieNode[K, T], ok ordinal.Ordinate) *trieNode[K, T] {
	for !n.isLeaf() {
		if ok.Bit(n.crit) == 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n
}

// Set inserts or updates k's weight.
func (s *SumTrie[K, T]) Set(k K, w T) {
	ok := s.ordinateOf(k)
	if s.root == nil {
		s.root = newLeaf[K, T](ok, k, w)
		s.index.Set(k, ok)
		s.size++
		return
	}
	if existingOk, known := s.index.Get(k); known {
		s.updateExisting(existingOk, k, w)
		return
	}

	leaf := findLeaf(s.root, ok)
	if leaf.ok.Equal(ok) {
		// hash collision with an existing, different key.
		leaf.entries = append(leaf.entries, collision[K, T]{key: k, w: w})
		leaf.sum += w
		s.index.Set(k, ok)
		s.size++
		s.propagateDelta(ok, w)
		return
	}

	kcrit := ordinal.HighestDifferingBit(ok, leaf.ok)
	s.splice(ok, k, w, kcrit)
	s.index.Set(k, ok)
	s.size++
}

func (s *SumTrie[K, T]) updateExisting(ok ordinal.Ordinate, k K, w T) {
	leaf := findLeaf(s.root, ok)
	var delta T
	for i := range leaf.entries {
		if leaf.entries[i].key == k {
			delta = w - leaf.entries[i].w
			leaf.entries[i].w = w
			break
		}
	}
	leaf.sum += delta
	if delta != 0 {
		s.propagateDelta(ok, delta)
	}
}

// splice inserts a new leaf for (k, w) at ordinate ok into the tree,
// finding the first ancestor along ok's descent whose crit is <= kcrit
// (the insertion point) and replacing that slot with a new branch at bit
// kcrit holding the new leaf and the old subtree as children.
func (s *SumTrie[K, T]) splice(ok ordinal.Ordinate, k K, w T, kcrit int) {
	cur := &s.root
	var delta T = w
	for {
		n := *cur
		if n.isLeaf() || n.crit <= kcrit {
			break
		}
		n.sum += delta
		if ok.Bit(n.crit) == 0 {
			cur = &n.left
		} else {
			cur = &n.right
		}
	}

	oldSubtree := *cur
	newLeafNode := newLeaf[K, T](ok, k, w)
	branch := &trieNode[K, T]{crit: kcrit, sum: oldSubtree.sum + w}
	if ok.Bit(kcrit) == 0 {
		branch.left = newLeafNode
		branch.right = oldSubtree
	} else {
		branch.left = oldSubtree
		branch.right = newLeafNode
	}
	*cur = branch
}

// propagateDelta adds delta to the sum of every branch on the path to
// ok's leaf (the leaf's own sum was already updated by the caller).
func (s *SumTrie[K, T]) propagateDelta(ok ordinal.Ordinate, delta T) {
	n := s.root
	for !n.isLeaf() {
		n.sum += delta
		if ok.Bit(n.crit) == 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
}

// Get returns k's weight, or NotFoundError if absent.
func (s *SumTrie[K, T]) Get(k K) (T, error) {
	ok, known := s.index.Get(k)
	if !known {
		var zero T
		return zero, &corerr.NotFoundError{Key: k}
	}
	leaf := findLeaf(s.root, ok)
	for _, e := range leaf.entries {
		if e.key == k {
			return e.w, nil
		}
	}
	var zero T
	return zero, &corerr.Internal{Msg: "sumtrie index out of sync with tree"}
}

// Has reports whether k has a live entry.
func (s *SumTrie[K, T]) Has(k K) bool {
	_, known := s.index.Get(k)
	return known
}

// Erase removes k. Idempotent.
func (s *SumTrie[K, T]) Erase(k K) {
	ok, known := s.index.Get(k)
	if !known {
		return
	}
	leaf := findLeaf(s.root, ok)
	var w T
	idx := -1
	for i, e := range leaf.entries {
		if e.key == k {
			w = e.w
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	leaf.entries = append(leaf.entries[:idx], leaf.entries[idx+1:]...)
	leaf.sum -= w
	s.index.Del(k)
	s.size--

	if len(leaf.entries) > 0 {
		if w != 0 {
			s.propagateDelta(ok, -w)
		}
		return
	}

	// leaf emptied: splice it out, replacing its parent with the
	// parent's other child.
	if s.root == leaf {
		s.root = nil
		return
	}
	s.spliceOut(ok, w)
}

func (s *SumTrie[K, T]) spliceOut(ok ordinal.Ordinate, w T) {
	cur := &s.root
	for {
		n := *cur
		if n.isLeaf() {
			return
		}
		var childPtr **trieNode[K, T]
		var siblingPtr **trieNode[K, T]
		if ok.Bit(n.crit) == 0 {
			childPtr, siblingPtr = &n.left, &n.right
		} else {
			childPtr, siblingPtr = &n.right, &n.left
		}
		if (*childPtr).isLeaf() && len((*childPtr).entries) == 0 {
			n.sum -= w
			*cur = *siblingPtr
			return
		}
		n.sum -= w
		cur = childPtr
	}
}

// Total returns the sum of all live weights, O(1).
func (s *SumTrie[K, T]) Total() T {
	if s.root == nil {
		return 0
	}
	return s.root.sum
}

// Choose draws a key with probability proportional to its weight.
func (s *SumTrie[K, T]) Choose(u T) (K, T, error) {
	total := s.Total()
	if u < 0 || u >= total {
		var zero K
		return zero, 0, &corerr.OutOfRangeError{U: float64(u), Total: float64(total)}
	}
	n := s.root
	for !n.isLeaf() {
		left := n.left.sum
		if u < left {
			n = n.left
		} else {
			u -= left
			n = n.right
		}
	}
	var run T
	for _, e := range n.entries {
		if u < run+e.w {
			return e.key, e.w, nil
		}
		run += e.w
	}
	var zero K
	return zero, 0, &corerr.Internal{Msg: "sum-walk fell off the end of a collision bucket"}
}

// Len returns the number of live keys.
func (s *SumTrie[K, T]) Len() int { return s.size }

// Clear empties the container.
func (s *SumTrie[K, T]) Clear() {
	s.root = nil
	s.index = haxmap.New[K, ordinal.Ordinate]()
	s.size = 0
}

// Iterate visits every live key in ordinate order.
func (s *SumTrie[K, T]) Iterate(f func(K, T) bool) {
	var walk func(*trieNode[K, T]) bool
	walk = func(n *trieNode[K, T]) bool {
		if n == nil {
			return true
		}
		if n.isLeaf() {
			for _, e := range n.entries {
				if !f(e.key, e.w) {
					return false
				}
			}
			return true
		}
		if !walk(n.left) {
			return false
		}
		return walk(n.right)
	}
	walk(s.root)
}
