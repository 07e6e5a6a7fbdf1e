// Package segtree implements the dense segment-tree prefix-sum container:
// a fixed-capacity array laid out as a complete binary tree in breadth-first
// order, giving O(log cap) Update and Choose.
package segtree

import (
	"math/bits"

	"github.com/adolgert/samplerdome/corerr"
	"golang.org/x/exp/constraints"
)

// Weight is the nonnegative floating-point type every container sums.
type Weight interface {
	constraints.Float
}

// Tree is the dense L0 segment tree. Cell 1 is the root; cells 2i and 2i+1
// are the children of cell i; leaves occupy [offset, offset+cap) where
// offset is the smallest power of two >= cap. Slot indices handed to Update
// and returned by Choose are 1-based, in [1, Cap()].
//
// Grounded on Trees.base's flat array-of-nodes layout (G-M-twostay-Go-Utils):
// here the array encodes the tree via index arithmetic alone, with no node
// struct, matching the complete-binary-tree layout the spec requires.
type Tree[T Weight] struct {
	vals   []T // vals[offset+i-1] = weight of slot i, vals[1:offset] = internal sums
	offset int
	cap    int
}

// New returns an empty Tree with capacity for at least capHint slots.
func New[T Weight](capHint int) *Tree[T] {
	if capHint < 1 {
		capHint = 1
	}
	offset := nextPow2(capHint)
	return &Tree[T]{vals: make([]T, 2*offset), offset: offset, cap: capHint}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Cap reports the current capacity.
func (t *Tree[T]) Cap() int { return t.cap }

// Grow ensures the tree can address at least newCap slots, reallocating and
// re-laying the backing array when needed (O(n)). Existing leaf weights are
// preserved; internal sums are recomputed bottom-up.
func (t *Tree[T]) Grow(newCap int) {
	if newCap <= t.cap {
		return
	}
	newOffset := nextPow2(newCap)
	if newOffset == t.offset {
		t.cap = newCap
		return
	}
	nv := make([]T, 2*newOffset)
	copy(nv[newOffset:newOffset+t.cap], t.vals[t.offset:t.offset+t.cap])
	t.vals, t.offset, t.cap = nv, newOffset, newCap
	t.rebuild()
}

func (t *Tree[T]) rebuild() {
	for i := t.offset - 1; i >= 1; i-- {
		t.vals[i] = t.vals[2*i] + t.vals[2*i+1]
	}
}

// Update writes the weight of slot i (1-based), growing capacity first if
// necessary, then walks upward re-summing ancestors. O(log Cap()).
func (t *Tree[T]) Update(i int, w T) {
	if i > t.cap {
		grown := t.cap * 2
		if grown < i {
			grown = i
		}
		t.Grow(grown)
	}
	leaf := t.offset + i - 1
	t.vals[leaf] = w
	for leaf >>= 1; leaf >= 1; leaf >>= 1 {
		t.vals[leaf] = t.vals[2*leaf] + t.vals[2*leaf+1]
	}
}

// Get returns the weight currently stored at slot i.
func (t *Tree[T]) Get(i int) T {
	if i < 1 || i > t.cap {
		return 0
	}
	return t.vals[t.offset+i-1]
}

// Total returns the sum of all slot weights, O(1).
func (t *Tree[T]) Total() T { return t.vals[1] }

// Choose descends from the root: at each internal node, go left if
// u < left.sum, else subtract left.sum and go right. The boundary u ==
// left.sum goes right (comparison is strict <). O(log Cap()).
func (t *Tree[T]) Choose(u T) (int, T, error) {
	total := t.Total()
	if u < 0 || u >= total {
		return 0, 0, &corerr.OutOfRangeError{U: float64(u), Total: float64(total)}
	}
	cur := 1
	for cur < t.offset {
		left := 2 * cur
		if u < t.vals[left] {
			cur = left
		} else {
			u -= t.vals[left]
			cur = left + 1
		}
	}
	i := cur - t.offset + 1
	return i, t.vals[cur], nil
}

// PrefixBefore returns the sum of weights in slots [1, i), walking from the
// leaf up and adding the left sibling whenever the current node is a right
// child. O(log Cap()).
func (t *Tree[T]) PrefixBefore(i int) T {
	var sum T
	for leaf := t.offset + i - 1; leaf > 1; leaf >>= 1 {
		if leaf%2 == 1 {
			sum += t.vals[leaf-1]
		}
	}
	return sum
}
