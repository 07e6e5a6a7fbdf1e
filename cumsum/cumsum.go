// Package cumsum implements the lazy cumulative-sum dense prefix-sum
// container: O(1) hot-path updates, amortized O(n) refresh before a choose.
package cumsum

import (
	"github.com/adolgert/samplerdome/corerr"
	"golang.org/x/exp/constraints"
)

// Weight is the nonnegative floating-point type summed.
type Weight interface {
	constraints.Float
}

// Tree holds vals[1..n] and a lazily-maintained running sum cum[1..n], plus
// the lowest index whose cum entry is stale. Grounded in spec §4.3 exactly;
// the array-of-plain-slices layout follows the same flat, index-addressed
// style as segtree.Tree and Trees.base's ifs/vs arrays (G-M-twostay-Go-Utils).
type Tree[T Weight] struct {
	vals, cum []T // 1-indexed; index 0 unused
	dirtyFrom int
	n         int
}

// New returns an empty Tree with capacity for at least capHint slots.
func New[T Weight](capHint int) *Tree[T] {
	if capHint < 1 {
		capHint = 1
	}
	return &Tree[T]{
		vals:      make([]T, capHint+1),
		cum:       make([]T, capHint+1),
		dirtyFrom: capHint + 1,
		n:         capHint,
	}
}

// Cap reports the current capacity.
func (t *Tree[T]) Cap() int { return t.n }

// Grow ensures the tree can address at least newCap slots.
func (t *Tree[T]) Grow(newCap int) {
	if newCap <= t.n {
		return
	}
	nv := make([]T, newCap+1)
	copy(nv, t.vals)
	nc := make([]T, newCap+1)
	copy(nc, t.cum)
	if t.dirtyFrom > t.n+1 {
		t.dirtyFrom = t.n + 1
	}
	t.vals, t.cum, t.n = nv, nc, newCap
}

// Update writes vals[i] = w and marks cum stale from i onward. O(1),
// growing capacity first if i exceeds it.
func (t *Tree[T]) Update(i int, w T) {
	if i > t.n {
		grown := t.n * 2
		if grown < i {
			grown = i
		}
		t.Grow(grown)
	}
	t.vals[i] = w
	if i < t.dirtyFrom {
		t.dirtyFrom = i
	}
}

// Get returns the weight currently stored at slot i.
func (t *Tree[T]) Get(i int) T {
	if i < 1 || i > t.n {
		return 0
	}
	return t.vals[i]
}

// Refresh recomputes cum[dirtyFrom..n] and resets dirtyFrom. O(n -
// dirtyFrom + 1); a no-op when nothing is dirty.
func (t *Tree[T]) Refresh() {
	if t.dirtyFrom > t.n {
		return
	}
	var prev T
	if t.dirtyFrom > 1 {
		prev = t.cum[t.dirtyFrom-1]
	}
	for j := t.dirtyFrom; j <= t.n; j++ {
		prev += t.vals[j]
		t.cum[j] = prev
	}
	t.dirtyFrom = t.n + 1
}

// Total refreshes then returns cum[n].
func (t *Tree[T]) Total() T {
	t.Refresh()
	if t.n == 0 {
		return 0
	}
	return t.cum[t.n]
}

// Choose refreshes, then binary-searches the smallest j with cum[j] > u.
// O(log n) after the amortized refresh.
func (t *Tree[T]) Choose(u T) (int, T, error) {
	total := t.Total()
	if u < 0 || u >= total {
		return 0, 0, &corerr.OutOfRangeError{U: float64(u), Total: float64(total)}
	}
	lo, hi := 1, t.n
	for lo < hi {
		mid := (lo + hi) / 2
		if t.cum[mid] > u {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, t.vals[lo], nil
}

// PrefixBefore returns the sum of weights in slots [1, i).
func (t *Tree[T]) PrefixBefore(i int) T {
	t.Refresh()
	if i <= 1 {
		return 0
	}
	return t.cum[i-1]
}
