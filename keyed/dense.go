// Package keyed turns any dense (L0) prefix-sum structure into a keyed map:
// Removal, which reuses vacated slots, and Keep, which keeps zero-weight
// slots for keys that return repeatedly.
package keyed

import "golang.org/x/exp/constraints"

// Weight is the nonnegative floating-point type every container sums.
type Weight interface {
	constraints.Float
}

// Dense is the contract any L0 prefix-sum structure must satisfy to be
// wrapped: segtree.Tree and cumsum.Tree both implement it as-is.
type Dense[T Weight] interface {
	Update(i int, w T)
	Get(i int) T
	Choose(u T) (int, T, error)
	Total() T
	PrefixBefore(i int) T
	Cap() int
	Grow(newCap int)
}
