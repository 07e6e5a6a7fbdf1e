package ordinal

import "math/bits"

// Ordinate is the 128-bit value used to impose a total order on keys in
// Treap and SumTrie. Hi holds bits [64,127], Lo holds bits [0,63]; bit 0 is
// the least significant bit of Lo and bit 127 is the most significant bit
// of Hi, the conventional numbering for an unsigned integer.
type Ordinate struct {
	Hi, Lo uint64
}

// Less reports whether a sorts before b under the natural 128-bit order.
func (a Ordinate) Less(b Ordinate) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}

// Equal reports whether a and b are the same ordinate.
func (a Ordinate) Equal(b Ordinate) bool {
	return a.Hi == b.Hi && a.Lo == b.Lo
}

// Bit returns bit i of the ordinate, i in [0,127].
func (a Ordinate) Bit(i int) uint64 {
	if i < 64 {
		return (a.Lo >> uint(i)) & 1
	}
	return (a.Hi >> uint(i-64)) & 1
}

// HighestDifferingBit returns the index in [0,127] of the most significant
// bit at which a and b differ. a and b must not be equal.
func HighestDifferingBit(a, b Ordinate) int {
	if a.Hi != b.Hi {
		x := a.Hi ^ b.Hi
		return 64 + (63 - bits.LeadingZeros64(x))
	}
	x := a.Lo ^ b.Lo
	return 63 - bits.LeadingZeros64(x)
}

// KeyOrdinate computes ok(k) = (hash(k, s1) << 64) | hash(k, s2) for SumTrie.
// s2 is used as given; callers typically pass s1 XOR GoldenGamma so the two
// streams are independent when only one seed is chosen.
func KeyOrdinate[K any](hashFn func(K, uint64) uint64, k K, s1, s2 uint64) Ordinate {
	return Ordinate{Hi: hashFn(k, s1), Lo: hashFn(k, s2)}
}

// TreapOrdinate computes ok(k) = (hash(k, seed) << 64) | counter for Treap,
// where counter is a per-container monotone value assigned once at a key's
// first insertion.
func TreapOrdinate[K any](hashFn func(K, uint64) uint64, k K, seed uint64, counter uint64) Ordinate {
	return Ordinate{Hi: hashFn(k, seed), Lo: counter}
}
