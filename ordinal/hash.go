// Package ordinal provides deterministic seeded hashing and the 128-bit
// ordinate construction shared by the Treap and SumTrie containers.
package ordinal

import "encoding/binary"

// Hasher produces deterministic, seeded 64-bit hashes. Unlike hash/maphash,
// whose Seed is always drawn randomly by MakeSeed and can never be pinned to
// a caller-chosen value, Hasher's seed is a plain uint64 the caller supplies,
// so (seed, input) always hashes to the same output across runs -- the
// property Treap and SumTrie need for reproducible construction from a
// user-supplied seed (spec Design Notes: "Random priorities").
type Hasher struct {
	seed uint64
}

// NewHasher builds a Hasher pinned to seed.
func NewHasher(seed uint64) Hasher {
	return Hasher{seed: seed}
}

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Bytes hashes b. The seed is folded in as the initial accumulator, the way
// a seeded FNV variant mixes in a non-default basis.
func (h Hasher) Bytes(b []byte) uint64 {
	acc := uint64(offset64) ^ h.seed
	for _, c := range b {
		acc ^= uint64(c)
		acc *= prime64
	}
	// final avalanche so low-entropy inputs (small ints, short strings)
	// still spread across all 64 bits.
	acc ^= acc >> 33
	acc *= 0xff51afd7ed558ccd
	acc ^= acc >> 33
	acc *= 0xc4ceb9fe1a85ec53
	acc ^= acc >> 33
	return acc
}

// String hashes s.
func (h Hasher) String(s string) uint64 {
	return h.Bytes([]byte(s))
}

// Uint64 hashes x.
func (h Hasher) Uint64(x uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return h.Bytes(b[:])
}

// Int hashes x.
func (h Hasher) Int(x int) uint64 {
	return h.Uint64(uint64(x))
}

// GoldenGamma is the odd 64-bit constant (derived from the golden ratio)
// the spec suggests XOR-ing into a seed to derive a second, independent
// hash stream: s2 = s1 XOR GoldenGamma.
const GoldenGamma = 0x9e3779b97f4a7c15

// HashString is a ready-made func(string, uint64) uint64 for string keys.
func HashString(s string, seed uint64) uint64 { return NewHasher(seed).String(s) }

// HashInt is a ready-made func(int, uint64) uint64 for int keys.
func HashInt(x int, seed uint64) uint64 { return NewHasher(seed).Int(x) }

// HashUint64 is a ready-made func(uint64, uint64) uint64 for uint64 keys.
func HashUint64(x uint64, seed uint64) uint64 { return NewHasher(seed).Uint64(x) }
