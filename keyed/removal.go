package keyed

import (
	"github.com/adolgert/samplerdome/corerr"
	"github.com/alphadose/haxmap"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/google/btree"
)

// slotEntry records where a key lives and the monotone order it was first
// inserted under, so iteration can replay insertion order even once slots
// get reused for other keys.
type slotEntry struct {
	slot  int
	order uint64
}

type iterKey[K comparable] struct {
	order uint64
	key   K
}

func lessIterKey[K comparable](a, b iterKey[K]) bool { return a.order < b.order }

// Removal wraps a Dense structure with a key<->slot index. Invariant: every
// key in the index occupies a slot holding its weight; every slot not in
// the index is either beyond the high-water mark or on the free stack and
// holds weight 0 (spec §4.4).
//
// The key->slot map is github.com/alphadose/haxmap's Map rather than a bare
// Go map (the teacher's Maps/ directory is wall-to-wall hash map
// implementations; this is where one of them lands in production use
// instead of only a benchmark comparison). The free-slot stack is
// github.com/emirpasic/gods/stacks/arraystack, matching the LIFO reuse
// policy spec §8 seed scenario 6 requires.
type Removal[K comparable, T Weight] struct {
	inner     Dense[T]
	slots     *haxmap.Map[K, slotEntry]
	rev       []K // rev[i-1] = key occupying slot i; only meaningful while i is live
	free      *arraystack.Stack
	highWater int
	order     *btree.BTreeG[iterKey[K]]
	counter   uint64
}

// NewRemoval wraps inner, an empty Dense structure, as a keyed container.
func NewRemoval[K comparable, T Weight](inner Dense[T]) *Removal[K, T] {
	return &Removal[K, T]{
		inner: inner,
		slots: haxmap.New[K, slotEntry](),
		rev:   make([]K, inner.Cap()),
		free:  arraystack.New(),
		order: btree.NewG(32, lessIterKey[K]),
	}
}

func (u *Removal[K, T]) ensureRev(i int) {
	if i > len(u.rev) {
		nr := make([]K, max(i, len(u.rev)*2))
		copy(nr, u.rev)
		u.rev = nr
	}
}

// Set inserts or updates k's weight.
func (u *Removal[K, T]) Set(k K, w T) {
	if e, ok := u.slots.Get(k); ok {
		u.inner.Update(e.slot, w)
		return
	}
	var slot int
	if v, ok := u.free.Pop(); ok {
		slot = v.(int)
	} else {
		u.highWater++
		slot = u.highWater
	}
	u.counter++
	u.ensureRev(slot)
	u.rev[slot-1] = k
	u.slots.Set(k, slotEntry{slot: slot, order: u.counter})
	u.order.ReplaceOrInsert(iterKey[K]{order: u.counter, key: k})
	u.inner.Update(slot, w)
}

// Get returns k's weight, or NotFoundError if k is absent.
func (u *Removal[K, T]) Get(k K) (T, error) {
	e, ok := u.slots.Get(k)
	if !ok {
		var zero T
		return zero, &corerr.NotFoundError{Key: k}
	}
	return u.inner.Get(e.slot), nil
}

// Has reports whether k has a live entry.
func (u *Removal[K, T]) Has(k K) bool {
	_, ok := u.slots.Get(k)
	return ok
}

// Erase removes k, freeing its slot for reuse. Idempotent.
func (u *Removal[K, T]) Erase(k K) {
	e, ok := u.slots.Get(k)
	if !ok {
		return
	}
	u.inner.Update(e.slot, 0)
	u.slots.Del(k)
	u.free.Push(e.slot)
	u.order.Delete(iterKey[K]{order: e.order, key: k})
}

// Total returns the sum of all live weights.
func (u *Removal[K, T]) Total() T { return u.inner.Total() }

// Choose draws a key with probability proportional to its weight.
func (u *Removal[K, T]) Choose(uVal T) (K, T, error) {
	i, w, err := u.inner.Choose(uVal)
	if err != nil {
		var zero K
		return zero, 0, err
	}
	return u.rev[i-1], w, nil
}

// Len returns the number of live keys.
func (u *Removal[K, T]) Len() int { return int(u.slots.Len()) }

// Clear empties the container. O(cap): every existing slot is zeroed since
// the wrapped Dense structure has no bulk reset of its own.
func (u *Removal[K, T]) Clear() {
	u.slots = haxmap.New[K, slotEntry]()
	u.rev = make([]K, 0)
	u.free = arraystack.New()
	u.highWater = 0
	u.order = btree.NewG(32, lessIterKey[K])
	u.counter = 0
	for i := 1; i <= u.inner.Cap(); i++ {
		u.inner.Update(i, 0)
	}
}

// Iterate visits every live key in first-insertion order, stopping early if
// f returns false.
func (u *Removal[K, T]) Iterate(f func(K, T) bool) {
	u.order.Ascend(func(ik iterKey[K]) bool {
		e, ok := u.slots.Get(ik.key)
		if !ok {
			return true
		}
		return f(ik.key, u.inner.Get(e.slot))
	})
}
