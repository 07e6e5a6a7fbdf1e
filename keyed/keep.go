package keyed

import (
	"github.com/adolgert/samplerdome/corerr"
	"github.com/alphadose/haxmap"
	"github.com/google/btree"
)

// keepEntry never leaves the map once created: live toggles between a
// Set and an Erase, but slot and order are permanent so the slot can be
// reused without reallocation and iteration order survives a
// erase/re-insert cycle (spec §4.5: "Use when the same keys return
// repeatedly").
type keepEntry struct {
	slot  int
	order uint64
	live  bool
}

// Keep wraps a Dense structure with a key<->slot index that never frees
// slots: after Erase the slot is zeroed and kept, ready for Set to reuse
// without touching the free-slot bookkeeping Removal needs.
type Keep[K comparable, T Weight] struct {
	inner     Dense[T]
	slots     *haxmap.Map[K, keepEntry]
	rev       []K
	highWater int
	order     *btree.BTreeG[iterKey[K]]
	counter   uint64
	liveCount int
}

// NewKeep wraps inner, an empty Dense structure, as a keyed container.
func NewKeep[K comparable, T Weight](inner Dense[T]) *Keep[K, T] {
	return &Keep[K, T]{
		inner: inner,
		slots: haxmap.New[K, keepEntry](),
		rev:   make([]K, inner.Cap()),
		order: btree.NewG(32, lessIterKey[K]),
	}
}

func (u *Keep[K, T]) ensureRev(i int) {
	if i > len(u.rev) {
		nr := make([]K, max(i, len(u.rev)*2))
		copy(nr, u.rev)
		u.rev = nr
	}
}

// Set inserts or updates k's weight, reviving a kept slot if k was erased.
func (u *Keep[K, T]) Set(k K, w T) {
	if e, ok := u.slots.Get(k); ok {
		if !e.live {
			e.live = true
			u.slots.Set(k, e)
			u.order.ReplaceOrInsert(iterKey[K]{order: e.order, key: k})
			u.liveCount++
		}
		u.inner.Update(e.slot, w)
		return
	}
	u.highWater++
	slot := u.highWater
	u.counter++
	u.ensureRev(slot)
	u.rev[slot-1] = k
	e := keepEntry{slot: slot, order: u.counter, live: true}
	u.slots.Set(k, e)
	u.order.ReplaceOrInsert(iterKey[K]{order: u.counter, key: k})
	u.liveCount++
	u.inner.Update(slot, w)
}

// Get returns k's weight, or NotFoundError if k is absent or erased.
func (u *Keep[K, T]) Get(k K) (T, error) {
	e, ok := u.slots.Get(k)
	if !ok || !e.live {
		var zero T
		return zero, &corerr.NotFoundError{Key: k}
	}
	return u.inner.Get(e.slot), nil
}

// Has reports whether k has a live entry.
func (u *Keep[K, T]) Has(k K) bool {
	e, ok := u.slots.Get(k)
	return ok && e.live
}

// Erase zeros k's weight and marks its slot reusable by a future Set(k, _)
// without allocating a new slot. Idempotent.
func (u *Keep[K, T]) Erase(k K) {
	e, ok := u.slots.Get(k)
	if !ok || !e.live {
		return
	}
	u.inner.Update(e.slot, 0)
	e.live = false
	u.slots.Set(k, e)
	u.order.Delete(iterKey[K]{order: e.order, key: k})
	u.liveCount--
}

// Total returns the sum of all live weights.
func (u *Keep[K, T]) Total() T { return u.inner.Total() }

// Choose draws a key with probability proportional to its weight.
func (u *Keep[K, T]) Choose(uVal T) (K, T, error) {
	i, w, err := u.inner.Choose(uVal)
	if err != nil {
		var zero K
		return zero, 0, err
	}
	return u.rev[i-1], w, nil
}

// Len returns the number of live keys.
func (u *Keep[K, T]) Len() int { return u.liveCount }

// Clear empties the container, forgetting all slot history. O(cap).
func (u *Keep[K, T]) Clear() {
	u.slots = haxmap.New[K, keepEntry]()
	u.rev = make([]K, 0)
	u.highWater = 0
	u.order = btree.NewG(32, lessIterKey[K])
	u.counter = 0
	u.liveCount = 0
	for i := 1; i <= u.inner.Cap(); i++ {
		u.inner.Update(i, 0)
	}
}

// Iterate visits every live key in first-insertion order, stopping early if
// f returns false.
func (u *Keep[K, T]) Iterate(f func(K, T) bool) {
	u.order.Ascend(func(ik iterKey[K]) bool {
		e, ok := u.slots.Get(ik.key)
		if !ok || !e.live {
			return true
		}
		return f(ik.key, u.inner.Get(e.slot))
	})
}
