package hashbuckets

import (
	"github.com/adolgert/samplerdome/corerr"
	"github.com/adolgert/samplerdome/keyed"
	"github.com/emirpasic/gods/lists/arraylist"
)

// SmallBucket implements keyed.Keyed[K, T] directly over two parallel
// arrays, scanned linearly for every operation. Spec §9's Open Question
// admits this as a deliberate choice for inner buckets expected to hold
// only a handful of keys: with B large enough that n/B is small, a
// segment-tree inner bucket's O(log(n/B)) and a linear scan's O(n/B) cost
// about the same, and the parallel-array version carries none of the
// segment tree's power-of-two padding.
type SmallBucket[K comparable, T keyed.Weight] struct {
	keys    *arraylist.List
	weights *arraylist.List
}

// NewSmallBucket returns an empty SmallBucket. capHint is accepted for
// symmetry with other constructors but gods/lists/arraylist grows on its
// own.
func NewSmallBucket[K comparable, T keyed.Weight](capHint int) *SmallBucket[K, T] {
	return &SmallBucket[K, T]{keys: arraylist.New(), weights: arraylist.New()}
}

func (s *SmallBucket[K, T]) find(k K) int {
	for i := 0; i < s.keys.Size(); i++ {
		v, _ := s.keys.Get(i)
		if v.(K) == k {
			return i
		}
	}
	return -1
}

// Set inserts or updates k's weight.
func (s *SmallBucket[K, T]) Set(k K, w T) {
	if i := s.find(k); i >= 0 {
		s.weights.Set(i, w)
		return
	}
	s.keys.Add(k)
	s.weights.Add(w)
}

// Get returns k's weight, or NotFoundError if absent.
func (s *SmallBucket[K, T]) Get(k K) (T, error) {
	i := s.find(k)
	if i < 0 {
		var zero T
		return zero, &corerr.NotFoundError{Key: k}
	}
	v, _ := s.weights.Get(i)
	return v.(T), nil
}

// Has reports whether k has a live entry.
func (s *SmallBucket[K, T]) Has(k K) bool { return s.find(k) >= 0 }

// Erase removes k. Idempotent.
func (s *SmallBucket[K, T]) Erase(k K) {
	i := s.find(k)
	if i < 0 {
		return
	}
	s.keys.Remove(i)
	s.weights.Remove(i)
}

// Total sums every live weight, O(n).
func (s *SmallBucket[K, T]) Total() T {
	var sum T
	for i := 0; i < s.weights.Size(); i++ {
		v, _ := s.weights.Get(i)
		sum += v.(T)
	}
	return sum
}

// Choose linear-scans the weights, accumulating a running sum.
func (s *SmallBucket[K, T]) Choose(u T) (K, T, error) {
	total := s.Total()
	if u < 0 || u >= total {
		var zero K
		return zero, 0, &corerr.OutOfRangeError{U: float64(u), Total: float64(total)}
	}
	var run T
	n := s.weights.Size()
	for i := 0; i < n; i++ {
		wv, _ := s.weights.Get(i)
		w := wv.(T)
		if u < run+w {
			kv, _ := s.keys.Get(i)
			return kv.(K), w, nil
		}
		run += w
	}
	var zero K
	return zero, 0, &corerr.Internal{Msg: "sum-walk fell off the end of a small bucket"}
}

// Len returns the number of live keys.
func (s *SmallBucket[K, T]) Len() int { return s.keys.Size() }

// Clear empties the bucket.
func (s *SmallBucket[K, T]) Clear() {
	s.keys.Clear()
	s.weights.Clear()
}

// Iterate visits every live key in storage order.
func (s *SmallBucket[K, T]) Iterate(f func(K, T) bool) {
	for i := 0; i < s.keys.Size(); i++ {
		kv, _ := s.keys.Get(i)
		wv, _ := s.weights.Get(i)
		if !f(kv.(K), wv.(T)) {
			return
		}
	}
}
