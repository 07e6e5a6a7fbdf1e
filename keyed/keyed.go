package keyed

// Keyed is the common contract every keyed container in this module
// exposes (spec §4.1): Removal and Keep both implement it, and HashBuckets
// uses it both as its own outward face and as the type of its inner
// per-bucket containers.
type Keyed[K comparable, T Weight] interface {
	Set(k K, w T)
	Get(k K) (T, error)
	Has(k K) bool
	Erase(k K)
	Total() T
	Choose(u T) (K, T, error)
	Len() int
	Clear()
	Iterate(f func(K, T) bool)
}
