// Package corerr defines the error kinds shared by every container in this
// module: NotFound, OutOfRange, InvalidCapacity, and Internal.
package corerr

import "fmt"

// NotFoundError is returned by Get when a key has no live entry.
type NotFoundError struct {
	Key any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key not found: %v", e.Key)
}

// OutOfRangeError is returned by Choose when u isn't in [0, total()).
type OutOfRangeError struct {
	U, Total float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("choose(%v) out of range [0, %v)", e.U, e.Total)
}

// InvalidCapacityError is returned by constructors given a bad capacity or
// bucket count, e.g. a non-power-of-two or zero bucket count for HashBuckets.
type InvalidCapacityError struct {
	Msg string
}

func (e *InvalidCapacityError) Error() string {
	return e.Msg
}

// Internal signals a violated invariant: the sum-walk fell off the end of a
// structure despite a valid u. This is a bug, not a user error; containers
// that detect it return it from the failing call like the other kinds.
type Internal struct {
	Msg string
}

func (e *Internal) Error() string {
	return "internal invariant violated: " + e.Msg
}
