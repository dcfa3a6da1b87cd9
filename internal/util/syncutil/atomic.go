package syncutil

import (
	"sync/atomic"
)

// Atomic is a value of any type that can be atomically loaded and
// stored by multiple goroutines safely. The zero Atomic holds the zero
// value of T.
type Atomic[T any] struct {
	ptr atomic.Pointer[T]
}

// NewAtomic creates a new Atomic instance initialized with the given value.
func NewAtomic[T any](initial T) *Atomic[T] {
	a := &Atomic[T]{}
	a.Store(initial)
	return a
}

// Load returns the current value of the Atomic instance.
func (a *Atomic[T]) Load() T {
	if v := a.ptr.Load(); v != nil {
		return *v
	}
	var zero T
	return zero
}

// Store sets the value of the Atomic instance.
func (a *Atomic[T]) Store(value T) {
	a.ptr.Store(&value)
}
