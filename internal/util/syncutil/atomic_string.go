package syncutil

// AtomicString holds a string that may be loaded and replaced from
// multiple goroutines.
type AtomicString = Atomic[string]

// NewAtomicString returns an AtomicString holding initial.
func NewAtomicString(initial string) *AtomicString {
	s := &AtomicString{}
	s.Store(initial)
	return s
}
