package syncutil

import "sync/atomic"

// Counter is an int64 counter safe for concurrent use. The zero
// Counter is ready to use.
type Counter struct {
	n atomic.Int64
}

// Add increments the counter by delta and returns the new value.
func (c *Counter) Add(delta int64) int64 {
	return c.n.Add(delta)
}

// Inc increments the counter by one and returns the new value.
func (c *Counter) Inc() int64 {
	return c.n.Add(1)
}

// Load returns the current value of the counter.
func (c *Counter) Load() int64 {
	return c.n.Load()
}
