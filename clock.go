package trig

import "sync/atomic"

// Clock is a monotonic logical clock for ordering mutations and
// dispatches.
//
// Every Field change and every Executor dispatch is stamped with a
// strictly increasing seq number from the owning Executor's clock.
// Seq numbers, never wall-clock timestamps, define the order of
// events: a trace sorted by seq is the execution order.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
