package tracker

import "sync/atomic"

// Counters holds one tick count per display. The sampler is the only
// writer; readers take snapshots that may trail the latest tick.
type Counters struct {
	slots []atomic.Int64
}

// NewCounters creates n zeroed slots
func NewCounters(n int) *Counters {
	return &Counters{slots: make([]atomic.Int64, n)}
}

// Increment adds one tick to slot i
func (c *Counters) Increment(i int) {
	c.slots[i].Add(1)
}

// Subtract removes n ticks from slot i, never going below zero.
// It returns the value after subtraction.
func (c *Counters) Subtract(i int, n int64) int64 {
	for {
		cur := c.slots[i].Load()
		next := cur - n
		if next < 0 {
			next = 0
		}
		if c.slots[i].CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Get returns the current value of slot i
func (c *Counters) Get(i int) int64 {
	return c.slots[i].Load()
}

// Snapshot copies every slot. Each value is read atomically; the set as a
// whole is not a transaction.
func (c *Counters) Snapshot() []int64 {
	out := make([]int64, len(c.slots))
	for i := range c.slots {
		out[i] = c.slots[i].Load()
	}
	return out
}
