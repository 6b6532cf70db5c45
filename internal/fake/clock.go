package fake

import "sync/atomic"

// Clock is a test-double peer.Clock: a process-local monotonic counter
// that only ever hands out even values, starting at 2 so 0 (alive) and 1
// (staging) stay reserved.
type Clock struct {
	n atomic.Uint64
}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Next() uint64 { return c.n.Add(2) }
