// Package seqlock provides a minimal sequence-counter primitive used to
// guard lockless reads of peer-owned state (lookup trees, node destruction
// timestamps) against concurrent writers holding the peer's lock.
//
// Writers always hold an external lock (the owning peer's lock) while
// mutating; they additionally bracket the mutation with Begin/End so that
// concurrent lockless readers can detect and retry across a write. This
// mirrors the access discipline described by the teacher's shared.Shared
// type (content/hash mutexes guarding concurrent readers and an exclusive
// writer) collapsed into a single counter, combined with the tag-validated
// optimistic reads performed by the teacher's NodeCache.Get.
package seqlock

import "sync/atomic"

// Counter is a sequence counter. An odd value means a writer currently holds
// the associated lock and is mutating the guarded state; an even value means
// the state is quiescent. The zero value is a valid, quiescent counter.
type Counter struct {
	seq atomic.Uint64
}

// WriteBegin must be called exactly once by the lock holder immediately
// before mutating the guarded state. It flips the counter to an odd value.
func (c *Counter) WriteBegin() {
	c.seq.Add(1)
}

// WriteEnd must be called exactly once by the lock holder immediately after
// the mutation is complete and visible. It flips the counter back to even.
func (c *Counter) WriteEnd() {
	c.seq.Add(1)
}

// ReadBegin spins until the counter is observed in a quiescent (even) state
// and returns that observed value. Pair with ReadRetry to validate that no
// write happened in between.
func (c *Counter) ReadBegin() uint64 {
	for {
		if s := c.seq.Load(); s&1 == 0 {
			return s
		}
	}
}

// ReadRetry reports whether a write has started, completed, or is in
// progress since start was obtained from ReadBegin. A true result means the
// read must be discarded and retried.
func (c *Counter) ReadRetry(start uint64) bool {
	return c.seq.Load() != start
}

// Read runs fn under the optimistic-read protocol: it retries fn until a
// full pass completes without an intervening writer. fn must be free of
// side effects beyond copying out observed state, since it may run more
// than once.
func Read[T any](c *Counter, fn func() T) T {
	for {
		start := c.ReadBegin()
		v := fn()
		if !c.ReadRetry(start) {
			return v
		}
	}
}

// Write runs fn bracketed by WriteBegin/WriteEnd. The caller must already
// hold the external lock serializing writers.
func Write(c *Counter, fn func()) {
	c.WriteBegin()
	defer c.WriteEnd()
	fn()
}
