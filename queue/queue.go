// Package queue implements the per-peer ordered delivery queue described in
// spec.md §4.1: an ordered set of entries keyed by a 64-bit sequence number
// whose low bit marks staging (odd = staging, not yet committed; even =
// committed). The queue's front pointer only ever advances over committed
// entries, so a staging entry blocks everything behind it from being
// observed without itself being observable.
//
// Mutation is expected to happen under the owning destination peer's lock,
// mirroring the teacher's "unlocked" methods in node_cache.go/handle
// operations that rely entirely on an externally held lock rather than an
// internal mutex.
package queue

import (
	"github.com/opendz/bus1/common"
	"github.com/opendz/bus1/internal/rbtree"
	"github.com/opendz/bus1/peer"
)

// MaxInlineFiles bounds the small inline array of file descriptor
// references an entry may carry, per spec.md §3 ("an inline array of file
// references"). FD passing itself is out of scope (spec.md §1); only the
// shape of the field is carried.
const MaxInlineFiles = 4

// FileRef is an opaque reference to a passed file descriptor. The queue
// never interprets it.
type FileRef = interface{}

// Entry is a single message slot in a destination's queue.
type Entry struct {
	// Seq is the entry's ordering key. Zero is invalid; odd means staging.
	Seq uint64

	// Slice is the message payload, owned by the originating peer.Pool.
	Slice peer.Slice

	// Files carries up to MaxInlineFiles passed file descriptor references.
	Files [MaxInlineFiles]FileRef
	NFile int

	// Peer is informational only (supplemented per original_source/queue.c,
	// see SPEC_FULL.md §10): identifies which destination this entry was
	// produced for, useful for diagnostic dumps. Never consulted for
	// ordering or delivery decisions.
	Peer peer.ID
}

// IsStaging reports whether e's current sequence marks it as not yet
// committed.
func (e *Entry) IsStaging() bool {
	return e.Seq&1 == 1
}

func lessSeq(a, b uint64) bool { return a < b }

// Queue is a per-peer ordered set of entries with staging support.
type Queue struct {
	tree  *rbtree.Tree[uint64, *Entry]
	front *Entry
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{tree: rbtree.New[uint64, *Entry](lessSeq)}
}

// Link inserts e, using its current Seq, into the ordered set. Ties (equal
// Seq) are ordered as "later" (to the right of existing entries with that
// seq), per spec.md §4.1. It reports whether this link caused the queue to
// become readable, i.e. whether e is now the leftmost entry and is
// committed (even Seq) where previously the queue either had no front or a
// staging one.
func (q *Queue) Link(e *Entry) bool {
	wasBlocked := q.front == nil
	q.tree.Insert(e.Seq, e)

	key, val, _ := q.tree.Leftmost()
	if val != e || key != e.Seq {
		// e did not land leftmost; front is unaffected.
		return false
	}
	if e.Seq&1 == 1 {
		// e is leftmost but staging: it blocks the queue, front stays nil.
		return false
	}
	q.front = e
	return wasBlocked
}

// Unlink removes e from the queue. If e was the front, the front advances
// to the next entry only if that entry is committed (even Seq); otherwise
// the front is cleared (a staging successor still blocks). It reports
// whether a previously-blocking staging front was just removed and exposed
// a committed entry, i.e. the queue just became readable.
func (q *Queue) Unlink(e *Entry) bool {
	leftKey, leftVal, hasLeft := q.tree.Leftmost()
	wasLeftmost := hasLeft && leftKey == e.Seq && leftVal == e
	wasBlockingStaging := wasLeftmost && e.Seq&1 == 1

	nextKey, nextVal, hasNext := q.tree.NextAfter(e.Seq, e)
	if !q.tree.Remove(e.Seq, e) {
		return false
	}
	if !wasLeftmost {
		// e was neither exposed as front nor blocking it; front is untouched.
		return false
	}

	q.front = nil
	if hasNext && nextKey&1 == 0 {
		q.front = nextVal
	}
	return wasBlockingStaging && q.front != nil
}

// Relink removes e (which must currently be staging) and re-inserts it
// under newSeq. It reports whether this exposed a new committed front where
// there previously was none (none committed, or none at all).
func (q *Queue) Relink(e *Entry, newSeq uint64) bool {
	if e.Seq&1 == 0 {
		panic("queue: Relink called on a non-staging entry")
	}
	hadFront := q.front != nil
	q.tree.Remove(e.Seq, e)
	if q.front == e {
		q.front = nil
	}
	e.Seq = newSeq
	q.tree.Insert(e.Seq, e)

	key, val, _ := q.tree.Leftmost()
	if val == e && key == e.Seq && e.Seq&1 == 0 {
		q.front = e
	}
	return !hadFront && q.front != nil
}

// Peek returns the current front entry, never a staging one. It returns nil
// if the queue is empty or blocked by a staging leftmost entry.
func (q *Queue) Peek() *Entry {
	return q.front
}

// Len returns the number of entries currently linked, staging or not.
func (q *Queue) Len() int {
	return q.tree.Len()
}

// Flush drains every entry from the queue, releasing each one's slice back
// to pool, and returns the drained entries (e.g. for diagnostics). The
// queue is empty and its front cleared on return.
func (q *Queue) Flush(pool peer.Pool) []*Entry {
	drained := q.tree.Snapshot()
	q.tree.Clear()
	q.front = nil
	for _, e := range drained {
		if e.Slice != nil {
			pool.ReleaseKernel(e.Slice)
		}
	}
	return drained
}

// GetMemoryFootprint reports the approximate memory retained by this queue,
// excluding the payload slices it merely references.
func (q *Queue) GetMemoryFootprint() *common.MemoryFootprint {
	const entrySize = 96 // approx size of Entry plus tree bookkeeping
	return common.NewMemoryFootprint(uintptr(q.Len() * entrySize))
}
