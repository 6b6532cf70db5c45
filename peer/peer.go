// Package peer declares the contracts this module consumes from its host
// peer object but does not implement. A peer owns a lock, two lookup trees
// (by handle id, by node identity), a monotonic id allocator, a sequence
// counter for lockless reads, and access to a slice pool.
//
// The concrete data structure backing the lookup trees is an
// implementation detail of the host and is deliberately not part of this
// contract (spec.md §1 treats the peer's lookup trees as consumed, not
// implemented); internal/fake provides a reference implementation used by
// this module's own tests, built as a copy-on-write snapshot so that the
// lockless lookups described in spec.md §4.2 are genuinely race-free rather
// than merely logically-retriable.
package peer

import "github.com/opendz/bus1/internal/seqlock"

// ID identifies a peer within the bus, analogous to a file descriptor table
// owner. The zero value is never a valid peer.
type ID uint64

// Ref is a pinned, live reference to a peer, returned by Acquire. While held
// the peer cannot finish tearing down. Callers must call Release exactly
// once for every successful Acquire.
type Ref interface {
	// ID returns the stable identity of the referenced peer.
	ID() ID

	// Release drops the pin obtained from Acquire.
	Release()
}

// Slice is an opaque reference to a payload slice allocated from a Pool. The
// core never interprets its contents; it is carried by queue entries and
// handed back to the Pool on release.
type Slice interface{}

// Pool is the external slice allocator/writer backing message payloads.
// Implementations typically live alongside the memory accounting
// subsystem; this module only ever forwards calls to it.
type Pool interface {
	// WriteKVec materializes niov iovecs (iov[:niov], length bytes total)
	// into a newly allocated slice at the given offset.
	WriteKVec(offset int, iov [][]byte, niov int, length int) (Slice, error)

	// ReleaseKernel returns a previously allocated slice to the pool.
	ReleaseKernel(s Slice)
}

// Clock is the external ordering authority (spec.md §6): it issues 64-bit,
// strictly increasing, even-valued sequence numbers used both as
// transaction commit sequences and as node destruction timestamps. The low
// bit of a queue entry's Seq is reserved by this module to mark staging, so
// every value Clock produces must already be even; this module never has
// to double a value coming out of Next itself.
type Clock interface {
	Next() uint64
}

// HandleID is the key type of the by-id lookup tree: a peer-local,
// monotonically increasing, never-reused identifier.
type HandleID uint64

// NodeKey is the key type of the by-node lookup tree: an opaque, comparable
// identity for a node.
type NodeKey uintptr

// HandleLike abstracts over *handle.Handle to avoid an import cycle between
// peer and handle (package handle imports this package's Peer interface, and
// handle.Handle is what gets stored in the trees). Concrete callers type
// assert back to *handle.Handle.
type HandleLike interface {
	// HandleID returns the id this handle is installed under, or the
	// InvalidID sentinel if not yet installed.
	HandleID() HandleID

	// NodeKey returns the identity of the node this handle references.
	NodeKey() NodeKey
}

// Peer is the external collaborator contract: the lock, the two lookup
// trees (exposed only through lookup/mutate verbs, never as a raw data
// structure), the id allocator, the per-peer sequence counter, and access
// to the peer's pool.
type Peer interface {
	// Lock/Unlock guard every mutation of the lookup trees and id
	// allocator. Per spec.md §5, a caller may hold at most two peer locks
	// at once, and only in the order (holder, then owner) or (sender, then
	// destination).
	Lock()
	Unlock()

	// Acquire returns a pinned reference to this peer, or nil if the peer
	// is shutting down and no further references may be pinned.
	Acquire() Ref

	// SeqCounter returns the sequence counter guarding lockless reads. The
	// peer does not bump it itself: package handle brackets the tree
	// removals of its release and destruction paths with seqlock.Write on it.
	SeqCounter() *seqlock.Counter

	// LookupByID resolves a handle by id without requiring the lock.
	LookupByID(id HandleID) (HandleLike, bool)

	// LookupByNode resolves the (at most one) handle this peer holds for
	// the given node, without requiring the lock.
	LookupByNode(key NodeKey) (HandleLike, bool)

	// InsertByID links h into the by-id tree. Must hold Lock.
	InsertByID(id HandleID, h HandleLike)

	// InsertByNodeUnique links h into the by-node tree unless an entry for
	// key already exists, in which case it is returned with existed=true
	// and h is not inserted. Must hold Lock.
	InsertByNodeUnique(key NodeKey, h HandleLike) (existing HandleLike, existed bool)

	// RemoveByID unlinks the (id, h) pair. Must hold Lock.
	RemoveByID(id HandleID, h HandleLike) bool

	// RemoveByNode unlinks the (key, h) pair. Must hold Lock.
	RemoveByNode(key NodeKey, h HandleLike) bool

	// SnapshotByID returns every handle currently linked in the by-id tree,
	// for use by a two-phase flush. Must hold Lock.
	SnapshotByID() []HandleLike

	// AllocID returns the next monotonically increasing handle id for this
	// peer. Must hold Lock.
	AllocID() uint64

	// Pool returns the slice pool backing this peer's queue entries.
	Pool() Pool
}
