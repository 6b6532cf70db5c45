package handle

import (
	"unsafe"

	"github.com/opendz/bus1/internal/seqlock"
)

// Node is the shared object a set of handles reference, mirroring the
// kernel's bus1_node (original_source/ipc/bus1/handle.c). Its liveness
// follows ordinary Go reachability through the handles list rather than a
// second, hand-rolled refcount: as long as at least one *Handle names this
// node, the node stays alive, matching spec.md §3's "a node exists iff at
// least one handle references it" without re-implementing what the garbage
// collector already guarantees. See DESIGN.md for the fuller justification.
//
// timestamp is guarded by its own seqlock rather than by owner.holder's
// peer, because by the time a remote peer wants to read it the owning peer
// may already be gone; the node, not the owner handle, is the object every
// reader can still reach.
type Node struct {
	// owner is the handle installed at node creation time, embedded by
	// value so identity is a pointer comparison (&node.owner == h) and no
	// separate allocation is needed for the common case of a node that is
	// never shared beyond its creator.
	owner Handle

	// handles lists every handle currently attached to this node,
	// including owner while it is still attached.
	handles []*Handle

	timestamp uint64
	seq       seqlock.Counter

	// allocations is a diagnostic counter, supplemented per SPEC_FULL.md
	// §10 (original_source/ipc/bus1/handle.c tracks allocation counts for
	// /proc introspection); it has no bearing on any operation's outcome.
	allocations uint64
}

// NewNode creates a node together with its owner handle. The owner starts
// private: it is neither attached to the node nor installed on any peer
// until Install (or Attach) runs on it.
func NewNode() *Node {
	n := &Node{}
	n.owner.node = n
	n.owner.id.Store(InvalidID)
	n.owner.nInflight.Store(-1)
	n.owner.ref.Store(1)
	n.allocations++
	return n
}

// Owner returns the node's owner handle.
func (n *Node) Owner() *Handle {
	return &n.owner
}

// IsOwner reports whether h is this node's owner handle.
func (n *Node) IsOwner(h *Handle) bool {
	return h == &n.owner
}

// Timestamp performs a lockless, retrying read of the destruction
// timestamp: 0 while alive, 1 while a destruction is being committed, and a
// final even value once committed (spec.md §4.2).
func (n *Node) Timestamp() uint64 {
	return seqlock.Read(&n.seq, func() uint64 { return n.timestamp })
}

func (n *Node) setTimestamp(ts uint64) {
	seqlock.Write(&n.seq, func() { n.timestamp = ts })
}

// HandleCount returns the number of handles currently attached.
func (n *Node) HandleCount() int {
	return len(n.handles)
}

func (n *Node) appendHandle(h *Handle) {
	n.handles = append(n.handles, h)
}

// removeHandle unlinks h if present, reporting whether it was found.
func (n *Node) removeHandle(h *Handle) bool {
	for i, x := range n.handles {
		if x == h {
			n.handles = append(n.handles[:i], n.handles[i+1:]...)
			return true
		}
	}
	return false
}

// key returns the comparable identity used as this node's NodeKey in a
// peer's by-node lookup tree.
func (n *Node) key() uintptr {
	return uintptr(unsafe.Pointer(n))
}
