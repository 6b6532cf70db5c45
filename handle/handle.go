package handle

import (
	"sync/atomic"

	"github.com/opendz/bus1/peer"
)

// holderBox wraps a peer.Peer so it can live behind an atomic.Pointer: an
// interface value is two words and cannot be swapped atomically on its own,
// but a pointer to a single-field struct holding it can.
type holderBox struct {
	p peer.Peer
}

// Handle is this module's implementation of peer.HandleLike: a named
// reference from one peer to a Node, carrying the three independent
// counters described in spec.md §3.
//
//   - ref counts this handle's own memory lifetime. In the kernel original
//     it guards against use-after-free under manual memory management;
//     under Go's collector the only way ref legitimately reaches zero is a
//     handle that is discarded before ever being attached (an install
//     conflict's loser, see batch.HandleBatch.Destroy) or a node-side detach during
//     destruction dropping the attach hold. See DESIGN.md for the full
//     resolution of this Open Question.
//   - nInflight counts live inflight references; -1 marks a private handle
//     not yet attached to its node.
//   - nUser counts the destination-visible "this id is in use" references
//     a receiver takes while processing queued entries.
type Handle struct {
	node *Node

	id atomic.Uint64

	// holder is the peer this handle is currently installed on, or nil for
	// a private (not yet attached) handle. atomic.Pointer so FindByID/
	// FindByNode-adjacent code can read it without the peer's lock.
	holder atomic.Pointer[holderBox]

	ref       atomic.Int32
	nInflight atomic.Int32
	nUser     atomic.Int32
}

// NewPrivate allocates a handle for node that is not yet attached to
// anything: the starting point for both Transfer.Instantiate's freshly
// allocated node case and any other path that must hand out a handle before
// deciding where it will live.
func NewPrivate(node *Node) *Handle {
	h := &Handle{node: node}
	h.id.Store(InvalidID)
	h.nInflight.Store(-1)
	h.ref.Store(1)
	return h
}

// Node returns the node this handle references.
func (h *Handle) Node() *Node { return h.node }

// IsOwner reports whether h is its node's owner handle.
func (h *Handle) IsOwner() bool { return h.node.IsOwner(h) }

// IsPrivate reports whether h has not yet been attached to its node.
func (h *Handle) IsPrivate() bool { return h.nInflight.Load() == -1 }

// ID returns the raw installed id, or InvalidID if not yet installed.
func (h *Handle) ID() uint64 { return h.id.Load() }

// HandleID implements peer.HandleLike.
func (h *Handle) HandleID() peer.HandleID { return peer.HandleID(h.id.Load()) }

// NodeKey implements peer.HandleLike.
func (h *Handle) NodeKey() peer.NodeKey { return peer.NodeKey(h.node.key()) }

// NInflight reports the current inflight refcount, or -1 if private.
func (h *Handle) NInflight() int32 { return h.nInflight.Load() }

// NUser reports the current destination-side user refcount.
func (h *Handle) NUser() int32 { return h.nUser.Load() }

// Ref reports the current memory refcount.
func (h *Handle) Ref() int32 { return h.ref.Load() }

func (h *Handle) holderPeer() peer.Peer {
	b := h.holder.Load()
	if b == nil {
		return nil
	}
	return b.p
}

// HolderPeer returns the peer h is currently installed on, or nil for a
// private handle or one whose holder has since gone away. Exported so
// callers outside this package (transfer's cross-peer install) can resolve
// and lock a node's actual owner peer instead of assuming it coincides with
// whichever peer they already hold a lock on.
func (h *Handle) HolderPeer() peer.Peer { return h.holderPeer() }

func (h *Handle) setHolder(p peer.Peer) {
	h.holder.Store(&holderBox{p: p})
}

func (h *Handle) clearHolder() {
	h.holder.Store(nil)
}

// DiscardPrivate drops the initial reference of a handle that was created
// but never attached to any node's handle list (e.g. the losing side of an
// install conflict, see batch.HandleBatch.Destroy). It is a no-op for a handle
// that did get attached: that one's ref is retired by the destruction path
// instead. This is the only place ref is allowed to reach zero without a
// node destruction ever having run; see DESIGN.md for the full resolution
// of this Open Question.
func (h *Handle) DiscardPrivate() {
	if h.IsPrivate() {
		h.ref.Add(-1)
	}
}
