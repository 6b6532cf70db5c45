package handle

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/opendz/bus1/internal/lockorder"
	"github.com/opendz/bus1/peer"
)

// Flush implements a peer's two-phase teardown (spec.md §4.2 trigger (c)
// and §5): a cheap snapshot-and-disconnect taken under p's lock, followed
// by the expensive per-handle walk done without it, so a peer shutting down
// never holds its own lock for the duration of an unbounded number of node
// destructions.
func Flush(p peer.Peer, clock peer.Clock) {
	snapshot := snapshotAndDisconnect(p)
	for _, h := range orderOwnerLast(snapshot) {
		finishFlushedHandle(h, clock)
	}
}

// orderOwnerLast groups the flushed handles by node and, within each
// group, walks every non-owner handle before the owner handle, so a node
// this peer both owns and holds other handles to never commits destruction
// before its last non-owner handle has already been detached. Node order
// across groups is otherwise arbitrary but deterministic, keyed by each
// node's identity.
func orderOwnerLast(handles []*Handle) []*Handle {
	byNode := make(map[*Node][]*Handle, len(handles))
	for _, h := range handles {
		byNode[h.node] = append(byNode[h.node], h)
	}

	nodes := maps.Keys(byNode)
	slices.SortFunc(nodes, func(a, b *Node) bool { return a.key() < b.key() })

	out := make([]*Handle, 0, len(handles))
	for _, n := range nodes {
		var owner *Handle
		for _, h := range byNode[n] {
			if n.IsOwner(h) {
				owner = h
				continue
			}
			out = append(out, h)
		}
		if owner != nil {
			out = append(out, owner)
		}
	}
	return out
}

func snapshotAndDisconnect(p peer.Peer) []*Handle {
	p.Lock()
	defer p.Unlock()

	raw := p.SnapshotByID()
	out := make([]*Handle, 0, len(raw))
	for _, hl := range raw {
		h := hl.(*Handle)
		p.RemoveByID(h.HandleID(), h)
		p.RemoveByNode(h.NodeKey(), h)
		out = append(out, h)
	}
	return out
}

// finishFlushedHandle runs the postorder part of the walk: an owner handle
// whose node is still alive commits destruction (this peer going away takes
// the node with it, per spec.md's flush trigger); a non-owner handle simply
// drops its attach hold after being unlinked from its node.
func finishFlushedHandle(h *Handle, clock peer.Clock) {
	h.clearHolder()

	n := h.node
	if n.IsOwner(h) {
		// Already unlinked from this peer's trees by snapshotAndDisconnect;
		// commitDestruction is told ownerPeer=nil so it skips that step.
		if n.Timestamp() == 0 {
			drained := commitDestruction(n, nil, clock)
			finalizeDestruction(drained)
		}
		return
	}

	ownerHandle := n.Owner()
	ownerPeer := ownerHandle.holderPeer()
	var drained []*Handle
	if ownerPeer != nil {
		lockorder.Enter(lockorder.Owner)
		ownerPeer.Lock()
		n.removeHandle(h)
		h.ref.Add(-1)
		if n.HandleCount() == 0 && n.Timestamp() == 0 {
			drained = commitDestruction(n, ownerPeer, clock)
		}
		ownerPeer.Unlock()
		lockorder.Leave()
	} else {
		n.removeHandle(h)
		h.ref.Add(-1)
	}
	finalizeDestruction(drained)
}
