package handle

import (
	"github.com/opendz/bus1/internal/lockorder"
	"github.com/opendz/bus1/internal/seqlock"
	"github.com/opendz/bus1/metrics"
	"github.com/opendz/bus1/peer"
)

// Attach links a private handle to its node's owner peer and marks it
// attached (nInflight goes from -1 to 1), per spec.md §4.2. Callers must
// hold the node's owner peer's lock (the peer holding n.Owner(), found via
// n.Owner().HolderPeer()) — except when h is the owner itself, which is
// disjoint: attaching the owner is how the very first attach, at node
// creation, bootstraps a node that has no owner peer yet to lock. It fails
// with ErrGone if the node has already begun destruction and h is not the
// owner.
func Attach(h *Handle, holder peer.Peer) error {
	n := h.node
	if !n.IsOwner(h) && n.Timestamp() != 0 {
		return ErrGone
	}
	h.setHolder(holder)
	h.nInflight.Store(1)
	n.appendHandle(h)
	h.ref.Add(1)
	return nil
}

// detachAttach undoes Attach for a handle that InstallAttached just found
// already has a winner installed for the same node: h was never linked
// into any peer's trees, so all that needs unwinding is the node-side
// attach. Requires the same owner-peer lock Attach itself required.
func detachAttach(h *Handle) {
	n := h.node
	n.removeHandle(h)
	h.nInflight.Store(-1)
	h.ref.Add(-1)
	h.clearHolder()
}

// InstallAttached links an already-attached h into holder's lookup trees
// under a freshly allocated id, or folds onto an existing handle for the
// same node if one has since appeared there (spec.md §4.3's third phase).
// Requires holder's lock; h must already be attached (via Attach) and not
// yet installed anywhere. If existed is true, h never received an id and
// the caller must undo its Attach (detachAttach, under the owner peer's
// lock) before discarding it.
func InstallAttached(h *Handle, holder peer.Peer) (found *Handle, existed bool, err error) {
	if hl, ok := holder.LookupByNode(h.NodeKey()); ok {
		existing := hl.(*Handle)
		existing.ref.Add(1)
		existing.nInflight.Add(1)
		return existing, true, nil
	}

	id := EncodeID(holder.AllocID())
	h.id.Store(id)
	holder.InsertByID(peer.HandleID(id), h)
	if existing, already := holder.InsertByNodeUnique(h.NodeKey(), h); already {
		// Lost a race the lookup above didn't see (e.g. a concurrent
		// install for the same node slipped in between the lookup and the
		// insert); undo the id insert and fold onto the winner instead.
		holder.RemoveByID(peer.HandleID(id), h)
		h.id.Store(InvalidID)

		ex := existing.(*Handle)
		ex.ref.Add(1)
		ex.nInflight.Add(1)
		return ex, true, nil
	}
	return h, false, nil
}

// Install resolves h against holder for h's node, attaching and linking it
// into holder's lookup trees under a freshly allocated id (spec.md §4.2).
// It is the single-lock-domain composition of Attach+InstallAttached, valid
// only when holder's lock alone is sufficient to guard both steps — the
// owner handle installing onto its first holder (owner-attach is exempt
// from the owner-lock requirement) or any other case where holder already
// is the node's owner peer. A non-owner handle whose node is owned by a
// *different* peer must go through InstallAcrossPeers instead, which phases
// the owner-lock and holder-lock critical sections separately per spec.md
// §4.3. If holder already holds a handle for the same node, h is left
// exactly as it was found — still private, never attached — and that
// existing handle is returned instead with existed=true; the caller must
// discard h via batch.HandleBatch.Destroy (Handle.DiscardPrivate), which is
// the only place ref is allowed to reach zero without a node destruction
// ever running (see DESIGN.md). Callers must hold holder's lock throughout,
// and h must not already be attached anywhere.
func Install(h *Handle, holder peer.Peer) (found *Handle, existed bool, err error) {
	if hl, ok := holder.LookupByNode(h.NodeKey()); ok {
		existing := hl.(*Handle)
		existing.ref.Add(1)
		existing.nInflight.Add(1)
		return existing, true, nil
	}

	if err := Attach(h, holder); err != nil {
		return nil, false, err
	}

	found, existed, err = InstallAttached(h, holder)
	if err != nil {
		return nil, false, err
	}
	if existed {
		detachAttach(h)
	}
	return found, existed, nil
}

// InstallAcrossPeers attaches and installs h — a private handle for a node
// owned by ownerPeer, a peer distinct from holder — following the phased
// discipline of spec.md §4.3's Inflight.Install: Attach runs under
// ownerPeer's lock alone; it is released before InstallAttached runs under
// holder's lock alone. The two critical sections never overlap, so this
// never holds both locks at once — unlike Install, it cannot be collapsed
// into a single critical section because holder is not h's node's owner
// peer, and spec.md §5 forbids mutating a node's handle list (what Attach
// does) under any lock but the owner's. If InstallAttached folds onto an
// existing handle for the same node, ownerPeer's lock is retaken briefly to
// undo the attach.
func InstallAcrossPeers(h *Handle, ownerPeer, holder peer.Peer) (found *Handle, existed bool, err error) {
	lockorder.Enter(lockorder.Owner)
	ownerPeer.Lock()
	err = Attach(h, holder)
	ownerPeer.Unlock()
	lockorder.Leave()
	if err != nil {
		return nil, false, err
	}

	lockorder.Enter(lockorder.Holder)
	holder.Lock()
	found, existed, err = InstallAttached(h, holder)
	holder.Unlock()
	lockorder.Leave()
	if err != nil {
		return nil, false, err
	}

	if existed {
		lockorder.Enter(lockorder.Owner)
		ownerPeer.Lock()
		detachAttach(h)
		ownerPeer.Unlock()
		lockorder.Leave()
	}
	return found, existed, nil
}

// Acquire takes an inflight reference on h. The owner handle always
// succeeds, even from a zero count: its validity is judged by the node's
// timestamp at commit time, not by a counter.
func Acquire(h *Handle) error {
	if h.IsOwner() {
		h.nInflight.Add(1)
		return nil
	}
	for {
		cur := h.nInflight.Load()
		if cur <= 0 {
			return ErrGone
		}
		if h.nInflight.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// Release drops one inflight reference taken by Acquire. Dropping the last
// reference triggers the owner or non-owner detach-and-maybe-destroy path
// described in spec.md §4.2, guarded by clock for assigning the node's
// final commit timestamp if this release is what drains the node.
func Release(h *Handle, clock peer.Clock) error {
	for {
		cur := h.nInflight.Load()
		if cur <= 0 {
			return ErrStale
		}
		if cur == 1 {
			return releaseLast(h, clock)
		}
		if h.nInflight.CompareAndSwap(cur, cur-1) {
			return nil
		}
	}
}

func releaseLast(h *Handle, clock peer.Clock) error {
	if h.IsOwner() {
		return releaseOwnerLast(h, clock)
	}
	return releaseNonOwnerLast(h, clock)
}

func releaseOwnerLast(h *Handle, clock peer.Clock) error {
	p := h.holderPeer()
	if p == nil {
		return ErrStale
	}
	lockorder.Enter(lockorder.Holder)
	p.Lock()
	defer func() { p.Unlock(); lockorder.Leave() }()

	cur := h.nInflight.Load()
	if cur != 1 {
		if cur <= 0 {
			return ErrStale
		}
		h.nInflight.Add(-1)
		return nil
	}
	h.nInflight.Store(0)

	n := h.node
	if n.Timestamp() == 0 {
		n.removeHandle(h)
		if n.HandleCount() == 0 {
			drained := commitDestruction(n, p, clock)
			finalizeDestruction(drained)
		}
	}
	return nil
}

func releaseNonOwnerLast(h *Handle, clock peer.Clock) error {
	p := h.holderPeer()
	if p == nil {
		return ErrStale
	}
	lockorder.Enter(lockorder.Holder)
	p.Lock()
	cur := h.nInflight.Load()
	if cur != 1 {
		if cur <= 0 {
			p.Unlock()
			lockorder.Leave()
			return ErrStale
		}
		h.nInflight.Add(-1)
		p.Unlock()
		lockorder.Leave()
		return nil
	}
	h.nInflight.Store(0)
	h.clearHolder()
	seqlock.Write(p.SeqCounter(), func() {
		p.RemoveByID(h.HandleID(), h)
		p.RemoveByNode(h.NodeKey(), h)
	})
	p.Unlock()
	lockorder.Leave()

	// Lock ordering (spec.md §5): we just released holder, now acquire
	// owner — never the reverse.
	n := h.node
	owner := n.Owner()
	ownerPeer := owner.holderPeer()

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
	return nil
}

// Destroy is the owner's explicit destruction request (spec.md §4.2
// trigger (a)): unlike Release reaching zero, it commits unconditionally,
// regardless of how many other handles remain attached or what the owner's
// own inflight count is.
func Destroy(owner *Handle, clock peer.Clock) error {
	if !owner.IsOwner() {
		return ErrPermission
	}
	if owner.node.Timestamp() != 0 {
		return ErrInProgress
	}
	p := owner.holderPeer()
	if p == nil {
		return ErrStale
	}
	lockorder.Enter(lockorder.Holder)
	p.Lock()
	n := owner.node
	if n.Timestamp() != 0 {
		p.Unlock()
		lockorder.Leave()
		return ErrInProgress
	}
	drained := commitDestruction(n, p, clock)
	p.Unlock()
	lockorder.Leave()
	finalizeDestruction(drained)
	return nil
}

// commitDestruction performs the shared core of node destruction described
// in spec.md §4.2: stages the timestamp to 1, detaches the owner (a no-op
// if some caller already did so), drains the remaining handles, assigns the
// final even commit timestamp from clock, and unlinks the owner from its
// own holder's trees. Callers must hold ownerPeer's lock (or pass nil if
// the owner was never installed anywhere, e.g. a node that never left its
// creator).
func commitDestruction(n *Node, ownerPeer peer.Peer, clock peer.Clock) []*Handle {
	n.setTimestamp(1)

	owner := n.Owner()
	n.removeHandle(owner)

	drained := make([]*Handle, len(n.handles))
	copy(drained, n.handles)
	n.handles = nil

	n.setTimestamp(clock.Next())

	owner.clearHolder()
	if ownerPeer != nil {
		seqlock.Write(ownerPeer.SeqCounter(), func() {
			ownerPeer.RemoveByID(owner.HandleID(), owner)
			ownerPeer.RemoveByNode(owner.NodeKey(), owner)
		})
	}
	metrics.NodesDestroyed.Inc()
	return drained
}

// finalizeDestruction runs the no-locks-held second phase: for every
// drained handle, take its holder's lock just long enough to clear the
// back-reference and unlink it from that holder's trees, then drop the
// node's attach hold on it.
func finalizeDestruction(drained []*Handle) {
	for _, h := range drained {
		p := h.holderPeer()
		if p == nil {
			continue
		}
		p.Lock()
		h.clearHolder()
		seqlock.Write(p.SeqCounter(), func() {
			p.RemoveByID(h.HandleID(), h)
			p.RemoveByNode(h.NodeKey(), h)
		})
		p.Unlock()
		h.ref.Add(-1)
	}
}

// FindByID resolves id on p. A hit is authoritative without retry (ids are
// never reused); a miss is retried under p's lock in case it raced a
// concurrent insert, per spec.md §4.2's lockless-read rules.
func FindByID(p peer.Peer, id uint64) (*Handle, error) {
	if hl, ok := p.LookupByID(peer.HandleID(id)); ok {
		return hl.(*Handle), nil
	}
	p.Lock()
	defer p.Unlock()
	if hl, ok := p.LookupByID(peer.HandleID(id)); ok {
		return hl.(*Handle), nil
	}
	return nil, ErrNotFound
}

// FindByNode resolves the handle p holds for key, if any. A hit from the
// lockless lookup is returned as is, with no refcount re-check; a miss is
// retried under p's lock in case it raced a concurrent insert.
func FindByNode(p peer.Peer, key peer.NodeKey) (*Handle, error) {
	if hl, ok := p.LookupByNode(key); ok {
		return hl.(*Handle), nil
	}
	p.Lock()
	defer p.Unlock()
	if hl, ok := p.LookupByNode(key); ok {
		return hl.(*Handle), nil
	}
	return nil, ErrNotFound
}
