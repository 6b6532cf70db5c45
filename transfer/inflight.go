package transfer

import (
	"github.com/opendz/bus1/handle"
	"github.com/opendz/bus1/peer"
	"github.com/opendz/bus1/queue"
	"github.com/opendz/bus1/quota"
)

// inflightEntry tracks one destination-side slot, parallel to Transfer's
// carried batch: either a handle already installed on dest for the same
// node (found, not pending), or a fresh private clone still waiting on
// Install's owner-lock/holder-lock phases, or nil once its entry has been
// dropped (node gone, or the corresponding Transfer entry was nil to begin
// with).
type inflightEntry struct {
	h       *handle.Handle
	pending bool
	owner   peer.Peer

	// wasCharged mirrors whether Transfer.Instantiate charged a "handles"
	// unit for this slot, so Commit knows whether a failed delivery owes a
	// refund.
	wasCharged bool
}

// Inflight carries one destination's share of a Transfer's batch through
// the three-phase install described in spec.md §4.3: Instantiate resolves
// each entry against dest (finding an existing handle or cloning a fresh
// private one); Install attaches and links every fresh clone, locking each
// entry's actual owner peer and then dest in two disjoint critical
// sections; Commit finalizes the staged queue entry and reports the
// resulting ids.
type Inflight struct {
	dest    peer.Peer
	q       *queue.Queue
	entry   *queue.Entry
	entries []inflightEntry
	payload []byte

	quota    *quota.User
	senderID peer.ID
}

// NewInflight pairs a destination peer with the queue its entries land on.
func NewInflight(dest peer.Peer, q *queue.Queue) *Inflight {
	return &Inflight{dest: dest, q: q}
}

// Instantiate resolves tr's carried batch against dest. spec.md §4.3's
// n_new_local bookkeeping (skipping the owner-lock phase when dest already
// is a fresh node's owner peer) is not modeled: every fresh clone goes
// through the same owner-lock/holder-lock path in Install regardless,
// trading one avoidable double lock/unlock of the same peer for a single
// non-diverging code path. A node already installed on dest is found and
// acquired in place; otherwise a fresh private handle bound to the same
// node is cloned, to be attached and installed during Install.
func (inf *Inflight) Instantiate(tr *Transfer) {
	n := tr.carried.Len()
	inf.entries = make([]inflightEntry, n)
	inf.quota = tr.quota
	inf.senderID = tr.senderID
	inf.payload = tr.Payload

	tr.carried.ForEach(func(i int, sent *handle.Handle) {
		if sent == nil {
			return
		}
		inf.entries[i].wasCharged = true

		node := sent.Node()
		if found, err := handle.FindByNode(inf.dest, sent.NodeKey()); err == nil {
			if handle.Acquire(found) == nil {
				inf.entries[i].h = found
				return
			}
		}
		inf.entries[i].h = handle.NewPrivate(node)
		inf.entries[i].pending = true
		inf.entries[i].owner = node.Owner().HolderPeer()
	})
}

// Install attaches and links every still-pending entry onto the
// destination under stagingSeq (odd: unobservable until Commit), following
// the phased lock discipline of spec.md §4.3: each pending entry's owner
// peer is locked alone to run Attach, then the destination is locked alone
// to run InstallAttached (handle.InstallAcrossPeers) — never requiring both
// locks at once, which is exactly what makes attaching a non-owner handle
// safe against a concurrent Release/Destroy/Flush racing on the owner peer
// (a destination-lock-only attach does not have that guarantee). Install
// also materializes the transfer's payload into dest's own pool (spec.md
// §4.1), reporting ErrOutOfMemory if dest's pool cannot satisfy the
// allocation. It reports whether this link made the destination's queue
// newly readable (always false for a staging entry, kept for symmetry with
// queue.Queue.Link).
func (inf *Inflight) Install(stagingSeq uint64) (becameReadable bool, err error) {
	if stagingSeq&1 == 0 {
		panic("transfer: staging sequence must be odd")
	}

	slice, err := inf.dest.Pool().WriteKVec(0, [][]byte{inf.payload}, 1, len(inf.payload))
	if err != nil {
		return false, ErrOutOfMemory
	}

	for i := range inf.entries {
		e := &inf.entries[i]
		if !e.pending {
			continue
		}
		if e.owner == nil {
			// The node's owner peer is no longer reachable (e.g. flushed
			// away concurrently): drop the entry, matching the ordinary
			// ErrGone outcome Attach itself would have reported.
			e.h = nil
			e.pending = false
			continue
		}

		found, existed, err := handle.InstallAcrossPeers(e.h, e.owner, inf.dest)
		if err != nil {
			if err == handle.ErrGone {
				e.h = nil
				e.pending = false
				continue
			}
			return false, err
		}
		if existed {
			e.h = found
		}
		e.pending = false
	}

	inf.entry = &queue.Entry{Seq: stagingSeq, Slice: slice}
	becameReadable = inf.q.Link(inf.entry)
	return becameReadable, nil
}

// Commit finalizes this destination's queue entry at the transaction's
// real commit sequence seq (always even) and converts every still-live
// entry's inflight reference into a reported id, written back in request
// order. Per the ordering rule in spec.md §4.3, an entry's id is only valid
// if its node was still alive when the send was ordered: node timestamp 0
// (still alive), or a destruction timestamp strictly after seq (destroyed
// only after this send was ordered). An entry that is invalid — or was
// dropped during Install — reports handle.InvalidID and, if it had been
// charged by Transfer.Instantiate, refunds its "handles" unit to the
// sender's quota.User (spec.md §4.5's "committed at receive": an entry that
// actually lands keeps its charge, one that doesn't gets it back).
//
// It also reports whether committing this entry exposed the destination's
// front for the first time.
func (inf *Inflight) Commit(seq uint64) (ids []uint64, becameReadable bool) {
	becameReadable = inf.q.Relink(inf.entry, seq)

	ids = make([]uint64, len(inf.entries))
	for i := range inf.entries {
		e := &inf.entries[i]
		valid := false
		if e.h != nil {
			nodeTS := e.h.Node().Timestamp()
			valid = nodeTS == 0 || nodeTS > seq
		}

		if valid {
			ids[i] = e.h.ID()
			continue
		}
		ids[i] = handle.InvalidID
		if e.wasCharged && inf.quota != nil {
			inf.quota.Uncharge(quota.Handles, inf.senderID, 1)
		}
	}
	return ids, becameReadable
}
