// Package transfer implements one send's handle-transfer protocol:
// Transfer resolves a sender's list of id-or-allocate requests into a
// handle batch (spec.md §3/§4.3); one Inflight per destination then carries
// that batch across in a three-phase install. Grounded on the kernel's
// bus1_transaction/bus1_factory split (original_source/ipc/bus1), adapted
// so that what was manual refcount choreography there is, here, just "keep
// a sender-side pin alive until every destination has durably attached its
// own copy, then drop it."
package transfer

import (
	"github.com/opendz/bus1/batch"
	"github.com/opendz/bus1/handle"
	"github.com/opendz/bus1/internal/lockorder"
	"github.com/opendz/bus1/peer"
	"github.com/opendz/bus1/quota"
)

// Transfer is the sender-side half of one send: a handle batch carrying one
// resolved entry per requested id (spec.md §3), plus a counter of how many
// of those entries were fresh allocations. Payload holds the raw message
// bytes; each destination's Inflight copies them into its own peer's pool
// during Install (spec.md §4.1's "payload owned by the originating peer's
// pool" becomes, per destination, a materialization into *that*
// destination's own pool rather than a single shared allocation).
type Transfer struct {
	Payload []byte

	carried *batch.HandleBatch
	pins    []*handle.Handle // parallel to carried; nil where nothing to release
	nNew    int

	quota    *quota.User
	senderID peer.ID
}

// Init starts a transfer of payload.
func Init(payload []byte) *Transfer {
	return &Transfer{Payload: payload, carried: batch.NewHandleBatch()}
}

// Instantiate resolves rawIDs against sender, in order, appending one
// carried private handle per id to t's batch (spec.md §4.3). A request
// asking for fresh allocation (spec.md §6's ALLOCATE flag) creates a new
// node and installs its owner on sender before carrying it onward; a
// request naming an existing id is resolved via a by-id lookup and
// acquired (pinned) on sender so the node cannot be destroyed out from
// under the transfer before Destroy releases the pin. A request naming a
// destroyed or missing handle resolves to a nil batch entry rather than an
// error: spec.md §4.3 requires these to become INVALID silently rather
// than failing the whole batch.
//
// If q is non-nil and at least one entry resolved, Instantiate charges one
// "messages" unit for the send and one "handles" unit per resolved (non-nil)
// entry against q on behalf of senderID, per spec.md §4.5's send-time charge. A quota failure aborts
// Instantiate immediately with ErrQuotaExceeded; the caller must still call
// Destroy to unwind whatever was resolved and charged before the failure
// (spec.md §7's rollback-on-instantiate-error policy).
func (t *Transfer) Instantiate(sender peer.Peer, senderID peer.ID, q *quota.User, rawIDs []uint64) error {
	t.pins = make([]*handle.Handle, 0, len(rawIDs))
	t.quota = q
	t.senderID = senderID

	resolved := 0
	for _, rawID := range rawIDs {
		allocate, err := handle.DecodeRequest(rawID)
		if err != nil {
			return err
		}

		if allocate {
			n := handle.NewNode()
			owner := n.Owner()
			lockorder.Enter(lockorder.Sender)
			sender.Lock()
			_, _, err := handle.Install(owner, sender)
			sender.Unlock()
			lockorder.Leave()
			if err != nil {
				return err
			}
			t.carried.Add(handle.NewPrivate(n))
			t.pins = append(t.pins, nil)
			t.nNew++
			resolved++
			continue
		}

		found, err := handle.FindByID(sender, rawID)
		if err != nil {
			t.carried.Add(nil)
			t.pins = append(t.pins, nil)
			continue
		}
		if err := handle.Acquire(found); err != nil {
			t.carried.Add(nil)
			t.pins = append(t.pins, nil)
			continue
		}
		t.carried.Add(handle.NewPrivate(found.Node()))
		t.pins = append(t.pins, found)
		resolved++
	}

	if q == nil || resolved == 0 {
		return nil
	}
	if err := q.Charge(quota.Messages, senderID, 1); err != nil {
		return ErrQuotaExceeded
	}
	if err := q.Charge(quota.Handles, senderID, int64(resolved)); err != nil {
		q.Uncharge(quota.Messages, senderID, 1)
		return ErrQuotaExceeded
	}
	return nil
}

// Destroy releases every sender-side inflight reference Instantiate
// pinned and discards any carried handle that never made it onto a
// destination (batch.HandleBatch.Destroy is a no-op for an already-attached
// handle, which is what makes it safe to call this once every destination's
// Inflight.Install has run, or early as a rollback after a failed or
// partial Instantiate — spec.md §7). The quota charged by Instantiate is
// left in place here: Inflight.Commit refunds the "handles" unit of an entry
// it reports as InvalidID (spec.md §4.5's "committed at receive"), and the
// "messages" unit is not refunded anywhere in this package.
func (t *Transfer) Destroy(clock peer.Clock) error {
	for i, pin := range t.pins {
		if pin == nil {
			continue
		}
		t.pins[i] = nil
		if err := handle.Release(pin, clock); err != nil && err != handle.ErrStale {
			return err
		}
	}
	t.carried.Destroy()
	return nil
}
