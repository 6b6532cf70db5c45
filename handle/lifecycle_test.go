package handle

import (
	"testing"

	"github.com/opendz/bus1/internal/fake"
)

func newTestPeer() *fake.Peer {
	return fake.NewPeer(1, fake.NewPool())
}

// Scenario 1 from spec.md §8: a peer creates a node, installs the owner
// handle on itself, then destroys it via the installed id.
func TestHandle_CreateThenDestroyByID(t *testing.T) {
	p := newTestPeer()
	clock := fake.NewClock()

	n := NewNode()
	owner := n.Owner()
	p.Lock()
	found, existed, err := Install(owner, p)
	p.Unlock()
	if err != nil || existed || found != owner {
		t.Fatalf("Install: found=%v existed=%v err=%v", found, existed, err)
	}

	id := owner.ID()
	got, err := FindByID(p, id)
	if err != nil || got != owner {
		t.Fatalf("FindByID before destroy: got=%v err=%v", got, err)
	}

	if err := Destroy(owner, clock); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if _, err := FindByID(p, id); err != ErrNotFound {
		t.Fatalf("FindByID after destroy = %v, want ErrNotFound", err)
	}
	if ts := n.Timestamp(); ts == 0 || ts == 1 {
		t.Fatalf("node timestamp after destroy = %d, want a committed (even, >1) value", ts)
	}
}

func TestHandle_DestroyByNonOwnerIsRejected(t *testing.T) {
	p := newTestPeer()
	clock := fake.NewClock()

	n := NewNode()
	owner := n.Owner()
	p.Lock()
	Install(owner, p)
	p.Unlock()

	other := NewPrivate(n)
	if err := Destroy(other, clock); err != ErrPermission {
		t.Fatalf("Destroy by non-owner = %v, want ErrPermission", err)
	}
}

// Scenario 4 from spec.md §8: two concurrent installs race to attach a
// handle for the same node on the same peer; the loser folds onto the
// winner instead of being separately installed.
func TestHandle_InstallConflictFoldsOntoExisting(t *testing.T) {
	p := newTestPeer()

	n := NewNode()
	owner := n.Owner()
	p.Lock()
	Install(owner, p)
	p.Unlock()

	second := NewPrivate(n)
	p.Lock()
	found, existed, err := Install(second, p)
	p.Unlock()
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !existed || found != owner {
		t.Fatalf("Install conflict: found=%v existed=%v, want the existing owner handle", found, existed)
	}
	if second.ID() != InvalidID {
		t.Fatalf("loser handle should never have been installed, got id=%d", second.ID())
	}
	if !second.IsPrivate() {
		t.Fatalf("loser handle should remain private so it can be discarded via DiscardPrivate")
	}
}

func TestHandle_ReleaseLastInflightByOwnerDestroysEmptyNode(t *testing.T) {
	p := newTestPeer()
	clock := fake.NewClock()

	n := NewNode()
	owner := n.Owner()
	p.Lock()
	Install(owner, p)
	p.Unlock()

	if err := Release(owner, clock); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ts := n.Timestamp(); ts == 0 {
		t.Fatalf("node should be destroyed once its only handle releases, timestamp=0")
	}
	if _, err := FindByID(p, owner.ID()); err != ErrNotFound {
		t.Fatalf("owner should have been unlinked from its peer, err=%v", err)
	}
}

func TestHandle_ReleaseLastInflightByOwnerKeepsNodeAliveWhileOthersAttached(t *testing.T) {
	p := newTestPeer()
	q := fake.NewPeer(2, fake.NewPool())
	clock := fake.NewClock()

	n := NewNode()
	owner := n.Owner()
	p.Lock()
	Install(owner, p)
	p.Unlock()

	other := NewPrivate(n)
	q.Lock()
	Install(other, q)
	q.Unlock()

	if err := Release(owner, clock); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ts := n.Timestamp(); ts != 0 {
		t.Fatalf("node should stay alive while other still attached, timestamp=%d", ts)
	}
	if n.HandleCount() != 1 {
		t.Fatalf("handle count = %d, want 1 (owner detached, other remains)", n.HandleCount())
	}

	if err := Release(other, clock); err != nil {
		t.Fatalf("Release other: %v", err)
	}
	if ts := n.Timestamp(); ts == 0 {
		t.Fatalf("node should be destroyed once the last handle releases")
	}
}

func TestHandle_AcquireAfterDetachFailsOnZeroedInflight(t *testing.T) {
	n := NewNode()
	h := NewPrivate(n)
	h.nInflight.Store(0) // simulates a handle already detached/released

	if err := Acquire(h); err != ErrGone {
		t.Fatalf("Acquire on a zeroed handle = %v, want ErrGone", err)
	}
}

func TestHandle_DoubleDestroyIsRejected(t *testing.T) {
	p := newTestPeer()
	clock := fake.NewClock()

	n := NewNode()
	owner := n.Owner()
	p.Lock()
	Install(owner, p)
	p.Unlock()

	if err := Destroy(owner, clock); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := Destroy(owner, clock); err != ErrInProgress {
		t.Fatalf("second Destroy = %v, want ErrInProgress", err)
	}
}
