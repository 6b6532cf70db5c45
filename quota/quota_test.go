package quota

import "testing"

// Scenario 5 from spec.md §8: a user's queued load on one peer cannot
// exceed half of their globally remaining budget, for a given resource
// kind.
func TestUser_ChargeEnforcesSelfThrottle(t *testing.T) {
	r := NewRegistry(100, 100, 100)
	u := r.Get(42)
	const peerA = 1

	if err := u.Charge(Messages, peerA, 40); err != nil {
		t.Fatalf("Charge(40): %v", err)
	}
	// remaining=60, share on peerA=40; charging another 15 needs
	// remaining(60) >= share(40) + 2*15(30) = 70, which fails.
	if err := u.Charge(Messages, peerA, 15); err != ErrQuotaExceeded {
		t.Fatalf("Charge(15) = %v, want ErrQuotaExceeded", err)
	}
	// but a smaller charge that keeps the inequality satisfied succeeds.
	if err := u.Charge(Messages, peerA, 5); err != nil {
		t.Fatalf("Charge(5): %v", err)
	}
}

func TestUser_BudgetsAreIndependentPerKind(t *testing.T) {
	r := NewRegistry(100, 100, 100)
	u := r.Get(3)
	const peerA = 1

	if err := u.Charge(Messages, peerA, 40); err != nil {
		t.Fatalf("Charge(Messages, 40): %v", err)
	}
	// Messages' remaining budget (60) would throttle another 40-unit
	// charge, but Handles hasn't been touched at all: its own budget is
	// untouched by Messages' spending.
	if err := u.Charge(Handles, peerA, 40); err != nil {
		t.Fatalf("Charge(Handles, 40) should not be affected by Messages spending: %v", err)
	}
	if got := u.Remaining(Messages); got != 60 {
		t.Fatalf("Remaining(Messages) = %d, want 60", got)
	}
	if got := u.Remaining(Handles); got != 60 {
		t.Fatalf("Remaining(Handles) = %d, want 60", got)
	}
}

func TestUser_SpreadingAcrossPeersAvoidsThrottle(t *testing.T) {
	r := NewRegistry(100, 100, 100)
	u := r.Get(7)

	if err := u.Charge(Messages, 1, 40); err != nil {
		t.Fatalf("Charge on peer 1: %v", err)
	}
	// A different peer starts with share=0, so the same-size charge that
	// would be throttled on peer 1 again succeeds here.
	if err := u.Charge(Messages, 2, 20); err != nil {
		t.Fatalf("Charge on peer 2: %v", err)
	}
	if got := u.Remaining(Messages); got != 40 {
		t.Fatalf("Remaining(Messages) = %d, want 40", got)
	}
}

func TestUser_UnchargeRestoresBudget(t *testing.T) {
	r := NewRegistry(100, 100, 100)
	u := r.Get(1)

	if err := u.Charge(Handles, 1, 30); err != nil {
		t.Fatalf("Charge: %v", err)
	}
	u.Uncharge(Handles, 1, 30)
	if got := u.Remaining(Handles); got != 100 {
		t.Fatalf("Remaining(Handles) after Uncharge = %d, want 100", got)
	}
	if got := u.StatsFor(1).Handles; got != 0 {
		t.Fatalf("StatsFor(1).Handles = %d, want 0", got)
	}
}

func TestRegistry_SameUidSharesOneUser(t *testing.T) {
	r := NewRegistry(50, 50, 50)
	if r.Get(9) != r.Get(9) {
		t.Fatalf("Get should return the same *User for the same uid")
	}
}

func TestRegistry_GetMemoryFootprintGrowsWithTrackedPeers(t *testing.T) {
	r := NewRegistry(100, 100, 100)
	empty := r.GetMemoryFootprint().Total()

	u := r.Get(1)
	_ = u.Charge(Messages, 1, 5)
	_ = u.Charge(Messages, 2, 5)
	full := r.GetMemoryFootprint().Total()

	if full <= empty {
		t.Errorf("footprint did not grow after charging two peers: empty=%d full=%d", empty, full)
	}
}
