package handle

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/opendz/bus1/peer"
)

// TestHandle_InstallAgainstMockPeer exercises Install against a strict
// gomock.Controller expectation set instead of the hand-written fake, to
// pin down exactly which Peer methods Install calls and in what order: two
// misses on LookupByNode (Install's own pre-check, then InstallAttached's),
// one id allocation, then one insert into each tree.
func TestHandle_InstallAgainstMockPeer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mp := peer.NewMockPeer(ctrl)

	n := NewNode()
	owner := n.Owner()

	gomock.InOrder(
		mp.EXPECT().LookupByNode(gomock.Any()).Return(nil, false).Times(2),
		mp.EXPECT().AllocID().Return(uint64(1)),
		mp.EXPECT().InsertByID(gomock.Any(), gomock.Any()),
		mp.EXPECT().InsertByNodeUnique(gomock.Any(), gomock.Any()).Return(nil, false),
	)

	found, existed, err := Install(owner, mp)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if existed {
		t.Fatalf("Install: unexpected existed=true")
	}
	if found != owner {
		t.Fatalf("Install: found handle is not the owner passed in")
	}
	if owner.ID() != EncodeID(1) {
		t.Errorf("owner id = %d, want %d", owner.ID(), EncodeID(1))
	}
}

// TestHandle_InstallFoldsOntoMockedConflict exercises the conflict branch:
// LookupByNode reports an existing handle for the same node, so Install
// must leave h untouched and return the winner with existed=true.
func TestHandle_InstallFoldsOntoMockedConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mp := peer.NewMockPeer(ctrl)

	n := NewNode()
	owner := n.Owner()
	winner := NewPrivate(n)
	winner.nInflight.Store(1)

	mp.EXPECT().LookupByNode(gomock.Any()).Return(winner, true)

	found, existed, err := Install(owner, mp)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !existed || found != winner {
		t.Fatalf("Install: existed=%v found=%v, want existed=true found=winner", existed, found)
	}
	if !owner.IsPrivate() {
		t.Errorf("owner should remain private after losing the conflict check")
	}
}
