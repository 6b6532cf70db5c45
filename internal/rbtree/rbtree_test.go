package rbtree

import "testing"

func lessUint64(a, b uint64) bool { return a < b }

func TestTree_InsertAndLeftmost(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	a, b, c := 1, 2, 3
	tr.Insert(5, &a)
	tr.Insert(3, &b)
	tr.Insert(7, &c)

	key, val, ok := tr.Leftmost()
	if !ok || key != 3 || val != &b {
		t.Fatalf("unexpected leftmost: key=%d val=%p ok=%v", key, val, ok)
	}
	if tr.Len() != 3 {
		t.Errorf("len = %d, want 3", tr.Len())
	}
}

func TestTree_TiesOrderRight(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	a, b, c := 1, 2, 3
	tr.Insert(5, &a)
	tr.Insert(5, &b)
	tr.Insert(5, &c)

	// All three share key 5; b and c, inserted later, must come after a.
	_, v1, _ := tr.NextAfter(5, &a)
	if v1 != &b {
		t.Errorf("successor of a = %p, want %p", v1, &b)
	}
	_, v2, _ := tr.NextAfter(5, &b)
	if v2 != &c {
		t.Errorf("successor of b = %p, want %p", v2, &c)
	}
	_, _, ok := tr.NextAfter(5, &c)
	if ok {
		t.Errorf("c should have no successor")
	}
}

func TestTree_RemoveByIdentity(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	a, b := 1, 2
	tr.Insert(5, &a)
	tr.Insert(5, &b)

	if !tr.Remove(5, &a) {
		t.Fatalf("failed to remove a")
	}
	if tr.Len() != 1 {
		t.Fatalf("len = %d, want 1", tr.Len())
	}
	key, val, ok := tr.Leftmost()
	if !ok || key != 5 || val != &b {
		t.Errorf("unexpected remaining entry: key=%d val=%p", key, val)
	}
	if tr.Remove(5, &a) {
		t.Errorf("removing already-removed entry should fail")
	}
}

func TestTree_InsertUnique(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	a, b := 1, 2
	if existing, existed := tr.InsertUnique(10, &a); existed {
		t.Fatalf("unexpected existing entry: %v", existing)
	}
	existing, existed := tr.InsertUnique(10, &b)
	if !existed || existing != &a {
		t.Fatalf("InsertUnique should return the original entry, got %p existed=%v", existing, existed)
	}
	if tr.Len() != 1 {
		t.Errorf("len = %d, want 1", tr.Len())
	}
}

func TestTree_GetAndRemoveKey(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	a := 1
	tr.Insert(42, &a)
	if v, ok := tr.Get(42); !ok || v != &a {
		t.Fatalf("Get failed: v=%p ok=%v", v, ok)
	}
	if v, ok := tr.RemoveKey(42); !ok || v != &a {
		t.Fatalf("RemoveKey failed: v=%p ok=%v", v, ok)
	}
	if _, ok := tr.Get(42); ok {
		t.Errorf("entry should be gone")
	}
}

func TestTree_ForEachAndSnapshotOrdered(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	vals := []int{9, 1, 5}
	for _, v := range vals {
		v := v
		tr.Insert(uint64(v), &v)
	}
	var seen []uint64
	tr.ForEach(func(k uint64, v *int) { seen = append(seen, k) })
	want := []uint64{1, 5, 9}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("ForEach order[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}

	keys := tr.SnapshotKeys()
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("SnapshotKeys[%d] = %d, want %d", i, keys[i], want[i])
		}
	}
}

func TestTree_GetMemoryFootprintScalesWithEntryCount(t *testing.T) {
	tr := New[uint64, *int](lessUint64)
	empty := tr.GetMemoryFootprint().Value()

	a, b := 1, 2
	tr.Insert(1, &a)
	tr.Insert(2, &b)
	full := tr.GetMemoryFootprint().Value()

	if full <= empty {
		t.Errorf("footprint did not grow with entries: empty=%d full=%d", empty, full)
	}
}
