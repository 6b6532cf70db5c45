package batch

import "testing"

func TestList_AppendAcrossChunkBoundary(t *testing.T) {
	l := New[int]()
	for i := 0; i < chunkSize+5; i++ {
		l.Append(i)
	}
	if l.Len() != chunkSize+5 {
		t.Fatalf("Len = %d, want %d", l.Len(), chunkSize+5)
	}
	for i := 0; i < l.Len(); i++ {
		if got := l.At(i); got != i {
			t.Fatalf("At(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestList_ForEachVisitsInOrder(t *testing.T) {
	l := New[string]()
	l.Append("a")
	l.Append("b")
	l.Append("c")

	var seen []string
	l.ForEach(func(_ int, v string) { seen = append(seen, v) })
	if len(seen) != 3 || seen[0] != "a" || seen[2] != "c" {
		t.Fatalf("ForEach order = %v", seen)
	}
}

func TestList_IteratorVisitsInAppendOrderThenStops(t *testing.T) {
	l := New[int]()
	for i := 0; i < chunkSize+2; i++ {
		l.Append(i * 10)
	}

	it := l.Iterator()
	for i := 0; i < chunkSize+2; i++ {
		if !it.HasNext() {
			t.Fatalf("HasNext false too early at i=%d", i)
		}
		if got := it.Next(); got != i*10 {
			t.Fatalf("Next() = %d, want %d", got, i*10)
		}
	}
	if it.HasNext() {
		t.Fatalf("HasNext true after exhausting the list")
	}
}
