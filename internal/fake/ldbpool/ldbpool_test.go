package ldbpool

import "testing"

func TestPool_WriteReadRelease(t *testing.T) {
	p, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	iov := [][]byte{[]byte("hello "), []byte("world")}
	s, err := p.WriteKVec(0, iov, len(iov), 11)
	if err != nil {
		t.Fatalf("WriteKVec: %v", err)
	}

	got, err := p.Read(s)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("Read = %q, want %q", got, "hello world")
	}

	p.ReleaseKernel(s)
	if _, err := p.Read(s); err == nil {
		t.Fatalf("expected an error reading a released slice")
	}
}

func TestPool_WriteKVecAssignsDistinctSlices(t *testing.T) {
	p, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	s1, _ := p.WriteKVec(0, [][]byte{[]byte("a")}, 1, 1)
	s2, _ := p.WriteKVec(0, [][]byte{[]byte("b")}, 1, 1)
	if s1 == s2 {
		t.Fatalf("expected distinct slices, got identical tokens")
	}
}
