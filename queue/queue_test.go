package queue

import (
	"testing"

	"github.com/opendz/bus1/peer"
)

func TestQueue_LinkSingleCommittedBecomesFront(t *testing.T) {
	q := New()
	e := &Entry{Seq: 2}
	if becameReadable := q.Link(e); !becameReadable {
		t.Fatalf("linking the only committed entry should expose the front")
	}
	if q.Peek() != e {
		t.Fatalf("front = %v, want %v", q.Peek(), e)
	}
}

func TestQueue_LinkStagingBlocksFront(t *testing.T) {
	q := New()
	e := &Entry{Seq: 3} // odd: staging
	if becameReadable := q.Link(e); becameReadable {
		t.Fatalf("linking a staging entry must not expose the front")
	}
	if q.Peek() != nil {
		t.Fatalf("front should be nil while blocked by staging, got %v", q.Peek())
	}
}

func TestQueue_StagingBlocksLaterCommitted(t *testing.T) {
	// Scenario 6 from spec.md §8: staging at seq=3, committed at seq=5.
	q := New()
	staging := &Entry{Seq: 3}
	committed := &Entry{Seq: 5}
	q.Link(staging)
	if becameReadable := q.Link(committed); becameReadable {
		t.Fatalf("linking seq=5 behind a staging seq=3 must not expose the front")
	}
	if q.Peek() != nil {
		t.Fatalf("front must be nil: staging blocks seq=5 from observation")
	}

	// Relink seq=3 -> seq=4 exposes seq=4 as front.
	if becameReadable := q.Relink(staging, 4); !becameReadable {
		t.Fatalf("relinking the blocking entry to an even seq must expose the front")
	}
	if q.Peek() != staging || q.Peek().Seq != 4 {
		t.Fatalf("front = %+v, want seq=4 entry", q.Peek())
	}
}

func TestQueue_UnlinkAdvancesOverCommittedSuccessor(t *testing.T) {
	q := New()
	first := &Entry{Seq: 2}
	second := &Entry{Seq: 4}
	q.Link(first)
	q.Link(second)

	if q.Peek() != first {
		t.Fatalf("front = %v, want first", q.Peek())
	}
	if becameReadable := q.Unlink(first); becameReadable {
		t.Fatalf("queue was already readable; unlinking its front isn't a new transition")
	}
	if q.Peek() != second {
		t.Fatalf("front = %v, want second", q.Peek())
	}
}

func TestQueue_UnlinkExposesReadableAfterStagingRemoved(t *testing.T) {
	q := New()
	staging := &Entry{Seq: 3}
	committed := &Entry{Seq: 5}
	q.Link(staging)
	q.Link(committed)

	if q.Peek() != nil {
		t.Fatalf("front should be blocked")
	}
	if becameReadable := q.Unlink(staging); !becameReadable {
		t.Fatalf("removing the blocking staging entry should expose seq=5")
	}
	if q.Peek() != committed {
		t.Fatalf("front = %v, want committed", q.Peek())
	}
}

func TestQueue_UnlinkLeavesFrontNilWhenSuccessorStillStaging(t *testing.T) {
	q := New()
	blocking := &Entry{Seq: 3}
	secondStaging := &Entry{Seq: 5}
	q.Link(blocking)
	q.Link(secondStaging)

	if becameReadable := q.Unlink(blocking); becameReadable {
		t.Fatalf("a staging successor must keep the queue blocked")
	}
	if q.Peek() != nil {
		t.Fatalf("front should remain nil, got %v", q.Peek())
	}
}

func TestQueue_RelinkRequiresStagingEntry(t *testing.T) {
	q := New()
	e := &Entry{Seq: 2}
	q.Link(e)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("relinking a committed entry should panic")
		}
	}()
	q.Relink(e, 6)
}

func TestQueue_FlushDrainsAndReleasesSlices(t *testing.T) {
	q := New()
	q.Link(&Entry{Seq: 2, Slice: "a"})
	q.Link(&Entry{Seq: 4, Slice: "b"})

	pool := &recordingPool{}
	drained := q.Flush(pool)
	if len(drained) != 2 {
		t.Fatalf("drained %d entries, want 2", len(drained))
	}
	if len(pool.released) != 2 {
		t.Fatalf("released %d slices, want 2", len(pool.released))
	}
	if q.Len() != 0 || q.Peek() != nil {
		t.Fatalf("queue should be empty after flush")
	}
}

type recordingPool struct {
	released []peer.Slice
}

func (p *recordingPool) WriteKVec(offset int, iov [][]byte, niov int, length int) (peer.Slice, error) {
	return nil, nil
}

func (p *recordingPool) ReleaseKernel(s peer.Slice) {
	p.released = append(p.released, s)
}
