// Package fake provides reference implementations of the external
// contracts declared in package peer (Peer, Pool, Clock), used by this
// module's own tests. Peer's lookup trees are backed by a copy-on-write
// snapshot swapped through an atomic.Pointer, so that LookupByID and
// LookupByNode are genuinely race-free without taking the lock, matching
// the lockless-read guarantee spec.md §4.2 asks of a host peer.
package fake

import (
	"sync"
	"sync/atomic"

	"github.com/opendz/bus1/internal/seqlock"
	"github.com/opendz/bus1/peer"
)

type snapshot struct {
	byID   map[peer.HandleID]peer.HandleLike
	byNode map[peer.NodeKey]peer.HandleLike
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byID:   make(map[peer.HandleID]peer.HandleLike),
		byNode: make(map[peer.NodeKey]peer.HandleLike),
	}
}

func (s *snapshot) clone() *snapshot {
	out := &snapshot{
		byID:   make(map[peer.HandleID]peer.HandleLike, len(s.byID)),
		byNode: make(map[peer.NodeKey]peer.HandleLike, len(s.byNode)),
	}
	for k, v := range s.byID {
		out.byID[k] = v
	}
	for k, v := range s.byNode {
		out.byNode[k] = v
	}
	return out
}

// Peer is a test-double host peer: one lock, one sequence counter, and a
// pair of lookup trees exposed only through package peer's verb-based
// contract.
type Peer struct {
	id   peer.ID
	mu   sync.Mutex
	seq  seqlock.Counter
	snap atomic.Pointer[snapshot]

	nextID uint64
	pool   peer.Pool
	live   atomic.Int32
}

// NewPeer creates an empty peer identified by id, backed by pool.
func NewPeer(id peer.ID, pool peer.Pool) *Peer {
	p := &Peer{id: id, pool: pool}
	p.snap.Store(emptySnapshot())
	p.live.Store(1)
	return p
}

func (p *Peer) Lock()   { p.mu.Lock() }
func (p *Peer) Unlock() { p.mu.Unlock() }

// ID returns this peer's stable identity. Not part of the peer.Peer
// contract (a Ref from Acquire is the only identity a generic caller gets),
// but convenient for test and CLI code that already knows it is holding a
// concrete *fake.Peer and wants a peer.ID to key quota accounting with.
func (p *Peer) ID() peer.ID { return p.id }

type pinnedRef struct {
	p *Peer
}

func (r *pinnedRef) ID() peer.ID { return r.p.id }
func (r *pinnedRef) Release()    { r.p.live.Add(-1) }

// Acquire returns nil once the peer has been marked shut down via Shutdown.
func (p *Peer) Acquire() peer.Ref {
	for {
		cur := p.live.Load()
		if cur <= 0 {
			return nil
		}
		if p.live.CompareAndSwap(cur, cur+1) {
			return &pinnedRef{p: p}
		}
	}
}

// Shutdown marks the peer as no longer acquirable.
func (p *Peer) Shutdown() { p.live.Store(0) }

func (p *Peer) SeqCounter() *seqlock.Counter { return &p.seq }

func (p *Peer) LookupByID(id peer.HandleID) (peer.HandleLike, bool) {
	h, ok := p.snap.Load().byID[id]
	return h, ok
}

func (p *Peer) LookupByNode(key peer.NodeKey) (peer.HandleLike, bool) {
	h, ok := p.snap.Load().byNode[key]
	return h, ok
}

func (p *Peer) InsertByID(id peer.HandleID, h peer.HandleLike) {
	next := p.snap.Load().clone()
	next.byID[id] = h
	p.snap.Store(next)
}

func (p *Peer) InsertByNodeUnique(key peer.NodeKey, h peer.HandleLike) (peer.HandleLike, bool) {
	cur := p.snap.Load()
	if existing, ok := cur.byNode[key]; ok {
		return existing, true
	}
	next := cur.clone()
	next.byNode[key] = h
	p.snap.Store(next)
	return nil, false
}

func (p *Peer) RemoveByID(id peer.HandleID, h peer.HandleLike) bool {
	cur := p.snap.Load()
	if cur.byID[id] != h {
		return false
	}
	next := cur.clone()
	delete(next.byID, id)
	p.snap.Store(next)
	return true
}

func (p *Peer) RemoveByNode(key peer.NodeKey, h peer.HandleLike) bool {
	cur := p.snap.Load()
	if cur.byNode[key] != h {
		return false
	}
	next := cur.clone()
	delete(next.byNode, key)
	p.snap.Store(next)
	return true
}

func (p *Peer) SnapshotByID() []peer.HandleLike {
	cur := p.snap.Load()
	out := make([]peer.HandleLike, 0, len(cur.byID))
	for _, h := range cur.byID {
		out = append(out, h)
	}
	return out
}

func (p *Peer) AllocID() uint64 {
	id := p.nextID
	p.nextID++
	return id
}

func (p *Peer) Pool() peer.Pool { return p.pool }
