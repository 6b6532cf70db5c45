// Package ldbpool is a peer.Pool backed by a LevelDB instance on disk, so a
// long-running peer's payload slices survive a process restart instead of
// living only in the in-memory fake.Pool. Grounded on the teacher's
// backend/multimap/ldb.MultiMap (key/value pairs addressed by a serialized
// key), adapted here from a multimap over caller-supplied keys to a single
// counter-keyed blob store, since a pool has no notion of key beyond "the
// slice handed back at write time".
package ldbpool

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/opendz/bus1/common"
	"github.com/opendz/bus1/peer"
)

// Pool implements peer.Pool against an on-disk LevelDB instance.
type Pool struct {
	db     *leveldb.DB
	nextID atomic.Uint64
}

// Open opens (creating if necessary) a LevelDB instance rooted at path.
func Open(path string) (*Pool, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Pool{db: db}, nil
}

// Close releases the underlying LevelDB handle.
func (p *Pool) Close() error {
	return p.db.Close()
}

// slice is the peer.Slice this pool hands back from WriteKVec: the
// big-endian key the payload was stored under.
type slice struct {
	key [8]byte
}

// WriteKVec materializes niov iovecs into a fresh row keyed by a
// monotonically increasing counter, persisted immediately.
func (p *Pool) WriteKVec(offset int, iov [][]byte, niov int, length int) (peer.Slice, error) {
	buf := make([]byte, 0, length)
	for i := 0; i < niov && i < len(iov); i++ {
		buf = append(buf, iov[i]...)
	}

	var s slice
	binary.BigEndian.PutUint64(s.key[:], p.nextID.Add(1))
	if err := p.db.Put(s.key[:], buf, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// ReleaseKernel deletes the row backing s. A slice that is not one of this
// pool's own is ignored, matching the teacher's tolerant Close/Flush no-ops
// on already-released state.
func (p *Pool) ReleaseKernel(s peer.Slice) {
	ds, ok := s.(slice)
	if !ok {
		return
	}
	_ = p.db.Delete(ds.key[:], nil)
}

// Read returns the bytes stored for s without releasing it, for tools that
// want to inspect a payload still referenced by a queue entry.
func (p *Pool) Read(s peer.Slice) ([]byte, error) {
	ds, ok := s.(slice)
	if !ok {
		return nil, leveldb.ErrNotFound
	}
	return p.db.Get(ds.key[:], nil)
}

// GetMemoryFootprint reports the constant in-process overhead of this pool;
// the bulk of its storage lives in LevelDB's own on-disk files, outside
// this process's heap.
func (p *Pool) GetMemoryFootprint() *common.MemoryFootprint {
	return common.NewMemoryFootprint(unsafe.Sizeof(*p))
}
