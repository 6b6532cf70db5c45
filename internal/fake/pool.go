package fake

import (
	"sync"

	"github.com/opendz/bus1/peer"
)

// Pool is a test-double peer.Pool: WriteKVec copies its iovecs into a plain
// byte slice, ReleaseKernel just records what was released.
type Pool struct {
	mu       sync.Mutex
	Released []peer.Slice
}

func NewPool() *Pool { return &Pool{} }

func (p *Pool) WriteKVec(offset int, iov [][]byte, niov int, length int) (peer.Slice, error) {
	buf := make([]byte, 0, length)
	for i := 0; i < niov && i < len(iov); i++ {
		buf = append(buf, iov[i]...)
	}
	return buf, nil
}

func (p *Pool) ReleaseKernel(s peer.Slice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Released = append(p.Released, s)
}
