package quota

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/opendz/bus1/common"
)

// Registry is the global uid -> User map: one User record shared by every
// peer acting on behalf of the same uid, so charges made from different
// peers draw down the same budget (original_source/ipc/bus1/user.c keeps
// this as a single xarray keyed by kuid).
type Registry struct {
	mu      sync.Mutex
	users   map[uint32]*User
	initial [numKinds]int64
}

// NewRegistry creates a registry that hands out the given per-kind initial
// budgets (messages, handles, fds) to every uid seen for the first time.
func NewRegistry(messages, handles, fds int64) *Registry {
	return &Registry{
		users:   make(map[uint32]*User),
		initial: [numKinds]int64{messages, handles, fds},
	}
}

// Get returns the shared User record for uid, creating it with the
// registry's initial budget on first use.
func (r *Registry) Get(uid uint32) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[uid]
	if !ok {
		u = newUser(uid, r.initial)
		r.users[uid] = u
	}
	return u
}

// GetMemoryFootprint reports the approximate memory retained by every
// tracked user's per-peer usage map, grounded on the same
// common.MemoryFootprintProvider convention the rest of this module's
// containers report through.
func (r *Registry) GetMemoryFootprint() *common.MemoryFootprint {
	r.mu.Lock()
	defer r.mu.Unlock()

	mf := common.NewMemoryFootprint(unsafe.Sizeof(*r))
	for uid, u := range r.users {
		u.mu.Lock()
		child := common.NewMemoryFootprint(uintptr(len(u.perPeer)) * unsafe.Sizeof(Stats{}))
		u.mu.Unlock()
		mf.AddChild(strconv.FormatUint(uint64(uid), 10), child)
	}
	return mf
}
