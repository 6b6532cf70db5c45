// Package quota implements the per-uid resource accounting described in
// spec.md §4.5, grounded on the kernel's bus1_user (original_source/ipc/
// bus1/user.c): every peer acting on behalf of the same uid shares one
// budget, charged down as that uid's messages occupy queues across the
// bus and credited back as they are consumed or dropped.
package quota

import (
	"strconv"
	"sync"

	"github.com/opendz/bus1/common"
	"github.com/opendz/bus1/metrics"
	"github.com/opendz/bus1/peer"
)

// ErrQuotaExceeded is returned by Charge when granting it would violate the
// self-throttle rule.
const ErrQuotaExceeded = common.ConstError("quota: exceeded")

// Kind names one of the three independent budgets spec.md §4.5 tracks:
// queued messages, installed handles, and passed file descriptors. Each is
// charged and throttled separately — spending heavily against one never
// borrows headroom from another.
type Kind int

const (
	Messages Kind = iota
	Handles
	Fds

	numKinds = int(Fds) + 1
)

func (k Kind) String() string {
	switch k {
	case Messages:
		return "messages"
	case Handles:
		return "handles"
	case Fds:
		return "fds"
	default:
		return "unknown"
	}
}

// Stats is one user's resource usage on a single peer, one count per Kind.
type Stats struct {
	Messages int64
	Handles  int64
	Fds      int64
}

func (s *Stats) field(k Kind) *int64 {
	switch k {
	case Messages:
		return &s.Messages
	case Handles:
		return &s.Handles
	case Fds:
		return &s.Fds
	default:
		panic("quota: invalid kind")
	}
}

// budget is one Kind's global allowance for a User.
type budget struct {
	total     int64
	remaining int64
}

// User is the per-uid resource accounting record shared across every peer
// that uid touches. It tracks three independent budgets (Kind), each
// throttled by the same rule against its own per-peer share.
type User struct {
	mu      sync.Mutex
	uid     uint32
	budgets [numKinds]budget
	perPeer map[peer.ID]*Stats
}

func newUser(uid uint32, totals [numKinds]int64) *User {
	u := &User{uid: uid, perPeer: make(map[peer.ID]*Stats)}
	for k := 0; k < numKinds; k++ {
		u.budgets[k] = budget{total: totals[k], remaining: totals[k]}
	}
	return u
}

func (u *User) statsLocked(p peer.ID) *Stats {
	s, ok := u.perPeer[p]
	if !ok {
		s = &Stats{}
		u.perPeer[p] = s
	}
	return s
}

// Charge attempts to account for c additional units of kind k on p for this
// user. Per spec.md §4.5's self-throttle rule: charging c requires kind k's
// globally remaining budget to be at least share + 2*c, where share is this
// peer's own current usage of kind k — a user may never let one peer's
// queue alone consume more than half of what is left across the whole bus,
// for any one of the three budgets.
func (u *User) Charge(k Kind, p peer.ID, c int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	b := &u.budgets[k]
	share := *u.statsLocked(p).field(k)
	if b.remaining < share+2*c {
		metrics.QuotaRejections.WithLabelValues(strconv.FormatUint(uint64(u.uid), 10)).Inc()
		return ErrQuotaExceeded
	}
	b.remaining -= c
	*u.statsLocked(p).field(k) += c
	return nil
}

// Uncharge returns c units of kind k previously charged on p back to the
// user's remaining budget, e.g. once a queue entry is consumed, dropped, or
// flushed.
func (u *User) Uncharge(k Kind, p peer.ID, c int64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.budgets[k].remaining += c
	f := u.statsLocked(p).field(k)
	*f -= c
	if *f < 0 {
		*f = 0
	}
}

// StatsFor reports a snapshot of this user's usage on p, across all three
// budgets.
func (u *User) StatsFor(p peer.ID) Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return *u.statsLocked(p)
}

// Remaining reports the user's current globally remaining budget for kind
// k.
func (u *User) Remaining(k Kind) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.budgets[k].remaining
}
