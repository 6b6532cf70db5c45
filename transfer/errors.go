package transfer

import "github.com/opendz/bus1/common"

const (
	// ErrQuotaExceeded: the sender's user's remaining self-throttle budget
	// cannot cover this charge (spec.md §4.5).
	ErrQuotaExceeded = common.ConstError("transfer: quota exceeded")

	// ErrOutOfMemory: the destination's slice pool could not satisfy the
	// payload allocation (Inflight.Install's call to peer.Pool.WriteKVec).
	ErrOutOfMemory = common.ConstError("transfer: out of memory")
)
