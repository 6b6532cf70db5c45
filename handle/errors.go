package handle

import "github.com/opendz/bus1/common"

// Error kinds exposed to callers, per spec.md §7. Modeled as immutable
// string-backed sentinels (common.ConstError) rather than a custom error
// struct hierarchy, matching the teacher's common/const_error.go: callers
// compare with errors.Is, and there is nothing but a stable identity to
// carry per error.
const (
	// ErrNotFound: id does not refer to any handle on this peer.
	ErrNotFound = common.ConstError("handle: not found")

	// ErrGone: handle refers to a destroyed node. Delivered as an INVALID
	// id from Inflight.Commit, never as an error return from a send.
	ErrGone = common.ConstError("handle: node is gone")

	// ErrStale: caller released a handle they hold no user-reference on.
	ErrStale = common.ConstError("handle: stale release")

	// ErrInProgress: destruction already underway for this node.
	ErrInProgress = common.ConstError("handle: destruction already in progress")

	// ErrPermission: destroy requested by a non-owner.
	ErrPermission = common.ConstError("handle: not the owner")

	// ErrInvalidArgument: malformed id or request.
	ErrInvalidArgument = common.ConstError("handle: invalid argument")
)
