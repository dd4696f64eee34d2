// ABOUTME: Named repository error type and caller-contract sentinels.
// ABOUTME: Transport errors are always wrapped and tagged with the repo identity.
package repository

import (
	"errors"
	"fmt"
)

// Caller-contract sentinels, raised before any I/O is attempted.
var (
	// ErrEmptyID means a required document id argument was blank.
	ErrEmptyID = errors.New("empty document id")
	// ErrNotAllowed means the repository forbids the attempted operation.
	ErrNotAllowed = errors.New("operation not allowed")
	// ErrExists means create found a document already at the target id.
	ErrExists = errors.New("document already exists")
	// ErrParentUnbound means a parent-scoped repository was used before
	// its parent id was bound.
	ErrParentUnbound = errors.New("parent id not bound")
	// ErrNoOfflineQueue means an offline write was requested on a
	// repository without an attached queue.
	ErrNoOfflineQueue = errors.New("offline queue not configured")
)

// Error is the named error every repository operation fails with. Repo
// identifies which collection wrapper failed; Err carries the cause and
// supports errors.Is/As.
type Error struct {
	Repo string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("repository %s: %s: %v", e.Repo, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
