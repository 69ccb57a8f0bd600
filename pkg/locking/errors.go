package locking

import "errors"

// Acquisition failures. They are never returned directly from an accessor;
// they surface through the Err method of the failed guard the accessor
// produced. Callers that only need a yes/no answer can use Valid instead.
var (
	// ErrAuthRefused means the caller's Auth vetoed the acquisition because
	// the locks the goroutine already holds make it a deadlock risk.
	ErrAuthRefused = errors.New("authorization refused")

	// ErrWouldBlock means the acquisition was requested with block=false and
	// could not be granted without waiting.
	ErrWouldBlock = errors.New("lock would block")

	// ErrBroken means the container uses the Broken strategy; no acquisition
	// on it ever succeeds.
	ErrBroken = errors.New("lock is broken")

	// ErrReadOnly means a write-mode acquisition was attempted on a container
	// using the ReadOnly strategy.
	ErrReadOnly = errors.New("lock admits no writers")

	// ErrClosed means the container has been closed and no longer grants
	// any locks.
	ErrClosed = errors.New("container is closed")
)
