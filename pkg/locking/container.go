package locking

import (
	"fmt"
	"sync/atomic"
)

// Container binds a value to a lock so that the value is unreachable except
// through a guard. The zero value is not usable; construct with NewContainer
// or NewContainerWith.
//
// The accessors never block the caller with an error to handle: they always
// return a guard, and a guard that could not take its locks reports
// Valid() == false with the reason in Err().
type Container[T any] struct {
	value    T
	strategy Strategy
	locks    lockState
	closed   atomic.Bool
}

// NewContainer creates a container protecting value with the default
// ReadWrite strategy.
func NewContainer[T any](value T) *Container[T] {
	return NewContainerWith(value, ReadWrite)
}

// NewContainerWith creates a container protecting value with the given lock
// strategy.
func NewContainerWith[T any](value T, strategy Strategy) *Container[T] {
	return &Container[T]{
		value:    value,
		strategy: strategy,
		locks:    newLockState(strategy),
	}
}

// Strategy returns the lock strategy fixed at construction.
func (c *Container[T]) Strategy() Strategy {
	return c.strategy
}

// NewAuth returns a fresh authorization object whose policy mirrors this
// container's strategy. The Auth is not tied to this container; it should be
// used for every acquisition the owning goroutine makes.
func (c *Container[T]) NewAuth() *Auth {
	return NewAuth(c.strategy.DefaultPolicy())
}

// GetWrite acquires the container in write mode with no authorization.
func (c *Container[T]) GetWrite(block bool) *WriteGuard[T] {
	return c.writeGuard(nil, nil, block)
}

// GetRead acquires the container in read mode with no authorization.
func (c *Container[T]) GetRead(block bool) *ReadGuard[T] {
	return c.readGuard(nil, nil, block)
}

// GetWriteAuth acquires the container in write mode, routed through the
// caller's authorization.
func (c *Container[T]) GetWriteAuth(auth *Auth, block bool) *WriteGuard[T] {
	return c.writeGuard(nil, auth, block)
}

// GetReadAuth acquires the container in read mode, routed through the
// caller's authorization.
func (c *Container[T]) GetReadAuth(auth *Auth, block bool) *ReadGuard[T] {
	return c.readGuard(nil, auth, block)
}

// GetWriteMulti acquires the container in write mode through the multi-lock
// gate: the multi-lock is taken in read mode first (blocking while another
// goroutine holds its write claim), then the container's own lock.
func (c *Container[T]) GetWriteMulti(multi *MultiLock, auth *Auth, block bool) *WriteGuard[T] {
	return c.writeGuard(multi, auth, block)
}

// GetReadMulti is GetWriteMulti in read mode.
func (c *Container[T]) GetReadMulti(multi *MultiLock, auth *Auth, block bool) *ReadGuard[T] {
	return c.readGuard(multi, auth, block)
}

func (c *Container[T]) writeGuard(multi *MultiLock, auth *Auth, block bool) *WriteGuard[T] {
	if c.closed.Load() {
		return &WriteGuard[T]{state: failedGuardState[T](ErrClosed)}
	}
	return &WriteGuard[T]{state: newGuardState(&c.value, c.locks, multi.gate(), auth, false, block)}
}

func (c *Container[T]) readGuard(multi *MultiLock, auth *Auth, block bool) *ReadGuard[T] {
	if c.closed.Load() {
		return &ReadGuard[T]{state: failedGuardState[T](ErrClosed)}
	}
	return &ReadGuard[T]{state: newGuardState(&c.value, c.locks, multi.gate(), auth, true, block)}
}

// Close waits for exclusive access and then retires the container: every
// later accessor returns a failed guard with ErrClosed. Close enforces the
// invariant that the value is never torn down while a guard still reaches
// it. A container whose strategy cannot grant a write lock (ReadOnly,
// Broken) cannot be closed; attempting it panics.
func (c *Container[T]) Close() {
	g := c.GetWrite(true)
	if !g.Valid() {
		panic(fmt.Sprintf("locking: closing a container that cannot be write-locked: %v", g.Err()))
	}
	c.closed.Store(true)
	g.Release()
}

// CopyFrom locks src for reading and c for writing, in that order, and
// copies the protected value across. src stays locked until c's lock is
// decided, matching the assignment semantics of the original container.
// Failure to take either lock panics; there is no recoverable outcome.
//
// Deprecated: prefer taking the two guards explicitly, which leaves the
// failure handling to the caller.
func (c *Container[T]) CopyFrom(src *Container[T]) {
	if src == c {
		return
	}
	rd := src.GetRead(true)
	if !rd.Valid() {
		panic(fmt.Sprintf("locking: copy source cannot be read-locked: %v", rd.Err()))
	}
	defer rd.Release()

	wr := c.GetWrite(true)
	if !wr.Valid() {
		panic(fmt.Sprintf("locking: copy destination cannot be write-locked: %v", wr.Err()))
	}
	defer wr.Release()

	*wr.Value() = rd.Value()
}
