package locking

import "fmt"

// guardState is the single hold behind every share of a guard. It exists in
// one of two shapes: a valid hold (value non-nil, locks held) or a failed one
// (value nil, err set, nothing held).
//
// The share counter is deliberately not atomic. A hold belongs to the
// goroutine that acquired it, and shares must never cross goroutines, so
// counting them needs no synchronization.
type guardState[T any] struct {
	value     *T
	locks     lockState
	multi     lockState
	auth      *Auth
	read      bool
	lockCount int
	shares    int
	err       error
}

// newGuardState performs the two-step acquisition behind every accessor:
// first the multi-lock gate in read mode (authorization peeked, never
// recorded), then the container's own lock. If the container lock fails, the
// multi-lock is unwound with a nil auth, reflecting that it was never
// registered.
func newGuardState[T any](value *T, locks, multi lockState, auth *Auth, read, block bool) *guardState[T] {
	g := &guardState[T]{read: read, shares: 1}
	if multi != nil {
		if _, err := multi.acquire(auth, true, block, true); err != nil {
			g.err = fmt.Errorf("multi-lock gate: %w", err)
			return g
		}
	}
	n, err := locks.acquire(auth, read, block, false)
	if err != nil {
		if multi != nil {
			multi.release(nil, true)
		}
		g.err = err
		return g
	}
	g.value = value
	g.locks = locks
	g.multi = multi
	g.auth = auth
	g.lockCount = n
	return g
}

// failedGuardState builds a hold that was refused before any lock was taken.
func failedGuardState[T any](err error) *guardState[T] {
	return &guardState[T]{err: err}
}

func (g *guardState[T]) valid() bool {
	return g.value != nil
}

// retain adds one share to a valid hold.
func (g *guardState[T]) retain() {
	if g.value != nil {
		g.shares++
	}
}

// drop removes one share; the last share releases the container lock and
// then the multi-lock gate. Dropping a failed hold releases nothing.
func (g *guardState[T]) drop() {
	if g.value == nil {
		return
	}
	g.shares--
	if g.shares > 0 {
		return
	}
	g.locks.release(g.auth, g.read)
	if g.multi != nil {
		g.multi.release(nil, true)
	}
	g.value = nil
	g.locks = nil
	g.multi = nil
	g.auth = nil
}

// WriteGuard represents a held write lock on a Container. As long as at
// least one share of the guard is live, the goroutine that acquired it has
// exclusive access to the contained value.
//
// Always check Valid (or Err) before using the guard: accessors return a
// failed guard instead of an error. Call Release when done; deferring it
// next to the accessor call is the usual pattern. Guards and their clones
// must stay on the goroutine that acquired them.
type WriteGuard[T any] struct {
	state    *guardState[T]
	released bool
}

// Valid reports whether the acquisition succeeded and the guard still holds
// the lock.
func (g *WriteGuard[T]) Valid() bool {
	return !g.released && g.state.valid()
}

// Err returns why the acquisition failed, or nil for a guard that was valid
// at construction.
func (g *WriteGuard[T]) Err() error {
	return g.state.err
}

// Value returns the protected value, or nil for a failed or released guard.
func (g *WriteGuard[T]) Value() *T {
	if g.released {
		return nil
	}
	return g.state.value
}

// Set overwrites the protected value. It panics on a failed or released
// guard, the same bug as writing through a lock that is not held.
func (g *WriteGuard[T]) Set(v T) {
	p := g.Value()
	if p == nil {
		panic("locking: Set through an invalid write guard")
	}
	*p = v
}

// LockCount returns the reader count observed when the lock was granted
// (0 for writes). Mostly useful for debugging.
func (g *WriteGuard[T]) LockCount() int {
	return g.state.lockCount
}

// Clone returns a new share of the same hold. The lock is released only
// after every share has been released. Cloning a released guard is a bug.
func (g *WriteGuard[T]) Clone() *WriteGuard[T] {
	if g.released {
		panic("locking: clone of a released guard")
	}
	g.state.retain()
	return &WriteGuard[T]{state: g.state}
}

// Release drops this share. The container is unlocked when the last share is
// released. Releasing the same share again, or releasing a failed guard, is
// a no-op.
func (g *WriteGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.state.drop()
}

// ReadGuard represents a held read lock on a Container. The value is exposed
// by copy; the original stays reachable only through write guards.
//
// The sharing and release rules are those of WriteGuard.
type ReadGuard[T any] struct {
	state    *guardState[T]
	released bool
}

// Valid reports whether the acquisition succeeded and the guard still holds
// the lock.
func (g *ReadGuard[T]) Valid() bool {
	return !g.released && g.state.valid()
}

// Err returns why the acquisition failed, or nil for a guard that was valid
// at construction.
func (g *ReadGuard[T]) Err() error {
	return g.state.err
}

// Value returns a copy of the protected value. It returns the zero value for
// a failed or released guard; check Valid first when that is ambiguous.
func (g *ReadGuard[T]) Value() T {
	if g.released || !g.state.valid() {
		var zero T
		return zero
	}
	return *g.state.value
}

// LockCount returns the reader count observed when the lock was granted.
func (g *ReadGuard[T]) LockCount() int {
	return g.state.lockCount
}

// Clone returns a new share of the same hold.
func (g *ReadGuard[T]) Clone() *ReadGuard[T] {
	if g.released {
		panic("locking: clone of a released guard")
	}
	g.state.retain()
	return &ReadGuard[T]{state: g.state}
}

// Release drops this share. The container is unlocked when the last share is
// released.
func (g *ReadGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.state.drop()
}
