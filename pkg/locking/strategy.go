package locking

import "fmt"

// Strategy selects the lock flavor a Container enforces. It is fixed at
// construction.
type Strategy int

const (
	// ReadWrite admits any number of readers or a single writer. Once a
	// writer has published intent, new readers queue behind it. This is the
	// default strategy.
	ReadWrite Strategy = iota

	// ReadOnly admits any number of readers and refuses every writer. The
	// lock never blocks.
	ReadOnly

	// WriteOnly admits one holder at a time and treats every request as a
	// write for deadlock-prevention purposes.
	WriteOnly

	// Broken refuses everything. Useful for exercising failure paths.
	Broken
)

func (s Strategy) String() string {
	switch s {
	case ReadWrite:
		return "read-write"
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case Broken:
		return "broken"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// DefaultPolicy returns the authorization policy that mirrors the strategy's
// own admission rules.
func (s Strategy) DefaultPolicy() Policy {
	switch s {
	case ReadOnly:
		return PolicyReadOnly
	case WriteOnly:
		return PolicyWriteOnly
	case Broken:
		return PolicyBroken
	default:
		return PolicyReadWrite
	}
}

// lockState is the uniform contract the four lock flavors implement.
//
// acquire returns the post-increment reader count for a granted read and 0
// for a granted write. Every acquisition consults the Auth before touching
// the lock; test requests peek at the authorization without recording it.
// block=false turns a wait into an immediate failure.
//
// release returns the remaining reader count for a read release and 0 for a
// write release.
type lockState interface {
	acquire(auth *Auth, read, block, test bool) (int, error)
	release(auth *Auth, read bool) (int, error)
}

// newLockState builds the lock state for a strategy.
func newLockState(s Strategy) lockState {
	switch s {
	case ReadWrite:
		return newRWState()
	case ReadOnly:
		return &rdState{}
	case WriteOnly:
		return newWRState()
	case Broken:
		return brokenState{}
	default:
		panic(fmt.Sprintf("locking: unknown strategy %v", s))
	}
}

// registerAuth funnels an acquisition through the caller's Auth. A nil Auth
// authorizes everything.
func registerAuth(a *Auth, read, block, lockOut, inUse, test bool) bool {
	if a == nil {
		return true
	}
	return a.register(read, block, lockOut, inUse, test)
}

// releaseAuth undoes a registration. A nil Auth holds nothing to undo.
func releaseAuth(a *Auth, read bool) {
	if a != nil {
		a.release(read)
	}
}
