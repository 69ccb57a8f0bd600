package locking

import "fmt"

// Policy selects the deadlock-prevention rules an Auth enforces. The policy
// is a property of the caller, not of any container: an Auth with one policy
// can be used against containers of any strategy.
type Policy int

const (
	// PolicyReadWrite allows the goroutine to hold multiple read locks or a
	// single write lock, but not both, while the contested resources are in
	// use. This is the policy most programs want.
	PolicyReadWrite Policy = iota

	// PolicyReadOnly allows multiple read locks and never authorizes a write.
	PolicyReadOnly

	// PolicyWriteOnly treats every held lock as a write lock: the goroutine
	// may hold at most one lock on a resource that is in use.
	PolicyWriteOnly

	// PolicyBroken authorizes nothing.
	PolicyBroken
)

func (p Policy) String() string {
	switch p {
	case PolicyReadWrite:
		return "read-write"
	case PolicyReadOnly:
		return "read-only"
	case PolicyWriteOnly:
		return "write-only"
	case PolicyBroken:
		return "broken"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Auth tracks the locks a single goroutine currently holds and decides, on
// every acquisition, whether granting it could deadlock the goroutine.
//
// Create one Auth per goroutine and pass it to the container accessors that
// take one. An Auth must never be shared between goroutines: its counters are
// deliberately unsynchronized because they describe the holdings of exactly
// one goroutine.
//
// Two requests are authorized no matter what the goroutine already holds:
// an acquisition of a resource that is completely idle (nobody holds it and
// no writer is waiting on it), and a non-blocking write request. Neither can
// make this goroutine wait on a resource another goroutine holds, so neither
// can close a wait cycle. These escapes do not override the policy's own
// type rules: PolicyReadOnly still refuses every write and PolicyBroken
// refuses everything.
type Auth struct {
	policy  Policy
	reading int64
	writing int64
}

// NewAuth creates an authorization object enforcing the given policy.
func NewAuth(policy Policy) *Auth {
	return &Auth{policy: policy}
}

// Policy returns the policy this Auth enforces.
func (a *Auth) Policy() Policy {
	return a.policy
}

// ReadingCount returns the number of read locks currently registered.
func (a *Auth) ReadingCount() int64 {
	return a.reading
}

// WritingCount returns the number of write locks currently registered. Under
// PolicyWriteOnly every held lock counts here, whatever mode was requested.
func (a *Auth) WritingCount() int64 {
	return a.writing
}

// LockAllowed predicts whether a request of the given mode would be
// authorized against a contested resource (one that is in use and has a
// writer waiting). It has no side effects. A true result is not a guarantee:
// the lock itself may still refuse or block.
func (a *Auth) LockAllowed(read, block bool) bool {
	return a.test(read, block, true, true)
}

// register decides whether the acquisition is authorized and, unless test is
// set, records it. lockOut reports a writer already waiting on the target;
// inUse reports any lock currently held on the target. Exactly one release
// must follow every successful non-test register.
func (a *Auth) register(read, block, lockOut, inUse, test bool) bool {
	if !a.test(read, block, lockOut, inUse) {
		return false
	}
	if test {
		return true
	}
	switch a.policy {
	case PolicyReadOnly:
		a.reading++
	case PolicyWriteOnly:
		a.writing++
	default:
		if read {
			a.reading++
		} else {
			a.writing++
		}
	}
	return true
}

// test applies the policy rules without touching the counters.
func (a *Auth) test(read, block, lockOut, inUse bool) bool {
	switch a.policy {
	case PolicyReadWrite:
		if !block && !read {
			// a non-blocking write can never wait, so it can never deadlock
			return true
		}
		if a.writing > 0 && inUse {
			return false
		}
		if a.reading > 0 && !read && inUse {
			return false
		}
		if (a.reading > 0 || a.writing > 0) && lockOut {
			// a held lock plus a waiting writer is the classic cycle: the
			// writer may be waiting on something this goroutine holds
			return false
		}
		return true

	case PolicyReadOnly:
		if !read {
			return false
		}
		return a.reading == 0 || !lockOut

	case PolicyWriteOnly:
		if !block && !read {
			// a non-blocking write can never wait, so it can never deadlock
			return true
		}
		return a.writing == 0 || !inUse

	default:
		return false
	}
}

// release undoes one register of the given mode. The counters are checked
// individually but never against each other: the idle and non-blocking-write
// escapes make mixed holdings legitimate.
func (a *Auth) release(read bool) {
	switch a.policy {
	case PolicyReadOnly:
		if !read {
			panic("locking: write release on a read-only authorization")
		}
		if a.reading == 0 {
			panic("locking: release without a registered read lock")
		}
		a.reading--
	case PolicyWriteOnly:
		if a.writing == 0 {
			panic("locking: release without a registered lock")
		}
		a.writing--
	case PolicyBroken:
		panic("locking: release on a broken authorization")
	default:
		if read {
			if a.reading == 0 {
				panic("locking: release without a registered read lock")
			}
			a.reading--
		} else {
			if a.writing == 0 {
				panic("locking: release without a registered write lock")
			}
			a.writing--
		}
	}
}
