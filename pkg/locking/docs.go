// Package locking couples shared mutable state with its synchronization so
// that neither can be used without the other.
//
// # Overview
//
// A [Container] holds a value of any type and only hands it out through
// guards: a [WriteGuard] for exclusive mutation, a [ReadGuard] for shared
// reading. Taking a guard acquires the container's lock; releasing the last
// share of the guard releases it. There is no way to reach the value while
// skipping the lock, and no way to hold the lock while losing track of the
// value.
//
// An [Auth] is the second half of the design. One is created per goroutine
// and passed to the *Auth accessors; it counts the locks the goroutine
// currently holds and refuses any new acquisition that could park the
// goroutine behind a writer which may, in turn, be waiting on something the
// goroutine holds. Refusal is not an error condition: the accessor returns a
// failed guard and the caller decides whether to back off and retry.
//
// A [MultiLock] extends the same protection to batches. A goroutine that
// claims it exclusively can lock any number of containers in one go, because
// the claim keeps every other goroutine's multi-routed access parked at the
// gate, leaving the containers idle for the authorization check.
//
// # Strategies and policies
//
// Containers choose one of four lock flavors at construction ([ReadWrite],
// [ReadOnly], [WriteOnly], [Broken]); authorization objects choose one of
// four rule sets ([PolicyReadWrite], [PolicyReadOnly], [PolicyWriteOnly],
// [PolicyBroken]). The two axes are independent: a read-only Auth can be
// used against read-write containers to guarantee a goroutine never writes
// anywhere. [Strategy.DefaultPolicy] gives the natural pairing.
//
// # Failure model
//
// Acquisitions never panic and never return bare errors; they return a guard
// to test with Valid, carrying one of [ErrAuthRefused], [ErrWouldBlock],
// [ErrBroken], [ErrReadOnly] or [ErrClosed] in Err. Structural misuse —
// releasing a lock that is not held, unbalanced authorization counters,
// closing or copying a container that cannot be locked — is a programmer bug
// and panics.
//
// # Invariants
//
//   - A read-write lock never has an active writer and readers at the same
//     time, except that the goroutine holding a write claim on a [MultiLock]
//     may hold read passes on the same gate.
//   - Once a writer has published intent on a read-write lock, no new reader
//     is admitted until that writer has run and released.
//   - The registrations recorded in an [Auth] always equal the live valid
//     guards acquired through it.
//   - An acquisition of a container that nobody holds and nobody is waiting
//     for is always authorized.
//   - A non-blocking write request is always authorized; it cannot wait, so
//     it cannot deadlock.
//   - The two escapes above never lift a policy's type rules: [PolicyReadOnly]
//     refuses every write and [PolicyBroken] refuses everything.
//
// # Goroutine locality
//
// Auth objects and guard shares belong to one goroutine. Neither is
// synchronized internally, because both describe what a single goroutine is
// doing; sharing them across goroutines is a data race by construction.
// Containers and MultiLocks are the shared, fully synchronized objects.
package locking
