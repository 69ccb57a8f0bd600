package locking

import (
	"sync"
	"sync/atomic"
)

// rdState admits readers and nothing else. The atomic counter is the entire
// lock state, so acquisition never blocks and needs no mutex.
type rdState struct {
	readers int64
}

func (s *rdState) acquire(auth *Auth, read, block, test bool) (int, error) {
	if !read {
		return -1, ErrReadOnly
	}
	if !registerAuth(auth, true, false, false, false, test) {
		return -1, ErrAuthRefused
	}
	n := atomic.AddInt64(&s.readers, 1)
	if n <= 0 {
		panic("locking: reader count overflow")
	}
	return int(n), nil
}

func (s *rdState) release(auth *Auth, read bool) (int, error) {
	if !read {
		return -1, ErrReadOnly
	}
	releaseAuth(auth, read)
	n := atomic.AddInt64(&s.readers, -1)
	if n < 0 {
		panic("locking: read release without a held read lock")
	}
	return int(n), nil
}

// wrState admits a single holder and makes no reader/writer distinction.
// Requests reach the Auth as writes, because a granted hold locks out
// everyone.
type wrState struct {
	mu     sync.Mutex
	cond   *sync.Cond
	locked bool
}

func newWRState() *wrState {
	s := &wrState{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *wrState) acquire(auth *Auth, read, block, test bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !registerAuth(auth, false, block, s.locked, s.locked, test) {
		return -1, ErrAuthRefused
	}
	if !block && s.locked {
		if !test {
			releaseAuth(auth, false)
		}
		return -1, ErrWouldBlock
	}
	for s.locked {
		s.cond.Wait()
	}
	s.locked = true
	return 0, nil
}

func (s *wrState) release(auth *Auth, read bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	releaseAuth(auth, false)
	if !s.locked {
		panic("locking: release of an unlocked write-only lock")
	}
	s.locked = false
	s.cond.Signal()
	return 0, nil
}

// brokenState fails every operation. Containers built with it only ever
// produce failed guards.
type brokenState struct{}

func (brokenState) acquire(auth *Auth, read, block, test bool) (int, error) {
	return -1, ErrBroken
}

func (brokenState) release(auth *Auth, read bool) (int, error) {
	return -1, ErrBroken
}
