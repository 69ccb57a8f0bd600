package locking

import "sync"

// rwState is the reader/writer lock behind the ReadWrite strategy and the
// multi-lock. A master mutex guards all counters; readers and writers park on
// separate condition variables so a write release can wake exactly the queues
// that need it.
//
// Writer priority: the moment a writer publishes intent (writerWaiting),
// new readers stop being admitted until that writer has run and released.
// Subsequent writers line up behind the first on readWait, because that is
// the channel a write release broadcasts on.
//
// theWriter remembers which Auth holds the current write lock. If that same
// Auth asks for a read, the request is treated as if the lock were idle and
// granted without waiting. That is what lets a goroutine holding the
// multi-lock's write claim keep passing the multi-lock's read gate while it
// collects container locks.
type rwState struct {
	mu        sync.Mutex
	readWait  *sync.Cond
	writeWait *sync.Cond

	readers        int
	readersWaiting int
	writer         bool
	writerWaiting  bool
	theWriter      *Auth
}

func newRWState() *rwState {
	s := &rwState{}
	s.readWait = sync.NewCond(&s.mu)
	s.writeWait = sync.NewCond(&s.mu)
	return s
}

func (s *rwState) acquire(auth *Auth, read, block, test bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writerReads := auth != nil && s.theWriter == auth && read

	lockOut := s.writerWaiting
	inUse := s.writer || s.readers > 0
	if writerReads {
		lockOut, inUse = false, false
	}
	if !registerAuth(auth, read, block, lockOut, inUse, test) {
		return -1, ErrAuthRefused
	}

	mustBlock := s.writer || s.writerWaiting || (!read && s.readers > 0)
	if !writerReads && !block && mustBlock {
		if !test {
			releaseAuth(auth, read)
		}
		return -1, ErrWouldBlock
	}

	if read {
		s.readersWaiting++
		// the Auth is expected to have refused the caller if it already
		// holds a read lock here while a writer is waiting
		if !writerReads {
			for s.writer || s.writerWaiting {
				s.readWait.Wait()
			}
		}
		s.readersWaiting--
		s.readers++
		if !(writerReads || (!s.writer && !s.writerWaiting)) || s.readers <= 0 {
			panic("locking: reader admitted alongside an active writer")
		}
		return s.readers, nil
	}

	// wait until the caller is first in line for writing before publishing
	// intent; earlier writers block on writeWait below
	s.readersWaiting++
	for s.writerWaiting {
		s.readWait.Wait()
	}
	s.readersWaiting--
	s.writerWaiting = true
	for s.writer || s.readers > 0 {
		s.writeWait.Wait()
	}
	s.writerWaiting = false
	s.writer = true
	s.theWriter = auth
	return 0, nil
}

func (s *rwState) release(auth *Auth, read bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	releaseAuth(auth, read)
	if read {
		if s.readers <= 0 {
			panic("locking: read release without a held read lock")
		}
		s.readers--
		if s.readers == 0 && s.writerWaiting {
			s.writeWait.Broadcast()
		}
		return s.readers, nil
	}

	if !s.writer || s.theWriter != auth {
		panic("locking: write release without a held write lock")
	}
	if s.readers > 0 && auth == nil {
		panic("locking: write release while readers are still admitted")
	}
	s.writer = false
	s.theWriter = nil
	if s.writerWaiting {
		s.writeWait.Broadcast()
	}
	if s.readersWaiting > 0 {
		s.readWait.Broadcast()
	}
	return 0, nil
}
