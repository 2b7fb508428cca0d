package service

import (
	"context"
	"sync"
)

// SessionLocks serialises requests that read, call the model and write back the
// same session. Without it two tabs submitting at once both pass the step check.
// Locks are per process; a shared Redis store still relies on one instance per session.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem     chan struct{}
	waiters int
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the session is free or ctx is done. The returned func releases it.
func (l *SessionLocks) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sessionLock{sem: make(chan struct{}, 1)}
		l.locks[sessionID] = lock
	}
	lock.waiters++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
		return func() {
			<-lock.sem
			l.release(sessionID, lock)
		}, nil
	case <-ctx.Done():
		l.release(sessionID, lock)
		return nil, ctx.Err()
	}
}

func (l *SessionLocks) release(sessionID string, lock *sessionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.waiters--
	if lock.waiters == 0 {
		delete(l.locks, sessionID)
	}
}

func (l *SessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
