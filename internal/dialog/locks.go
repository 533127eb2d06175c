package dialog

import "sync"

// userLocks serializes work per user id. Entries are dropped once no goroutine holds or
// waits on them, so the map only grows with concurrently active users.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the caller owns userID and returns the matching unlock.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*userLock)
	}
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
