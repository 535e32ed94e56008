package usecase

import "sync"

type groupLock struct {
	mu   sync.Mutex
	refs int
}

// groupLocks - one mutex per group id, dropped once nobody holds or waits for it.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*groupLock
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: map[string]*groupLock{}}
}

// Lock - blocks until the group is free and returns its unlock func.
func (that *groupLocks) Lock(groupID string) func() {
	that.mu.Lock()
	lock := that.acquire(groupID)
	that.mu.Unlock()

	lock.mu.Lock()

	return that.unlocker(groupID, lock)
}

// TryLock - like Lock but gives up at once when the group is busy.
func (that *groupLocks) TryLock(groupID string) (func(), bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock := that.acquire(groupID)
	if !lock.mu.TryLock() {
		that.drop(groupID, lock)
		return nil, false
	}

	return that.unlocker(groupID, lock), true
}

func (that *groupLocks) acquire(groupID string) *groupLock {
	lock, ok := that.locks[groupID]
	if !ok {
		lock = &groupLock{}
		that.locks[groupID] = lock
	}
	lock.refs++

	return lock
}

func (that *groupLocks) drop(groupID string, lock *groupLock) {
	lock.refs--
	if lock.refs == 0 {
		delete(that.locks, groupID)
	}
}

func (that *groupLocks) unlocker(groupID string, lock *groupLock) func() {
	return func() {
		lock.mu.Unlock()

		that.mu.Lock()
		that.drop(groupID, lock)
		that.mu.Unlock()
	}
}

func (that *groupLocks) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
