package indexer

import "sync/atomic"

// IndexLock provides non-blocking mutual exclusion for indexing runs.
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called after a successful TryAcquire.
func (l *IndexLock) Release() {
	l.state.Store(0)
}
