package usecase

import (
	"context"
	"sync"
)

// installationLocks serializes lifecycle operations per installation across every
// controller in the process.
var installationLocks = newLockRegistry()

type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]chan struct{})}
}

// acquire blocks until the lock for name is held or ctx is done.
func (r *lockRegistry) acquire(ctx context.Context, name string) (release func(), err error) {
	r.mu.Lock()
	lock, ok := r.locks[name]
	if !ok {
		lock = make(chan struct{}, 1)
		r.locks[name] = lock
	}
	r.mu.Unlock()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
