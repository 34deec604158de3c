// Package guard serialises the mutation of a shared value,
// and lets readers wait until the value changes.
package guard

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard is a readers-writer lock paired with a change notification.
// Every Broadcast closes the current signal channel and installs a fresh one,
// so all waiters observing the old channel wake up together.
//
// The zero value is ready to use.
type Guard struct {
	mu         sync.RWMutex
	signal     chan struct{}
	generation atomic.Uint64
	_init      sync.Once
}

func (g *Guard) init() {
	g._init.Do(func() { g.signal = make(chan struct{}) })
}

// Lock acquires exclusive access for a mutation.
func (g *Guard) Lock() {
	g.init()
	g.mu.Lock()
}

func (g *Guard) Unlock() { g.mu.Unlock() }

// RLock acquires shared access for a single read.
func (g *Guard) RLock() {
	g.init()
	g.mu.RLock()
}

func (g *Guard) RUnlock() { g.mu.RUnlock() }

// Broadcast announces a change to every waiter.
//   - must be used while the write lock is held
func (g *Guard) Broadcast() {
	g.generation.Add(1)
	close(g.signal)
	g.signal = make(chan struct{})
}

// Generation is the number of broadcasts made so far.
func (g *Guard) Generation() uint64 {
	return g.generation.Load()
}

// Wait blocks until ok reports true or the context is done.
// ok is evaluated under the read lock, first right away and then after each Broadcast.
func (g *Guard) Wait(ctx context.Context, ok func() bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		g.RLock()
		if ok() {
			g.RUnlock()
			return nil
		}
		signal := g.signal
		g.RUnlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
		}
	}
}
