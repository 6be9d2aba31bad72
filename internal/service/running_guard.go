package service

import (
	"context"
	"errors"
	"sync"
)

// ErrOperationInFlight means an operation of the same class (import,
// export, backup, restore) is already running. Nothing is queued; the
// caller simply retries once the first operation finishes.
var ErrOperationInFlight = errors.New("operation already in progress")

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningOpsGuard

// ─────────────────────────────────────────────────────────────
// runningOpsGuard — prevents concurrent runs of an operation class
// ─────────────────────────────────────────────────────────────

// runningOpsGuard ensures only one operation of a given class runs at
// a time. Long-running operations are not cancellable mid-flight; this
// guard is the only concurrency control they need.
type runningOpsGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock attempts to mark class as running. Returns true if successful.
// Returns false if an operation of that class is already running.
func (g *runningOpsGuard) TryLock(class string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[class]; ok {
		return false // already running
	}
	g.running[class] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock marks the class as no longer running. Must be called after TryLock returns true.
func (g *runningOpsGuard) Unlock(class string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, class)
	g.wg.Done()
}

// Busy reports whether an operation of the class is running.
func (g *runningOpsGuard) Busy(class string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[class]
	return ok
}

// WaitAll blocks until all currently running operations complete or ctx is cancelled.
func (g *runningOpsGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
