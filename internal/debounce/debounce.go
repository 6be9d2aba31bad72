package debounce

import (
	"sync"
	"time"
)

// Task coalesces rapid triggers into a single trailing-edge run: the
// function passed to the most recent Trigger runs once the quiet
// window elapses with no further triggers. Intermediate functions are
// dropped; the latest always eventually runs unless cancelled.
type Task struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending func()
}

// New creates a Task with the given quiet window.
func New(window time.Duration) *Task {
	return &Task{window: window}
}

// Trigger schedules fn to run after the quiet window, replacing any
// previously scheduled function and resetting the window.
func (t *Task) Trigger(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = fn
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.window, t.fire)
}

// Cancel drops the pending function without running it.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
}

// Flush runs the pending function immediately, if any. Used on
// teardown so an in-flight window cannot lose the final state.
func (t *Task) Flush() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Pending reports whether a run is currently scheduled.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *Task) fire() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}
