package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"sidenotes/internal/debounce"
)

func TestTrigger_CoalescesToLatest(t *testing.T) {
	task := debounce.New(30 * time.Millisecond)
	var got atomic.Int32

	for i := 1; i <= 5; i++ {
		v := int32(i)
		task.Trigger(func() { got.Store(v) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got.Load() != 5 {
		t.Errorf("expected only the latest trigger (5) to run, got %d", got.Load())
	}
}

func TestTrigger_RunsOnce(t *testing.T) {
	task := debounce.New(20 * time.Millisecond)
	var runs atomic.Int32

	task.Trigger(func() { runs.Add(1) })
	task.Trigger(func() { runs.Add(1) })

	time.Sleep(80 * time.Millisecond)
	if runs.Load() != 1 {
		t.Errorf("expected exactly one run, got %d", runs.Load())
	}
}

func TestCancel(t *testing.T) {
	task := debounce.New(20 * time.Millisecond)
	var runs atomic.Int32

	task.Trigger(func() { runs.Add(1) })
	task.Cancel()

	time.Sleep(60 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("expected no runs after cancel, got %d", runs.Load())
	}
	if task.Pending() {
		t.Error("expected no pending work after cancel")
	}
}

func TestFlush_RunsImmediately(t *testing.T) {
	task := debounce.New(10 * time.Second)
	var runs atomic.Int32

	task.Trigger(func() { runs.Add(1) })
	task.Flush()

	if runs.Load() != 1 {
		t.Fatalf("expected flush to run pending work, got %d runs", runs.Load())
	}

	// The timer must not fire the same work again.
	task.Flush()
	if runs.Load() != 1 {
		t.Errorf("expected second flush to be a no-op, got %d runs", runs.Load())
	}
}

func TestFlush_Empty(t *testing.T) {
	task := debounce.New(10 * time.Millisecond)
	task.Flush() // must not panic or block
}
