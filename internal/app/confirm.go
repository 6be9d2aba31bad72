package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sidenotes/internal/reconcile"
	"sidenotes/internal/service"
)

// confirmTimeout bounds how long a blocking confirmation waits for the
// user. An expired prompt counts as a dismissal.
const confirmTimeout = 120 * time.Second

// PendingConfirm is the payload emitted to the frontend when a
// confirmation is required.
type PendingConfirm struct {
	ID      string   `json:"id"`
	Message string   `json:"message"`
	Options []string `json:"options"`
}

// confirmBridge turns the frontend's confirm dialog into a blocking
// reconcile.Prompt: emit the question as an event, park the caller on
// a channel, resolve when RespondConfirm arrives.
type confirmBridge struct {
	mu      sync.Mutex
	pending map[string]chan int
	ctx     context.Context
	emitter service.EventEmitter
}

func newConfirmBridge(ctx context.Context, emitter service.EventEmitter) *confirmBridge {
	return &confirmBridge{
		pending: make(map[string]chan int),
		ctx:     ctx,
		emitter: emitter,
	}
}

// Confirm blocks until the user picks an option, dismisses the dialog
// or the timeout fires.
func (b *confirmBridge) Confirm(ctx context.Context, message string, options []string) (int, error) {
	id := uuid.New().String()
	ch := make(chan int, 1)

	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()
	defer b.cleanup(id)

	b.emitter.Emit(b.ctx, "confirm:requested", PendingConfirm{
		ID:      id,
		Message: message,
		Options: options,
	})

	select {
	case choice := <-ch:
		if choice < 0 || choice >= len(options) {
			return reconcile.Dismissed, nil
		}
		return choice, nil
	case <-time.After(confirmTimeout):
		b.emitter.Emit(b.ctx, "confirm:dismissed", map[string]string{"id": id})
		return reconcile.Dismissed, nil
	case <-ctx.Done():
		return reconcile.Dismissed, ctx.Err()
	}
}

// Resolve delivers the user's choice for a pending confirmation.
// Unknown IDs (already resolved or timed out) are ignored.
func (b *confirmBridge) Resolve(id string, choice int) {
	b.mu.Lock()
	ch, ok := b.pending[id]
	b.mu.Unlock()
	if ok {
		ch <- choice
	}
}

func (b *confirmBridge) cleanup(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
