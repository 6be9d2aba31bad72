package service

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — frontend notification boundary
// ─────────────────────────────────────────────────────────────

// EventEmitter pushes state-change notifications to the frontend:
// "library:changed" when the set of notepads moves, "notepad:updated"
// after a dispatch, "library:reloaded" after a restore. The app layer
// backs it with the Wails event bus; services never see wailsRuntime
// directly, so they stay testable against a recording mock.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter records every emission for test assertions.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent is one recorded Emit call.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
