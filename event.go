package syndesi

// Event is delivered to an adapter's optional event callback: either a
// completed Frame or a Disconnected notice. The callback runs on the
// worker's goroutine and must be non-blocking; a callback that panics is
// recovered and logged, never crashing the worker (spec.md §5).
type Event interface {
	isEvent()
}

// FrameEvent reports a completed Frame, whether or not it was also
// delivered to a pending read.
type FrameEvent struct {
	Frame Frame
}

func (FrameEvent) isEvent() {}

// DisconnectedEvent reports that the transport endpoint went away.
type DisconnectedEvent struct{}

func (DisconnectedEvent) isEvent() {}

// EventCallback receives worker events. See Event's doc comment for the
// non-blocking/no-panic contract callbacks must honor.
type EventCallback func(Event)
