package modbus

import "sync"

// Diagnostics accumulates per-Client connection-health counters, adapted
// from the teacher's busDiagnosticManager (modbusDiagnostics.go). The
// teacher ran its counters through a dedicated channel-actor goroutine
// because its BusDiagnostics also fed a server-side event log shared with
// request-handling goroutines; a client only ever updates counters from
// inside Client.do's call path, so a plain mutex replaces the actor here.
type Diagnostics struct {
	mu         sync.Mutex
	messages   int
	commErrors int
	exceptions int
}

// DiagnosticsSnapshot is a point-in-time copy of a Client's Diagnostics.
type DiagnosticsSnapshot struct {
	// Messages counts responses successfully decoded, exceptions included.
	Messages int
	// CommErrors counts transport/framing failures: timeouts, disconnects,
	// malformed MBAP headers, transaction-id or unit-id mismatches.
	CommErrors int
	// Exceptions counts responses the remote unit reported as a Modbus
	// exception (function code with bit 0x80 set).
	Exceptions int
}

func (d *Diagnostics) recordMessage() {
	d.mu.Lock()
	d.messages++
	d.mu.Unlock()
}

func (d *Diagnostics) recordException() {
	d.mu.Lock()
	d.exceptions++
	d.mu.Unlock()
}

func (d *Diagnostics) recordCommError() {
	d.mu.Lock()
	d.commErrors++
	d.mu.Unlock()
}

// Snapshot returns the current counter values.
func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DiagnosticsSnapshot{Messages: d.messages, CommErrors: d.commErrors, Exceptions: d.exceptions}
}

// Diagnostics returns a snapshot of c's connection-health counters.
func (c *Client) Diagnostics() DiagnosticsSnapshot {
	return c.stats.Snapshot()
}
