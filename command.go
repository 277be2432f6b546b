package syndesi

import "time"

type commandKind int

const (
	cmdOpen commandKind = iota
	cmdClose
	cmdWrite
	cmdFlushRead
	cmdSetStopConditions
	cmdSetTimeout
	cmdSetDescriptor
	cmdIsOpen
	cmdRead
	cmdSetEventCallback
)

// readParams carries a read's caller-supplied configuration into the
// worker: an optional per-read timeout override, an optional per-read stop
// condition override, and the scope governing which completed frame may
// satisfy it.
type readParams struct {
	scope        ReadScope
	hasTimeout   bool
	timeout      Timeout
	hasStopConds bool
	stopConds    []StopCondition
}

// command is the typed message sent from façade goroutines to the worker.
// Exactly one command is in flight to the worker per Adapter method call;
// the worker answers via reply.
type command struct {
	kind commandKind

	writeData  []byte
	stopConds  []StopCondition
	timeout    Timeout
	descriptor Descriptor
	transport  Transport
	callback   EventCallback
	read       readParams

	reply chan commandReply
}

// commandReply is the worker's answer to a command. Exactly one field is
// meaningful per commandKind; err is set on failure regardless of kind.
type commandReply struct {
	err    error
	frame  Frame
	isOpen bool
}

func newCommand(kind commandKind) *command {
	return &command{kind: kind, reply: make(chan commandReply, 1)}
}

// workerGuard bounds how long a façade call waits for the worker to answer
// a command at all (not the device response timeout — see spec.md §4.5).
// Tripping this produces a WorkerError, never a device TimeoutError.
const workerGuard = 30 * time.Second
