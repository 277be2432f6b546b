package syndesi

import "time"

// pendingRead is the bookkeeping the worker keeps for the single read that
// may be in flight at any time (spec.md §4.4). At most one exists per
// adapter; registering a second while one is pending is a worker error.
type pendingRead struct {
	reply     chan commandReply
	scope     ReadScope
	admission time.Time

	timeout          Timeout
	responseDeadline time.Time
	haveDeadline     bool
	seenFirstFrame   bool

	hasOverride     bool
	overrideApplied bool
	stopConds       []StopCondition
	priorStop       []StopCondition
}

// armResponseDeadline computes and stores the response-timeout deadline
// from the pending read's effective timeout, relative to its admission
// time. It is a no-op if the timeout has no response window.
func (p *pendingRead) armResponseDeadline() {
	if d, ok := p.timeout.deadline(p.admission); ok {
		p.responseDeadline = d
		p.haveDeadline = true
	}
}

// disarm marks the response timeout as satisfied for the remainder of this
// read: once any first-fragment-of-a-frame event fires while this read is
// outstanding, the response timeout never fires again for it (spec.md §4.2).
func (p *pendingRead) disarm() {
	p.seenFirstFrame = true
}

// qualifies reports whether a just-completed frame (identified by its first
// fragment's timestamp, if any) may satisfy this pending read.
func (p *pendingRead) qualifies(f Frame) bool {
	if p.scope == ScopeBuffered {
		return true
	}
	if len(f.Fragments) == 0 {
		return false
	}
	return f.Fragments[0].Timestamp().After(p.admission)
}
