package syndesi

import "time"

// totalCondition fires when dt has elapsed since the first fragment of the
// frame, regardless of inter-fragment gaps. Like Continuation, it never
// carves bytes.
type totalCondition struct {
	dt    time.Duration
	first time.Time
	have  bool
}

// NewTotal returns a StopCondition that closes the frame dt after its first
// fragment, regardless of how much data has arrived since.
func NewTotal(dt time.Duration) StopCondition {
	return &totalCondition{dt: dt}
}

func (t *totalCondition) Kind() StopKind { return StopTotal }

func (t *totalCondition) Init(now time.Time) { t.have = false }

func (t *totalCondition) Flush() { t.have = false }

func (t *totalCondition) Evaluate(frag Fragment, now time.Time) StopResult {
	if !t.have {
		t.first = now
		t.have = true
	}
	deadline := t.first.Add(t.dt)
	if !now.Before(deadline) {
		t.have = false
		return StopResult{Kept: frag.Data(), Stop: true}
	}
	return StopResult{Kept: frag.Data(), Wakeup: deadline}
}

func (t *totalCondition) CheckTimeout(now time.Time) StopResult {
	if !t.have {
		return StopResult{}
	}
	deadline := t.first.Add(t.dt)
	if !now.Before(deadline) {
		t.have = false
		return StopResult{Stop: true}
	}
	return StopResult{Wakeup: deadline}
}
