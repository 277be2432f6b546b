package syndesi

import "time"

// continuationCondition fires when the gap since the last fragment reaches
// dt, provided at least one fragment has been received. It never carves
// bytes: a fragment that arrives after the deadline has already elapsed is
// still appended to the frame that is closing (the ordinary case is that
// the worker's timer fires first, via CheckTimeout, before any such
// fragment arrives).
type continuationCondition struct {
	dt   time.Duration
	last time.Time
	have bool
}

// NewContinuation returns a StopCondition that closes the frame after dt of
// silence following the most recent fragment.
func NewContinuation(dt time.Duration) StopCondition {
	return &continuationCondition{dt: dt}
}

func (c *continuationCondition) Kind() StopKind { return StopContinuation }

func (c *continuationCondition) Init(now time.Time) { c.have = false }

func (c *continuationCondition) Flush() { c.have = false }

func (c *continuationCondition) Evaluate(frag Fragment, now time.Time) StopResult {
	if c.have && !now.Before(c.last.Add(c.dt)) {
		c.have = false
		return StopResult{Kept: frag.Data(), Stop: true}
	}
	c.last = now
	c.have = true
	return StopResult{Kept: frag.Data(), Wakeup: now.Add(c.dt)}
}

func (c *continuationCondition) CheckTimeout(now time.Time) StopResult {
	if !c.have {
		return StopResult{}
	}
	deadline := c.last.Add(c.dt)
	if !now.Before(deadline) {
		c.have = false
		return StopResult{Stop: true}
	}
	return StopResult{Wakeup: deadline}
}
