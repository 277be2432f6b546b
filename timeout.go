package syndesi

import "time"

// TimeoutAction decides what happens when the response timeout elapses.
type TimeoutAction int

const (
	// TimeoutActionError fails the pending read with a typed timeout error.
	TimeoutActionError TimeoutAction = iota
	// TimeoutActionReturnEmpty completes the pending read with an empty Frame.
	TimeoutActionReturnEmpty
)

// Timeout is the response-timeout policy: the maximum time to wait for the
// first qualifying fragment of a new read, and what to do if it never
// arrives. Once any qualifying fragment is observed the response timeout is
// disarmed for the remainder of that read; Continuation/Total stop
// conditions govern frame closure from then on. A nil Response means the
// response timeout is disabled for that read.
type Timeout struct {
	Response *time.Duration
	Action   TimeoutAction
}

// NewTimeout returns a Timeout with the given response window and action.
func NewTimeout(response time.Duration, action TimeoutAction) Timeout {
	return Timeout{Response: &response, Action: action}
}

// NoResponseTimeout returns a Timeout with the response window disabled;
// only stop conditions can close a read configured this way.
func NoResponseTimeout() Timeout {
	return Timeout{Response: nil, Action: TimeoutActionError}
}

func (t Timeout) deadline(from time.Time) (time.Time, bool) {
	if t.Response == nil {
		return time.Time{}, false
	}
	return from.Add(*t.Response), true
}
