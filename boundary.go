package syndesi

import "time"

// boundaryCondition closes the frame at every fragment, so each OS-level
// read becomes its own Frame.
type boundaryCondition struct{}

// NewFragmentBoundary returns a StopCondition that closes the frame on
// every fragment boundary.
func NewFragmentBoundary() StopCondition {
	return &boundaryCondition{}
}

func (boundaryCondition) Kind() StopKind { return StopFragmentBoundary }

func (boundaryCondition) Init(now time.Time) {}

func (boundaryCondition) Flush() {}

func (boundaryCondition) Evaluate(frag Fragment, now time.Time) StopResult {
	return StopResult{Kept: frag.Data(), Stop: true}
}

func (boundaryCondition) CheckTimeout(now time.Time) StopResult {
	return StopResult{}
}
