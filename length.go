package syndesi

import "time"

// lengthCondition fires once cumulative bytes since the start of the frame
// reach n. It is order-preserving and byte-exact; a fragment that crosses
// the threshold yields a kept prefix and a deferred suffix.
type lengthCondition struct {
	n         int
	remaining int
}

// NewLength returns a StopCondition that closes the frame once n bytes have
// been accumulated.
func NewLength(n int) StopCondition {
	return &lengthCondition{n: n}
}

func (l *lengthCondition) Kind() StopKind { return StopLength }

func (l *lengthCondition) Init(now time.Time) { l.remaining = l.n }

func (l *lengthCondition) Flush() { l.remaining = l.n }

func (l *lengthCondition) Evaluate(frag Fragment, now time.Time) StopResult {
	data := frag.Data()
	if len(data) < l.remaining {
		l.remaining -= len(data)
		return StopResult{Kept: data}
	}
	kept := data[:l.remaining]
	deferred := data[l.remaining:]
	l.remaining = 0
	return StopResult{Kept: kept, Deferred: deferred, Stop: true}
}

func (l *lengthCondition) CheckTimeout(now time.Time) StopResult {
	return StopResult{}
}
