package syndesi

import "time"

// terminationCondition fires once a configured byte sequence appears in the
// stream. Bytes up to and including the match are kept; anything past the
// match is deferred to the next frame. A sequence prefix matched at the
// tail of one fragment but not completed is remembered and the search
// resumes at the start of the next fragment, per the design note: the
// expected start of the remaining suffix is anchored at the next
// fragment's beginning rather than re-scanning for a fresh match.
type terminationCondition struct {
	seq     []byte
	lps     []int
	matched int
}

// computeLPS builds the KMP failure function for seq: lps[i] is the length
// of the longest proper prefix of seq[:i+1] that is also a suffix of it.
// Used to resume a partial match correctly when the terminator overlaps
// itself (e.g. "aab" against "aaab"), instead of discarding the whole
// match and restarting from scratch.
func computeLPS(seq []byte) []int {
	lps := make([]int, len(seq))
	length := 0
	i := 1
	for i < len(seq) {
		if seq[i] == seq[length] {
			length++
			lps[i] = length
			i++
		} else if length != 0 {
			length = lps[length-1]
		} else {
			lps[i] = 0
			i++
		}
	}
	return lps
}

// NewTermination returns a StopCondition that closes the frame when seq
// appears in the stream, keeping the matched sequence in the frame.
func NewTermination(seq []byte) StopCondition {
	cp := make([]byte, len(seq))
	copy(cp, seq)
	return &terminationCondition{seq: cp, lps: computeLPS(cp)}
}

func (t *terminationCondition) Kind() StopKind { return StopTermination }

func (t *terminationCondition) Init(now time.Time) { t.matched = 0 }

func (t *terminationCondition) Flush() { t.matched = 0 }

func (t *terminationCondition) Evaluate(frag Fragment, now time.Time) StopResult {
	data := frag.Data()
	if len(t.seq) == 0 {
		return StopResult{Kept: data}
	}
	i := 0
	for i < len(data) {
		if data[i] == t.seq[t.matched] {
			t.matched++
			i++
			if t.matched == len(t.seq) {
				kept := data[:i]
				deferred := data[i:]
				t.matched = 0
				return StopResult{Kept: kept, Deferred: deferred, Stop: true}
			}
			continue
		}
		if t.matched > 0 {
			t.matched = t.lps[t.matched-1]
			continue
		}
		i++
	}
	return StopResult{Kept: data}
}

func (t *terminationCondition) CheckTimeout(now time.Time) StopResult {
	return StopResult{}
}
