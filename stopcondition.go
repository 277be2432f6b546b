package syndesi

import "time"

// StopResult is what a StopCondition reports for one evaluation: the bytes
// to keep in the frame under construction, the bytes to defer to the start
// of the next frame, whether this evaluation closes the frame, and an
// optional absolute wakeup time the worker must honor even if no more data
// arrives (used by Continuation/Total; zero means "no wakeup").
type StopResult struct {
	Kept     []byte
	Deferred []byte
	Stop     bool
	Wakeup   time.Time
}

// StopCondition is a pure, per-read stateful evaluator over fragments. The
// worker holds an ordered slice of these and evaluates them in install
// order for every incoming fragment; the first one to report Stop wins, and
// its Kind is recorded on the resulting Frame.
//
// Implementations hold their own state (e.g. how many bytes of a
// termination sequence have matched so far) rather than being stateless
// functions, the way the source's abstract stop-condition base class did.
type StopCondition interface {
	// Kind identifies the variant for Frame.StopKind.
	Kind() StopKind

	// Init is called once, at the start of a new frame, before the first
	// fragment of that frame is evaluated.
	Init(now time.Time)

	// Evaluate is called for each fragment (or deferred carry-over,
	// re-injected as the next fragment) belonging to the frame under
	// construction.
	Evaluate(frag Fragment, now time.Time) StopResult

	// CheckTimeout is called when the worker wakes up purely because a
	// scheduled deadline elapsed, with no new fragment available. Only
	// Continuation and Total ever report Stop here; Termination, Length and
	// FragmentBoundary are byte-driven and never fire from a bare timer.
	CheckTimeout(now time.Time) StopResult

	// Flush resets any internal state, as if Init had never been called.
	Flush()
}

// CloneStopConditions returns a copy of the conds slice. The StopCondition
// values themselves are not copied: the result shares them, and their
// per-frame state, with conds.
func CloneStopConditions(conds []StopCondition) []StopCondition {
	if conds == nil {
		return nil
	}
	out := make([]StopCondition, len(conds))
	copy(out, conds)
	return out
}

// evaluateStopConditions evaluates conds, in order, against data observed
// at now. The first condition reporting Stop wins; conditions after it are
// not consulted this round. When none stop, the returned kept bytes are the
// entire input (none of Termination/Length/Continuation/Total/
// FragmentBoundary carve bytes unless they're the one stopping), and the
// returned wakeup is the minimum of every non-zero wakeup seen.
func evaluateStopConditions(conds []StopCondition, data []byte, ts time.Time) (kept, deferred []byte, stop bool, kind StopKind, wakeup time.Time) {
	if len(conds) == 0 {
		return data, nil, false, StopNone, time.Time{}
	}
	frag := Fragment{data: data, ts: ts, hasTS: true}
	for _, sc := range conds {
		res := sc.Evaluate(frag, ts)
		if !res.Wakeup.IsZero() && (wakeup.IsZero() || res.Wakeup.Before(wakeup)) {
			wakeup = res.Wakeup
		}
		if res.Stop {
			return res.Kept, res.Deferred, true, sc.Kind(), wakeup
		}
	}
	return data, nil, false, StopNone, wakeup
}

// checkStopTimeouts asks every installed condition whether a bare timer
// wakeup should close the frame under construction. The first Stop wins.
func checkStopTimeouts(conds []StopCondition, now time.Time) (stop bool, kind StopKind, wakeup time.Time) {
	for _, sc := range conds {
		res := sc.CheckTimeout(now)
		if !res.Wakeup.IsZero() && (wakeup.IsZero() || res.Wakeup.Before(wakeup)) {
			wakeup = res.Wakeup
		}
		if res.Stop {
			return true, sc.Kind(), wakeup
		}
	}
	return false, StopNone, wakeup
}

func initStopConditions(conds []StopCondition, now time.Time) {
	for _, sc := range conds {
		sc.Init(now)
	}
}

func flushStopConditions(conds []StopCondition) {
	for _, sc := range conds {
		sc.Flush()
	}
}
