package syndesi

import "time"

// StopKind records which stop condition closed a Frame, or StopNone when
// the Frame resulted from a response timeout with action RETURN_EMPTY.
type StopKind int

const (
	StopNone StopKind = iota
	StopTermination
	StopLength
	StopContinuation
	StopTotal
	StopFragmentBoundary
)

func (k StopKind) String() string {
	switch k {
	case StopTermination:
		return "termination"
	case StopLength:
		return "length"
	case StopContinuation:
		return "continuation"
	case StopTotal:
		return "total"
	case StopFragmentBoundary:
		return "fragment-boundary"
	default:
		return "none"
	}
}

// Frame is the caller-visible unit produced by the fragment assembler: one
// or more Fragments closed by a stop condition, or an empty Frame returned
// when a response timeout's action is RETURN_EMPTY.
type Frame struct {
	Fragments          []Fragment
	StopTimestamp      time.Time
	StopKind           StopKind
	PreviousBufferUsed bool

	hasResponseDelay bool
	responseDelay    time.Duration
}

// Payload concatenates the Frame's fragments into a single byte slice.
func (f Frame) Payload() []byte {
	n := 0
	for _, frag := range f.Fragments {
		n += frag.Len()
	}
	if n == 0 {
		return nil
	}
	out := make([]byte, 0, n)
	for _, frag := range f.Fragments {
		out = append(out, frag.Data()...)
	}
	return out
}

// ResponseDelay returns the time between the last write and the first
// fragment of this Frame, and whether that delay is meaningful (it is null
// when no write preceded this Frame).
func (f Frame) ResponseDelay() (time.Duration, bool) {
	return f.responseDelay, f.hasResponseDelay
}

func (f *Frame) setResponseDelay(d time.Duration) {
	f.responseDelay = d
	f.hasResponseDelay = true
}
