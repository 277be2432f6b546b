package syndesi

import (
	"testing"
	"time"
)

func TestTimeout_DeadlineFromResponse(t *testing.T) {
	tmo := NewTimeout(5*time.Second, TimeoutActionError)
	start := time.Now()
	deadline, ok := tmo.deadline(start)
	if !ok {
		t.Fatalf("expected a deadline when Response is set")
	}
	if !deadline.Equal(start.Add(5 * time.Second)) {
		t.Errorf("deadline = %v, want %v", deadline, start.Add(5*time.Second))
	}
}

func TestTimeout_NoResponseTimeoutDisablesDeadline(t *testing.T) {
	tmo := NoResponseTimeout()
	_, ok := tmo.deadline(time.Now())
	if ok {
		t.Errorf("expected NoResponseTimeout to have no deadline")
	}
	if tmo.Action != TimeoutActionError {
		t.Errorf("expected NoResponseTimeout's Action to default to Error, got %v", tmo.Action)
	}
}

func TestFrame_PayloadConcatenatesFragments(t *testing.T) {
	f := Frame{Fragments: []Fragment{
		NewFragment([]byte("ab"), time.Now()),
		NewFragment([]byte("cd"), time.Now()),
	}}
	if string(f.Payload()) != "abcd" {
		t.Errorf("Payload() = %q, want %q", f.Payload(), "abcd")
	}
}

func TestFrame_PayloadEmptyWhenNoFragments(t *testing.T) {
	f := Frame{}
	if f.Payload() != nil {
		t.Errorf("expected nil payload for an empty Frame, got %q", f.Payload())
	}
}

func TestFrame_ResponseDelayUnsetByDefault(t *testing.T) {
	f := Frame{}
	if _, ok := f.ResponseDelay(); ok {
		t.Errorf("expected no response delay on a zero-value Frame")
	}
}

func TestFrame_SetResponseDelay(t *testing.T) {
	f := Frame{}
	f.setResponseDelay(250 * time.Millisecond)
	d, ok := f.ResponseDelay()
	if !ok {
		t.Fatalf("expected ResponseDelay to report set after setResponseDelay")
	}
	if d != 250*time.Millisecond {
		t.Errorf("ResponseDelay = %v, want %v", d, 250*time.Millisecond)
	}
}

func TestStopKind_String(t *testing.T) {
	cases := map[StopKind]string{
		StopNone:             "none",
		StopTermination:      "termination",
		StopLength:           "length",
		StopContinuation:     "continuation",
		StopTotal:            "total",
		StopFragmentBoundary: "fragment-boundary",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("StopKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
