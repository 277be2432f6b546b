package syndesi

// ReadScope controls which completed Frame a read may be satisfied with.
type ReadScope int

const (
	// ScopeBuffered allows any already-completed frame to satisfy the read,
	// including one that finished before the read was issued. If the frame
	// buffer is non-empty at registration time, the read is served from it
	// immediately.
	ScopeBuffered ReadScope = iota

	// ScopeNext ignores buffered frames and is satisfied only by a frame
	// whose first fragment timestamp is strictly greater than the read's
	// admission timestamp. This lets callers flush or implement query
	// semantics without races against frames that arrived before the read.
	ScopeNext
)

func (s ReadScope) String() string {
	if s == ScopeNext {
		return "next"
	}
	return "buffered"
}
