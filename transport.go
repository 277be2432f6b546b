package syndesi

// Transport is the bytes-level endpoint a worker drives: a TCP/UDP socket,
// a serial port, or a VISA resource. Concrete implementations live in the
// transport subpackage; Transport is defined here, structurally, so that
// subpackage has no dependency on this one (it only needs to satisfy this
// method set).
//
// Read performs a single OS-level read and returns the number of bytes
// read. Per spec.md §6, one UDP recv is one fragment; a stream transport
// may return any number of bytes up to len(buf). A Read that returns
// (0, nil) is treated exactly like a Read returning a non-nil error: both
// signal that the endpoint has disconnected.
type Transport interface {
	// Open connects (or re-connects) the endpoint. Calling Open on an
	// already-open endpoint is a no-op success.
	Open() error

	// Close tears the endpoint down. Calling Close on an already-closed
	// endpoint is a no-op success.
	Close() error

	// IsOpen reports the endpoint's current state.
	IsOpen() bool

	// Read blocks until at least one byte is available, the endpoint
	// disconnects, or an error occurs.
	Read(buf []byte) (int, error)

	// Write sends data to the endpoint. Writes are assumed short and
	// effectively non-blocking for typical instrument traffic; there is no
	// mechanism to cancel an in-flight Write.
	Write(data []byte) (int, error)
}
