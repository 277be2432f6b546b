package syndesi

// Descriptor is the uninterpreted identification of a transport endpoint
// and its parameters (e.g. host+port+transport kind, or serial device+baud).
// Descriptor parsing from user-facing strings is an external collaborator
// and out of scope here (spec.md §1); this interface is the seam a
// transport.Transport implementation's constructor consumes.
type Descriptor interface {
	// Initialized reports whether every mandatory parameter has been set. A
	// worker refuses to open a Descriptor that isn't initialized.
	Initialized() bool

	// String returns a human-readable identification, used in log lines and
	// error messages.
	String() string
}
