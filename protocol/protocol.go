// Package protocol provides thin translators layered over a
// syndesi.Adapter: Raw (bytes passthrough), Delimited (termination-based
// text), and SCPI (a Delimited specialization). Each sets the adapter's
// default timeout (Delimited and SCPI also install a Termination default
// stop condition for their receive terminator) and encodes/decodes between the adapter's Frame<bytes> and its own
// payload type, per spec.md §4.6. Grounded on original_source's
// syndesi/protocols/{delimited,scpi,raw}.py, reworked into Go's explicit
// error-return idiom instead of exceptions.
package protocol

import (
	"context"
)

// Protocol is the shape every protocol translator in this package
// implements for its own payload type; it exists for documentation rather
// than as a dynamic-dispatch seam, since Go's lack of return-type
// polymorphism makes a single shared interface across []byte and string
// payloads awkward. See Raw, Delimited and SCPI for the concrete surface.
type Protocol interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	IsOpen(ctx context.Context) (bool, error)
	Shutdown()
}
