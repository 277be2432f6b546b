package protocol

import (
	"context"
	"time"

	"github.com/labinstr/syndesi"
)

// rawDefaultTimeout is spec.md §4.6's "Raw: ... Default timeout: 2 s,
// action ERROR."
var rawDefaultTimeout = syndesi.NewTimeout(2*time.Second, syndesi.TimeoutActionError)

// Raw is the identity protocol: it writes and reads bytes with no framing
// of its own beyond what the adapter's configured stop conditions impose.
type Raw struct {
	Adapter *syndesi.Adapter
}

// NewRaw builds a Raw protocol over a fresh Adapter bound to transport and
// descriptor, with Raw's default timeout unless overridden.
func NewRaw(transport syndesi.Transport, descriptor syndesi.Descriptor, opts ...syndesi.AdapterOption) *Raw {
	all := append([]syndesi.AdapterOption{syndesi.WithDefaultTimeout(rawDefaultTimeout)}, opts...)
	return &Raw{Adapter: syndesi.NewAdapter(transport, descriptor, all...)}
}

func (r *Raw) Open(ctx context.Context) error  { return r.Adapter.Open(ctx) }
func (r *Raw) Close(ctx context.Context) error { return r.Adapter.Close(ctx) }
func (r *Raw) IsOpen(ctx context.Context) (bool, error) {
	return r.Adapter.IsOpen(ctx)
}
func (r *Raw) Shutdown() { r.Adapter.Shutdown() }

func (r *Raw) Write(ctx context.Context, data []byte) error {
	return r.Adapter.Write(ctx, data)
}

func (r *Raw) Read(ctx context.Context, opts ...syndesi.ReadOption) ([]byte, error) {
	return r.Adapter.Read(ctx, opts...)
}

func (r *Raw) Query(ctx context.Context, data []byte, opts ...syndesi.ReadOption) ([]byte, error) {
	return r.Adapter.Query(ctx, data, opts...)
}
