package protocol

import (
	"context"
	"time"

	"github.com/labinstr/syndesi"
	"github.com/labinstr/syndesi/transport"
)

// SCPIDefaultPort is the default TCP port SCPI instruments listen on.
const SCPIDefaultPort = 5025

// scpiDefaultTimeout is spec.md §4.6's "SCPI: ... default timeout 5 s/ERROR".
var scpiDefaultTimeout = syndesi.NewTimeout(5*time.Second, syndesi.TimeoutActionError)

// SCPI is a Delimited specialization: terminator "\n", timeout 5s/ERROR,
// and TCP port 5025 by default.
type SCPI struct {
	*Delimited
}

// NewSCPI builds a SCPI protocol over a fresh Adapter. If descriptor is a
// transport.NetDescriptor with no port set, SCPIDefaultPort is filled in.
func NewSCPI(t syndesi.Transport, descriptor syndesi.Descriptor, opts ...DelimitedOption) *SCPI {
	if nd, ok := descriptor.(transport.NetDescriptor); ok && nd.Port == 0 {
		nd.Port = SCPIDefaultPort
		descriptor = nd
		if tcp, ok := t.(*transport.TCP); ok {
			tcp.Descriptor.Port = SCPIDefaultPort
		}
	}
	all := append([]DelimitedOption{WithTerminator("\n"), WithDelimitedTimeout(scpiDefaultTimeout)}, opts...)
	return &SCPI{Delimited: NewDelimited(t, descriptor, all...)}
}

// NewSCPIOverAdapter layers SCPI framing over an already-constructed
// Adapter instead of building a fresh one. Per spec.md §4.6, SCPI refuses
// to layer over an adapter that the caller has already given custom stop
// conditions, to avoid ambiguous framing; since an Adapter's installed
// stop conditions aren't introspectable from outside the worker that owns
// them, the caller must say so explicitly via adapterHasCustomStopConditions.
func NewSCPIOverAdapter(ctx context.Context, adapter *syndesi.Adapter, adapterHasCustomStopConditions bool) (*SCPI, error) {
	if adapterHasCustomStopConditions {
		return nil, syndesi.ConfigurationError("SCPI refuses to layer over an adapter with caller-configured stop conditions")
	}
	if err := adapter.SetDefaultStopConditions(ctx, syndesi.NewTermination([]byte("\n"))); err != nil {
		return nil, err
	}
	if err := adapter.SetDefaultTimeout(ctx, scpiDefaultTimeout); err != nil {
		return nil, err
	}
	return &SCPI{Delimited: &Delimited{
		Adapter:           adapter,
		SendTerminator:    "\n",
		ReceiveTerminator: "\n",
		Codec:             UTF8Codec,
	}}, nil
}
