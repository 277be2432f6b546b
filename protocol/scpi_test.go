package protocol_test

import (
	"context"
	"testing"
	"time"

	"github.com/labinstr/syndesi/protocol"
	"github.com/labinstr/syndesi/transport"
)

func TestSCPI_IDNQuery(t *testing.T) {
	tr := newPipeTransport()
	scpi := protocol.NewSCPI(tr, fakeDescriptor{})
	defer scpi.Shutdown()

	ctx := context.Background()
	if err := scpi.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// The reply must arrive after Query's write: Query reads with ScopeNext,
	// so a frame that is already in flight when it starts is not its answer.
	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.feed([]byte("ACME,MODEL1,SN1,1.0\n"))
	}()
	idn, err := scpi.Query(ctx, "*IDN?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if idn != "ACME,MODEL1,SN1,1.0" {
		t.Errorf("*IDN? = %q, want %q", idn, "ACME,MODEL1,SN1,1.0")
	}
	if string(tr.lastWrite()) != "*IDN?\n" {
		t.Errorf("transport saw %q, want %q", tr.lastWrite(), "*IDN?\n")
	}
}

func TestSCPI_DefaultPortFilledWhenUnset(t *testing.T) {
	tcp := transport.NewTCP(transport.NetDescriptor{Network: "tcp", Host: "10.0.0.5"})
	descriptor := transport.NetDescriptor{Network: "tcp", Host: "10.0.0.5"}
	scpi := protocol.NewSCPI(tcp, descriptor)
	defer scpi.Shutdown()

	if tcp.Descriptor.Port != protocol.SCPIDefaultPort {
		t.Errorf("tcp.Descriptor.Port = %d, want %d", tcp.Descriptor.Port, protocol.SCPIDefaultPort)
	}
}

func TestSCPI_ExplicitPortPreserved(t *testing.T) {
	tcp := transport.NewTCP(transport.NetDescriptor{Network: "tcp", Host: "10.0.0.5", Port: 9000})
	descriptor := transport.NetDescriptor{Network: "tcp", Host: "10.0.0.5", Port: 9000}
	scpi := protocol.NewSCPI(tcp, descriptor)
	defer scpi.Shutdown()

	if tcp.Descriptor.Port != 9000 {
		t.Errorf("tcp.Descriptor.Port = %d, want 9000", tcp.Descriptor.Port)
	}
}
