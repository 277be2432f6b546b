package protocol_test

import (
	"context"
	"testing"
	"time"

	"github.com/labinstr/syndesi"
	"github.com/labinstr/syndesi/protocol"
)

func TestRaw_WriteThenRead(t *testing.T) {
	transport := newPipeTransport()
	raw := protocol.NewRaw(transport, fakeDescriptor{},
		syndesi.WithDefaultStopConditions(syndesi.NewTermination([]byte("\n"))))
	defer raw.Shutdown()

	ctx := context.Background()
	if err := raw.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := raw.Write(ctx, []byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(transport.lastWrite()) != "hello\n" {
		t.Errorf("transport saw %q, want %q", transport.lastWrite(), "hello\n")
	}

	transport.feed([]byte("world\n"))
	got, err := raw.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "world\n" {
		t.Errorf("Read = %q, want %q", got, "world\n")
	}
}

func TestRaw_Query(t *testing.T) {
	transport := newPipeTransport()
	raw := protocol.NewRaw(transport, fakeDescriptor{},
		syndesi.WithDefaultStopConditions(syndesi.NewTermination([]byte("\n"))))
	defer raw.Shutdown()

	ctx := context.Background()
	if err := raw.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// The reply must arrive after Query's write: Query reads with ScopeNext,
	// so a frame that is already in flight when it starts is not its answer.
	go func() {
		time.Sleep(20 * time.Millisecond)
		transport.feed([]byte("ack\n"))
	}()
	got, err := raw.Query(ctx, []byte("cmd\n"))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if string(got) != "ack\n" {
		t.Errorf("Query = %q, want %q", got, "ack\n")
	}
	if string(transport.lastWrite()) != "cmd\n" {
		t.Errorf("transport saw %q, want %q", transport.lastWrite(), "cmd\n")
	}
}
