package protocol_test

import (
	"context"
	"testing"
	"time"

	"github.com/labinstr/syndesi/protocol"
)

func TestDelimited_WriteAppendsSendTerminator(t *testing.T) {
	transport := newPipeTransport()
	d := protocol.NewDelimited(transport, fakeDescriptor{})
	defer d.Shutdown()

	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Write(ctx, "SET:VOLT 1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(transport.lastWrite()) != "SET:VOLT 1\n" {
		t.Errorf("transport saw %q, want %q", transport.lastWrite(), "SET:VOLT 1\n")
	}
}

func TestDelimited_ReadStripsReceiveTerminator(t *testing.T) {
	transport := newPipeTransport()
	d := protocol.NewDelimited(transport, fakeDescriptor{})
	defer d.Shutdown()

	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	transport.feed([]byte("reply\n"))
	got, err := d.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "reply" {
		t.Errorf("Read = %q, want %q", got, "reply")
	}
}

func TestDelimited_AsymmetricTerminators(t *testing.T) {
	transport := newPipeTransport()
	d := protocol.NewDelimited(transport, fakeDescriptor{},
		protocol.WithSendTerminator("\r\n"),
		protocol.WithReceiveTerminator("\n"))
	defer d.Shutdown()

	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Write(ctx, "cmd"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(transport.lastWrite()) != "cmd\r\n" {
		t.Errorf("transport saw %q, want %q", transport.lastWrite(), "cmd\r\n")
	}

	transport.feed([]byte("reply\n"))
	got, err := d.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "reply" {
		t.Errorf("Read = %q, want %q", got, "reply")
	}
}

func TestDelimited_QueryRoundTrip(t *testing.T) {
	transport := newPipeTransport()
	d := protocol.NewDelimited(transport, fakeDescriptor{})
	defer d.Shutdown()

	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	// The reply must arrive after Query's write: Query reads with ScopeNext,
	// so a frame that is already in flight when it starts is not its answer.
	go func() {
		time.Sleep(20 * time.Millisecond)
		transport.feed([]byte("42\n"))
	}()
	got, err := d.Query(ctx, "GET:VAL?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got != "42" {
		t.Errorf("Query = %q, want %q", got, "42")
	}
}

func TestDelimited_EventCallbackForwardsDisconnect(t *testing.T) {
	transport := newPipeTransport()
	events := make(chan protocol.DelimitedEvent, 4)
	d := protocol.NewDelimited(transport, fakeDescriptor{},
		protocol.WithDelimitedEventCallback(func(ev protocol.DelimitedEvent) { events <- ev }))
	defer d.Shutdown()

	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	close(transport.toRead)

	select {
	case ev := <-events:
		if _, ok := ev.(protocol.DelimitedDisconnectedEvent); !ok {
			t.Fatalf("expected DelimitedDisconnectedEvent, got %T", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for DelimitedDisconnectedEvent")
	}
}

func TestDelimited_CustomTextCodec(t *testing.T) {
	transport := newPipeTransport()
	upper := protocol.TextCodec{
		Encode: func(s string) []byte { return []byte(s) },
		Decode: func(b []byte) (string, error) { return string(b) + "-decoded", nil },
	}
	d := protocol.NewDelimited(transport, fakeDescriptor{}, protocol.WithTextCodec(upper))
	defer d.Shutdown()

	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	transport.feed([]byte("x\n"))
	got, err := d.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "x\n-decoded" {
		t.Errorf("Read = %q, want %q", got, "x\n-decoded")
	}
}
