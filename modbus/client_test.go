package modbus_test

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/labinstr/syndesi/modbus"
)

// scriptedTransport is an in-memory syndesi.Transport that hands back a
// canned response built from whatever transaction id the client just sent,
// so tests can assert on framing behavior without a real Modbus unit.
type scriptedTransport struct {
	mu          sync.Mutex
	open        bool
	lastRequest []byte
	responder   func(request []byte) []byte
	toRead      chan []byte
}

func newScriptedTransport(responder func(request []byte) []byte) *scriptedTransport {
	return &scriptedTransport{responder: responder, toRead: make(chan []byte, 8)}
}

func (s *scriptedTransport) Open() error  { s.open = true; return nil }
func (s *scriptedTransport) Close() error { s.open = false; return nil }
func (s *scriptedTransport) IsOpen() bool { return s.open }

func (s *scriptedTransport) Write(data []byte) (int, error) {
	s.mu.Lock()
	s.lastRequest = append([]byte(nil), data...)
	req := s.lastRequest
	s.mu.Unlock()
	s.toRead <- s.responder(req)
	return len(data), nil
}

func (s *scriptedTransport) Read(buf []byte) (int, error) {
	data, ok := <-s.toRead
	if !ok {
		return 0, errors.New("scriptedTransport: closed")
	}
	return copy(buf, data), nil
}

type fakeDescriptor struct{}

func (fakeDescriptor) Initialized() bool { return true }
func (fakeDescriptor) String() string    { return "fake" }

// mbapResponse builds a well-formed MBAP+PDU response echoing the request's
// transaction id, for unitID, function and pduData (everything after the
// function byte).
func mbapResponse(request []byte, unitID, function byte, pduData []byte) []byte {
	txID := binary.BigEndian.Uint16(request[0:2])
	body := append([]byte{function}, pduData...)
	header := make([]byte, 7)
	binary.BigEndian.PutUint16(header[0:2], txID)
	binary.BigEndian.PutUint16(header[2:4], 0)
	binary.BigEndian.PutUint16(header[4:6], uint16(1+len(body)))
	header[6] = unitID
	return append(header, body...)
}

func readHoldingRegistersPayload(values []uint16) []byte {
	out := []byte{byte(len(values) * 2)}
	for _, v := range values {
		out = append(out, byte(v>>8), byte(v))
	}
	return out
}

func TestClient_ReadHoldingRegisters_NormalResponse(t *testing.T) {
	transport := newScriptedTransport(func(req []byte) []byte {
		return mbapResponse(req, 1, 0x03, readHoldingRegistersPayload([]uint16{111, 222}))
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := c.ReadHoldingRegisters(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ReadHoldingRegisters: %v", err)
	}
	if len(got) != 2 || got[0] != 111 || got[1] != 222 {
		t.Errorf("ReadHoldingRegisters = %v, want [111 222]", got)
	}
}

func TestClient_ReadHoldingRegisters_ExceptionResponse(t *testing.T) {
	transport := newScriptedTransport(func(req []byte) []byte {
		return mbapResponse(req, 1, 0x03|0x80, []byte{0x02})
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err := c.ReadHoldingRegisters(ctx, 1, 2)
	var exc *modbus.ModbusException
	if !errors.As(err, &exc) {
		t.Fatalf("expected *ModbusException, got %v (%T)", err, err)
	}
	if exc.Function != 0x03 || exc.Code != 0x02 {
		t.Errorf("exception = %+v, want Function=0x03 Code=0x02", exc)
	}
}

func TestClient_ReadHoldingRegisters_TransactionIDMismatch(t *testing.T) {
	transport := newScriptedTransport(func(req []byte) []byte {
		resp := mbapResponse(req, 1, 0x03, readHoldingRegistersPayload([]uint16{1}))
		binary.BigEndian.PutUint16(resp[0:2], binary.BigEndian.Uint16(resp[0:2])+1)
		return resp
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := c.ReadHoldingRegisters(ctx, 1, 1); err == nil {
		t.Errorf("expected a transaction id mismatch error")
	}
}

func TestClient_ReadHoldingRegisters_UnitIDMismatch(t *testing.T) {
	transport := newScriptedTransport(func(req []byte) []byte {
		return mbapResponse(req, 9, 0x03, readHoldingRegistersPayload([]uint16{1}))
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := c.ReadHoldingRegisters(ctx, 1, 1); err == nil {
		t.Errorf("expected a unit id mismatch error")
	}
}

func TestClient_WriteSingleCoil_VerifiesEcho(t *testing.T) {
	transport := newScriptedTransport(func(req []byte) []byte {
		// echo address=0, value=0xFF00 (on), matching a request for address 1 on.
		return mbapResponse(req, 1, 0x05, []byte{0x00, 0x00, 0xFF, 0x00})
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.WriteSingleCoil(ctx, 1, true); err != nil {
		t.Errorf("WriteSingleCoil: %v", err)
	}
}

func TestClient_WriteSingleCoil_EchoMismatchFails(t *testing.T) {
	transport := newScriptedTransport(func(req []byte) []byte {
		return mbapResponse(req, 1, 0x05, []byte{0x00, 0x00, 0x00, 0x00})
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.WriteSingleCoil(ctx, 1, true); err == nil {
		t.Errorf("expected an echo-mismatch error when server echoes off instead of on")
	}
}

func TestClient_Diagnostics_CountsMessagesAndExceptions(t *testing.T) {
	excNext := true
	transport := newScriptedTransport(func(req []byte) []byte {
		if excNext {
			excNext = false
			return mbapResponse(req, 1, 0x03|0x80, []byte{0x02})
		}
		return mbapResponse(req, 1, 0x03, readHoldingRegistersPayload([]uint16{1}))
	})
	c := modbus.NewClient(transport, fakeDescriptor{}, 1)
	defer c.Shutdown()

	ctx := context.Background()
	if err := c.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := c.ReadHoldingRegisters(ctx, 1, 1); err == nil {
		t.Fatalf("expected the first call to return an exception")
	}
	if _, err := c.ReadHoldingRegisters(ctx, 1, 1); err != nil {
		t.Fatalf("ReadHoldingRegisters: %v", err)
	}

	snap := c.Diagnostics()
	if snap.Messages != 2 {
		t.Errorf("Messages = %d, want 2", snap.Messages)
	}
	if snap.Exceptions != 1 {
		t.Errorf("Exceptions = %d, want 1", snap.Exceptions)
	}
}
