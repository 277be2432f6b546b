// Package modbus implements a Modbus TCP client layered on a
// syndesi.Adapter, per spec.md §4.7. Unlike the teacher's own modbus.go
// (which owns its sockets and multiplexes both client and server roles
// over a shared demuxRX/associate goroutine pair), this package is
// client-only: it reuses syndesi's worker/adapter machinery for the
// transport and framing instead of running its own reactor. See
// DESIGN.md for why the server half was not carried forward.
package modbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/labinstr/syndesi"
	"github.com/labinstr/syndesi/internal/wire"
)

// mbapSize is the MBAP header's fixed size: transaction id (2) + protocol
// id (2) + length (2) + unit id (1).
const mbapSize = 7

// maxPDUSize is spec.md §4.7's "effective PDU payload ≤ 253 bytes per frame".
const maxPDUSize = 253

// frameGap bounds how long the client waits between fragments of one
// response before giving up, per spec.md §4.7's "auxiliary Continuation to
// bound inter-fragment gaps (default 1 s)".
const frameGap = 1 * time.Second

// pdu is a decoded Modbus protocol data unit: a function code and its
// data, without the MBAP envelope. Mirrors the teacher's own pdu type
// (modbus.go) — same shape, generalized to this package's client-only
// request/response plumbing.
type pdu struct {
	function byte
	data     []byte
}

func (p pdu) isException() bool { return p.function&0x80 != 0 }

// Client is a Modbus TCP client bound to one remote unit over one
// syndesi.Adapter. Transaction ids increment per request and are
// validated on every response, per spec.md §4.7.
type Client struct {
	Adapter   *syndesi.Adapter
	UnitID    byte
	ByteOrder wire.ByteOrder
	WordOrder wire.WordOrder

	txMu  sync.Mutex
	txID  uint16
	stats Diagnostics

	// doMu serializes whole request/response transactions. Two do() calls
	// racing on the same Client would both install a ScopeNext read
	// override on the shared Adapter, and whichever response fragment
	// lands first could satisfy the wrong caller's read; a single
	// transaction lock keeps "one request in flight at a time" true
	// regardless of how many goroutines share this Client.
	doMu sync.Mutex
}

// NewClient builds a Client over transport/descriptor, targeting unitID,
// with big-endian byte and word order (the Modbus wire default; override
// the ByteOrder/WordOrder fields for devices that violate it).
func NewClient(transport syndesi.Transport, descriptor syndesi.Descriptor, unitID byte, opts ...syndesi.AdapterOption) *Client {
	adapter := syndesi.NewAdapter(transport, descriptor, opts...)
	return &Client{Adapter: adapter, UnitID: unitID, ByteOrder: wire.BigEndian, WordOrder: wire.WordBigEndian}
}

func (c *Client) nextTransactionID() uint16 {
	c.txMu.Lock()
	defer c.txMu.Unlock()
	c.txID++
	return c.txID
}

// Open, Close, IsOpen and Shutdown delegate to the underlying Adapter.
func (c *Client) Open(ctx context.Context) error  { return c.Adapter.Open(ctx) }
func (c *Client) Close(ctx context.Context) error { return c.Adapter.Close(ctx) }
func (c *Client) IsOpen(ctx context.Context) (bool, error) {
	return c.Adapter.IsOpen(ctx)
}
func (c *Client) Shutdown() { c.Adapter.Shutdown() }

// do sends one request PDU and returns the matching response PDU,
// implementing spec.md §4.7's framing-level stop condition and
// transaction-id validation. It is the single choke point every exported
// Client method funnels through.
//
// wantRespLen is the MBAP+PDU byte count of the NORMAL (non-exception)
// response, computed by the caller from the request shape (e.g. a
// ReadHoldingRegisters(5) call expects 7+2+10 bytes back). The read
// installs Length(wantRespLen) as its primary stop condition so the
// common case completes the instant the last expected byte lands;
// exception responses are shorter and never reach that count, so the
// auxiliary Continuation(frameGap) bound is what actually closes the
// frame for them, per spec.md §4.7.
func (c *Client) do(ctx context.Context, req pdu, wantRespLen int) (pdu, error) {
	c.doMu.Lock()
	defer c.doMu.Unlock()

	if len(req.data)+1 > maxPDUSize {
		return pdu{}, syndesi.ConfigurationError("modbus: request PDU of %d bytes exceeds the %d byte budget", len(req.data)+1, maxPDUSize)
	}

	txID := c.nextTransactionID()
	frame := make([]byte, mbapSize+1+len(req.data))
	binary.BigEndian.PutUint16(frame[0:2], txID)
	binary.BigEndian.PutUint16(frame[2:4], 0)
	binary.BigEndian.PutUint16(frame[4:6], uint16(1+1+len(req.data)))
	frame[6] = c.UnitID
	frame[7] = req.function
	copy(frame[8:], req.data)

	if err := c.Adapter.FlushRead(ctx); err != nil {
		return pdu{}, c.fail(err)
	}
	if err := c.Adapter.Write(ctx, frame); err != nil {
		return pdu{}, c.fail(err)
	}

	resp, err := c.Adapter.Read(ctx,
		syndesi.WithScope(syndesi.ScopeNext),
		syndesi.WithReadStopConditions(syndesi.NewLength(wantRespLen), syndesi.NewContinuation(frameGap)),
	)
	if err != nil {
		return pdu{}, c.fail(err)
	}
	if len(resp) < mbapSize+2 {
		return pdu{}, c.fail(syndesi.ReadError(nil, "modbus: response too short: got %d bytes, need at least %d", len(resp), mbapSize+2))
	}
	header, body := resp[:mbapSize], resp[mbapSize:]

	length := binary.BigEndian.Uint16(header[4:6])
	if length < 2 || int(length) > len(body)+1 {
		return pdu{}, c.fail(syndesi.ReadError(nil, "modbus: response declares invalid length %d for %d body bytes", length, len(body)))
	}
	body = body[:length-1]

	gotTxID := binary.BigEndian.Uint16(header[0:2])
	if gotTxID != txID {
		return pdu{}, c.fail(syndesi.ReadError(nil, "modbus: transaction id mismatch: sent %d, got %d", txID, gotTxID))
	}
	if protoID := binary.BigEndian.Uint16(header[2:4]); protoID != 0 {
		return pdu{}, c.fail(syndesi.ReadError(nil, "modbus: unexpected protocol id %d", protoID))
	}
	if header[6] != c.UnitID {
		return pdu{}, c.fail(syndesi.ReadError(nil, "modbus: unit id mismatch: sent %d, got %d", c.UnitID, header[6]))
	}

	respPDU := pdu{function: body[0], data: body[1:]}
	c.stats.recordMessage()
	if respPDU.isException() {
		if len(respPDU.data) < 1 {
			return pdu{}, c.fail(fmt.Errorf("modbus: exception response missing exception code"))
		}
		c.stats.recordException()
		return pdu{}, &ModbusException{Function: respPDU.function &^ 0x80, Code: respPDU.data[0]}
	}
	if respPDU.function != req.function {
		return pdu{}, c.fail(syndesi.ReadError(nil, "modbus: response function 0x%02X does not match request 0x%02X", respPDU.function, req.function))
	}
	return respPDU, nil
}

func (c *Client) fail(err error) error {
	c.stats.recordCommError()
	return err
}

// checkAddress validates a 1-based data-model address, translating it to
// the 0-based PDU address, per spec.md §4.7's "Address space" rule:
// address 0 is rejected.
func checkAddress(address int) (int, error) {
	if address < 1 || address > 65536 {
		return 0, syndesi.ConfigurationError("modbus: address %d out of range [1, 65536]", address)
	}
	return address - 1, nil
}
