package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/labinstr/syndesi"
)

// TextCodec is the pluggable encode/decode hook Delimited uses to turn a
// payload string into wire bytes and back. The zero value behaves as
// UTF8Codec, since a Go string is already a valid UTF-8 byte sequence and
// needs no third-party codec library for the common case; callers with a
// device that speaks another text encoding supply their own.
type TextCodec struct {
	Encode func(string) []byte
	Decode func([]byte) (string, error)
}

// UTF8Codec is the default TextCodec: identity conversion between string
// and []byte.
var UTF8Codec = TextCodec{
	Encode: func(s string) []byte { return []byte(s) },
	Decode: func(b []byte) (string, error) { return string(b), nil },
}

func (c TextCodec) orDefault() TextCodec {
	if c.Encode == nil || c.Decode == nil {
		return UTF8Codec
	}
	return c
}

// DelimitedEvent is the payload-typed event Delimited forwards from its
// underlying adapter.
type DelimitedEvent interface{ isDelimitedEvent() }

// DelimitedFrameEvent reports a completed, decoded frame.
type DelimitedFrameEvent struct {
	Payload string
	Frame   syndesi.Frame
}

func (DelimitedFrameEvent) isDelimitedEvent() {}

// DelimitedDisconnectedEvent reports loss of the transport.
type DelimitedDisconnectedEvent struct{}

func (DelimitedDisconnectedEvent) isDelimitedEvent() {}

// DelimitedEventCallback receives DelimitedEvent values on the adapter's
// worker goroutine; see syndesi.EventCallback for the non-blocking/no-panic
// contract it must honor.
type DelimitedEventCallback func(DelimitedEvent)

// Delimited installs Termination(receiveTerminator) as the adapter's
// default stop condition and translates between string payloads and the
// adapter's byte frames, per spec.md §4.6. send_terminator and
// receive_terminator may differ.
type Delimited struct {
	Adapter           *syndesi.Adapter
	SendTerminator    string
	ReceiveTerminator string
	Codec             TextCodec
}

// DelimitedOption configures a Delimited at construction time.
type DelimitedOption func(*delimitedConfig)

type delimitedConfig struct {
	sendTerm, recvTerm string
	codec              TextCodec
	timeout            syndesi.Timeout
	callback           DelimitedEventCallback
}

// WithTerminator sets both the send and receive terminator to the same
// sequence (the common case). Use WithSendTerminator/WithReceiveTerminator
// for asymmetric framing.
func WithTerminator(term string) DelimitedOption {
	return func(c *delimitedConfig) { c.sendTerm = term; c.recvTerm = term }
}

func WithSendTerminator(term string) DelimitedOption {
	return func(c *delimitedConfig) { c.sendTerm = term }
}

func WithReceiveTerminator(term string) DelimitedOption {
	return func(c *delimitedConfig) { c.recvTerm = term }
}

func WithTextCodec(codec TextCodec) DelimitedOption {
	return func(c *delimitedConfig) { c.codec = codec }
}

func WithDelimitedTimeout(t syndesi.Timeout) DelimitedOption {
	return func(c *delimitedConfig) { c.timeout = t }
}

func WithDelimitedEventCallback(cb DelimitedEventCallback) DelimitedOption {
	return func(c *delimitedConfig) { c.callback = cb }
}

// delimitedDefaultTimeout is spec.md §4.6's Raw default (Delimited has no
// default of its own; SCPI overrides it to 5s/ERROR).
var delimitedDefaultTimeout = syndesi.NewTimeout(2*time.Second, syndesi.TimeoutActionError)

// NewDelimited builds a Delimited protocol over a fresh Adapter, installing
// "\n" as both terminators unless overridden.
func NewDelimited(transport syndesi.Transport, descriptor syndesi.Descriptor, opts ...DelimitedOption) *Delimited {
	cfg := delimitedConfig{sendTerm: "\n", recvTerm: "\n", timeout: delimitedDefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	d := &Delimited{SendTerminator: cfg.sendTerm, ReceiveTerminator: cfg.recvTerm, Codec: cfg.codec.orDefault()}

	adapterOpts := []syndesi.AdapterOption{
		syndesi.WithDefaultTimeout(cfg.timeout),
		syndesi.WithDefaultStopConditions(syndesi.NewTermination([]byte(cfg.recvTerm))),
	}
	if cfg.callback != nil {
		adapterOpts = append(adapterOpts, syndesi.WithEventCallback(d.forward(cfg.callback)))
	}
	d.Adapter = syndesi.NewAdapter(transport, descriptor, adapterOpts...)
	return d
}

func (d *Delimited) forward(cb DelimitedEventCallback) syndesi.EventCallback {
	return func(ev syndesi.Event) {
		switch e := ev.(type) {
		case syndesi.FrameEvent:
			payload, err := d.decode(e.Frame.Payload())
			if err != nil {
				return
			}
			cb(DelimitedFrameEvent{Payload: payload, Frame: e.Frame})
		case syndesi.DisconnectedEvent:
			cb(DelimitedDisconnectedEvent{})
		}
	}
}

func (d *Delimited) decode(data []byte) (string, error) {
	s, err := d.Codec.Decode(data)
	if err != nil {
		return "", fmt.Errorf("syndesi/protocol: decode: %w", err)
	}
	if len(d.ReceiveTerminator) > 0 && len(s) >= len(d.ReceiveTerminator) && s[len(s)-len(d.ReceiveTerminator):] == d.ReceiveTerminator {
		s = s[:len(s)-len(d.ReceiveTerminator)]
	}
	return s, nil
}

func (d *Delimited) Open(ctx context.Context) error  { return d.Adapter.Open(ctx) }
func (d *Delimited) Close(ctx context.Context) error { return d.Adapter.Close(ctx) }
func (d *Delimited) IsOpen(ctx context.Context) (bool, error) {
	return d.Adapter.IsOpen(ctx)
}
func (d *Delimited) Shutdown() { d.Adapter.Shutdown() }

// Write appends the send terminator to command and writes it as bytes.
func (d *Delimited) Write(ctx context.Context, command string) error {
	return d.Adapter.Write(ctx, d.Codec.Encode(command+d.SendTerminator))
}

// Read waits for one frame and returns it decoded, with the receive
// terminator stripped.
func (d *Delimited) Read(ctx context.Context, opts ...syndesi.ReadOption) (string, error) {
	data, err := d.Adapter.Read(ctx, opts...)
	if err != nil {
		return "", err
	}
	return d.decode(data)
}

// Query flushes, writes command, and reads the reply it provokes.
func (d *Delimited) Query(ctx context.Context, command string, opts ...syndesi.ReadOption) (string, error) {
	data, err := d.Adapter.Query(ctx, d.Codec.Encode(command+d.SendTerminator), opts...)
	if err != nil {
		return "", err
	}
	return d.decode(data)
}
