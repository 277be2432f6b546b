package syndesi

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AdapterOption configures an Adapter at construction time, following the
// functional-options idiom hayabusa-cloud-framer uses for its transport
// options (netopts.go/options.go).
type AdapterOption func(*adapterConfig)

type adapterConfig struct {
	defaultTimeout Timeout
	stopConditions []StopCondition
	bufferCapacity int
	autoOpen       bool
	eventCallback  EventCallback
	logger         *slog.Logger
}

// WithDefaultTimeout sets the response timeout every read uses unless it
// supplies its own override via ReadOption.
func WithDefaultTimeout(t Timeout) AdapterOption {
	return func(c *adapterConfig) { c.defaultTimeout = t }
}

// WithDefaultStopConditions sets the stop conditions every read uses unless
// it supplies its own override via ReadOption.
func WithDefaultStopConditions(conds ...StopCondition) AdapterOption {
	return func(c *adapterConfig) { c.stopConditions = conds }
}

// WithBufferCapacity overrides the frame ring buffer's capacity (default
// DefaultBufferCapacity). Oldest frames are dropped once full.
func WithBufferCapacity(capacity int) AdapterOption {
	return func(c *adapterConfig) { c.bufferCapacity = capacity }
}

// WithAutoOpen makes Write implicitly open the adapter if it is closed,
// instead of returning a ConfigurationError.
func WithAutoOpen(enabled bool) AdapterOption {
	return func(c *adapterConfig) { c.autoOpen = enabled }
}

// WithEventCallback installs the initial event callback (see SetEventCallback).
func WithEventCallback(cb EventCallback) AdapterOption {
	return func(c *adapterConfig) { c.eventCallback = cb }
}

// WithLogger overrides the slog.Logger the adapter and its worker use.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *adapterConfig) { c.logger = logger }
}

// ReadOption configures a single Read/Query call, overriding the adapter's
// defaults for that call only.
type ReadOption func(*readParams)

// WithReadTimeout overrides the response timeout for one read.
func WithReadTimeout(t Timeout) ReadOption {
	return func(p *readParams) { p.hasTimeout = true; p.timeout = t }
}

// WithReadStopConditions overrides the stop conditions for one read. The
// override is applied at the next frame boundary and restored once that
// read completes; it never interrupts an in-progress frame.
func WithReadStopConditions(conds ...StopCondition) ReadOption {
	return func(p *readParams) { p.hasStopConds = true; p.stopConds = conds }
}

// WithScope overrides the read scope for one read (default ScopeBuffered).
func WithScope(scope ReadScope) ReadOption {
	return func(p *readParams) { p.scope = scope }
}

// Adapter is the caller-facing handle to one transport endpoint: a single
// worker goroutine drives the transport and serializes all access behind
// command/reply channels (spec.md §4, §5). An Adapter is created open-
// lazily — construction never touches the network; the first Open (or,
// with WithAutoOpen, the first Write) does.
//
// Adapter is safe for concurrent use. A mutex serializes the compound
// Query operation (write-then-read) so two goroutines never interleave
// their halves against each other; individual Read/Write/Open/Close calls
// are each a single round trip to the worker and need no external lock.
type Adapter struct {
	w *worker

	queryMu      sync.Mutex
	shutdownOnce sync.Once
}

// NewAdapter constructs an Adapter bound to transport, identified by
// descriptor, and starts its worker goroutine. The transport is not opened
// until Open is called (or, with WithAutoOpen, until the first Write).
func NewAdapter(transport Transport, descriptor Descriptor, opts ...AdapterOption) *Adapter {
	cfg := adapterConfig{
		defaultTimeout: NewTimeout(5*time.Second, TimeoutActionError),
		bufferCapacity: DefaultBufferCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := newWorker(workerConfig{
		Transport:      transport,
		Descriptor:     descriptor,
		DefaultTimeout: cfg.defaultTimeout,
		StopConditions: cfg.stopConditions,
		BufferCapacity: cfg.bufferCapacity,
		AutoOpen:       cfg.autoOpen,
		EventCallback:  cfg.eventCallback,
		Logger:         cfg.logger,
	})
	w.start()

	return &Adapter{w: w}
}

// send delivers cmd to the worker and waits for its reply, bounding the
// wait by ctx and by workerGuard (whichever is sooner), so a stuck worker
// surfaces as a WorkerError instead of hanging the caller forever.
func (a *Adapter) send(ctx context.Context, cmd *command) (commandReply, error) {
	guard := time.NewTimer(workerGuard)
	defer guard.Stop()

	select {
	case a.w.cmds <- cmd:
	case <-ctx.Done():
		return commandReply{}, WorkerError(ctx.Err(), "command not accepted by worker")
	case <-guard.C:
		return commandReply{}, WorkerError(nil, "worker did not accept command within %s", workerGuard)
	}

	select {
	case reply := <-cmd.reply:
		return reply, reply.err
	case <-ctx.Done():
		return commandReply{}, WorkerError(ctx.Err(), "worker did not reply before context was done")
	case <-guard.C:
		return commandReply{}, WorkerError(nil, "worker did not reply within %s", workerGuard)
	}
}

// Open connects the underlying transport, starting the worker's reader
// goroutine. Calling Open on an already-open Adapter is a no-op success.
func (a *Adapter) Open(ctx context.Context) error {
	_, err := a.send(ctx, newCommand(cmdOpen))
	return err
}

// Close disconnects the underlying transport, failing any pending read
// with a DisconnectedError and discarding buffered frames and any
// in-progress assembly. The Adapter itself remains usable: a later Open
// reconnects. Close does not stop the worker goroutine — see Shutdown.
func (a *Adapter) Close(ctx context.Context) error {
	_, err := a.send(ctx, newCommand(cmdClose))
	return err
}

// IsOpen reports whether the underlying transport is currently open.
func (a *Adapter) IsOpen(ctx context.Context) (bool, error) {
	reply, err := a.send(ctx, newCommand(cmdIsOpen))
	if err != nil {
		return false, err
	}
	return reply.isOpen, nil
}

// Write sends data to the transport. If the adapter was constructed with
// WithAutoOpen and the transport is closed, Write opens it first.
func (a *Adapter) Write(ctx context.Context, data []byte) error {
	cmd := newCommand(cmdWrite)
	cmd.writeData = data
	_, err := a.send(ctx, cmd)
	return err
}

// FlushRead discards any buffered frames and any in-progress assembly, so
// a subsequent Read blocks only on bytes that arrive afterward.
func (a *Adapter) FlushRead(ctx context.Context) error {
	_, err := a.send(ctx, newCommand(cmdFlushRead))
	return err
}

// SetDefaultTimeout changes the response timeout used by reads that don't
// supply their own override.
func (a *Adapter) SetDefaultTimeout(ctx context.Context, t Timeout) error {
	cmd := newCommand(cmdSetTimeout)
	cmd.timeout = t
	_, err := a.send(ctx, cmd)
	return err
}

// SetDefaultStopConditions changes the stop conditions used by reads that
// don't supply their own override.
func (a *Adapter) SetDefaultStopConditions(ctx context.Context, conds ...StopCondition) error {
	cmd := newCommand(cmdSetStopConditions)
	cmd.stopConds = conds
	_, err := a.send(ctx, cmd)
	return err
}

// SetDescriptor rebinds the adapter to a new descriptor, and optionally a
// new transport (closing the previous transport first if it was open).
// Passing a nil transport keeps the current one and only updates the
// descriptor's label.
func (a *Adapter) SetDescriptor(ctx context.Context, descriptor Descriptor, transport Transport) error {
	cmd := newCommand(cmdSetDescriptor)
	cmd.descriptor = descriptor
	cmd.transport = transport
	_, err := a.send(ctx, cmd)
	return err
}

// SetEventCallback installs cb as the adapter's event callback, replacing
// any previous one. Pass nil to disable event delivery.
func (a *Adapter) SetEventCallback(ctx context.Context, cb EventCallback) error {
	cmd := newCommand(cmdSetEventCallback)
	cmd.callback = cb
	_, err := a.send(ctx, cmd)
	return err
}

// Read waits for one Frame according to the default (or per-call
// overridden) timeout, stop conditions, and scope, and returns its
// payload. See ReadDetailed to retrieve the full Frame.
func (a *Adapter) Read(ctx context.Context, opts ...ReadOption) ([]byte, error) {
	f, err := a.ReadDetailed(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return f.Payload(), nil
}

// ReadDetailed is Read, but returns the full Frame (fragments, stop kind,
// response delay, previous-buffer flag) instead of just its payload.
func (a *Adapter) ReadDetailed(ctx context.Context, opts ...ReadOption) (Frame, error) {
	cmd := newCommand(cmdRead)
	cmd.read = readParams{scope: ScopeBuffered}
	for _, opt := range opts {
		opt(&cmd.read)
	}
	reply, err := a.send(ctx, cmd)
	if err != nil {
		return Frame{}, err
	}
	return reply.frame, nil
}

// Query flushes, writes data, and reads the reply it provokes. The three
// steps run under a lock that only Query and QueryDetailed take, so two
// queries on the same Adapter never interleave; a plain Read or Write from
// another goroutine does not take that lock and can run between the steps.
// ScopeNext is forced for the read half regardless of opts, since any frame
// from before the write cannot be this query's answer.
func (a *Adapter) Query(ctx context.Context, data []byte, opts ...ReadOption) ([]byte, error) {
	f, err := a.QueryDetailed(ctx, data, opts...)
	if err != nil {
		return nil, err
	}
	return f.Payload(), nil
}

// QueryDetailed is Query, but returns the full Frame.
func (a *Adapter) QueryDetailed(ctx context.Context, data []byte, opts ...ReadOption) (Frame, error) {
	a.queryMu.Lock()
	defer a.queryMu.Unlock()

	if err := a.FlushRead(ctx); err != nil {
		return Frame{}, err
	}
	if err := a.Write(ctx, data); err != nil {
		return Frame{}, err
	}
	readOpts := append(append([]ReadOption{}, opts...), WithScope(ScopeNext))
	return a.ReadDetailed(ctx, readOpts...)
}

// Shutdown stops the worker goroutine permanently, closing the transport
// first if it is open. An Adapter is unusable after Shutdown; Go has no
// destructors, so callers that are done with an Adapter must call this
// explicitly to release its goroutine (spec.md §5's "released on every
// exit path", translated to Go's lifetime model).
func (a *Adapter) Shutdown() {
	a.shutdownOnce.Do(func() { close(a.w.shutdown) })
}
