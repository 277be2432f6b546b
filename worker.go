package syndesi

import (
	"log/slog"
	"time"
)

// readBufferSize bounds a single OS-level read. It is sized comfortably
// above UDP's 65507-byte datagram ceiling (spec.md §6) so a single
// transport.UDP.Read never gets truncated by this generic pipeline.
const readBufferSize = 65536

// worker is the reactor bound to one transport endpoint: one goroutine
// (run) that serializes command handling and fragment processing exactly
// as spec.md §4.3 describes, translated from a select(2)-on-file-
// descriptors loop into a select-on-channels loop — the same translation
// the teacher itself already performs in tcp.go's wireReader/wireWriter
// pair and modbus.go's demuxRX/associate goroutines.
type worker struct {
	transport        Transport
	descriptor       Descriptor
	autoOpen         bool
	intentionalClose bool
	readerGen        int

	cmds     chan *command
	frags    chan taggedFragment
	shutdown chan struct{}

	stopConditions []StopCondition
	defaultTimeout Timeout

	currentFragments         []Fragment
	firstFragTS              time.Time
	lastFragTS               time.Time
	frameStartedFromDeferred bool
	nextStopWakeup           time.Time

	lastWriteTS  time.Time
	haveLastWrite bool

	buffer        *frameRingBuffer
	pending       *pendingRead
	eventCallback EventCallback

	logger *slog.Logger
}

// workerConfig bundles the construction-time parameters for newWorker.
type workerConfig struct {
	Transport       Transport
	Descriptor      Descriptor
	DefaultTimeout  Timeout
	StopConditions  []StopCondition
	BufferCapacity  int
	AutoOpen        bool
	EventCallback   EventCallback
	Logger          *slog.Logger
}

func newWorker(cfg workerConfig) *worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &worker{
		transport:      cfg.Transport,
		descriptor:     cfg.Descriptor,
		autoOpen:       cfg.AutoOpen,
		cmds:           make(chan *command),
		frags:          make(chan taggedFragment),
		shutdown:       make(chan struct{}),
		stopConditions: CloneStopConditions(cfg.StopConditions),
		defaultTimeout: cfg.DefaultTimeout,
		buffer:         newFrameRingBuffer(cfg.BufferCapacity),
		eventCallback:  cfg.EventCallback,
		logger:         logger,
	}
	return w
}

func (w *worker) start() { go w.run() }

func (w *worker) run() {
	for {
		next := w.nextDeadline()
		var timer *time.Timer
		var timerC <-chan time.Time
		if !next.IsZero() {
			d := time.Until(next)
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-w.shutdown:
			stopTimer(timer)
			w.doClose()
			return
		case cmd := <-w.cmds:
			stopTimer(timer)
			w.handleCommand(cmd)
		case frag := <-w.frags:
			stopTimer(timer)
			w.handleFragment(frag)
		case t := <-timerC:
			w.onTimerFire(t)
		}
	}
}

func stopTimer(t *time.Timer) {
	if t == nil {
		return
	}
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// nextDeadline is min(next stop-condition wakeup, pending response
// deadline), matching the reactor's "compute next_deadline" step.
func (w *worker) nextDeadline() time.Time {
	d := w.nextStopWakeup
	if w.pending != nil && w.pending.haveDeadline && !w.pending.seenFirstFrame {
		if d.IsZero() || w.pending.responseDeadline.Before(d) {
			d = w.pending.responseDeadline
		}
	}
	return d
}

// taggedFragment carries the reader generation that produced it, so the
// worker can discard a stale reader's leftover disconnect/read report that
// might otherwise race against a fresh Open from the same command loop
// (the teacher's own wireReader/wireWriter pair sidesteps this because a
// single tcp value is never reused across connections; this worker reuses
// one Transport across repeated open/close cycles, so the race is real and
// must be tagged out).
type taggedFragment struct {
	frag Fragment
	gen  int
}

func (w *worker) readerLoop(t Transport, gen int) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := t.Read(buf)
		ts := time.Now()
		if err != nil || n == 0 {
			select {
			case w.frags <- taggedFragment{frag: disconnectFragment(), gen: gen}:
			case <-w.shutdown:
			}
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case w.frags <- taggedFragment{frag: NewFragment(data, ts), gen: gen}:
		case <-w.shutdown:
			return
		}
	}
}

// handleFragment implements spec.md §4.3's fragment pipeline for one
// OS-level fragment.
func (w *worker) handleFragment(tf taggedFragment) {
	if tf.gen != w.readerGen {
		return
	}
	frag := tf.frag
	if frag.IsDisconnect() {
		w.handleDisconnect()
		return
	}
	w.processInput(frag.Data(), frag.Timestamp(), false)
}

// processInput feeds data through the installed stop conditions, looping
// on any deferred bytes as the first input of the next frame (spec.md's
// Invariants: "Deferred bytes left over from one frame become the first
// input of the next read's assembly; ordering is preserved byte-for-byte").
func (w *worker) processInput(data []byte, ts time.Time, fromDeferred bool) {
	for {
		if len(w.currentFragments) == 0 {
			w.applyPendingOverrideIfDue()
			initStopConditions(w.stopConditions, ts)
			w.firstFragTS = ts
			w.frameStartedFromDeferred = fromDeferred
			if w.pending != nil {
				w.pending.disarm()
			}
		}

		kept, deferred, stop, kind, wakeup := evaluateStopConditions(w.stopConditions, data, ts)
		if len(kept) > 0 {
			w.currentFragments = append(w.currentFragments, Fragment{data: kept, ts: ts, hasTS: true})
			w.lastFragTS = ts
		}
		w.nextStopWakeup = wakeup

		if !stop {
			return
		}

		frame := w.buildFrame(kind, ts)
		w.currentFragments = nil
		w.nextStopWakeup = time.Time{}
		w.deliverFrame(frame)

		if len(deferred) == 0 {
			return
		}
		data = deferred
		fromDeferred = true
	}
}

func (w *worker) buildFrame(kind StopKind, ts time.Time) Frame {
	f := Frame{
		Fragments:          w.currentFragments,
		StopTimestamp:      ts,
		StopKind:           kind,
		PreviousBufferUsed: w.frameStartedFromDeferred,
	}
	if w.haveLastWrite && len(f.Fragments) > 0 {
		f.setResponseDelay(f.Fragments[0].Timestamp().Sub(w.lastWriteTS))
	}
	return f
}

// deliverFrame completes the pending read if the frame qualifies for it,
// otherwise appends it to the ring buffer, and always invokes the event
// callback (spec.md §4.3/§4.4).
func (w *worker) deliverFrame(f Frame) {
	if w.pending != nil && w.pending.qualifies(f) {
		p := w.pending
		w.pending = nil
		w.restoreOverride(p)
		p.reply <- commandReply{frame: f}
	} else {
		w.buffer.push(f)
	}
	w.emit(FrameEvent{Frame: f})
}

func (w *worker) emit(ev Event) {
	if w.eventCallback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("syndesi: event callback panicked", "recover", r)
		}
	}()
	w.eventCallback(ev)
}

func (w *worker) handleDisconnect() {
	if w.intentionalClose {
		w.intentionalClose = false
		return
	}
	w.logger.Warn("syndesi: transport disconnected", "descriptor", descriptorString(w.descriptor))
	_ = w.transport.Close()
	w.resetAssembly()
	if w.pending != nil {
		p := w.pending
		w.pending = nil
		w.restoreOverride(p)
		p.reply <- commandReply{err: DisconnectedError("transport disconnected")}
	}
	w.emit(DisconnectedEvent{})
}

func (w *worker) resetAssembly() {
	w.currentFragments = nil
	w.nextStopWakeup = time.Time{}
	w.frameStartedFromDeferred = false
	flushStopConditions(w.stopConditions)
}

// onTimerFire implements reactor step 5: response timeout takes strict
// precedence over stop-condition timeouts, and only while the pending read
// has not yet seen a qualifying first fragment (spec.md §9 Open Question a).
func (w *worker) onTimerFire(now time.Time) {
	if w.pending != nil && !w.pending.seenFirstFrame && w.pending.haveDeadline && !now.Before(w.pending.responseDeadline) {
		w.completeResponseTimeout()
		return
	}
	if len(w.currentFragments) == 0 {
		return
	}
	stop, kind, wakeup := checkStopTimeouts(w.stopConditions, now)
	w.nextStopWakeup = wakeup
	if !stop {
		return
	}
	frame := w.buildFrame(kind, now)
	w.currentFragments = nil
	w.nextStopWakeup = time.Time{}
	w.deliverFrame(frame)
}

func (w *worker) completeResponseTimeout() {
	p := w.pending
	w.pending = nil
	w.restoreOverride(p)
	if p.timeout.Action == TimeoutActionReturnEmpty {
		w.logger.Debug("syndesi: response timeout, returning empty frame")
		p.reply <- commandReply{frame: Frame{}}
		return
	}
	p.reply <- commandReply{err: TimeoutError(*p.timeout.Response)}
}

func (w *worker) restoreOverride(p *pendingRead) {
	if p.hasOverride && p.overrideApplied {
		w.stopConditions = p.priorStop
	}
}

func (w *worker) applyPendingOverrideIfDue() {
	p := w.pending
	if p == nil || !p.hasOverride || p.overrideApplied {
		return
	}
	p.priorStop = w.stopConditions
	w.stopConditions = p.stopConds
	p.overrideApplied = true
}

func descriptorString(d Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}

// --- command handling ---

func (w *worker) handleCommand(cmd *command) {
	switch cmd.kind {
	case cmdOpen:
		cmd.reply <- commandReply{err: w.doOpen()}
	case cmdClose:
		w.doClose()
		cmd.reply <- commandReply{}
	case cmdIsOpen:
		cmd.reply <- commandReply{isOpen: w.transport != nil && w.transport.IsOpen()}
	case cmdWrite:
		cmd.reply <- commandReply{err: w.doWrite(cmd.writeData)}
	case cmdFlushRead:
		w.doFlush()
		cmd.reply <- commandReply{}
	case cmdSetStopConditions:
		w.stopConditions = CloneStopConditions(cmd.stopConds)
		flushStopConditions(w.stopConditions)
		cmd.reply <- commandReply{}
	case cmdSetTimeout:
		w.defaultTimeout = cmd.timeout
		cmd.reply <- commandReply{}
	case cmdSetDescriptor:
		w.doSetDescriptor(cmd)
		cmd.reply <- commandReply{}
	case cmdSetEventCallback:
		w.eventCallback = cmd.callback
		cmd.reply <- commandReply{}
	case cmdRead:
		w.doRead(cmd)
	}
}

func (w *worker) doOpen() error {
	if w.transport == nil {
		return ConfigurationError("no transport configured")
	}
	if w.descriptor == nil || !w.descriptor.Initialized() {
		return ConfigurationError("descriptor %s is not initialized", descriptorString(w.descriptor))
	}
	if w.transport.IsOpen() {
		return nil
	}
	if err := w.transport.Open(); err != nil {
		return OpenError(err, "open %s", descriptorString(w.descriptor))
	}
	w.readerGen++
	w.intentionalClose = false
	go w.readerLoop(w.transport, w.readerGen)
	return nil
}

func (w *worker) doClose() {
	if w.transport == nil || !w.transport.IsOpen() {
		return
	}
	w.intentionalClose = true
	_ = w.transport.Close()
	w.resetAssembly()
	w.buffer.clear()
	if w.pending != nil {
		p := w.pending
		w.pending = nil
		w.restoreOverride(p)
		p.reply <- commandReply{err: DisconnectedError("adapter closed")}
	}
}

func (w *worker) doWrite(data []byte) error {
	if w.transport == nil {
		return ConfigurationError("no transport configured")
	}
	if !w.transport.IsOpen() {
		if !w.autoOpen {
			return ConfigurationError("write on a closed adapter (auto-open disabled)")
		}
		if err := w.doOpen(); err != nil {
			return err
		}
	}
	_, err := w.transport.Write(data)
	if err != nil {
		w.intentionalClose = true
		_ = w.transport.Close()
		w.resetAssembly()
		if w.pending != nil {
			p := w.pending
			w.pending = nil
			w.restoreOverride(p)
			p.reply <- commandReply{err: DisconnectedError("transport closed after write failure")}
		}
		w.emit(DisconnectedEvent{})
		return WriteError(err, "write %d bytes", len(data))
	}
	w.lastWriteTS = time.Now()
	w.haveLastWrite = true
	return nil
}

func (w *worker) doFlush() {
	w.buffer.clear()
	w.resetAssembly()
}

func (w *worker) doSetDescriptor(cmd *command) {
	w.descriptor = cmd.descriptor
	if cmd.transport != nil {
		if w.transport != nil && w.transport.IsOpen() {
			w.intentionalClose = true
			_ = w.transport.Close()
		}
		w.transport = cmd.transport
	}
}

func (w *worker) doRead(cmd *command) {
	if w.pending != nil {
		cmd.reply <- commandReply{err: WorkerError(nil, "a read is already pending on this adapter")}
		return
	}

	now := time.Now()
	p := &pendingRead{
		reply:     cmd.reply,
		scope:     cmd.read.scope,
		admission: now,
	}
	if cmd.read.hasTimeout {
		p.timeout = cmd.read.timeout
	} else {
		p.timeout = w.defaultTimeout
	}
	if cmd.read.hasStopConds {
		p.hasOverride = true
		p.stopConds = CloneStopConditions(cmd.read.stopConds)
		initStopConditions(p.stopConds, now)
	}
	p.armResponseDeadline()
	w.pending = p

	if p.scope == ScopeBuffered && !w.buffer.empty() {
		f, _ := w.buffer.pop()
		w.pending = nil
		cmd.reply <- commandReply{frame: f}
		return
	}
}
