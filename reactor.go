package reactor

import "time"

// Reactor is a single-threaded event demultiplexer combining file
// descriptor readiness polling and wall-clock timer dispatch on one
// goroutine. Every exported method must be called from that one
// goroutine; see the package doc's Thread Safety section.
type Reactor struct {
	files   *fileTable
	timers  *timerList
	backend Backend

	clock          Clock
	logger         Logger
	beforeSleep    func(*Reactor)
	metricsEnabled bool
	metrics        Metrics

	// lastTickSec is the wall-clock seconds observed by the previous
	// timer pass, used to detect the clock moving backwards.
	lastTickSec int64

	stop bool

	readyBuf []readyEntry
}

// New constructs a Reactor able to track file descriptors numbered
// below capacity. The readiness backend is chosen at compile time for
// the host platform unless overridden with [WithBackendFactory].
func New(capacity int, opts ...Option) (*Reactor, error) {
	if capacity <= 0 {
		return nil, WrapError("reactor.New", ErrOutOfRange)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	factory := cfg.backendFactory
	if factory == nil {
		factory = defaultBackendFactory
	}
	backend, err := factory(capacity)
	if err != nil {
		return nil, WrapError("reactor.New: backend init", err)
	}

	rx := &Reactor{
		files:          newFileTable(capacity),
		timers:         newTimerList(),
		backend:        backend,
		clock:          cfg.clock,
		logger:         cfg.logger,
		beforeSleep:    cfg.beforeSleepHook,
		metricsEnabled: cfg.metricsEnabled,
		readyBuf:       make([]readyEntry, 0, capacity),
	}
	rx.lastTickSec, _ = rx.clock.Now()
	return rx, nil
}

// Close releases the backend's kernel resources and removes every
// remaining timer, running each timer's finalizer. The Reactor must
// not be used afterward.
func (rx *Reactor) Close() error {
	for rx.timers.head != nil {
		rx.timers.delete(rx, rx.timers.head.id)
	}
	return rx.backend.Close()
}

// GetCapacity returns the current file-descriptor capacity.
func (rx *Reactor) GetCapacity() int {
	return rx.files.capacity()
}

// Resize grows or shrinks the reactor's fd capacity. Shrinking below
// the highest currently-registered descriptor fails with ErrBusy. The
// backend is resized before the tables are reallocated: the reverse
// order would leave freshly-grown tables paired with a backend whose
// resize then failed, so a backend failure here leaves everything at
// the old capacity.
func (rx *Reactor) Resize(newCapacity int) error {
	if newCapacity <= 0 {
		return WrapError("reactor.Resize", ErrOutOfRange)
	}
	if newCapacity <= rx.files.maxFD {
		return WrapError("reactor.Resize", ErrBusy)
	}
	if newCapacity == rx.files.capacity() {
		return nil
	}
	if err := rx.backend.Resize(newCapacity); err != nil {
		return WrapError("reactor.Resize: backend", err)
	}
	rx.files.resize(newCapacity)
	rx.readyBuf = make([]readyEntry, 0, newCapacity)
	return nil
}

// RegisterFile adds mask to fd's registered interest, installing cb as
// the callback invoked when any bit of mask becomes ready. Registering
// a second mask for an fd that already has interest merges the masks;
// passing the same callback for both Readable and Writable is the
// caller's way of getting it invoked once per iteration even if both
// bits fire (see the dedup rule on pollAndDispatch). Registration is all-or-nothing:
// if the backend refuses the fd, the file table is untouched.
func (rx *Reactor) RegisterFile(fd int, mask Mask, cb FileCallback, data any) error {
	if mask == None || cb == nil {
		return WrapError("reactor.RegisterFile", ErrOutOfRange)
	}
	if fd < 0 || fd >= rx.files.capacity() {
		return WrapError("reactor.RegisterFile", ErrOutOfRange)
	}
	if err := rx.backend.Add(fd, mask); err != nil {
		return WrapError("reactor.RegisterFile: backend", err)
	}
	rx.files.register(fd, mask, cb, data)
	logDebug(rx.logger, "fd", "registered")
	return nil
}

// UnregisterFile clears mask from fd's registered interest. Clearing
// an fd that is out of range or has no interest is a no-op.
func (rx *Reactor) UnregisterFile(fd int, mask Mask) error {
	if fd < 0 || fd >= rx.files.capacity() || rx.files.interest(fd) == None {
		return nil
	}
	rx.files.unregister(fd, mask)
	if err := rx.backend.Remove(fd, mask); err != nil {
		return WrapError("reactor.UnregisterFile: backend", err)
	}
	return nil
}

// FileInterest reports fd's currently registered interest mask, or
// None when fd is out of range.
func (rx *Reactor) FileInterest(fd int) Mask {
	return rx.files.interest(fd)
}

// CreateTimer schedules cb to run delayMS milliseconds from now,
// returning the new timer's id. fin, if non-nil, runs exactly once
// when the timer is finally removed.
func (rx *Reactor) CreateTimer(delayMS int64, cb TimerCallback, fin FinalizerCallback, data any) (uint64, error) {
	if cb == nil {
		return 0, WrapError("reactor.CreateTimer", ErrOutOfRange)
	}
	sec, ms := rx.clock.AddMS(delayMS)
	id := rx.timers.create(sec, ms, cb, fin, data)
	return id, nil
}

// DeleteTimer cancels the timer with the given id, running its
// finalizer if one was supplied. Deleting an id that does not exist
// (already fired with NoMoreTimer, or never created) is ErrNotFound.
func (rx *Reactor) DeleteTimer(id uint64) error {
	if !rx.timers.delete(rx, id) {
		return WrapError("reactor.DeleteTimer", ErrNotFound)
	}
	return nil
}

// Stop requests that [Reactor.Run] return after its current iteration.
// It may be called from within any callback.
func (rx *Reactor) Stop() {
	rx.stop = true
}

// BackendName identifies the active readiness backend, e.g. "epoll",
// "kqueue", or "poll".
func (rx *Reactor) BackendName() string {
	return rx.backend.Name()
}

// Metrics returns a snapshot of runtime counters. Collection must be
// enabled with [WithMetrics]; otherwise the zero value is returned.
func (rx *Reactor) Metrics() Metrics {
	return rx.metrics
}

// SetBeforeSleepHook replaces the hook invoked at the top of every
// iteration, before the poll. A nil hook clears it.
func (rx *Reactor) SetBeforeSleepHook(hook func(*Reactor)) {
	rx.beforeSleep = hook
}

// Run repeatedly calls Iterate(All) until Stop is called. Stop takes
// effect between iterations, never mid-iteration.
func (rx *Reactor) Run() {
	rx.stop = false
	for !rx.stop {
		if rx.beforeSleep != nil {
			rx.beforeSleep(rx)
		}
		rx.Iterate(All)
	}
}

// Iterate runs one pass: it computes how long it may block without
// missing the earliest timer, polls the backend for readiness,
// dispatches ready descriptors, then dispatches expired timers. flags
// selects which event classes to consider and is a bitwise-or of
// FileEvents, TimerEvents, and DontWait; DontWait forces a zero
// timeout regardless of pending timers. It returns the number of
// events processed (file dispatches plus timer firings). A backend
// poll failure yields zero ready descriptors for the iteration and is
// logged, never surfaced: the loop must keep turning.
func (rx *Reactor) Iterate(flags int) int {
	if flags&(FileEvents|TimerEvents) == 0 {
		return 0
	}

	// Poll even with no registered descriptors when a blocking wait on
	// timers is wanted, so the sleep happens in the kernel rather than
	// busy-looping.
	_, _, hasTimer := rx.timers.earliest()
	wantSleep := flags&TimerEvents != 0 && (flags&DontWait == 0 || hasTimer)

	processed := 0
	if rx.files.maxFD != -1 || wantSleep {
		n, err := rx.pollAndDispatch(rx.computeTimeout(flags))
		if err != nil {
			logWarn(rx.logger, "poll", "backend poll failed", err)
		}
		processed += n
	}

	if flags&TimerEvents != 0 {
		fired := rx.timers.process(rx)
		processed += fired
		if rx.metricsEnabled {
			rx.metrics.TimersFired += int64(fired)
		}
	}
	return processed
}

// computeTimeout decides the poll timeout in milliseconds: DontWait
// forces 0; with timer dispatch disabled or no timer registered the
// poll blocks indefinitely (-1); otherwise it blocks for exactly the
// time until the earliest deadline, clamped to 0 when that deadline is
// already due (which would otherwise yield a negative timeout).
func (rx *Reactor) computeTimeout(flags int) int {
	if flags&DontWait != 0 {
		return 0
	}
	if flags&TimerEvents == 0 {
		return -1
	}
	sec, ms, ok := rx.timers.earliest()
	if !ok {
		return -1
	}
	nowSec, nowMS := rx.clock.Now()
	if deadlineBefore(nowSec, nowMS, sec, ms) {
		return int((sec-nowSec)*1000 + int64(ms-nowMS))
	}
	return 0
}

// pollAndDispatch polls the backend once and invokes each ready
// descriptor's callback(s). When both Readable and Writable fire for
// the same fd and the two directions share one callback, it is invoked
// once with the combined fired mask rather than twice.
func (rx *Reactor) pollAndDispatch(timeoutMS int) (int, error) {
	start := time.Now()
	ready, err := rx.backend.Poll(timeoutMS, rx.readyBuf[:0])
	if rx.metricsEnabled {
		rx.metrics.Iterations++
		rx.metrics.LastPollDuration = time.Since(start)
	}
	if err != nil {
		return 0, WrapError("reactor.Iterate: poll", err)
	}
	rx.readyBuf = ready

	dispatched := 0
	for _, r := range ready {
		ev := rx.files.get(r.fd)
		if ev == nil {
			continue
		}
		// An earlier callback in this same batch may have changed this
		// fd's interest; dispatch only what is still registered.
		fired := r.fired & ev.mask
		if fired == None {
			continue
		}
		readCB := ev.read
		readFired := false
		if fired&Readable != 0 && readCB != nil {
			readFired = true
			readCB(rx, r.fd, ev.data, r.fired)
			dispatched++
		}
		if fired&Writable != 0 {
			// Re-fetch: the read callback above may have unregistered
			// or replaced the write side.
			cur := rx.files.get(r.fd)
			if cur == nil || cur.mask&Writable == 0 || cur.write == nil {
				continue
			}
			if readFired && sameCallback(readCB, cur.write) {
				continue
			}
			cur.write(rx, r.fd, cur.data, r.fired)
			dispatched++
		}
	}
	if rx.metricsEnabled {
		rx.metrics.FileEventsDispatched += int64(dispatched)
	}
	return dispatched, nil
}
