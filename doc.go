// Package reactor provides a single-threaded event demultiplexer: the
// reactor core of a high-performance key/value server, extracted into a
// standalone library.
//
// # Architecture
//
// A [Reactor] multiplexes two event classes on one goroutine: I/O
// readiness on registered file descriptors, and wall-clock timers. Each
// call to [Reactor.Iterate] computes the longest it may sleep without
// missing a timer, asks the [Backend] to block for exactly that long,
// dispatches every ready descriptor through the file-event table, then
// dispatches every expired timer. [Reactor.Run] calls Iterate in a loop
// until [Reactor.Stop] is observed between iterations.
//
// # Platform Support
//
// Readiness notification is implemented with the platform's native
// primitive, selected at build time:
//   - Linux: epoll (backend_epoll_linux.go)
//   - Darwin: kqueue (backend_kqueue_darwin.go)
//   - other Unix: poll (backend_poll_other.go)
//
// File descriptor operations ([Reactor.RegisterFile],
// [Reactor.UnregisterFile], [Reactor.FileInterest]) are backend-agnostic.
//
// # Thread Safety
//
// The reactor is explicitly single-threaded: every exported method must
// be called from the goroutine running [Reactor.Run]/[Reactor.Iterate],
// including from within callbacks. There is no cross-thread wakeup and
// no internal locking. A caller needing cross-thread submission must
// front the reactor with its own command queue and wakeup mechanism;
// that facility is out of scope for this core.
//
// # Usage
//
//	rx, err := reactor.New(64)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rx.Close()
//
//	rx.RegisterFile(fd, reactor.Readable, func(rx *reactor.Reactor, fd int, data any, fired reactor.Mask) {
//		// handle readiness
//	}, nil)
//
//	rx.CreateTimer(100, func(rx *reactor.Reactor, id uint64, data any) int {
//		fmt.Println("fired")
//		return reactor.NoMoreTimer
//	}, nil, nil)
//
//	rx.Run()
//
// # Error Types
//
// Operations report failure with sentinel errors rather than panicking:
// [ErrOutOfRange], [ErrBusy], [ErrOOM], [ErrBackendFailure], and
// [ErrNotFound]. All are matched with [errors.Is].
package reactor
