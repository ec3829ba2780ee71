package reactor

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

// fakeClock is a manually-advanced Clock for deterministic timer and
// regression tests.
type fakeClock struct {
	sec int64
	ms  int
}

func (c *fakeClock) Now() (int64, int) { return c.sec, c.ms }

func (c *fakeClock) AddMS(delayMS int64) (int64, int) {
	total := int64(c.ms) + delayMS
	sec := c.sec + total/1000
	ms := int(total % 1000)
	if ms < 0 {
		ms += 1000
		sec--
	}
	return sec, ms
}

func (c *fakeClock) advance(deltaMS int64) {
	c.sec, c.ms = c.AddMS(deltaMS)
}

// fakeBackend is a scripted Backend: Poll pops pre-queued readiness
// batches, and every operation is recorded so tests can assert on call
// order and arguments.
type fakeBackend struct {
	capacity  int
	ops       []string
	queued    [][]readyEntry
	timeouts  []int
	addErr    error
	removeErr error
	resizeErr error
	pollErr   error
}

func newFakeBackend(capacity int) *fakeBackend {
	return &fakeBackend{capacity: capacity}
}

func (b *fakeBackend) push(entries ...readyEntry) {
	b.queued = append(b.queued, entries)
}

func (b *fakeBackend) Add(fd int, mask Mask) error {
	if b.addErr != nil {
		return b.addErr
	}
	b.ops = append(b.ops, fmt.Sprintf("add(%d,%d)", fd, mask))
	return nil
}

func (b *fakeBackend) Remove(fd int, mask Mask) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	b.ops = append(b.ops, fmt.Sprintf("remove(%d,%d)", fd, mask))
	return nil
}

func (b *fakeBackend) Resize(newCapacity int) error {
	if b.resizeErr != nil {
		return b.resizeErr
	}
	b.ops = append(b.ops, fmt.Sprintf("resize(%d)", newCapacity))
	b.capacity = newCapacity
	return nil
}

func (b *fakeBackend) Poll(timeoutMS int, dst []readyEntry) ([]readyEntry, error) {
	b.timeouts = append(b.timeouts, timeoutMS)
	if b.pollErr != nil {
		return dst, b.pollErr
	}
	if len(b.queued) == 0 {
		return dst, nil
	}
	batch := b.queued[0]
	b.queued = b.queued[1:]
	return append(dst, batch...), nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) Name() string { return "fake" }

// newTestReactor builds a reactor on a fakeBackend and fakeClock
// starting at an arbitrary fixed wall-clock time.
func newTestReactor(t *testing.T, capacity int) (*Reactor, *fakeBackend, *fakeClock) {
	t.Helper()
	clock := &fakeClock{sec: 1_000_000, ms: 0}
	backend := newFakeBackend(capacity)
	rx, err := New(capacity,
		WithClock(clock),
		WithBackendFactory(func(int) (Backend, error) { return backend, nil }),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { rx.Close() })
	return rx, backend, clock
}

// makePipe returns the read and write descriptors of a fresh pipe,
// closed automatically at test end.
func makePipe(t *testing.T) (r, w int) {
	t.Helper()
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

var errInjected = errors.New("injected failure")
