//go:build linux

package reactor

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func newEpollBackend(t *testing.T) Backend {
	t.Helper()
	b, err := newPlatformBackend(4096)
	if err != nil {
		t.Fatalf("newPlatformBackend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestEpollName(t *testing.T) {
	b := newEpollBackend(t)
	if got := b.Name(); got != "epoll" {
		t.Fatalf("Name() = %q, want %q", got, "epoll")
	}
}

func TestEpollAddPollRemove(t *testing.T) {
	b := newEpollBackend(t)
	r, w := makePipe(t)

	if err := b.Add(r, Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := unix.Write(w, []byte{'x'}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ready, err := b.Poll(100, nil)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(ready) != 1 || ready[0].fd != r || ready[0].fired&Readable == 0 {
		t.Fatalf("ready = %+v, want fd %d readable", ready, r)
	}

	if err := b.Remove(r, Readable); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ready, err = b.Poll(0, nil)
	if err != nil {
		t.Fatalf("Poll after Remove: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("ready = %+v after Remove, want empty", ready)
	}
}

func TestEpollAddIdempotent(t *testing.T) {
	b := newEpollBackend(t)
	r, _ := makePipe(t)

	if err := b.Add(r, Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(r, Readable); err != nil {
		t.Fatalf("second Add must be a no-op: %v", err)
	}
	if err := b.Remove(r, Writable); err != nil {
		t.Fatalf("removing unarmed bits must be a no-op: %v", err)
	}
}

func TestEpollInterestUpgrade(t *testing.T) {
	b := newEpollBackend(t)
	_, w := makePipe(t)

	if err := b.Add(w, Readable); err != nil {
		t.Fatalf("Add readable: %v", err)
	}
	if err := b.Add(w, Writable); err != nil {
		t.Fatalf("Add writable (upgrade to MOD): %v", err)
	}

	ready, err := b.Poll(100, nil)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(ready) != 1 || ready[0].fd != w || ready[0].fired&Writable == 0 {
		t.Fatalf("ready = %+v, want fd %d writable", ready, w)
	}

	if err := b.Remove(w, Writable); err != nil {
		t.Fatalf("Remove writable (downgrade to MOD): %v", err)
	}
	ready, err = b.Poll(0, nil)
	if err != nil {
		t.Fatalf("Poll after downgrade: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("ready = %+v, want empty with only unsatisfied read interest left", ready)
	}
}

func TestEpollOutOfRangeFD(t *testing.T) {
	b := newEpollBackend(t)
	if err := b.Add(99999, Readable); err == nil {
		t.Fatal("Add above capacity must fail")
	}
	if err := b.Remove(-1, Readable); err == nil {
		t.Fatal("negative fd must fail")
	}
}

func TestEpollCtlFailureIsBackendFailure(t *testing.T) {
	b := newEpollBackend(t)
	// An in-range descriptor that is not open: EPOLL_CTL_ADD fails
	// with EBADF.
	err := b.Add(4095, Readable)
	if err == nil {
		t.Fatal("Add on a closed fd must fail")
	}
	if !errors.Is(err, ErrBackendFailure) {
		t.Fatalf("errors.Is(%v, ErrBackendFailure) = false", err)
	}
}
