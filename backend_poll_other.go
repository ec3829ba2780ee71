//go:build !linux && !darwin

package reactor

import "golang.org/x/sys/unix"

// pollBackend implements Backend with the POSIX poll(2) syscall, the
// lowest-common-denominator readiness primitive for Unix platforms
// without a native kernel-queue backend. Unlike epoll/kqueue it has no
// persistent kernel-side registration: Poll rebuilds the pollfd slice
// from the current interest table on every call. It is a fallback, not
// meant to scale to large descriptor counts.
type pollBackend struct {
	masks   []Mask
	pollfds []unix.PollFd
}

func newPlatformBackend(capacity int) (Backend, error) {
	return &pollBackend{masks: make([]Mask, capacity)}, nil
}

func (b *pollBackend) Name() string { return "poll" }

func (b *pollBackend) Close() error { return nil }

func (b *pollBackend) Resize(newCapacity int) error {
	if newCapacity == len(b.masks) {
		return nil
	}
	masks := make([]Mask, newCapacity)
	copy(masks, b.masks)
	b.masks = masks
	return nil
}

func (b *pollBackend) Add(fd int, mask Mask) error {
	if fd < 0 || fd >= len(b.masks) {
		return ErrOutOfRange
	}
	b.masks[fd] |= mask
	return nil
}

func (b *pollBackend) Remove(fd int, mask Mask) error {
	if fd < 0 || fd >= len(b.masks) {
		return ErrOutOfRange
	}
	b.masks[fd] &^= mask
	return nil
}

func (b *pollBackend) Poll(timeoutMS int, dst []readyEntry) ([]readyEntry, error) {
	b.pollfds = b.pollfds[:0]
	for fd, mask := range b.masks {
		if mask == None {
			continue
		}
		var events int16
		if mask&Readable != 0 {
			events |= unix.POLLIN
		}
		if mask&Writable != 0 {
			events |= unix.POLLOUT
		}
		b.pollfds = append(b.pollfds, unix.PollFd{Fd: int32(fd), Events: events})
	}

	n, err := unix.Poll(b.pollfds, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, backendErrorf("poll", "wait", err)
	}
	if n == 0 {
		return dst, nil
	}
	for _, pfd := range b.pollfds {
		if pfd.Revents == 0 {
			continue
		}
		var fired Mask
		if pfd.Revents&unix.POLLIN != 0 {
			fired |= Readable
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			fired |= Writable
		}
		// Error and hang-up surface as write readiness only.
		if pfd.Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
			fired |= Writable
		}
		if fired == None {
			continue
		}
		dst = append(dst, readyEntry{fd: int(pfd.Fd), fired: fired})
	}
	return dst, nil
}
