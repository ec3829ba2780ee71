//go:build linux

package reactor

import "golang.org/x/sys/unix"

// epollBackend implements Backend with Linux epoll. There is no
// locking: the reactor is single-threaded, so nothing guards Add and
// Poll against each other.
type epollBackend struct {
	epfd     int
	eventBuf []unix.EpollEvent
	masks    []Mask // registered interest per fd, indexed by fd
}

func newPlatformBackend(capacity int) (Backend, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, backendErrorf("epoll", "create", err)
	}
	return &epollBackend{
		epfd:     epfd,
		eventBuf: make([]unix.EpollEvent, 256),
		masks:    make([]Mask, capacity),
	}, nil
}

func (b *epollBackend) Name() string { return "epoll" }

func (b *epollBackend) Close() error {
	return unix.Close(b.epfd)
}

func (b *epollBackend) Resize(newCapacity int) error {
	if newCapacity == len(b.masks) {
		return nil
	}
	masks := make([]Mask, newCapacity)
	copy(masks, b.masks)
	b.masks = masks
	return nil
}

func (b *epollBackend) Add(fd int, mask Mask) error {
	if fd < 0 || fd >= len(b.masks) {
		return ErrOutOfRange
	}
	prev := b.masks[fd]
	combined := prev | mask
	if combined == prev {
		return nil
	}
	ev := &unix.EpollEvent{Events: maskToEpoll(combined), Fd: int32(fd)}
	op := unix.EPOLL_CTL_MOD
	if prev == None {
		op = unix.EPOLL_CTL_ADD
	}
	if err := unix.EpollCtl(b.epfd, op, fd, ev); err != nil {
		return backendErrorf("epoll", "ctl", err)
	}
	b.masks[fd] = combined
	return nil
}

func (b *epollBackend) Remove(fd int, mask Mask) error {
	if fd < 0 || fd >= len(b.masks) {
		return ErrOutOfRange
	}
	prev := b.masks[fd]
	remaining := prev &^ mask
	if remaining == prev {
		return nil
	}
	var err error
	if remaining == None {
		err = unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	} else {
		ev := &unix.EpollEvent{Events: maskToEpoll(remaining), Fd: int32(fd)}
		err = unix.EpollCtl(b.epfd, unix.EPOLL_CTL_MOD, fd, ev)
	}
	if err != nil {
		return backendErrorf("epoll", "ctl", err)
	}
	b.masks[fd] = remaining
	return nil
}

func (b *epollBackend) Poll(timeoutMS int, dst []readyEntry) ([]readyEntry, error) {
	n, err := unix.EpollWait(b.epfd, b.eventBuf, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, backendErrorf("epoll", "wait", err)
	}
	for i := 0; i < n; i++ {
		ev := b.eventBuf[i]
		fired := epollToMask(ev.Events)
		if fired == None {
			continue
		}
		dst = append(dst, readyEntry{fd: int(ev.Fd), fired: fired})
	}
	return dst, nil
}

func maskToEpoll(mask Mask) uint32 {
	var e uint32
	if mask&Readable != 0 {
		e |= unix.EPOLLIN
	}
	if mask&Writable != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToMask(e uint32) Mask {
	var mask Mask
	if e&unix.EPOLLIN != 0 {
		mask |= Readable
	}
	if e&unix.EPOLLOUT != 0 {
		mask |= Writable
	}
	// Error and hang-up surface as write readiness only: the write
	// callback performs the error read.
	if e&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		mask |= Writable
	}
	return mask
}
