//go:build darwin

package reactor

import "golang.org/x/sys/unix"

// kqueueBackend implements Backend with BSD kqueue. Single-threaded;
// nothing guards the fd table.
type kqueueBackend struct {
	kq       int
	eventBuf []unix.Kevent_t
	masks    []Mask
}

func newPlatformBackend(capacity int) (Backend, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, backendErrorf("kqueue", "create", err)
	}
	unix.CloseOnExec(kq)
	return &kqueueBackend{
		kq:       kq,
		eventBuf: make([]unix.Kevent_t, 256),
		masks:    make([]Mask, capacity),
	}, nil
}

func (b *kqueueBackend) Name() string { return "kqueue" }

func (b *kqueueBackend) Close() error {
	return unix.Close(b.kq)
}

func (b *kqueueBackend) Resize(newCapacity int) error {
	if newCapacity == len(b.masks) {
		return nil
	}
	masks := make([]Mask, newCapacity)
	copy(masks, b.masks)
	b.masks = masks
	return nil
}

func (b *kqueueBackend) apply(fd int, mask Mask, flags uint16) error {
	var changes []unix.Kevent_t
	if mask&Readable != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if mask&Writable != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(b.kq, changes, nil, nil)
	return err
}

func (b *kqueueBackend) Add(fd int, mask Mask) error {
	if fd < 0 || fd >= len(b.masks) {
		return ErrOutOfRange
	}
	prev := b.masks[fd]
	add := mask &^ prev
	if add == None {
		return nil
	}
	if err := b.apply(fd, add, unix.EV_ADD|unix.EV_ENABLE); err != nil {
		return backendErrorf("kqueue", "add", err)
	}
	b.masks[fd] = prev | mask
	return nil
}

func (b *kqueueBackend) Remove(fd int, mask Mask) error {
	if fd < 0 || fd >= len(b.masks) {
		return ErrOutOfRange
	}
	prev := b.masks[fd]
	remove := mask & prev
	if remove == None {
		return nil
	}
	if err := b.apply(fd, remove, unix.EV_DELETE); err != nil {
		return backendErrorf("kqueue", "remove", err)
	}
	b.masks[fd] = prev &^ mask
	return nil
}

func (b *kqueueBackend) Poll(timeoutMS int, dst []readyEntry) ([]readyEntry, error) {
	var ts *unix.Timespec
	if timeoutMS >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMS) * 1_000_000)
		ts = &t
	}
	n, err := unix.Kevent(b.kq, nil, b.eventBuf, ts)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, backendErrorf("kqueue", "wait", err)
	}

	// Coalesce the separate EVFILT_READ/EVFILT_WRITE records kqueue
	// reports per fd into one readyEntry, matching the single
	// fd/combined-mask shape Poll's other backends produce.
	merged := make(map[int]Mask, n)
	order := dst
	for i := 0; i < n; i++ {
		ev := b.eventBuf[i]
		fd := int(ev.Ident)
		var fired Mask
		switch ev.Filter {
		case unix.EVFILT_READ:
			fired = Readable
		case unix.EVFILT_WRITE:
			fired = Writable
		default:
			continue
		}
		// Error and end-of-file conditions must surface as Writable so
		// the write-side callback performs the error read.
		if ev.Flags&(unix.EV_ERROR|unix.EV_EOF) != 0 {
			fired |= Writable
		}
		if _, seen := merged[fd]; !seen {
			order = append(order, readyEntry{fd: fd})
		}
		merged[fd] |= fired
	}
	for i := range order[len(dst):] {
		e := &order[len(dst)+i]
		e.fired = merged[e.fd]
	}
	return order, nil
}
