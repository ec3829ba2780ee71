package reactor

import "golang.org/x/sys/unix"

// Wait blocks for up to timeoutMS milliseconds until fd satisfies some
// part of mask, returning the fired subset. It is a standalone helper:
// it issues a direct poll(2) on the single descriptor and never touches
// a Reactor's tables or backend, so it is usable with or without a
// reactor. A negative timeout blocks indefinitely; a zero timeout is a
// non-blocking check. Error and hang-up conditions are reported as
// Writable, matching the readiness backends.
func Wait(fd int, mask Mask, timeoutMS int) (Mask, error) {
	var events int16
	if mask&Readable != 0 {
		events |= unix.POLLIN
	}
	if mask&Writable != 0 {
		events |= unix.POLLOUT
	}
	pfd := []unix.PollFd{{Fd: int32(fd), Events: events}}

	for {
		n, err := unix.Poll(pfd, timeoutMS)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return None, WrapError("reactor.Wait", err)
		}
		if n == 0 {
			return None, nil
		}
		break
	}

	var fired Mask
	re := pfd[0].Revents
	if re&unix.POLLIN != 0 {
		fired |= Readable
	}
	if re&unix.POLLOUT != 0 {
		fired |= Writable
	}
	if re&(unix.POLLERR|unix.POLLHUP) != 0 {
		fired |= Writable
	}
	return fired, nil
}
