package reactor

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestWaitReadable(t *testing.T) {
	r, w := makePipe(t)
	if _, err := unix.Write(w, []byte{'x'}); err != nil {
		t.Fatalf("write: %v", err)
	}

	fired, err := Wait(r, Readable, 1000)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if fired&Readable == 0 {
		t.Fatalf("fired = %d, want Readable set", fired)
	}
}

func TestWaitWritable(t *testing.T) {
	_, w := makePipe(t)
	fired, err := Wait(w, Writable, 1000)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if fired != Writable {
		t.Fatalf("fired = %d, want Writable", fired)
	}
}

func TestWaitTimeout(t *testing.T) {
	r, _ := makePipe(t)
	fired, err := Wait(r, Readable, 0)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if fired != None {
		t.Fatalf("fired = %d, want None on timeout", fired)
	}
}

func TestWaitHangupReportedAsWritable(t *testing.T) {
	r, w := makePipe(t)
	unix.Close(w)

	fired, err := Wait(r, Readable, 1000)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if fired&Writable == 0 {
		t.Fatalf("fired = %d, hang-up must include Writable", fired)
	}
}
