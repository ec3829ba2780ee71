package reactor

import (
	"errors"
	"fmt"
)

// Sentinel errors for the five failure kinds the reactor reports.
// Reactor methods report failures with these (wrapped with context via
// WrapError) rather than panicking; callers match with [errors.Is].
// Close and Wait instead return the underlying system error.
var (
	// ErrOutOfRange is returned when a descriptor is >= capacity.
	ErrOutOfRange = errors.New("reactor: descriptor out of range")

	// ErrBusy is returned when Resize is asked to shrink below the
	// current highest registered descriptor.
	ErrBusy = errors.New("reactor: capacity busy")

	// ErrOOM names the allocation-failure kind. No function in this
	// package returns it.
	ErrOOM = errors.New("reactor: out of memory")

	// ErrBackendFailure is returned when the kernel readiness primitive
	// rejects add/remove/resize.
	ErrBackendFailure = errors.New("reactor: backend failure")

	// ErrNotFound is returned when a timer id has no matching timer.
	ErrNotFound = errors.New("reactor: timer not found")
)

// WrapError wraps an error with a message and the original error as
// cause, so errors.Is(result, cause) == true.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
