package reactor

import "time"

// Metrics is a snapshot of runtime counters, collected only when the
// reactor is constructed with [WithMetrics]. Unlike the concurrent,
// percentile-estimating metrics a multi-threaded loop needs, a
// single-threaded reactor core has exactly one writer and one reader
// (the same goroutine), so plain counters read directly off the
// Reactor suffice; no locking or streaming quantile estimator is
// required.
type Metrics struct {
	// Iterations counts completed calls to Iterate that reached the
	// poll stage.
	Iterations int64

	// FileEventsDispatched counts file-event callback invocations.
	FileEventsDispatched int64

	// TimersFired counts timer callback invocations.
	TimersFired int64

	// LastPollDuration is how long the most recent backend.Poll call
	// took to return.
	LastPollDuration time.Duration
}
