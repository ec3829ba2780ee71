// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

// reactorOptions holds configuration resolved once at New().
type reactorOptions struct {
	logger          Logger
	clock           Clock
	beforeSleepHook func(*Reactor)
	backendFactory  func(capacity int) (Backend, error)
	metricsEnabled  bool
}

// --- Reactor Options ---

// Option configures a Reactor instance.
type Option interface {
	applyReactor(*reactorOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*reactorOptions) error
}

func (o *optionImpl) applyReactor(opts *reactorOptions) error {
	return o.applyFunc(opts)
}

// WithLogger attaches a structured [Logger]. The default is a no-op
// logger, so logging costs nothing unless a caller opts in.
func WithLogger(logger Logger) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithClock overrides the wall-clock source. Intended for deterministic
// tests of deadline and clock-regression handling; production callers
// should leave this unset to get the real clock.
func WithClock(clock Clock) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithBeforeSleepHook installs the hook invoked at the top of every
// [Reactor.Run] iteration, before the poll.
func WithBeforeSleepHook(hook func(*Reactor)) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.beforeSleepHook = hook
		return nil
	}}
}

// WithBackendFactory overrides backend selection. Intended for tests
// that need to exercise reactor semantics (deletion-during-iteration,
// clock regression, ...) against a fake backend instead of the
// platform's real kernel primitive.
func WithBackendFactory(factory func(capacity int) (Backend, error)) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.backendFactory = factory
		return nil
	}}
}

// WithMetrics enables runtime metrics collection, retrievable via
// [Reactor.Metrics]. Disabled by default to keep the hot path free of
// bookkeeping.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to reactorOptions.
func resolveOptions(opts []Option) (*reactorOptions, error) {
	cfg := &reactorOptions{
		logger: NewNoOpLogger(),
		clock:  realClock{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyReactor(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
