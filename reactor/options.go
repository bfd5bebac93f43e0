package reactor

// options holds the resolved configuration for a [Reactor].
type options struct {
	logger      Logger
	pollTimeout int // milliseconds, cap on how long poll() may block
}

// Option configures a [Reactor] at construction time.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithLogger overrides the package-default [Logger] for this Reactor.
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithPollTimeout caps how long a single poll() call may block waiting
// for I/O readiness, in milliseconds. This bounds how promptly the
// Reactor notices new work submitted while it is StateSleeping without a
// successful wakeup write (belt-and-suspenders; normal operation wakes
// immediately). Defaults to 10000ms.
func WithPollTimeout(ms int) Option {
	return optionFunc(func(o *options) {
		if ms > 0 {
			o.pollTimeout = ms
		}
	})
}

func resolveOptions(opts []Option) *options {
	cfg := &options{
		logger:      defaultLogger(),
		pollTimeout: 10000,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
