package posix

// Option configures a Bridge at construction time.
type Option interface {
	apply(*bridgeConfig)
}

type bridgeConfig struct {
	logger Logger
}

type optionFunc func(*bridgeConfig)

func (f optionFunc) apply(c *bridgeConfig) { f(c) }

// WithLogger overrides the Bridge's structured logger.
func WithLogger(logger Logger) Option {
	return optionFunc(func(c *bridgeConfig) { c.logger = logger })
}

func resolveOptions(opts []Option) *bridgeConfig {
	cfg := &bridgeConfig{logger: NewNoOpLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(cfg)
		}
	}
	return cfg
}
