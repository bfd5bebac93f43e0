package sched

import "github.com/fiberhost/ctxrt/stack"

// SubmitMode selects how Submit treats the new Context relative to the
// caller, matching spec.md's submit(func, stack_size, mode) contract.
type SubmitMode int

const (
	// ModePost guarantees the new Context does not run before Submit
	// returns.
	ModePost SubmitMode = iota
	// ModeDispatch may run the new Context immediately if the caller is
	// itself a fiber willing to yield; otherwise it behaves like
	// ModePost.
	ModeDispatch
)

// SubmitOption configures a single Submit call.
type SubmitOption interface {
	apply(*submitConfig)
}

type submitConfig struct {
	name      string
	stackSize stack.Size
	mode      SubmitMode
}

type submitOptionFunc func(*submitConfig)

func (f submitOptionFunc) apply(c *submitConfig) { f(c) }

// WithName sets the Context's name, used only for logging/observability.
func WithName(name string) SubmitOption {
	return submitOptionFunc(func(c *submitConfig) { c.name = name })
}

// WithStackSize sets the advisory stack size hint passed to the stack
// pool.
func WithStackSize(size stack.Size) SubmitOption {
	return submitOptionFunc(func(c *submitConfig) { c.stackSize = size })
}

// WithMode sets the submission mode (default [ModePost]).
func WithMode(mode SubmitMode) SubmitOption {
	return submitOptionFunc(func(c *submitConfig) { c.mode = mode })
}

func resolveSubmitOptions(opts []SubmitOption) *submitConfig {
	cfg := &submitConfig{stackSize: stack.DefaultSize, mode: ModePost}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(cfg)
		}
	}
	return cfg
}

// Option configures a Scheduler at construction time.
type Option interface {
	apply(*schedulerConfig)
}

type schedulerConfig struct {
	logger   Logger
	poolSize int
}

type optionFunc func(*schedulerConfig)

func (f optionFunc) apply(c *schedulerConfig) { f(c) }

// WithLogger overrides the Scheduler's structured logger.
func WithLogger(logger Logger) Option {
	return optionFunc(func(c *schedulerConfig) { c.logger = logger })
}

// WithMaxFibers caps the number of concurrently live fiber-carrier
// goroutines; non-positive means unbounded.
func WithMaxFibers(n int) Option {
	return optionFunc(func(c *schedulerConfig) { c.poolSize = n })
}

func resolveOptions(opts []Option) *schedulerConfig {
	cfg := &schedulerConfig{logger: NewNoOpLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(cfg)
		}
	}
	return cfg
}
