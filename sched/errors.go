package sched

import "errors"

// ErrUnknownContext names the case of a fiber.ID that this Scheduler
// never issued. No Scheduler method returns it: Join and JoinUntil
// report such an id as fiber.ErrCanceled.
var ErrUnknownContext = errors.New("sched: unknown context id")

// ErrTimedOut is returned by JoinUntil when the deadline passes before
// the target context terminates.
var ErrTimedOut = errors.New("sched: join timed out")

// ErrNotInFiber names the case of a caller that is not running as a
// fiber. No Scheduler method returns it: Yield from outside a fiber
// panics with a ProgrammingError, and ModeDispatch submission from
// outside a fiber behaves like ModePost.
var ErrNotInFiber = errors.New("sched: not running inside a fiber")

// ProgrammingError is panicked for contract violations spec.md classifies
// as programming errors rather than recoverable failures (e.g. joining
// the same context twice, yielding from outside a fiber).
type ProgrammingError struct {
	Msg string
}

func (e *ProgrammingError) Error() string { return "sched: " + e.Msg }
