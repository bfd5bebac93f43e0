package reactor

import "sync/atomic"

// State represents the current state of a [Reactor].
//
// State machine:
//
//	StateAwake      -> StateRunning      [Run]
//	StateRunning    -> StateSleeping     [poll, CAS]
//	StateSleeping   -> StateRunning      [poll wake, CAS]
//	StateRunning    -> StateTerminating  [Quit/Shutdown]
//	StateSleeping   -> StateTerminating  [Quit/Shutdown]
//	StateTerminating -> StateTerminated  [shutdown complete]
//
// StateTerminated is terminal: no further transition is valid.
type State uint32

const (
	// StateAwake is the state of a Reactor that has been constructed but
	// not yet started.
	StateAwake State = iota
	// StateRunning is the state of a Reactor actively draining its queues.
	StateRunning
	// StateSleeping is the state of a Reactor blocked in the I/O poll
	// syscall, with nothing ready to run.
	StateSleeping
	// StateTerminating is the state of a Reactor that has been asked to
	// stop but has not finished draining in-flight work.
	StateTerminating
	// StateTerminated is the state of a Reactor that has fully stopped.
	StateTerminated
)

// String returns a human-readable name for s.
func (s State) String() string {
	switch s {
	case StateAwake:
		return "awake"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// fastState is a lock-free state machine for the Reactor's lifecycle.
//
// Use TryTransition for the reversible states (Running/Sleeping); use
// Store only for the one-way Terminating/Terminated transitions.
type fastState struct {
	v atomic.Uint32
}

func newFastState() *fastState {
	s := &fastState{}
	s.v.Store(uint32(StateAwake))
	return s
}

func (s *fastState) Load() State {
	return State(s.v.Load())
}

func (s *fastState) Store(state State) {
	s.v.Store(uint32(state))
}

func (s *fastState) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

func (s *fastState) IsTerminal() bool {
	return s.Load() == StateTerminated
}

func (s *fastState) CanAcceptWork() bool {
	switch s.Load() {
	case StateAwake, StateRunning, StateSleeping, StateTerminating:
		return true
	default:
		return false
	}
}
