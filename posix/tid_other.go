//go:build !linux

package posix

import "sync/atomic"

// nativeTID falls back to a process-local counter on platforms without
// a cheap kernel thread id syscall wired up (see SPEC_FULL.md's
// domain-stack table: only tid_linux.go wires unix.Gettid). Still distinct from any
// fiber.ID, since fiber ids and this counter are minted from disjoint
// sequences.
var nativeTIDCounter atomic.Uint64

func nativeTID() uint64 {
	return nativeTIDCounter.Add(1) | (1 << 63)
}
