package posix

import (
	"encoding/binary"
	"sync"
)

// primitiveTable maps small integer handles, stored inside a caller's
// fixed-size opaque storage type (MutexT, RWLockT, CondT), to the real
// Go value backing that handle. A handle is an integer, never a raw
// pointer, specifically so the opaque storage types can stay plain
// byte arrays without hiding a pointer from the garbage collector —
// storing an actual *fsync.Mutex inside an [N]byte would be invisible
// to the GC and a use-after-free hazard, so this table exists instead
// of a literal placement-new the way the source's reinterpret_cast
// does it.
type primitiveTable[T any] struct {
	mu sync.Mutex
	m  map[uint64]T
}

func newPrimitiveTable[T any]() primitiveTable[T] {
	return primitiveTable[T]{m: make(map[uint64]T)}
}

func (t *primitiveTable[T]) store(handle uint64, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[handle] = v
}

func (t *primitiveTable[T]) load(handle uint64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[handle]
	return v, ok
}

func (t *primitiveTable[T]) delete(handle uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, handle)
}

// getHandle decodes the uint64 handle written into storage's first 8
// bytes by setHandle. Reading and writing through encoding/binary
// rather than an unsafe.Pointer cast onto the byte array means this
// works regardless of the array's address alignment, which [N]byte
// (alignment 1) does not guarantee matches uint64's.
func getHandle(storage []byte) uint64 {
	return binary.LittleEndian.Uint64(storage)
}

// Each opaque storage type must have room for the 8-byte handle that
// setHandle writes; these declarations fail to compile otherwise.
var (
	_ [len(MutexT{}) - 8]byte
	_ [len(RWLockT{}) - 8]byte
	_ [len(CondT{}) - 8]byte
)

// setHandle encodes handle into storage's first 8 bytes.
func setHandle(storage []byte, handle uint64) {
	binary.LittleEndian.PutUint64(storage, handle)
}
