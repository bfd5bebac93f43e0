package stack

import "errors"

// ErrExhausted is returned by Acquire when the pool has reached its
// configured maximum number of live slots and none is free to reuse.
var ErrExhausted = errors.New("stack: pool exhausted")

// ErrClosed is returned by Acquire once the pool has been Closed.
var ErrClosed = errors.New("stack: pool closed")
