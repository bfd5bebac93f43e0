package fiber_test

import (
	"testing"

	"github.com/fiberhost/ctxrt/fiber"
	"github.com/fiberhost/ctxrt/stack"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, id fiber.ID) *fiber.Context {
	t.Helper()
	pool := stack.New(0)
	slot, err := pool.Acquire(stack.DefaultSize)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Release(slot) })
	return fiber.NewContext(id, "test", slot, stack.DefaultSize)
}

func Test_Context_AddJoiner_then_Finish_returns_it(t *testing.T) {
	target := newTestContext(t, 1)
	joiner := newTestContext(t, 2)

	require.True(t, target.AddJoiner(joiner))

	joiners := target.Finish("result", nil)
	require.Equal(t, []*fiber.Context{joiner}, joiners)

	result, err := target.Result()
	require.NoError(t, err)
	require.Equal(t, "result", result)
	require.Equal(t, fiber.Terminated, target.State())
}

func Test_Context_AddJoiner_after_Finish_returns_false(t *testing.T) {
	target := newTestContext(t, 1)
	joiner := newTestContext(t, 2)

	joiners := target.Finish("done", nil)
	require.Empty(t, joiners)

	require.False(t, target.AddJoiner(joiner))
}

func Test_Context_RemoveJoiner_wins_race_against_Finish(t *testing.T) {
	target := newTestContext(t, 1)
	joiner := newTestContext(t, 2)

	require.True(t, target.AddJoiner(joiner))
	require.True(t, target.RemoveJoiner(joiner))

	// Finish no longer sees the joiner: the deadline claimed it first.
	joiners := target.Finish(nil, nil)
	require.Empty(t, joiners)
}

func Test_Context_RemoveJoiner_loses_race_against_Finish(t *testing.T) {
	target := newTestContext(t, 1)
	joiner := newTestContext(t, 2)

	require.True(t, target.AddJoiner(joiner))

	joiners := target.Finish("result", nil)
	require.Equal(t, []*fiber.Context{joiner}, joiners)

	// Finish already claimed the joiner; the deadline arrives too late.
	require.False(t, target.RemoveJoiner(joiner))
}

func Test_Context_Done_closes_on_Finish(t *testing.T) {
	target := newTestContext(t, 1)

	select {
	case <-target.Done():
		t.Fatal("Done closed before Finish")
	default:
	}

	target.Finish(nil, nil)

	select {
	case <-target.Done():
	default:
		t.Fatal("Done did not close after Finish")
	}
}
