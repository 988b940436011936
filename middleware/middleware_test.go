package middleware_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
)

type recordingMiddleware struct {
	middleware.Base
	order *[]string
}

func (m recordingMiddleware) BeforeInvoke(*middleware.Context) error {
	*m.order = append(*m.order, "before:"+m.MiddlewareName)
	return nil
}

func (m recordingMiddleware) AfterInvoke(*middleware.Context) {
	*m.order = append(*m.order, "after:"+m.MiddlewareName)
}

func TestChainOrdersByPriorityAndReversesOnAfter(t *testing.T) {
	var order []string
	chain := middleware.NewChain(
		recordingMiddleware{Base: middleware.Base{MiddlewareName: "b", MiddlewarePriority: 20}, order: &order},
		recordingMiddleware{Base: middleware.Base{MiddlewareName: "a", MiddlewarePriority: 10}, order: &order},
	)
	ctx := middleware.NewContext(&middleware.Request{}, agentstate.New("", time.Now()))

	require.NoError(t, chain.BeforeInvoke(ctx))
	chain.AfterInvoke(ctx)

	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

type stoppingMiddleware struct {
	middleware.Base
}

func (stoppingMiddleware) BeforeToolCall(*middleware.Context, message.ToolCall) middleware.InterceptionResult {
	return middleware.Stop("blocked by policy")
}

type flaggingMiddleware struct {
	middleware.Base
	called *bool
}

func (m flaggingMiddleware) BeforeToolCall(*middleware.Context, message.ToolCall) middleware.InterceptionResult {
	*m.called = true
	return middleware.Continue()
}

func TestBeforeToolCallShortCircuits(t *testing.T) {
	called := false
	neverCalled := middleware.Base{MiddlewareName: "never", MiddlewarePriority: 20}
	chain := middleware.NewChain(
		stoppingMiddleware{Base: middleware.Base{MiddlewareName: "stop", MiddlewarePriority: 10}},
		flaggingMiddleware{Base: neverCalled, called: &called},
	)
	ctx := middleware.NewContext(&middleware.Request{}, agentstate.New("", time.Now()))

	res := chain.BeforeToolCall(ctx, message.ToolCall{ID: "1", Name: "x"})
	reason, isStop := res.IsStop()
	assert.True(t, isStop)
	assert.Equal(t, "blocked by policy", reason)
	assert.False(t, called)
}

func TestSnapshotRestoreRoundTrips(t *testing.T) {
	ctx := middleware.NewContext(&middleware.Request{Input: "hi"}, agentstate.New("", time.Now()))
	ctx.SetIteration(3)
	ctx.SetScratch("k", "v")

	snap := ctx.Snapshot()

	ctx.SetIteration(9)
	ctx.SetScratch("k", "changed")

	ctx.Restore(snap)
	assert.Equal(t, 3, ctx.Iteration())
	v, ok := ctx.Scratch("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
