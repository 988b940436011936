package builtin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
	"github.com/agentcore/agentcore/middleware/builtin"
	"github.com/agentcore/agentcore/telemetry"
)

func TestLoggingObservesWithoutSideEffect(t *testing.T) {
	logging := builtin.NewLogging(telemetry.NewNoopLogger(), context.Background(), 0)
	req := &middleware.Request{ThreadID: "t1"}
	ctx := middleware.NewContext(req, agentstate.New("", time.Now()))

	require.NoError(t, logging.BeforeInvoke(ctx))
	logging.BeforeToolCall(ctx, message.ToolCall{ID: "1", Name: "x"})
	logging.AfterToolCall(ctx, message.ToolCall{ID: "1", Name: "x"}, message.ToolResult{ToolCallID: "1"})
	logging.AfterInvoke(ctx)
	logging.OnFinally(ctx, nil)
}

func TestHumanInTheLoopAlwaysInterrupts(t *testing.T) {
	h := builtin.NewHumanInTheLoop(builtin.ApprovalAlways, nil, 10)
	ctx := middleware.NewContext(&middleware.Request{ThreadID: "t1"}, agentstate.New("", time.Now()))

	res := h.BeforeToolCall(ctx, message.ToolCall{ID: "1", Name: "delete_file"})
	in, ok := res.IsInterrupt()
	require.True(t, ok)
	assert.Equal(t, middleware.InterruptApprovalRequired, in.Kind)
	assert.Equal(t, "delete_file", in.PendingCall.Name)
}

func TestHumanInTheLoopWhitelistOnlyGatesNamed(t *testing.T) {
	h := builtin.NewHumanInTheLoop(builtin.ApprovalWhitelist, []string{"delete_file"}, 10)
	ctx := middleware.NewContext(&middleware.Request{}, agentstate.New("", time.Now()))

	res := h.BeforeToolCall(ctx, message.ToolCall{ID: "1", Name: "read_file"})
	assert.True(t, res.IsContinue())

	res = h.BeforeToolCall(ctx, message.ToolCall{ID: "2", Name: "delete_file"})
	_, ok := res.IsInterrupt()
	assert.True(t, ok)
}

type fakeSummarizer struct{ summary string }

func (f fakeSummarizer) Summarize(context.Context, []message.Message) (string, error) {
	return f.summary, nil
}

func TestSummarizationReplacesOlderMessagesWhenOverThreshold(t *testing.T) {
	now := time.Now()
	state := agentstate.New("be helpful", now)
	var err error
	for i := 0; i < 10; i++ {
		state, err = state.AppendMessage(message.NewHuman(
			"this is a long filler message meant to push the estimated token count well past the threshold",
			"u1", now,
		), now)
		require.NoError(t, err)
	}

	s := builtin.NewSummarization(fakeSummarizer{summary: "condensed history"}, 10, 2, 5)
	ctx := middleware.NewContext(&middleware.Request{}, state)

	require.NoError(t, s.BeforeInvoke(ctx))

	newState := ctx.State()
	assert.Less(t, newState.MessageCount(), state.MessageCount())
	msgs := newState.Messages()
	require.Equal(t, message.KindSystem, msgs[0].Kind())

	systemCount := 0
	for _, m := range msgs {
		if m.Kind() == message.KindSystem {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Contains(t, msgs[0].Content(), "be helpful")
	assert.Contains(t, msgs[0].Content(), "condensed history")
}

func TestSummarizationNoOpUnderThreshold(t *testing.T) {
	now := time.Now()
	state := agentstate.New("be helpful", now)
	state, err := state.AppendMessage(message.NewHuman("hi", "u1", now), now)
	require.NoError(t, err)

	s := builtin.NewSummarization(fakeSummarizer{summary: "unused"}, 100000, 2, 5)
	ctx := middleware.NewContext(&middleware.Request{}, state)

	require.NoError(t, s.BeforeInvoke(ctx))
	assert.Equal(t, state.MessageCount(), ctx.State().MessageCount())
}

func TestStateInjectionResolvesVariablesOnFirstIterationOnly(t *testing.T) {
	now := time.Now()
	state := agentstate.New("", now)
	state = state.WithData("project", "agentcore", now)

	req := &middleware.Request{
		SystemPrompt: "base prompt",
		Parameters:   map[string]any{"role": "assistant"},
	}
	ctx := middleware.NewContext(req, state)
	ctx.SetIteration(0)

	si := builtin.NewStateInjection(builtin.InjectionPrefix, "Project: ${state:project}, role: ${request:role}. ", 5)
	require.NoError(t, si.BeforeInvoke(ctx))
	assert.Equal(t, "Project: agentcore, role: assistant. base prompt", ctx.Request().SystemPrompt)

	ctx.SetIteration(1)
	before := ctx.Request().SystemPrompt
	require.NoError(t, si.BeforeInvoke(ctx))
	assert.Equal(t, before, ctx.Request().SystemPrompt)
}

func TestStateInjectionLeavesUnresolvedVariablesVerbatim(t *testing.T) {
	state := agentstate.New("", time.Now())
	req := &middleware.Request{SystemPrompt: "base"}
	ctx := middleware.NewContext(req, state)

	si := builtin.NewStateInjection(builtin.InjectionOverride, "Missing: ${state:nope}", 5)
	require.NoError(t, si.BeforeInvoke(ctx))
	assert.Equal(t, "Missing: ${state:nope}", ctx.Request().SystemPrompt)
}
