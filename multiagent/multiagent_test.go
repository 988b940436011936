package multiagent_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/multiagent"
	"github.com/agentcore/agentcore/react"
	"github.com/agentcore/agentcore/tools"
)

type scriptedModel struct {
	turns []message.Message
	n     atomic.Int32
}

func (m *scriptedModel) Chat(ctx context.Context, messages []message.Message, opts chatmodel.Options) (message.Message, error) {
	i := int(m.n.Add(1)) - 1
	if i >= len(m.turns) {
		return message.Message{}, fmt.Errorf("scriptedModel: no turn %d scripted", i)
	}
	return m.turns[i], nil
}

func (m *scriptedModel) ChatStream(context.Context, []message.Message, chatmodel.Options, chatmodel.StreamCallback) error {
	return fmt.Errorf("not implemented")
}

func newAgent(t *testing.T, turns ...message.Message) *react.Agent {
	t.Helper()
	registry := tools.NewRegistry()
	inv := tools.NewInvoker(registry, 1)
	t.Cleanup(inv.Shutdown)
	return react.New(&scriptedModel{turns: turns}, inv, nil, nil, nil, react.AgentConfig{})
}

func TestCoordinatorFollowsResponseMarkerHandoff(t *testing.T) {
	researcher := newAgent(t, message.NewAssistant("done. HANDOFF:coder:now write it", nil, time.Now()))
	coder := newAgent(t, message.NewAssistant("def f(): pass", nil, time.Now()))

	coord, err := multiagent.New([]multiagent.AgentNode{
		{Name: "researcher", Description: "researches", Agent: researcher},
		{Name: "coder", Description: "writes code", Agent: coder},
	}, "researcher", 3, nil)
	require.NoError(t, err)

	resp, err := coord.Invoke(context.Background(), react.Request{Input: "build a function"})
	require.NoError(t, err)
	assert.Equal(t, "def f(): pass", resp.Output)

	var humanMessages []string
	for _, m := range resp.Messages {
		if m.Kind() == message.KindHuman {
			humanMessages = append(humanMessages, m.Content())
		}
	}
	assert.Contains(t, humanMessages, "build a function")
	assert.Contains(t, humanMessages, "now write it")
}

func TestCoordinatorBracketMarkerHandoff(t *testing.T) {
	a := newAgent(t, message.NewAssistant("[HANDOFF b] go", nil, time.Now()))
	b := newAgent(t, message.NewAssistant("finished", nil, time.Now()))

	coord, err := multiagent.New([]multiagent.AgentNode{
		{Name: "a", Agent: a},
		{Name: "b", Agent: b},
	}, "a", 3, nil)
	require.NoError(t, err)

	resp, err := coord.Invoke(context.Background(), react.Request{Input: "start"})
	require.NoError(t, err)
	assert.Equal(t, "finished", resp.Output)
}

func TestCoordinatorHaltsAtMaxHandoffsUnchanged(t *testing.T) {
	// Every node hands off to the next, forming a cycle; with maxHandoffs=2
	// the coordinator must stop after 2 total node executions.
	a := newAgent(t, message.NewAssistant("HANDOFF:b:go", nil, time.Now()))
	b := newAgent(t, message.NewAssistant("HANDOFF:a:go back", nil, time.Now()))

	coord, err := multiagent.New([]multiagent.AgentNode{
		{Name: "a", Agent: a},
		{Name: "b", Agent: b},
	}, "a", 2, nil)
	require.NoError(t, err)

	resp, err := coord.Invoke(context.Background(), react.Request{Input: "start"})
	require.NoError(t, err)
	// a ran (1), then b ran (2) — the 2nd hop is still within maxHandoffs=2.
	// The 3rd execution (back to a) would exceed it, so the coordinator
	// halts and returns b's response unchanged.
	assert.Equal(t, "HANDOFF:a:go back", resp.Output)
}

func TestCoordinatorRejectsUnknownHandoffTarget(t *testing.T) {
	a := newAgent(t, message.NewAssistant("HANDOFF:ghost:go", nil, time.Now()))

	coord, err := multiagent.New([]multiagent.AgentNode{
		{Name: "a", Agent: a},
	}, "a", 5, nil)
	require.NoError(t, err)

	_, err = coord.Invoke(context.Background(), react.Request{Input: "start"})
	assert.Error(t, err)
}

func TestNewRejectsUnknownEntryPoint(t *testing.T) {
	a := newAgent(t, message.NewAssistant("ok", nil, time.Now()))
	_, err := multiagent.New([]multiagent.AgentNode{{Name: "a", Agent: a}}, "missing", 0, nil)
	assert.Error(t, err)
}
