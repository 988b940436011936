package message_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/message"
)

func TestAssistantRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	msg := message.NewAssistant("412", []message.ToolCall{{ID: "call-1", Name: "add", ArgumentsJSON: `{"a":1,"b":2}`}}, now,
		message.WithReasoning("adding numbers"),
		message.WithUsageTokens(42),
	)

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, message.ValidateWire(data))

	decoded, err := message.DecodeWire(data)
	require.NoError(t, err)

	assert.Equal(t, message.KindAssistant, decoded.Kind())
	assert.Equal(t, "412", decoded.Content())
	assert.True(t, decoded.HasToolCalls())
	assert.Equal(t, msg.ToolCalls(), decoded.ToolCalls())
	reasoning, ok := decoded.Reasoning()
	assert.True(t, ok)
	assert.Equal(t, "adding numbers", reasoning)
	tokens, ok := decoded.UsageTokens()
	assert.True(t, ok)
	assert.Equal(t, 42, tokens)
	assert.True(t, decoded.CreatedAt().Equal(now))
}

func TestToolResultToMessage(t *testing.T) {
	now := time.Now()
	res := message.ToolResult{ToolCallID: "call-1", ResultJSON: `{"ok":true}`}
	msg := res.ToMessage(now)

	assert.Equal(t, message.KindTool, msg.Kind())
	assert.Equal(t, "call-1", msg.ToolCallID())
	assert.False(t, msg.IsError())
}

func TestDecodeWireRejectsUnknownKind(t *testing.T) {
	_, err := message.DecodeWire([]byte(`{"kind":"narrator","createdAt":"2024-01-01T00:00:00Z"}`))
	assert.Error(t, err)
}

func TestDecodeWireRejectsMalformedPayload(t *testing.T) {
	_, err := message.DecodeWire([]byte(`{"createdAt":"2024-01-01T00:00:00Z"}`))
	assert.Error(t, err)
}
