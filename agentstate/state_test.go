package agentstate_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/message"
)

func TestAppendMessageVersioning(t *testing.T) {
	now := time.Now()
	s := agentstate.New("You are concise.", now)
	assert.Equal(t, int64(0), s.Version())

	s2, err := s.AppendMessage(message.NewHuman("hi", "", now), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s2.Version())
	assert.Equal(t, 2, s2.MessageCount())
}

func TestAppendToolMessageRequiresCorrelation(t *testing.T) {
	now := time.Now()
	s := agentstate.New("", now)
	s, _ = s.AppendMessage(message.NewHuman("go", "", now), now)
	s, _ = s.AppendMessage(message.NewAssistant("", []message.ToolCall{{ID: "c1", Name: "add", ArgumentsJSON: "{}"}}, now), now)

	_, err := s.AppendMessage(message.NewTool("wrong-id", "oops", false, "", now), now)
	assert.Error(t, err)

	s2, err := s.AppendMessage(message.NewTool("c1", "412", false, "", now), now)
	require.NoError(t, err)
	assert.NoError(t, s2.Validate())
}

func TestSecondSystemMessageRejected(t *testing.T) {
	now := time.Now()
	s := agentstate.New("sys", now)
	_, err := s.AppendMessage(message.NewSystem("sys2", now), now)
	assert.Error(t, err)
}

func TestStateJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	s := agentstate.New("sys", now)
	s = s.WithData("k", float64(42), now)
	s, err := s.AppendMessage(message.NewHuman("hi", "u1", now), now)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded agentstate.State
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, s.Version(), decoded.Version())
	assert.Equal(t, s.MessageCount(), decoded.MessageCount())
	v, ok := decoded.Data("k")
	assert.True(t, ok)
	assert.Equal(t, float64(42), v)
}
