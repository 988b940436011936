package anthropic_test

import (
	"context"
	"testing"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/chatmodel/anthropic"
	"github.com/agentcore/agentcore/message"
)

type fakeMessagesClient struct {
	resp *sdk.Message
	err  error
}

func (f fakeMessagesClient) New(context.Context, sdk.MessageNewParams, ...option.RequestOption) (*sdk.Message, error) {
	return f.resp, f.err
}

func (f fakeMessagesClient) NewStreaming(context.Context, sdk.MessageNewParams, ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion] {
	panic("streaming not exercised via this fake")
}

func TestChatTranslatesTextBlock(t *testing.T) {
	resp := &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "hello there"},
		},
	}
	m, err := anthropic.New(fakeMessagesClient{resp: resp}, "claude-test", 1024)
	require.NoError(t, err)

	msg, err := m.Chat(context.Background(), []message.Message{
		message.NewHuman("hi", "u1", time.Now()),
	}, chatmodel.Options{})
	require.NoError(t, err)
	assert.Equal(t, message.KindAssistant, msg.Kind())
	assert.Equal(t, "hello there", msg.Content())
}

func TestNewRejectsMissingModel(t *testing.T) {
	_, err := anthropic.New(fakeMessagesClient{}, "", 1024)
	assert.Error(t, err)
}

func TestNewDefaultsMaxTokens(t *testing.T) {
	m, err := anthropic.New(fakeMessagesClient{resp: &sdk.Message{}}, "claude-test", 0)
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestChatRequiresAtLeastOneMessage(t *testing.T) {
	m, err := anthropic.New(fakeMessagesClient{resp: &sdk.Message{}}, "claude-test", 1024)
	require.NoError(t, err)

	_, err = m.Chat(context.Background(), nil, chatmodel.Options{})
	assert.Error(t, err)
}
