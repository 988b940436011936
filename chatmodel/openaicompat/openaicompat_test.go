package openaicompat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/chatmodel/openaicompat"
	"github.com/agentcore/agentcore/message"
)

type fakeClient struct {
	resp openai.ChatCompletionResponse
	err  error
}

func (f fakeClient) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f.resp, f.err
}

func (f fakeClient) CreateChatCompletionStream(context.Context, openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error) {
	return nil, errors.New("streaming not exercised via this fake")
}

func TestChatTranslatesChoice(t *testing.T) {
	client := fakeClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: "hello",
			},
		}},
		Usage: openai.Usage{TotalTokens: 42},
	}}
	m, err := openaicompat.New(client, "gpt-test")
	require.NoError(t, err)

	msg, err := m.Chat(context.Background(), []message.Message{
		message.NewHuman("hi", "u1", time.Now()),
	}, chatmodel.Options{})
	require.NoError(t, err)
	assert.Equal(t, message.KindAssistant, msg.Kind())
	assert.Equal(t, "hello", msg.Content())
	tokens, ok := msg.UsageTokens()
	assert.True(t, ok)
	assert.Equal(t, 42, tokens)
}

func TestChatRejectsEmptyChoices(t *testing.T) {
	client := fakeClient{resp: openai.ChatCompletionResponse{}}
	m, err := openaicompat.New(client, "gpt-test")
	require.NoError(t, err)

	_, err = m.Chat(context.Background(), nil, chatmodel.Options{})
	assert.Error(t, err)
}

func TestNewRejectsMissingModel(t *testing.T) {
	_, err := openaicompat.New(fakeClient{}, "")
	assert.Error(t, err)
}
