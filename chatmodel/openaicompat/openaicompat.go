// Package openaicompat adapts chatmodel.Model to the OpenAI Chat Completions
// wire contract via github.com/sashabaranov/go-openai. It also backs any
// OpenAI-compatible endpoint reachable by overriding the client's base URL.
package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/chatmodel/streamaccum"
	"github.com/agentcore/agentcore/message"
)

// ChatClient captures the subset of *openai.Client this adapter depends on,
// so tests can substitute a fake without a live API key.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// Model implements chatmodel.Model against an OpenAI-compatible endpoint.
type Model struct {
	client ChatClient
	model  string
}

// New builds a Model backed by client that completes every request against
// modelID.
func New(client ChatClient, modelID string) (*Model, error) {
	if client == nil {
		return nil, errors.New("openaicompat: client is required")
	}
	if modelID == "" {
		return nil, errors.New("openaicompat: model id is required")
	}
	return &Model{client: client, model: modelID}, nil
}

// NewFromAPIKey constructs a Model using go-openai's default HTTP client.
func NewFromAPIKey(apiKey, modelID string) (*Model, error) {
	if apiKey == "" {
		return nil, errors.New("openaicompat: api key is required")
	}
	return New(openai.NewClient(apiKey), modelID)
}

func (m *Model) encodeMessages(messages []message.Message, systemPrompt string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, msg := range messages {
		switch msg.Kind() {
		case message.KindSystem:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: msg.Content()})
		case message.KindHuman:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Content()})
		case message.KindAssistant:
			calls := msg.ToolCalls()
			oaiCalls := make([]openai.ToolCall, len(calls))
			for i, c := range calls {
				oaiCalls[i] = openai.ToolCall{
					ID:   c.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      c.Name,
						Arguments: c.ArgumentsJSON,
					},
				}
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				Content:   msg.Content(),
				ToolCalls: oaiCalls,
			})
		case message.KindTool:
			content := msg.Content()
			if msg.IsError() {
				content = msg.ErrorMessage()
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				ToolCallID: msg.ToolCallID(),
			})
		}
	}
	return out
}

func encodeTools(defs []chatmodel.ToolDefinition) ([]openai.Tool, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	tools := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		params, err := json.Marshal(def.Parameters)
		if err != nil {
			return nil, fmt.Errorf("openaicompat: marshal tool %q schema: %w", def.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}
	return tools, nil
}

func (m *Model) buildRequest(messages []message.Message, opts chatmodel.Options, stream bool) (openai.ChatCompletionRequest, error) {
	tools, err := encodeTools(opts.Tools)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	req := openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: m.encodeMessages(messages, opts.SystemPrompt),
		Tools:    tools,
		Stream:   stream,
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}
	if opts.TopP != nil {
		req.TopP = float32(*opts.TopP)
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if len(opts.StopSequences) > 0 {
		req.Stop = opts.StopSequences
	}
	return req, nil
}

// Chat implements chatmodel.Model.
func (m *Model) Chat(ctx context.Context, messages []message.Message, opts chatmodel.Options) (message.Message, error) {
	req, err := m.buildRequest(messages, opts, false)
	if err != nil {
		return message.Message{}, err
	}
	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return message.Message{}, fmt.Errorf("openaicompat: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return message.Message{}, errors.New("openaicompat: response contained no choices")
	}
	return translateChoice(resp.Choices[0], resp.Usage.TotalTokens, time.Now()), nil
}

func translateChoice(choice openai.ChatCompletionChoice, totalTokens int, at time.Time) message.Message {
	calls := make([]message.ToolCall, len(choice.Message.ToolCalls))
	for i, c := range choice.Message.ToolCalls {
		calls[i] = message.ToolCall{ID: c.ID, Name: c.Function.Name, ArgumentsJSON: c.Function.Arguments}
	}
	opts := []message.AssistantOption{message.WithUsageTokens(totalTokens)}
	return message.NewAssistant(choice.Message.Content, calls, at, opts...)
}

// ChatStream implements chatmodel.Model. It drives an SSE stream, feeding
// each delta through a stream-scoped streamaccum.Accumulator — per-call
// state never touches the Model, so concurrent ChatStream calls on the same
// Model never interfere with each other.
func (m *Model) ChatStream(ctx context.Context, messages []message.Message, opts chatmodel.Options, cb chatmodel.StreamCallback) error {
	req, err := m.buildRequest(messages, opts, true)
	if err != nil {
		cb.OnError(err)
		return err
	}
	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		err = fmt.Errorf("openaicompat: open chat completion stream: %w", err)
		cb.OnError(err)
		return err
	}
	defer stream.Close()

	cb.OnStart()

	acc := streamaccum.New()
	var (
		content     string
		calls       []message.ToolCall
		usageTokens int
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			err = fmt.Errorf("openaicompat: receive chat completion stream chunk: %w", err)
			cb.OnError(err)
			return err
		}
		if chunk.Usage != nil {
			usageTokens = chunk.Usage.TotalTokens
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			content += delta.Content
			cb.OnToken(delta.Content)
		}
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			call, ok := acc.Feed(idx, tc.ID, tc.Function.Name, tc.Function.Arguments)
			if ok {
				calls = append(calls, call)
				cb.OnToolCall(tc.Function.Arguments, call)
			}
		}
	}

	final := message.NewAssistant(content, calls, time.Now(), message.WithUsageTokens(usageTokens))
	cb.OnCompletion(final)
	return nil
}
