// Package anthropic adapts chatmodel.Model to the Anthropic Claude Messages
// API via github.com/anthropics/anthropic-sdk-go.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/chatmodel/streamaccum"
	"github.com/agentcore/agentcore/message"
)

// MessagesClient captures the subset of the Anthropic SDK client this
// adapter depends on, satisfied by *sdk.MessageService or a test double.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
	NewStreaming(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion]
}

// Model implements chatmodel.Model against the Anthropic Messages API.
type Model struct {
	msg             MessagesClient
	model           string
	defaultMaxToken int
}

// New builds a Model backed by msg, completing requests against modelID.
// defaultMaxTokens is used whenever an individual call's chatmodel.Options
// leaves MaxTokens unset.
func New(msg MessagesClient, modelID string, defaultMaxTokens int) (*Model, error) {
	if msg == nil {
		return nil, errors.New("anthropic: client is required")
	}
	if modelID == "" {
		return nil, errors.New("anthropic: model id is required")
	}
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = 4096
	}
	return &Model{msg: msg, model: modelID, defaultMaxToken: defaultMaxTokens}, nil
}

// NewFromAPIKey constructs a Model using the SDK's default HTTP client.
func NewFromAPIKey(apiKey, modelID string, defaultMaxTokens int) (*Model, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&c.Messages, modelID, defaultMaxTokens)
}

func encodeTools(defs []chatmodel.ToolDefinition) ([]sdk.ToolUnionParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]sdk.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		schema, ok := def.Parameters.(map[string]any)
		if !ok && def.Parameters != nil {
			raw, err := json.Marshal(def.Parameters)
			if err != nil {
				return nil, fmt.Errorf("anthropic: marshal tool %q schema: %w", def.Name, err)
			}
			if err := json.Unmarshal(raw, &schema); err != nil {
				return nil, fmt.Errorf("anthropic: tool %q schema must be a JSON object: %w", def.Name, err)
			}
		}
		u := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{ExtraFields: schema}, def.Name)
		if u.OfTool != nil {
			u.OfTool.Description = sdk.String(def.Description)
		}
		out = append(out, u)
	}
	return out, nil
}

func encodeMessages(messages []message.Message) ([]sdk.MessageParam, []sdk.TextBlockParam, error) {
	conversation := make([]sdk.MessageParam, 0, len(messages))
	system := make([]sdk.TextBlockParam, 0)

	for _, m := range messages {
		switch m.Kind() {
		case message.KindSystem:
			if m.Content() != "" {
				system = append(system, sdk.TextBlockParam{Text: m.Content()})
			}
		case message.KindHuman:
			if m.Content() != "" {
				conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(m.Content())))
			}
		case message.KindAssistant:
			blocks := make([]sdk.ContentBlockParamUnion, 0, 1+len(m.ToolCalls()))
			if m.Content() != "" {
				blocks = append(blocks, sdk.NewTextBlock(m.Content()))
			}
			for _, c := range m.ToolCalls() {
				var input any
				if c.ArgumentsJSON != "" {
					if err := json.Unmarshal([]byte(c.ArgumentsJSON), &input); err != nil {
						return nil, nil, fmt.Errorf("anthropic: tool call %q arguments are not valid JSON: %w", c.ID, err)
					}
				}
				blocks = append(blocks, sdk.NewToolUseBlock(c.ID, input, c.Name))
			}
			if len(blocks) > 0 {
				conversation = append(conversation, sdk.NewAssistantMessage(blocks...))
			}
		case message.KindTool:
			content := m.Content()
			if m.IsError() {
				content = m.ErrorMessage()
			}
			conversation = append(conversation, sdk.NewUserMessage(
				sdk.NewToolResultBlock(m.ToolCallID(), content, m.IsError()),
			))
		}
	}
	if len(conversation) == 0 {
		return nil, nil, errors.New("anthropic: at least one user/assistant message is required")
	}
	return conversation, system, nil
}

func (m *Model) buildParams(messages []message.Message, opts chatmodel.Options) (sdk.MessageNewParams, error) {
	tools, err := encodeTools(opts.Tools)
	if err != nil {
		return sdk.MessageNewParams{}, err
	}
	conversation, system, err := encodeMessages(messages)
	if err != nil {
		return sdk.MessageNewParams{}, err
	}
	if opts.SystemPrompt != "" {
		system = append([]sdk.TextBlockParam{{Text: opts.SystemPrompt}}, system...)
	}
	maxTokens := m.defaultMaxToken
	if opts.MaxTokens != nil && *opts.MaxTokens > 0 {
		maxTokens = *opts.MaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(m.model),
		MaxTokens: int64(maxTokens),
		Messages:  conversation,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(tools) > 0 {
		params.Tools = tools
	}
	if opts.Temperature != nil {
		params.Temperature = sdk.Float(*opts.Temperature)
	}
	if len(opts.StopSequences) > 0 {
		params.StopSequences = opts.StopSequences
	}
	return params, nil
}

// Chat implements chatmodel.Model.
func (m *Model) Chat(ctx context.Context, messages []message.Message, opts chatmodel.Options) (message.Message, error) {
	params, err := m.buildParams(messages, opts)
	if err != nil {
		return message.Message{}, err
	}
	resp, err := m.msg.New(ctx, params)
	if err != nil {
		return message.Message{}, fmt.Errorf("anthropic: messages.new: %w", err)
	}
	return translateMessage(resp), nil
}

func translateMessage(resp *sdk.Message) message.Message {
	var content string
	var calls []message.ToolCall
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case sdk.TextBlock:
			content += variant.Text
		case sdk.ToolUseBlock:
			argsJSON, _ := json.Marshal(variant.Input)
			calls = append(calls, message.ToolCall{ID: variant.ID, Name: variant.Name, ArgumentsJSON: string(argsJSON)})
		}
	}
	totalTokens := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	return message.NewAssistant(content, calls, time.Now(), message.WithUsageTokens(totalTokens))
}

// ChatStream implements chatmodel.Model. Each call constructs its own
// streamaccum.Accumulator scoped to the stream, so concurrent ChatStream
// calls on a shared Model cannot interfere with each other's tool-call
// fragments.
func (m *Model) ChatStream(ctx context.Context, messages []message.Message, opts chatmodel.Options, cb chatmodel.StreamCallback) error {
	params, err := m.buildParams(messages, opts)
	if err != nil {
		cb.OnError(err)
		return err
	}
	stream := m.msg.NewStreaming(ctx, params)
	defer stream.Close()

	cb.OnStart()

	acc := streamaccum.New()
	var (
		content     string
		calls       []message.ToolCall
		toolIndex   = map[int64]string{}
		totalTokens int
	)
	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case sdk.ContentBlockStartEvent:
			if toolUse, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				toolIndex[ev.Index] = toolUse.ID
				acc.Feed(int(ev.Index), toolUse.ID, toolUse.Name, "")
			}
		case sdk.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if delta.Text != "" {
					content += delta.Text
					cb.OnToken(delta.Text)
				}
			case sdk.InputJSONDelta:
				if delta.PartialJSON == "" {
					continue
				}
				call, ok := acc.Feed(int(ev.Index), "", "", delta.PartialJSON)
				if ok {
					calls = append(calls, call)
					cb.OnToolCall(delta.PartialJSON, call)
				}
			}
		case sdk.MessageDeltaEvent:
			totalTokens += int(ev.Usage.OutputTokens)
		}
	}
	if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("anthropic: receive message stream event: %w", err)
		cb.OnError(err)
		return err
	}

	final := message.NewAssistant(content, calls, time.Now(), message.WithUsageTokens(totalTokens))
	cb.OnCompletion(final)
	return nil
}
