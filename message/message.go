// Package message defines the typed conversation records exchanged between
// a human, an assistant model, and tools. Messages are immutable once
// constructed: every constructor returns a fully-populated value and no
// exported field is mutated afterward.
package message

import "time"

type (
	// Kind discriminates the four message variants.
	Kind string

	// Message is a tagged-union conversation record. Exactly one of the
	// Kind-specific accessor groups below is meaningful for a given value,
	// selected by Kind. Construct instances with NewSystem, NewHuman,
	// NewAssistant, or NewTool rather than the zero value.
	Message struct {
		kind      Kind
		createdAt time.Time

		// System / Human / Assistant share Content.
		content string

		// Human only.
		userID string

		// Assistant only.
		toolCalls    []ToolCall
		reasoning    string
		hasReasoning bool
		usageTokens  int
		hasUsage     bool

		// Tool only.
		toolCallID   string
		isError      bool
		errorMessage string
	}

	// ToolCall is a single tool invocation requested by an assistant message.
	// IDs are unique within the assistant message that carries them.
	ToolCall struct {
		ID            string
		Name          string
		ArgumentsJSON string
	}

	// ToolResult is the framework's report of a tool invocation outcome. It
	// converts to a Tool message via ToMessage.
	ToolResult struct {
		ToolCallID   string
		ResultJSON   string
		IsError      bool
		ErrorMessage string
	}
)

const (
	KindSystem    Kind = "system"
	KindHuman     Kind = "human"
	KindAssistant Kind = "assistant"
	KindTool      Kind = "tool"
)

// NewSystem builds a System message setting role/instructions for the
// conversation.
func NewSystem(content string, createdAt time.Time) Message {
	return Message{kind: KindSystem, content: content, createdAt: createdAt}
}

// NewHuman builds a Human message. userID is optional; pass "" when unknown.
func NewHuman(content, userID string, createdAt time.Time) Message {
	return Message{kind: KindHuman, content: content, userID: userID, createdAt: createdAt}
}

// AssistantOption configures optional Assistant message fields.
type AssistantOption func(*Message)

// WithReasoning attaches the model's reasoning trace to an Assistant message.
func WithReasoning(reasoning string) AssistantOption {
	return func(m *Message) {
		m.reasoning = reasoning
		m.hasReasoning = true
	}
}

// WithUsageTokens attaches a total-token usage count to an Assistant message.
func WithUsageTokens(tokens int) AssistantOption {
	return func(m *Message) {
		m.usageTokens = tokens
		m.hasUsage = true
	}
}

// NewAssistant builds an Assistant message. content may be empty when the
// message consists solely of tool calls. toolCalls is copied defensively so
// later mutation of the caller's slice cannot affect this message.
func NewAssistant(content string, toolCalls []ToolCall, createdAt time.Time, opts ...AssistantOption) Message {
	m := Message{
		kind:      KindAssistant,
		content:   content,
		toolCalls: append([]ToolCall(nil), toolCalls...),
		createdAt: createdAt,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NewTool builds a Tool message reporting the outcome of executing the tool
// call identified by toolCallID. toolCallID must match a ToolCall.ID carried
// by the immediately preceding Assistant message (enforced by agentstate,
// not by this constructor).
func NewTool(toolCallID, content string, isError bool, errorMessage string, createdAt time.Time) Message {
	return Message{
		kind:         KindTool,
		toolCallID:   toolCallID,
		content:      content,
		isError:      isError,
		errorMessage: errorMessage,
		createdAt:    createdAt,
	}
}

// ToMessage converts a ToolResult into the Tool message fed back to the
// model.
func (r ToolResult) ToMessage(createdAt time.Time) Message {
	return NewTool(r.ToolCallID, r.ResultJSON, r.IsError, r.ErrorMessage, createdAt)
}

// Kind reports the message variant.
func (m Message) Kind() Kind { return m.kind }

// CreatedAt reports the monotonically increasing creation timestamp.
func (m Message) CreatedAt() time.Time { return m.createdAt }

// Content returns the textual content for System, Human, and Assistant
// messages, or the result payload for Tool messages.
func (m Message) Content() string { return m.content }

// UserID returns the optional human user identifier. Only meaningful when
// Kind() == KindHuman.
func (m Message) UserID() string { return m.userID }

// ToolCalls returns the ordered tool calls requested by an Assistant
// message. Only meaningful when Kind() == KindAssistant. The returned slice
// is a defensive copy.
func (m Message) ToolCalls() []ToolCall {
	if len(m.toolCalls) == 0 {
		return nil
	}
	return append([]ToolCall(nil), m.toolCalls...)
}

// HasToolCalls reports whether an Assistant message carries one or more
// tool calls.
func (m Message) HasToolCalls() bool { return len(m.toolCalls) > 0 }

// Reasoning returns the assistant's optional reasoning trace and whether it
// was set.
func (m Message) Reasoning() (string, bool) { return m.reasoning, m.hasReasoning }

// UsageTokens returns the assistant's optional usage token count and
// whether it was set.
func (m Message) UsageTokens() (int, bool) { return m.usageTokens, m.hasUsage }

// ToolCallID returns the tool call id this Tool message correlates to. Only
// meaningful when Kind() == KindTool.
func (m Message) ToolCallID() string { return m.toolCallID }

// IsError reports whether a Tool message represents an error result.
func (m Message) IsError() bool { return m.isError }

// ErrorMessage returns the human-readable error reason for a Tool message
// when IsError() is true.
func (m Message) ErrorMessage() string { return m.errorMessage }
