package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireMessage is the on-wire shape for Message, discriminated by Kind. It is
// also the shape validated against Schema before UnmarshalJSON materializes a
// Message, so malformed payloads fail with a structured error instead of
// silently decoding into a zero-value variant.
type wireMessage struct {
	Kind         Kind       `json:"kind"`
	CreatedAt    time.Time  `json:"createdAt"`
	Content      string     `json:"content,omitempty"`
	UserID       string     `json:"userId,omitempty"`
	ToolCalls    []ToolCall `json:"toolCalls,omitempty"`
	Reasoning    *string    `json:"reasoning,omitempty"`
	UsageTokens  *int       `json:"usageTokens,omitempty"`
	ToolCallID   string     `json:"toolCallId,omitempty"`
	IsError      bool       `json:"isError,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// MarshalJSON encodes a Message using an explicit Kind discriminator so the
// concrete variant round-trips without loss.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{
		Kind:         m.kind,
		CreatedAt:    m.createdAt,
		Content:      m.content,
		UserID:       m.userID,
		ToolCalls:    m.toolCalls,
		ToolCallID:   m.toolCallID,
		IsError:      m.isError,
		ErrorMessage: m.errorMessage,
	}
	if m.hasReasoning {
		w.Reasoning = &m.reasoning
	}
	if m.hasUsage {
		w.UsageTokens = &m.usageTokens
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a Message, rejecting an unknown Kind discriminator.
// Fields belonging to another variant are decoded as given, not rejected.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	switch w.Kind {
	case KindSystem, KindHuman, KindAssistant, KindTool:
	default:
		return fmt.Errorf("decode message: unknown kind %q", w.Kind)
	}
	out := Message{
		kind:         w.Kind,
		createdAt:    w.CreatedAt,
		content:      w.Content,
		userID:       w.UserID,
		toolCalls:    w.ToolCalls,
		toolCallID:   w.ToolCallID,
		isError:      w.IsError,
		errorMessage: w.ErrorMessage,
	}
	if w.Reasoning != nil {
		out.reasoning = *w.Reasoning
		out.hasReasoning = true
	}
	if w.UsageTokens != nil {
		out.usageTokens = *w.UsageTokens
		out.hasUsage = true
	}
	*m = out
	return nil
}
