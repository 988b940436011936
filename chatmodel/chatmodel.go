// Package chatmodel defines the ChatModel contract (§4.1): a blocking
// completion call and a streaming completion call that pushes events to a
// caller-provided callback. Concrete provider adapters live in
// chatmodel/openaicompat and chatmodel/anthropic.
package chatmodel

import (
	"context"

	"github.com/agentcore/agentcore/message"
)

type (
	// ToolDefinition describes a tool exposed to the model: its name,
	// description, and JSON-schema parameters document.
	ToolDefinition struct {
		Name        string
		Description string
		Parameters  any
	}

	// Options configures a single chat or chatStream call.
	Options struct {
		Temperature   *float64
		TopP          *float64
		MaxTokens     *int
		StopSequences []string
		SystemPrompt  string
		Tools         []ToolDefinition
	}

	// Model is the ChatModel contract from §4.1.
	Model interface {
		// Chat performs a blocking completion call and returns the
		// resulting Assistant message.
		Chat(ctx context.Context, messages []message.Message, opts Options) (message.Message, error)

		// ChatStream performs a streaming completion call, pushing events
		// to cb as they arrive. Exactly one terminal event (OnCompletion
		// or OnError) fires before ChatStream returns.
		ChatStream(ctx context.Context, messages []message.Message, opts Options, cb StreamCallback) error
	}

	// StreamCallback receives streaming events from a ChatStream call.
	// Implementations must not block the calling goroutine for long —
	// ChatStream invokes callbacks synchronously from the transport's
	// read loop — and must be safe for concurrent use only if the
	// application also touches the callback's state from elsewhere.
	StreamCallback interface {
		OnStart()
		OnToken(chunk string)
		OnToolCall(chunk string, call message.ToolCall)
		OnCompletion(final message.Message)
		OnError(err error)
	}
)
