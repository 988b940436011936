// Package agentstate defines the immutable conversation snapshot threaded
// through a single agent invocation. A State is never mutated in place:
// every derived state is a new value with one more message appended and its
// Version incremented, so middleware and the ReAct loop can hold a State by
// value without racing on concurrent readers.
package agentstate

import (
	"fmt"
	"time"

	"github.com/agentcore/agentcore/message"
)

// State is an immutable snapshot of a conversation: its message history, a
// scratch map for middleware/application data, a monotonically increasing
// version, and the time it was created.
type State struct {
	messages  []message.Message
	data      map[string]any
	version   int64
	createdAt time.Time
}

// New builds the initial State for a conversation. If systemPrompt is
// non-empty, a System message is inserted at index 0.
func New(systemPrompt string, createdAt time.Time) State {
	var msgs []message.Message
	if systemPrompt != "" {
		msgs = append(msgs, message.NewSystem(systemPrompt, createdAt))
	}
	return State{
		messages:  msgs,
		data:      map[string]any{},
		version:   0,
		createdAt: createdAt,
	}
}

// Messages returns the ordered message history. The returned slice is a
// defensive copy; mutating it does not affect the State.
func (s State) Messages() []message.Message {
	return append([]message.Message(nil), s.messages...)
}

// MessageCount reports the number of messages in the history.
func (s State) MessageCount() int { return len(s.messages) }

// Data returns the scratch value stored under key, if any.
func (s State) Data(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// DataSnapshot returns a shallow copy of the full scratch map.
func (s State) DataSnapshot() map[string]any {
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Version reports the monotonically increasing derivation counter. A
// freshly-constructed State (via New) has Version 0.
func (s State) Version() int64 { return s.version }

// CreatedAt reports when this particular snapshot was derived.
func (s State) CreatedAt() time.Time { return s.createdAt }

// AppendMessage returns a new State with msg appended to the history,
// validating the tool-message correlation invariant: a Tool message's
// ToolCallID must match a ToolCall.ID carried by the immediately preceding
// Assistant message. Appending a System message after index 0, or a second
// System message, returns an error.
func (s State) AppendMessage(msg message.Message, at time.Time) (State, error) {
	if msg.Kind() == message.KindSystem && len(s.messages) > 0 {
		return State{}, fmt.Errorf("agentstate: system message must be at index 0")
	}
	if msg.Kind() == message.KindTool {
		if err := s.validateToolCorrelation(msg); err != nil {
			return State{}, err
		}
	}
	next := State{
		messages:  append(append([]message.Message(nil), s.messages...), msg),
		data:      s.data,
		version:   s.version + 1,
		createdAt: at,
	}
	return next, nil
}

func (s State) validateToolCorrelation(toolMsg message.Message) error {
	if len(s.messages) == 0 {
		return fmt.Errorf("agentstate: tool message %q has no preceding assistant message", toolMsg.ToolCallID())
	}
	prev := s.messages[len(s.messages)-1]
	if prev.Kind() != message.KindAssistant {
		return fmt.Errorf("agentstate: tool message %q does not immediately follow an assistant message", toolMsg.ToolCallID())
	}
	for _, tc := range prev.ToolCalls() {
		if tc.ID == toolMsg.ToolCallID() {
			return nil
		}
	}
	return fmt.Errorf("agentstate: tool message references unknown tool call id %q", toolMsg.ToolCallID())
}

// WithData returns a new State whose scratch map has key set to value. The
// message history is unchanged; Version advances and CreatedAt becomes at,
// since WithData derives a new snapshot.
func (s State) WithData(key string, value any, at time.Time) State {
	next := make(map[string]any, len(s.data)+1)
	for k, v := range s.data {
		next[k] = v
	}
	next[key] = value
	return State{
		messages:  s.messages,
		data:      next,
		version:   s.version + 1,
		createdAt: at,
	}
}

// Rebuild constructs a State directly from a full message list, scratch
// map, and version, bypassing AppendMessage's incremental derivation. Used
// by middleware (e.g. summarization) that replaces a prefix of the message
// history rather than appending to it. Callers are responsible for
// preserving the §3 invariants (system message at index 0, tool-message
// correlation) in the supplied messages.
func Rebuild(messages []message.Message, data map[string]any, version int64, at time.Time) State {
	d := make(map[string]any, len(data))
	for k, v := range data {
		d[k] = v
	}
	return State{
		messages:  append([]message.Message(nil), messages...),
		data:      d,
		version:   version,
		createdAt: at,
	}
}

// LastAssistant returns the most recent Assistant message, if any.
func (s State) LastAssistant() (message.Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Kind() == message.KindAssistant {
			return s.messages[i], true
		}
	}
	return message.Message{}, false
}

// Validate checks the full set of §3 invariants against the entire message
// history: at most one System message (at index 0), and every Tool message
// correlating to a ToolCall in its immediately preceding Assistant message.
func (s State) Validate() error {
	for i, m := range s.messages {
		if m.Kind() == message.KindSystem && i != 0 {
			return fmt.Errorf("agentstate: system message found at index %d, must be 0", i)
		}
		if m.Kind() == message.KindTool {
			if i == 0 {
				return fmt.Errorf("agentstate: tool message at index 0 has no preceding assistant message")
			}
			prev := s.messages[i-1]
			if prev.Kind() != message.KindAssistant {
				return fmt.Errorf("agentstate: tool message at index %d does not follow an assistant message", i)
			}
			found := false
			for _, tc := range prev.ToolCalls() {
				if tc.ID == m.ToolCallID() {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("agentstate: tool message at index %d references unknown tool call id %q", i, m.ToolCallID())
			}
		}
	}
	return nil
}
