// Package streamaccum accumulates streamed tool-call fragments into complete
// tool calls.
//
// §9 flags a design error in the source implementation: fragment state was
// kept on a model handle as instance state, which is a concurrency hazard
// when a single handle serves concurrent ChatStream calls. Accumulator
// exists precisely to avoid that mistake — callers must construct one
// Accumulator per ChatStream invocation (never share one across calls or
// store it on a long-lived model handle) and discard it once the stream
// ends.
package streamaccum

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/agentcore/agentcore/message"
)

type fragment struct {
	id        string
	name      string
	arguments string
	triggered bool
}

// Accumulator reassembles per-index tool-call fragments streamed by a
// provider into complete message.ToolCall values, firing exactly once per
// tool-call id as soon as its accumulated arguments parse as valid JSON.
type Accumulator struct {
	fragments map[int]*fragment
}

// New constructs an empty Accumulator, scoped to a single stream.
func New() *Accumulator {
	return &Accumulator{fragments: map[int]*fragment{}}
}

// Feed applies one fragment for the tool call at position index. id and
// name are only meaningful on a call's first fragment (pass "" on later
// fragments for the same index); argumentsDelta is appended to the
// accumulated arguments buffer for that index.
//
// Feed returns the completed ToolCall and true the first time (and only
// the first time) the accumulated arguments for that id parse as valid
// JSON.
func (a *Accumulator) Feed(index int, id, name, argumentsDelta string) (message.ToolCall, bool) {
	f, ok := a.fragments[index]
	if !ok {
		f = &fragment{}
		a.fragments[index] = f
	}
	if id != "" {
		f.id = id
	}
	if name != "" {
		f.name = name
	}
	f.arguments += argumentsDelta

	if f.triggered || f.id == "" {
		return message.ToolCall{}, false
	}
	if !json.Valid([]byte(f.arguments)) {
		return message.ToolCall{}, false
	}
	f.triggered = true
	return message.ToolCall{ID: f.id, Name: f.name, ArgumentsJSON: f.arguments}, true
}

// NewToolCallID mints a provider-agnostic tool call id for adapters whose
// wire format does not supply one on the first fragment.
func NewToolCallID() string {
	return "call_" + uuid.NewString()
}
