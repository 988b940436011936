package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentcore/agentcore/message"
)

// clockTool is a minimal, dependency-free tool used to exercise the ReAct
// loop's tool-call path from the command line without requiring any
// external service.
type clockTool struct{}

func (clockTool) Name() string        { return "current_time" }
func (clockTool) Description() string { return "returns the current UTC time in RFC3339" }
func (clockTool) ParametersSchema() any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (clockTool) Execute(context.Context, string) (message.ToolResult, error) {
	out, err := json.Marshal(map[string]string{"now": time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return message.ToolResult{}, fmt.Errorf("marshal time result: %w", err)
	}
	return message.ToolResult{ResultJSON: string(out)}, nil
}
