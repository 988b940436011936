package tools_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/tools"
)

type addTool struct{}

func (addTool) Name() string        { return "add" }
func (addTool) Description() string { return "adds two numbers" }
func (addTool) ParametersSchema() any {
	return map[string]any{
		"type":     "object",
		"required": []any{"a", "b"},
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
	}
}
func (addTool) Execute(_ context.Context, argumentsJSON string) (message.ToolResult, error) {
	var args struct{ A, B float64 }
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return message.ToolResult{}, err
	}
	return message.ToolResult{ResultJSON: fmt.Sprintf("%v", args.A+args.B)}, nil
}

type panicTool struct{}

func (panicTool) Name() string          { return "boom" }
func (panicTool) Description() string   { return "" }
func (panicTool) ParametersSchema() any { return nil }
func (panicTool) Execute(context.Context, string) (message.ToolResult, error) {
	panic("kaboom")
}

func TestInvokeUnknownTool(t *testing.T) {
	inv := tools.NewInvoker(tools.NewRegistry(), 2)
	defer inv.Shutdown()

	res := inv.Invoke(context.Background(), message.ToolCall{ID: "c1", Name: "missing"})
	assert.True(t, res.IsError)
	assert.Equal(t, "c1", res.ToolCallID)
}

func TestInvokeValidatesArguments(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(addTool{})
	inv := tools.NewInvoker(reg, 2)
	defer inv.Shutdown()

	res := inv.Invoke(context.Background(), message.ToolCall{ID: "c1", Name: "add", ArgumentsJSON: `{"a":1}`})
	assert.True(t, res.IsError)
}

func TestInvokeRecoversPanic(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(panicTool{})
	inv := tools.NewInvoker(reg, 2)
	defer inv.Shutdown()

	res := inv.Invoke(context.Background(), message.ToolCall{ID: "c1", Name: "boom"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.ErrorMessage, "panicked")
}

func TestInvokeAllPreservesOrder(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(addTool{})
	inv := tools.NewInvoker(reg, 4)
	defer inv.Shutdown()

	calls := []message.ToolCall{
		{ID: "1", Name: "add", ArgumentsJSON: `{"a":1,"b":2}`},
		{ID: "2", Name: "missing"},
		{ID: "3", Name: "add", ArgumentsJSON: `{"a":3,"b":4}`},
	}
	results := inv.InvokeAll(context.Background(), calls)
	require.Len(t, results, 3)
	assert.Equal(t, "1", results[0].ToolCallID)
	assert.False(t, results[0].IsError)
	assert.Equal(t, "2", results[1].ToolCallID)
	assert.True(t, results[1].IsError)
	assert.Equal(t, "3", results[2].ToolCallID)
}

func TestInvokeAsyncConcurrent(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(addTool{})
	inv := tools.NewInvoker(reg, 4)
	defer inv.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := inv.InvokeAsync(context.Background(), message.ToolCall{ID: fmt.Sprint(i), Name: "add", ArgumentsJSON: `{"a":1,"b":1}`})
			require.NoError(t, err)
			res, err := f.Wait(context.Background())
			require.NoError(t, err)
			assert.False(t, res.IsError)
		}(i)
	}
	wg.Wait()
}

func TestShutdownRejectsNewWork(t *testing.T) {
	inv := tools.NewInvoker(tools.NewRegistry(), 1)
	inv.Shutdown()
	_, err := inv.InvokeAsync(context.Background(), message.ToolCall{ID: "1", Name: "add"})
	assert.Error(t, err)
}
