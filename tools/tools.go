// Package tools defines the tool contract, an in-process name→tool
// registry, and an invoker that executes tool calls synchronously or on a
// shared bounded worker pool.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/agentcore/agentcore/message"
)

type (
	// Tool is a single callable operation exposed to the model.
	Tool interface {
		// Name is the globally unique tool identifier.
		Name() string
		// Description is presented to the model to decide when to call the
		// tool.
		Description() string
		// ParametersSchema returns the JSON Schema (as a decoded document,
		// e.g. from json.Unmarshal into map[string]any) describing the
		// tool's arguments. A nil schema disables argument validation.
		ParametersSchema() any
		// Execute runs the tool against the raw JSON arguments string the
		// model emitted and returns a ToolResult. Execute must not panic
		// for ordinary failures; return an error ToolResult instead.
		Execute(ctx context.Context, argumentsJSON string) (message.ToolResult, error)
	}

	// Registry maps unique tool names to Tool implementations. Registry is
	// mutated only at agent build time (Register); reads (Get, List) are
	// lock-free-safe for concurrent use once construction is done, but the
	// implementation also guards registration with a mutex so tests that
	// register tools concurrently are not racy.
	Registry struct {
		mu    sync.RWMutex
		tools map[string]Tool
	}
)

// NewRegistry builds an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds t to the registry. Registering a second tool under the same
// name replaces the first.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns every registered tool name.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// ValidateArguments checks argumentsJSON against t's declared parameters
// schema, when one is set. A nil or empty schema always validates.
func ValidateArguments(t Tool, argumentsJSON string) error {
	schema := t.ParametersSchema()
	if schema == nil {
		return nil
	}
	c := jsonschema.NewCompiler()
	const resource = "agentcore://tools/params.schema.json"
	if err := c.AddResource(resource, schema); err != nil {
		return fmt.Errorf("load parameters schema for tool %q: %w", t.Name(), err)
	}
	compiled, err := c.Compile(resource)
	if err != nil {
		return fmt.Errorf("compile parameters schema for tool %q: %w", t.Name(), err)
	}
	var args any
	if argumentsJSON == "" {
		args = map[string]any{}
	} else if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return fmt.Errorf("tool %q arguments are not valid JSON: %w", t.Name(), err)
	}
	if err := compiled.Validate(args); err != nil {
		return fmt.Errorf("tool %q arguments failed schema validation: %w", t.Name(), err)
	}
	return nil
}
