package message

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// wireSchemaJSON is the JSON Schema for the on-wire Message shape (see
// wireMessage in json.go). It is intentionally permissive about which
// variant-specific fields are present — Kind is the only required
// discriminator — since stricter per-kind shape checks are enforced by
// agentstate's correlation invariants, not by wire validation.
const wireSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind", "createdAt"],
  "properties": {
    "kind": {"enum": ["system", "human", "assistant", "tool"]},
    "createdAt": {"type": "string"},
    "content": {"type": "string"},
    "userId": {"type": "string"},
    "toolCalls": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["ID", "Name", "ArgumentsJSON"],
        "properties": {
          "ID": {"type": "string"},
          "Name": {"type": "string"},
          "ArgumentsJSON": {"type": "string"}
        }
      }
    },
    "reasoning": {"type": "string"},
    "usageTokens": {"type": "integer"},
    "toolCallId": {"type": "string"},
    "isError": {"type": "boolean"},
    "errorMessage": {"type": "string"}
  }
}`

var (
	wireSchemaOnce sync.Once
	wireSchema     *jsonschema.Schema
	wireSchemaErr  error
)

func compiledWireSchema() (*jsonschema.Schema, error) {
	wireSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(wireSchemaJSON), &doc); err != nil {
			wireSchemaErr = fmt.Errorf("parse message wire schema: %w", err)
			return
		}
		const resource = "agentcore://message/wire.schema.json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(resource, doc); err != nil {
			wireSchemaErr = fmt.Errorf("load message wire schema: %w", err)
			return
		}
		wireSchema, wireSchemaErr = c.Compile(resource)
	})
	return wireSchema, wireSchemaErr
}

// ValidateWire checks that data conforms to the Message wire schema before
// attempting to decode it. Callers that persist or transmit messages across
// a process boundary should call this first so malformed payloads fail with
// a structured, descriptive error rather than a generic JSON decode error or
// a silently-wrong zero value.
func ValidateWire(data []byte) error {
	schema, err := compiledWireSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("message wire payload is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("message wire payload failed schema validation: %w", err)
	}
	return nil
}

// DecodeWire validates data against the wire schema and decodes it into a
// Message.
func DecodeWire(data []byte) (Message, error) {
	if err := ValidateWire(data); err != nil {
		return Message{}, err
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}
