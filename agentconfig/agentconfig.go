// Package agentconfig loads the defaults that parameterize a react.Agent
// from YAML, following the same os.ReadFile-plus-yaml.Unmarshal pattern the
// teacher's integration test framework uses for its scenario files.
package agentconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentcore/agentcore/react"
)

// Config is the on-disk, YAML-shaped representation of react.AgentConfig
// plus the invocation-level default thread id that a deployment wires once
// and reuses across requests.
type Config struct {
	SystemPrompt         string `yaml:"systemPrompt"`
	DefaultMaxIterations int    `yaml:"defaultMaxIterations"`
	TimeoutSeconds       int    `yaml:"timeoutSeconds"`
	DefaultStreamEnabled bool   `yaml:"defaultStreamEnabled"`
	DefaultThreadID      string `yaml:"defaultThreadID"`
}

// Option customizes a Config after it has been loaded, before it is
// converted to a react.AgentConfig.
type Option func(*Config)

// WithSystemPrompt overrides the loaded system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) { c.SystemPrompt = prompt }
}

// WithMaxIterations overrides the loaded iteration bound.
func WithMaxIterations(n int) Option {
	return func(c *Config) { c.DefaultMaxIterations = n }
}

// WithTimeout overrides the loaded timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.TimeoutSeconds = int(d.Seconds()) }
}

// WithStreamEnabled overrides the loaded streaming default.
func WithStreamEnabled(enabled bool) Option {
	return func(c *Config) { c.DefaultStreamEnabled = enabled }
}

// WithDefaultThreadID overrides the loaded default thread id.
func WithDefaultThreadID(threadID string) Option {
	return func(c *Config) { c.DefaultThreadID = threadID }
}

// Load reads and parses the YAML file at path, applying opts in order.
func Load(path string, opts ...Option) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("agentconfig: read %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse parses YAML bytes directly, applying opts in order. Load is a thin
// wrapper around Parse for the common file-path case.
func Parse(data []byte, opts ...Option) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("agentconfig: parse: %w", err)
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// AgentConfig converts c into the react.AgentConfig an Agent is built with.
func (c Config) AgentConfig() react.AgentConfig {
	return react.AgentConfig{
		SystemPrompt:         c.SystemPrompt,
		DefaultMaxIterations: c.DefaultMaxIterations,
		TimeoutSeconds:       c.TimeoutSeconds,
		DefaultStreamEnabled: c.DefaultStreamEnabled,
	}
}
