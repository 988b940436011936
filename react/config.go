package react

import "time"

// AgentConfig carries the agent-level defaults that parameterize every
// invocation against a given Agent: system prompt, iteration bound,
// timeout, and streaming default.
type AgentConfig struct {
	// SystemPrompt is used when a Request does not set one.
	SystemPrompt string
	// DefaultMaxIterations bounds the number of model calls in a single
	// invoke when the Request leaves MaxIterations unset.
	DefaultMaxIterations int
	// TimeoutSeconds is the upper bound on wall-clock time for a single
	// invoke; defaults to 120 when zero.
	TimeoutSeconds int
	// DefaultStreamEnabled records the deployment's streaming default.
	// Neither Invoke nor Stream reads it or Request.StreamEnabled: the
	// caller selects streaming by calling Stream.
	DefaultStreamEnabled bool
}

const (
	defaultMaxIterations  = 25
	defaultTimeoutSeconds = 120
)

func (c AgentConfig) timeout() time.Duration {
	secs := c.TimeoutSeconds
	if secs <= 0 {
		secs = defaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

func (c AgentConfig) maxIterations(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.DefaultMaxIterations > 0 {
		return c.DefaultMaxIterations
	}
	return defaultMaxIterations
}
