package builtin

import (
	"fmt"
	"regexp"

	"github.com/agentcore/agentcore/middleware"
)

// InjectionMode selects how the resolved variable text combines with the
// request's existing system prompt.
type InjectionMode int

const (
	// InjectionPrefix prepends the resolved text before the system prompt.
	InjectionPrefix InjectionMode = iota
	// InjectionSuffix appends the resolved text after the system prompt.
	InjectionSuffix
	// InjectionReplace substitutes ${...} placeholders in place, leaving
	// the rest of the system prompt untouched.
	InjectionReplace
	// InjectionOverride discards the existing system prompt entirely,
	// using only the resolved template text.
	InjectionOverride
)

var injectionVarPattern = regexp.MustCompile(`\$\{(state|request|context):([^}]+)\}`)

// StateInjection resolves ${state:key}, ${request:key}, and ${context:key}
// placeholders against the current State's scratch map, the Request's
// Parameters map, and the Context's scratch map respectively, then combines
// the resolved text with the existing system prompt per Mode. It only fires
// on the first iteration of a request (per §4.3).
type StateInjection struct {
	middleware.Base
	Mode     InjectionMode
	Template string
}

// NewStateInjection builds a StateInjection middleware. template is the text
// containing ${...} placeholders; for InjectionReplace mode it is ignored in
// favor of substituting placeholders found directly in the system prompt.
func NewStateInjection(mode InjectionMode, template string, priority int) *StateInjection {
	return &StateInjection{
		Base:     middleware.Base{MiddlewareName: "state-injection", MiddlewarePriority: priority},
		Mode:     mode,
		Template: template,
	}
}

func (s *StateInjection) resolve(c *middleware.Context, text string) string {
	return injectionVarPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := injectionVarPattern.FindStringSubmatch(match)
		scope, key := groups[1], groups[2]
		switch scope {
		case "state":
			if v, ok := c.State().Data(key); ok {
				return fmt.Sprint(v)
			}
		case "request":
			if v, ok := c.Request().Parameters[key]; ok {
				return fmt.Sprint(v)
			}
		case "context":
			if v, ok := c.Scratch(key); ok {
				return fmt.Sprint(v)
			}
		}
		return match // unresolved variables pass through verbatim
	})
}

func (s *StateInjection) BeforeInvoke(c *middleware.Context) error {
	if c.Iteration() != 0 {
		return nil
	}
	req := c.Request()
	switch s.Mode {
	case InjectionPrefix:
		req.SystemPrompt = s.resolve(c, s.Template) + req.SystemPrompt
	case InjectionSuffix:
		req.SystemPrompt = req.SystemPrompt + s.resolve(c, s.Template)
	case InjectionReplace:
		req.SystemPrompt = s.resolve(c, req.SystemPrompt)
	case InjectionOverride:
		req.SystemPrompt = s.resolve(c, s.Template)
	}
	return nil
}
