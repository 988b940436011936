package builtin

import (
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
)

// ApprovalPolicyMode selects which tool calls require human approval.
type ApprovalPolicyMode int

const (
	// ApprovalAlways requires approval for every tool call.
	ApprovalAlways ApprovalPolicyMode = iota
	// ApprovalWhitelist requires approval only for named tools.
	ApprovalWhitelist
	// ApprovalBlacklist requires approval for every tool except named ones.
	ApprovalBlacklist
	// ApprovalNever never requires approval.
	ApprovalNever
)

// HumanInTheLoop gates tool execution behind an approval policy. When the
// policy matches a tool call, BeforeToolCall returns an interrupt instead of
// letting the call proceed.
type HumanInTheLoop struct {
	middleware.Base
	mode  ApprovalPolicyMode
	names map[string]struct{}
}

// NewHumanInTheLoop builds a HumanInTheLoop middleware. names is only
// consulted for ApprovalWhitelist and ApprovalBlacklist.
func NewHumanInTheLoop(mode ApprovalPolicyMode, names []string, priority int) *HumanInTheLoop {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &HumanInTheLoop{
		Base:  middleware.Base{MiddlewareName: "human-in-the-loop", MiddlewarePriority: priority},
		mode:  mode,
		names: set,
	}
}

func (h *HumanInTheLoop) requiresApproval(name string) bool {
	switch h.mode {
	case ApprovalAlways:
		return true
	case ApprovalNever:
		return false
	case ApprovalWhitelist:
		_, ok := h.names[name]
		return ok
	case ApprovalBlacklist:
		_, ok := h.names[name]
		return !ok
	default:
		return false
	}
}

func (h *HumanInTheLoop) BeforeToolCall(c *middleware.Context, call message.ToolCall) middleware.InterceptionResult {
	if !h.requiresApproval(call.Name) {
		return middleware.Continue()
	}
	req := c.Request()
	return middleware.InterruptWith(middleware.Interrupt{
		Kind:        middleware.InterruptApprovalRequired,
		PendingCall: call,
		Description: "tool call " + call.Name + " requires human approval",
		ThreadID:    req.ThreadID,
	})
}
