package builtin

import (
	"context"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
	"github.com/agentcore/agentcore/telemetry"
)

// LoggingPriority is the default priority for Logging, chosen to run before
// most other middleware on the way in and report last on the way out.
const LoggingPriority = 0

// Logging emits structured events at each suspension point. It has no
// control-flow effect: every hook only observes.
type Logging struct {
	middleware.Base
	logger telemetry.Logger
	ctx    context.Context
}

// NewLogging builds a Logging middleware that reports through logger. ctx is
// used for log correlation (trace/span ids carried on the context); pass
// context.Background() if none is available.
func NewLogging(logger telemetry.Logger, ctx context.Context, priority int) *Logging {
	return &Logging{
		Base:   middleware.Base{MiddlewareName: "logging", MiddlewarePriority: priority},
		logger: logger,
		ctx:    ctx,
	}
}

func (l *Logging) BeforeInvoke(c *middleware.Context) error {
	req := c.Request()
	l.logger.Info(l.ctx, "agent request started",
		"thread_id", req.ThreadID,
		"session_id", req.SessionID,
		"iteration", c.Iteration(),
	)
	return nil
}

func (l *Logging) AfterInvoke(c *middleware.Context) {
	resp := c.Response()
	if resp == nil {
		return
	}
	l.logger.Info(l.ctx, "agent response produced",
		"thread_id", resp.ThreadID,
		"duration_ms", resp.DurationMs,
		"tool_call_count", len(resp.ToolCalls),
	)
}

func (l *Logging) BeforeToolCall(c *middleware.Context, call message.ToolCall) middleware.InterceptionResult {
	l.logger.Info(l.ctx, "tool call starting", "tool_call_id", call.ID, "tool_name", call.Name)
	return middleware.Continue()
}

func (l *Logging) AfterToolCall(c *middleware.Context, call message.ToolCall, result message.ToolResult) {
	l.logger.Info(l.ctx, "tool call finished",
		"tool_call_id", call.ID,
		"tool_name", call.Name,
		"is_error", result.IsError,
	)
}

func (l *Logging) OnStateUpdate(c *middleware.Context, state agentstate.State) agentstate.State {
	l.logger.Debug(l.ctx, "state updated", "version", state.Version(), "message_count", state.MessageCount())
	return state
}

func (l *Logging) OnError(c *middleware.Context, err error) {
	l.logger.Error(l.ctx, "agent pipeline error", "error", err)
}

func (l *Logging) OnFinally(c *middleware.Context, err error) {
	if err != nil {
		l.logger.Warn(l.ctx, "agent invocation finished with error", "error", err)
		return
	}
	l.logger.Debug(l.ctx, "agent invocation finished")
}
