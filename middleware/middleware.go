// Package middleware implements the ordered interception chain (§4.3) that
// wraps every model call, tool call, and state mutation performed by the
// ReAct strategy.
package middleware

import (
	"sort"
	"sync"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/message"
)

type (
	// Status is the runtime status exposed on a Context.
	Status string

	// Request is the inbound invocation request threaded through a Context.
	Request struct {
		Input         string
		ThreadID      string
		UserID        string
		SessionID     string
		Parameters    map[string]any
		SystemPrompt  string
		MaxIterations int
		StreamEnabled bool
	}

	// Response is the outbound result of an invocation, populated once the
	// ReAct loop completes or suspends on an Interrupt.
	Response struct {
		Output        string
		Messages      []message.Message
		State         agentstate.State
		ThreadID      string
		CheckpointID  string
		HasCheckpoint bool
		DurationMs    int64
		StartTime     int64
		EndTime       int64
		ToolCalls     []message.ToolCall
		Interrupt     *Interrupt
	}

	// InterruptKind discriminates interrupt causes. approval-required is the
	// only kind currently defined.
	InterruptKind string

	// Interrupt records why and where execution paused for human approval.
	Interrupt struct {
		Kind         InterruptKind
		PendingCall  message.ToolCall
		Description  string
		ThreadID     string
		CheckpointID string
	}
)

const (
	StatusIdle               Status = "idle"
	StatusRunning            Status = "running"
	StatusWaitingForTool     Status = "waiting-for-tool"
	StatusWaitingForApproval Status = "waiting-for-approval"
	StatusError              Status = "error"
	StatusStopped            Status = "stopped"

	InterruptApprovalRequired InterruptKind = "approval-required"
)

// Context carries per-invocation state across the middleware chain. It is
// not shared across invocations; the ReAct loop owns one Context per
// invoke/resume call.
type Context struct {
	mu sync.RWMutex

	request   *Request
	response  *Response
	state     agentstate.State
	status    Status
	iteration int
	scratch   map[string]any
}

// NewContext builds a Context for a fresh invocation.
func NewContext(req *Request, state agentstate.State) *Context {
	return &Context{
		request:   req,
		state:     state,
		status:    StatusIdle,
		scratch:   map[string]any{},
	}
}

// Request returns the mutable request pointer.
func (c *Context) Request() *Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.request
}

// Response returns the current response, which is nil before completion.
func (c *Context) Response() *Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.response
}

// SetResponse installs the current response.
func (c *Context) SetResponse(resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = resp
}

// State returns the current state snapshot.
func (c *Context) State() agentstate.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState installs a new state snapshot, typically the return value of
// onStateUpdate interception.
func (c *Context) SetState(s agentstate.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Status returns the current runtime status.
func (c *Context) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SetStatus installs a new runtime status.
func (c *Context) SetStatus(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

// Iteration returns the current loop iteration number.
func (c *Context) Iteration() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.iteration
}

// SetIteration installs the current loop iteration number.
func (c *Context) SetIteration(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iteration = n
}

// Scratch returns the value stored under key in the inter-middleware
// scratch map.
func (c *Context) Scratch(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.scratch[key]
	return v, ok
}

// SetScratch stores value under key in the inter-middleware scratch map.
func (c *Context) SetScratch(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scratch[key] = value
}

// snapshot is a shallow-immutable capture of a Context, taken across a
// suspension point (a model call, a tool call, a checkpoint save/load).
type snapshot struct {
	request   Request
	response  *Response
	state     agentstate.State
	status    Status
	iteration int
	scratch   map[string]any
}

// Snapshot captures the Context's current fields. The returned value is
// shallow-immutable: mutating the scratch map of a prior snapshot does not
// affect a Context restored from it, since Restore copies it back in.
func (c *Context) Snapshot() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	scratch := make(map[string]any, len(c.scratch))
	for k, v := range c.scratch {
		scratch[k] = v
	}
	req := *c.request
	return snapshot{
		request:   req,
		response:  c.response,
		state:     c.state,
		status:    c.status,
		iteration: c.iteration,
		scratch:   scratch,
	}
}

// Restore installs a previously captured Snapshot.
func (c *Context) Restore(s any) {
	snap, ok := s.(snapshot)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	req := snap.request
	c.request = &req
	c.response = snap.response
	c.state = snap.state
	c.status = snap.status
	c.iteration = snap.iteration
	scratch := make(map[string]any, len(snap.scratch))
	for k, v := range snap.scratch {
		scratch[k] = v
	}
	c.scratch = scratch
}

// InterceptionResult is the tagged-variant result of beforeToolCall:
// continue, stop(reason), or interrupt(Interrupt).
type InterceptionResult struct {
	kind      interceptionKind
	reason    string
	interrupt Interrupt
}

type interceptionKind int

const (
	kindContinue interceptionKind = iota
	kindStop
	kindInterrupt
)

// Continue lets tool execution proceed.
func Continue() InterceptionResult { return InterceptionResult{kind: kindContinue} }

// Stop halts the current tool-call sub-loop with reason, treating the
// in-flight iteration as final.
func Stop(reason string) InterceptionResult {
	return InterceptionResult{kind: kindStop, reason: reason}
}

// InterruptWith suspends execution, carrying the interrupt record.
func InterruptWith(in Interrupt) InterceptionResult {
	return InterceptionResult{kind: kindInterrupt, interrupt: in}
}

// IsContinue reports whether the result is continue.
func (r InterceptionResult) IsContinue() bool { return r.kind == kindContinue }

// IsStop reports whether the result is stop, returning its reason.
func (r InterceptionResult) IsStop() (string, bool) { return r.reason, r.kind == kindStop }

// IsInterrupt reports whether the result is interrupt, returning the record.
func (r InterceptionResult) IsInterrupt() (Interrupt, bool) {
	return r.interrupt, r.kind == kindInterrupt
}

// Middleware is an ordered interceptor around the ReAct loop's suspension
// points. Concrete middleware embeds Base and overrides only the hooks it
// needs; the Base no-op implementations make every hook optional.
type Middleware interface {
	Name() string
	Priority() int

	BeforeInvoke(ctx *Context) error
	AfterInvoke(ctx *Context)
	BeforeToolCall(ctx *Context, call message.ToolCall) InterceptionResult
	AfterToolCall(ctx *Context, call message.ToolCall, result message.ToolResult)
	OnStateUpdate(ctx *Context, state agentstate.State) agentstate.State
	OnError(ctx *Context, err error)
	OnFinally(ctx *Context, err error)
}

// Base implements Middleware with no-op hooks. Embed it in a concrete
// middleware type to make every hook optional.
type Base struct {
	MiddlewareName     string
	MiddlewarePriority int
}

func (b Base) Name() string     { return b.MiddlewareName }
func (b Base) Priority() int    { return b.MiddlewarePriority }
func (Base) BeforeInvoke(*Context) error                                      { return nil }
func (Base) AfterInvoke(*Context)                                             {}
func (Base) BeforeToolCall(*Context, message.ToolCall) InterceptionResult     { return Continue() }
func (Base) AfterToolCall(*Context, message.ToolCall, message.ToolResult)     {}
func (Base) OnStateUpdate(_ *Context, state agentstate.State) agentstate.State { return state }
func (Base) OnError(*Context, error)                                          {}
func (Base) OnFinally(*Context, error)                                        {}

// Chain is a priority-sorted list of Middleware, stably sorted at
// construction (§4.3: smaller priority runs earlier).
type Chain struct {
	mw []Middleware
}

// NewChain builds a Chain from mw, stably sorted by ascending priority.
func NewChain(mw ...Middleware) *Chain {
	sorted := append([]Middleware(nil), mw...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })
	return &Chain{mw: sorted}
}

// BeforeInvoke runs every middleware's BeforeInvoke hook in forward
// (priority) order, stopping at the first error.
func (c *Chain) BeforeInvoke(ctx *Context) error {
	for _, m := range c.mw {
		if err := m.BeforeInvoke(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AfterInvoke runs every middleware's AfterInvoke hook in reverse order.
func (c *Chain) AfterInvoke(ctx *Context) {
	for i := len(c.mw) - 1; i >= 0; i-- {
		c.mw[i].AfterInvoke(ctx)
	}
}

// BeforeToolCall runs BeforeToolCall in forward order, short-circuiting on
// the first non-continue result.
func (c *Chain) BeforeToolCall(ctx *Context, call message.ToolCall) InterceptionResult {
	for _, m := range c.mw {
		res := m.BeforeToolCall(ctx, call)
		if !res.IsContinue() {
			return res
		}
	}
	return Continue()
}

// AfterToolCall runs AfterToolCall in reverse order.
func (c *Chain) AfterToolCall(ctx *Context, call message.ToolCall, result message.ToolResult) {
	for i := len(c.mw) - 1; i >= 0; i-- {
		c.mw[i].AfterToolCall(ctx, call, result)
	}
}

// OnStateUpdate runs OnStateUpdate in forward order, threading each
// middleware's returned state into the next.
func (c *Chain) OnStateUpdate(ctx *Context, state agentstate.State) agentstate.State {
	for _, m := range c.mw {
		state = m.OnStateUpdate(ctx, state)
	}
	return state
}

// OnError runs OnError in reverse order. Individual middleware failures are
// not propagated: this hook is observational only.
func (c *Chain) OnError(ctx *Context, err error) {
	for i := len(c.mw) - 1; i >= 0; i-- {
		c.mw[i].OnError(ctx, err)
	}
}

// OnFinally runs OnFinally in reverse order, always, after success or error.
func (c *Chain) OnFinally(ctx *Context, err error) {
	for i := len(c.mw) - 1; i >= 0; i-- {
		c.mw[i].OnFinally(ctx, err)
	}
}
