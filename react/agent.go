// Package react implements the reason-act control loop: the component that
// drives a ChatModel and a tool invoker through repeated rounds of
// completion and tool execution, intercepted by a middleware chain, with
// durable checkpoint/resume support (§4.4).
package react

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/agenterrors"
	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/checkpoint"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
	"github.com/agentcore/agentcore/tools"
)

type (
	// Request is the inbound invocation request (§3).
	Request = middleware.Request
	// Response is the outbound invocation result (§3).
	Response = middleware.Response
	// Interrupt records a suspended approval point (§3).
	Interrupt = middleware.Interrupt
)

// Agent drives the ReAct loop against a single ChatModel, tool invoker, and
// middleware chain. One Agent may serve many concurrent Invoke calls against
// independent threads; it holds no per-invocation state itself.
type Agent struct {
	model        chatmodel.Model
	invoker      *tools.Invoker
	toolDefs     []chatmodel.ToolDefinition
	checkpointer checkpoint.Checkpointer
	chain        *middleware.Chain
	config       AgentConfig
}

// New builds an Agent. checkpointer may be nil, in which case Invoke never
// persists or resumes state and Resume always fails.
func New(model chatmodel.Model, invoker *tools.Invoker, toolDefs []chatmodel.ToolDefinition, checkpointer checkpoint.Checkpointer, chain *middleware.Chain, config AgentConfig) *Agent {
	if chain == nil {
		chain = middleware.NewChain()
	}
	return &Agent{
		model:        model,
		invoker:      invoker,
		toolDefs:     toolDefs,
		checkpointer: checkpointer,
		chain:        chain,
		config:       config,
	}
}

// Config returns the agent-level configuration defaults.
func (a *Agent) Config() AgentConfig { return a.config }

func (a *Agent) chatOptions(req *Request) chatmodel.Options {
	return chatmodel.Options{
		SystemPrompt: req.SystemPrompt,
		Tools:        a.toolDefs,
	}
}

// Invoke runs request through the ReAct loop to completion or suspension.
func (a *Agent) Invoke(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.timeout())
	defer cancel()

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	if req.SystemPrompt == "" {
		req.SystemPrompt = a.config.SystemPrompt
	}

	now := time.Now()
	state := agentstate.New(req.SystemPrompt, now)
	if req.ThreadID != "" && a.checkpointer != nil {
		loaded, _, err := a.checkpointer.LoadLatest(ctx, req.ThreadID)
		switch {
		case err == nil:
			state = loaded
		case errors.Is(err, checkpoint.ErrNotFound):
			// fresh thread; start from the blank state built above.
		default:
			return Response{}, agenterrors.Wrap(agenterrors.KindCheckpoint, "load latest checkpoint", err)
		}
	}

	state, err := state.AppendMessage(message.NewHuman(req.Input, req.UserID, now), now)
	if err != nil {
		return Response{}, fmt.Errorf("react: append human message: %w", err)
	}

	mctx := middleware.NewContext(&req, state)
	mctx.SetStatus(middleware.StatusRunning)

	return a.run(ctx, mctx, threadID, now, nil, nil, nil)
}

// InvokeWithState runs req through the ReAct loop starting from an
// already-accumulated state rather than a fresh or checkpointer-loaded one.
// Used by the multi-agent coordinator to forward the full conversation
// state across a handoff, and by any caller that manages state outside of
// this Agent's own checkpointer.
func (a *Agent) InvokeWithState(ctx context.Context, state agentstate.State, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.timeout())
	defer cancel()

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	if req.SystemPrompt == "" {
		req.SystemPrompt = a.config.SystemPrompt
	}

	now := time.Now()
	state, err := state.AppendMessage(message.NewHuman(req.Input, req.UserID, now), now)
	if err != nil {
		return Response{}, fmt.Errorf("react: append human message: %w", err)
	}

	mctx := middleware.NewContext(&req, state)
	mctx.SetStatus(middleware.StatusRunning)

	return a.run(ctx, mctx, threadID, now, nil, nil, nil)
}

// Resume loads the state saved at checkpointID on threadID and applies cmd
// to the tool call that was pending approval, then continues the loop.
func (a *Agent) Resume(ctx context.Context, threadID, checkpointID string, cmd ResumeCommand) (Response, error) {
	if a.checkpointer == nil {
		return Response{}, agenterrors.New(agenterrors.KindCheckpoint, "resume requires a configured checkpointer")
	}
	ctx, cancel := context.WithTimeout(ctx, a.config.timeout())
	defer cancel()

	state, err := a.checkpointer.Load(ctx, threadID, checkpointID)
	if err != nil {
		return Response{}, agenterrors.Wrap(agenterrors.KindCheckpoint, "load checkpoint for resume", err)
	}

	lastAssistant, ok := state.LastAssistant()
	if !ok {
		return Response{}, agenterrors.New(agenterrors.KindCheckpoint, "checkpoint has no assistant message to resume from")
	}
	resolved := map[string]bool{}
	messages := state.Messages()
	assistantIdx := -1
	for i, m := range messages {
		if m.Kind() == message.KindAssistant {
			assistantIdx = i
		}
	}
	for i := assistantIdx + 1; i < len(messages); i++ {
		if messages[i].Kind() == message.KindTool {
			resolved[messages[i].ToolCallID()] = true
		}
	}
	var pending []message.ToolCall
	for _, tc := range lastAssistant.ToolCalls() {
		if !resolved[tc.ID] {
			pending = append(pending, tc)
		}
	}
	if len(pending) == 0 {
		return Response{}, agenterrors.New(agenterrors.KindCheckpoint, "checkpoint has no pending tool call to resume")
	}

	req := &Request{ThreadID: threadID}
	mctx := middleware.NewContext(req, state)
	mctx.SetStatus(middleware.StatusRunning)

	iterationGuess := 0
	for _, m := range messages {
		if m.Kind() == message.KindAssistant {
			iterationGuess++
		}
	}
	if iterationGuess > 0 {
		iterationGuess--
	}
	mctx.SetIteration(iterationGuess)

	return a.run(ctx, mctx, threadID, time.Now(), pending, &cmd, nil)
}

// Batch runs each request through Invoke in order; an error on any request
// aborts the remainder.
func (a *Agent) Batch(ctx context.Context, reqs []Request) ([]Response, error) {
	out := make([]Response, 0, len(reqs))
	for _, req := range reqs {
		resp, err := a.Invoke(ctx, req)
		if err != nil {
			return out, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Stream runs request through the ReAct loop, forwarding streamed tokens
// and tool-call events to cb. If the streamed assistant message carries
// tool calls, the post-stream path re-enters the synchronous loop to
// process them (§4.4: streaming does not honor approval interrupts
// mid-stream).
func (a *Agent) Stream(ctx context.Context, req Request, cb chatmodel.StreamCallback) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.timeout())
	defer cancel()

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	if req.SystemPrompt == "" {
		req.SystemPrompt = a.config.SystemPrompt
	}

	now := time.Now()
	state := agentstate.New(req.SystemPrompt, now)
	if req.ThreadID != "" && a.checkpointer != nil {
		loaded, _, err := a.checkpointer.LoadLatest(ctx, req.ThreadID)
		switch {
		case err == nil:
			state = loaded
		case errors.Is(err, checkpoint.ErrNotFound):
		default:
			return Response{}, agenterrors.Wrap(agenterrors.KindCheckpoint, "load latest checkpoint", err)
		}
	}
	state, err := state.AppendMessage(message.NewHuman(req.Input, req.UserID, now), now)
	if err != nil {
		return Response{}, fmt.Errorf("react: append human message: %w", err)
	}

	mctx := middleware.NewContext(&req, state)
	mctx.SetStatus(middleware.StatusRunning)

	if err := a.chain.BeforeInvoke(mctx); err != nil {
		wrapped := agenterrors.MiddlewareError("beforeInvoke", err)
		a.chain.OnError(mctx, wrapped)
		a.chain.OnFinally(mctx, wrapped)
		return Response{}, wrapped
	}

	capture := &capturingCallback{inner: cb}
	err = a.model.ChatStream(ctx, mctx.State().Messages(), a.chatOptions(&req), capture)
	if err != nil {
		streamErr := agenterrors.Wrap(agenterrors.KindModelTransport, "chat stream", err)
		a.chain.OnError(mctx, streamErr)
		a.chain.OnFinally(mctx, streamErr)
		return Response{}, streamErr
	}
	if !capture.completed {
		streamErr := agenterrors.New(agenterrors.KindModelTransport, "chat stream ended without a completion event")
		a.chain.OnError(mctx, streamErr)
		a.chain.OnFinally(mctx, streamErr)
		return Response{}, streamErr
	}

	return a.run(ctx, mctx, threadID, now, nil, nil, &capture.final)
}

// capturingCallback forwards every StreamCallback event to inner while
// additionally recording the final assembled message, so Stream can feed it
// into the synchronous loop's tool-call handling once the stream ends.
type capturingCallback struct {
	inner     chatmodel.StreamCallback
	final     message.Message
	completed bool
}

func (c *capturingCallback) OnStart() { c.inner.OnStart() }

func (c *capturingCallback) OnToken(chunk string) { c.inner.OnToken(chunk) }

func (c *capturingCallback) OnToolCall(chunk string, call message.ToolCall) {
	c.inner.OnToolCall(chunk, call)
}

func (c *capturingCallback) OnCompletion(final message.Message) {
	c.final = final
	c.completed = true
	c.inner.OnCompletion(final)
}

func (c *capturingCallback) OnError(err error) { c.inner.OnError(err) }
