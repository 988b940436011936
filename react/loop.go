package react

import (
	"context"
	"errors"
	"time"

	"github.com/agentcore/agentcore/agenterrors"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
)

// run drives the ReAct loop (§4.4) to completion, suspension, or failure.
//
// pending/firstCmd are non-nil only on the Resume path: pending is the set
// of tool calls from the last Assistant message not yet resolved by a Tool
// message, and firstCmd is the resume decision applied to pending[0]; every
// later pending call (if any) still runs through BeforeToolCall normally.
//
// seedAssistant is non-nil only on the Stream path: the assistant message
// was already obtained (and beforeInvoke already fired) by the caller's
// streaming call, so the first pass appends it directly instead of calling
// the model again.
//
// Each pass through the outer loop is one ReAct iteration: beforeInvoke, a
// model call (skipped on the first pass of a Resume or a Stream
// continuation), the resulting tool calls, then afterInvoke. afterInvoke
// fires exactly once per iteration, including the terminal one.
func (a *Agent) run(ctx context.Context, mctx *middleware.Context, threadID string, startedAt time.Time, pending []message.ToolCall, firstCmd *ResumeCommand, seedAssistant *message.Message) (Response, error) {
	maxIter := a.config.maxIterations(mctx.Request().MaxIterations)
	var flattenedToolCalls []message.ToolCall

	for {
		terminal := false

		switch {
		case pending != nil:
			// Resume continuation: the tool calls to settle this round are
			// already known; no model call happens this pass.

		case seedAssistant != nil:
			assistantMsg := *seedAssistant
			seedAssistant = nil
			newState, err := mctx.State().AppendMessage(assistantMsg, time.Now())
			if err != nil {
				wrapped := agenterrors.Wrap(agenterrors.KindCheckpoint, "append streamed assistant message", err)
				a.chain.OnError(mctx, wrapped)
				a.chain.OnFinally(mctx, wrapped)
				return Response{}, wrapped
			}
			mctx.SetState(a.chain.OnStateUpdate(mctx, newState))
			if !assistantMsg.HasToolCalls() {
				terminal = true
			} else if mctx.Iteration()+1 >= maxIter {
				// §4.4 step 6: the bound is reached before this message's
				// tool calls would run; treat it as terminal without
				// executing them (§8 scenario 4).
				terminal = true
			} else {
				pending = assistantMsg.ToolCalls()
			}

		default:
			if err := a.chain.BeforeInvoke(mctx); err != nil {
				wrapped := agenterrors.MiddlewareError("beforeInvoke", err)
				a.chain.OnError(mctx, wrapped)
				a.chain.OnFinally(mctx, wrapped)
				return Response{}, wrapped
			}

			state := mctx.State()
			assistantMsg, err := a.model.Chat(ctx, state.Messages(), a.chatOptions(mctx.Request()))
			if err != nil {
				kind := agenterrors.KindModelTransport
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					kind = agenterrors.KindTimeout
				}
				wrapped := agenterrors.Wrap(kind, "chat completion", err)
				a.chain.OnError(mctx, wrapped)
				a.chain.OnFinally(mctx, wrapped)
				return Response{}, wrapped
			}

			newState, err := state.AppendMessage(assistantMsg, time.Now())
			if err != nil {
				wrapped := agenterrors.Wrap(agenterrors.KindCheckpoint, "append assistant message", err)
				a.chain.OnError(mctx, wrapped)
				a.chain.OnFinally(mctx, wrapped)
				return Response{}, wrapped
			}
			mctx.SetState(a.chain.OnStateUpdate(mctx, newState))

			if !assistantMsg.HasToolCalls() {
				terminal = true
			} else if mctx.Iteration()+1 >= maxIter {
				// §4.4 step 6: the bound is reached before this message's
				// tool calls would run; treat it as terminal without
				// executing them (§8 scenario 4).
				terminal = true
			} else {
				pending = assistantMsg.ToolCalls()
			}
		}

		if !terminal {
			for idx, call := range pending {
				if firstCmd != nil && idx == 0 {
					result := a.applyResumeCommand(ctx, call, *firstCmd)
					firstCmd = nil
					a.chain.AfterToolCall(mctx, call, result)
					flattenedToolCalls = append(flattenedToolCalls, call)
					newState, err := mctx.State().AppendMessage(result.ToMessage(time.Now()), time.Now())
					if err != nil {
						wrapped := agenterrors.Wrap(agenterrors.KindCheckpoint, "append resumed tool result", err)
						a.chain.OnError(mctx, wrapped)
						a.chain.OnFinally(mctx, wrapped)
						return Response{}, wrapped
					}
					mctx.SetState(a.chain.OnStateUpdate(mctx, newState))
					continue
				}

				res := a.chain.BeforeToolCall(mctx, call)
				if reason, isStop := res.IsStop(); isStop {
					errMsg := message.ToolResult{ToolCallID: call.ID, IsError: true, ErrorMessage: reason}.ToMessage(time.Now())
					if newState, err := mctx.State().AppendMessage(errMsg, time.Now()); err == nil {
						mctx.SetState(a.chain.OnStateUpdate(mctx, newState))
					}
					terminal = true
					break
				}
				if in, isInterrupt := res.IsInterrupt(); isInterrupt {
					return a.suspend(ctx, mctx, threadID, in, startedAt)
				}

				result := a.invoker.Invoke(ctx, call)
				a.chain.AfterToolCall(mctx, call, result)
				flattenedToolCalls = append(flattenedToolCalls, call)
				newState, err := mctx.State().AppendMessage(result.ToMessage(time.Now()), time.Now())
				if err != nil {
					wrapped := agenterrors.Wrap(agenterrors.KindCheckpoint, "append tool result", err)
					a.chain.OnError(mctx, wrapped)
					a.chain.OnFinally(mctx, wrapped)
					return Response{}, wrapped
				}
				mctx.SetState(a.chain.OnStateUpdate(mctx, newState))
			}
		}

		// §4.3: afterInvoke runs "after the model call completes" and may
		// read the response from ctx, so a provisional Response must be
		// attached before every pass's AfterInvoke, not only the final one.
		provisional := Response{
			Output:     lastAssistantContent(mctx),
			Messages:   mctx.State().Messages(),
			State:      mctx.State(),
			ThreadID:   threadID,
			ToolCalls:  flattenedToolCalls,
			StartTime:  startedAt.UnixMilli(),
			EndTime:    time.Now().UnixMilli(),
			DurationMs: time.Since(startedAt).Milliseconds(),
		}
		mctx.SetResponse(&provisional)

		a.chain.AfterInvoke(mctx)

		if terminal {
			break
		}

		mctx.SetIteration(mctx.Iteration() + 1)
		if mctx.Iteration() >= maxIter {
			break
		}
		pending = nil
	}

	mctx.SetStatus(middleware.StatusStopped)
	a.chain.OnFinally(mctx, nil)

	resp := Response{
		Output:     lastAssistantContent(mctx),
		Messages:   mctx.State().Messages(),
		State:      mctx.State(),
		ThreadID:   threadID,
		ToolCalls:  flattenedToolCalls,
		StartTime:  startedAt.UnixMilli(),
		EndTime:    time.Now().UnixMilli(),
		DurationMs: time.Since(startedAt).Milliseconds(),
	}

	if a.checkpointer != nil {
		id, err := a.checkpointer.Save(ctx, threadID, mctx.State(), time.Now())
		if err != nil {
			return resp, agenterrors.Wrap(agenterrors.KindCheckpoint, "save final checkpoint", err)
		}
		resp.CheckpointID = id
		resp.HasCheckpoint = true
	}
	mctx.SetResponse(&resp)
	return resp, nil
}

// suspend persists the current state, builds the Interrupt-carrying
// Response, and returns without an error: suspension on an approval gate is
// an expected outcome, not a failure (§4.4 Resume).
func (a *Agent) suspend(ctx context.Context, mctx *middleware.Context, threadID string, in Interrupt, startedAt time.Time) (Response, error) {
	mctx.SetStatus(middleware.StatusWaitingForApproval)
	in.ThreadID = threadID

	if a.checkpointer == nil {
		a.chain.OnFinally(mctx, nil)
		return Response{}, agenterrors.New(agenterrors.KindCheckpoint, "cannot suspend for approval without a configured checkpointer")
	}

	checkpointID, err := a.checkpointer.Save(ctx, threadID, mctx.State(), time.Now())
	if err != nil {
		wrapped := agenterrors.Wrap(agenterrors.KindCheckpoint, "save checkpoint at interrupt", err)
		a.chain.OnError(mctx, wrapped)
		a.chain.OnFinally(mctx, wrapped)
		return Response{}, wrapped
	}
	in.CheckpointID = checkpointID

	resp := Response{
		Output:        lastAssistantContent(mctx),
		Messages:      mctx.State().Messages(),
		State:         mctx.State(),
		ThreadID:      threadID,
		CheckpointID:  checkpointID,
		HasCheckpoint: true,
		Interrupt:     &in,
		StartTime:     startedAt.UnixMilli(),
		EndTime:       time.Now().UnixMilli(),
		DurationMs:    time.Since(startedAt).Milliseconds(),
	}
	mctx.SetResponse(&resp)
	a.chain.OnFinally(mctx, nil)
	return resp, nil
}

func lastAssistantContent(mctx *middleware.Context) string {
	if m, ok := mctx.State().LastAssistant(); ok {
		return m.Content()
	}
	return ""
}

// applyResumeCommand executes or rejects call per cmd, returning the Tool
// result to append.
func (a *Agent) applyResumeCommand(ctx context.Context, call message.ToolCall, cmd ResumeCommand) message.ToolResult {
	switch cmd.kind {
	case resumeApproveEdited:
		call.ArgumentsJSON = cmd.editedArgumentsJSON
	case resumeReject:
		return message.ToolResult{ToolCallID: call.ID, IsError: true, ErrorMessage: cmd.rejectReason}
	}
	return a.invoker.Invoke(ctx, call)
}
