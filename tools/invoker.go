package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentcore/agentcore/message"
)

// DefaultPoolSize is the default number of workers backing Invoker's async
// execution pool, per §4.2.
const DefaultPoolSize = 10

// gracefulShutdownWait is how long Shutdown waits for in-flight work to
// drain before forcing workers to stop, per §5.
const gracefulShutdownWait = 5 * time.Second

type (
	// Invoker executes ToolCalls against a Registry, either synchronously
	// or on a shared bounded worker pool. An Invoker owns the pool's
	// goroutines and must be shut down explicitly by the owner.
	Invoker struct {
		registry *Registry

		jobs   chan job
		wg     sync.WaitGroup
		closed chan struct{}
		once   sync.Once
	}

	job struct {
		ctx    context.Context
		call   message.ToolCall
		result chan<- message.ToolResult
	}
)

// NewInvoker builds an Invoker backed by registry, starting poolSize worker
// goroutines. A poolSize <= 0 uses DefaultPoolSize.
func NewInvoker(registry *Registry, poolSize int) *Invoker {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	inv := &Invoker{
		registry: registry,
		jobs:     make(chan job, poolSize),
		closed:   make(chan struct{}),
	}
	for i := 0; i < poolSize; i++ {
		inv.wg.Add(1)
		go inv.worker()
	}
	return inv
}

func (inv *Invoker) worker() {
	defer inv.wg.Done()
	for j := range inv.jobs {
		j.result <- inv.Invoke(j.ctx, j.call)
	}
}

// Invoke executes call synchronously. It never panics: an unknown tool or a
// tool that panics/errors is normalized into an error ToolResult whose
// ToolCallID matches call.ID.
func (inv *Invoker) Invoke(ctx context.Context, call message.ToolCall) (result message.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = message.ToolResult{
				ToolCallID:   call.ID,
				IsError:      true,
				ErrorMessage: fmt.Sprintf("tool %q panicked: %v", call.Name, r),
			}
		}
	}()

	t, ok := inv.registry.Get(call.Name)
	if !ok {
		return message.ToolResult{
			ToolCallID:   call.ID,
			IsError:      true,
			ErrorMessage: fmt.Sprintf("unknown tool %q", call.Name),
		}
	}
	if err := ValidateArguments(t, call.ArgumentsJSON); err != nil {
		return message.ToolResult{
			ToolCallID:   call.ID,
			IsError:      true,
			ErrorMessage: err.Error(),
		}
	}
	res, err := t.Execute(ctx, call.ArgumentsJSON)
	if err != nil {
		return message.ToolResult{
			ToolCallID:   call.ID,
			IsError:      true,
			ErrorMessage: err.Error(),
		}
	}
	res.ToolCallID = call.ID
	return res
}

// Future is a handle to an asynchronously-running tool invocation.
type Future struct {
	ch <-chan message.ToolResult
}

// Wait blocks until the tool invocation completes or ctx is done.
func (f Future) Wait(ctx context.Context) (message.ToolResult, error) {
	select {
	case res := <-f.ch:
		return res, nil
	case <-ctx.Done():
		return message.ToolResult{}, ctx.Err()
	}
}

// InvokeAsync submits call to the shared worker pool and returns a Future.
// Returns an error if the Invoker has been shut down.
func (inv *Invoker) InvokeAsync(ctx context.Context, call message.ToolCall) (Future, error) {
	select {
	case <-inv.closed:
		return Future{}, fmt.Errorf("tools: invoker is shut down")
	default:
	}
	resultCh := make(chan message.ToolResult, 1)
	select {
	case inv.jobs <- job{ctx: ctx, call: call, result: resultCh}:
		return Future{ch: resultCh}, nil
	case <-inv.closed:
		return Future{}, fmt.Errorf("tools: invoker is shut down")
	}
}

// InvokeAll executes calls in order, preserving input order in the result
// slice. Each call is fallible independently; a failure for one call never
// prevents the others from executing.
func (inv *Invoker) InvokeAll(ctx context.Context, calls []message.ToolCall) []message.ToolResult {
	results := make([]message.ToolResult, len(calls))
	for i, call := range calls {
		results[i] = inv.Invoke(ctx, call)
	}
	return results
}

// Shutdown stops accepting new async work and waits up to 5 seconds for
// in-flight work to drain, then returns regardless of whether workers have
// exited (a graceful-then-forceful policy per §5; Go has no safe way to
// force-kill a goroutine, so "forceful" here means Shutdown stops waiting
// and returns rather than blocking the caller indefinitely).
func (inv *Invoker) Shutdown() {
	inv.once.Do(func() {
		close(inv.closed)
		close(inv.jobs)
	})
	done := make(chan struct{})
	go func() {
		inv.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(gracefulShutdownWait):
	}
}
