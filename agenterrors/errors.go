// Package agenterrors defines the framework-level error kinds from §7. Tool
// failures are deliberately excluded from this package: they are data
// (message.ToolResult with IsError set), not framework errors, and are fed
// back to the model rather than bubbled out of Agent.Invoke.
package agenterrors

import (
	"errors"
	"fmt"
)

// Kind tags a framework-level error so callers can branch on failure class
// without string-matching error messages.
type Kind string

const (
	// KindModelTransport covers HTTP/timeout/parse failures from a
	// ChatModel. Retryable when the wrapped status is 429 or 500-504, or
	// the cause is a timeout.
	KindModelTransport Kind = "model_transport"
	// KindModelAuth denotes 401/403 responses from a ChatModel. Always
	// fatal. The provider adapters and the react loop do not produce this
	// kind: a failed model call, 401/403 included, surfaces as
	// KindModelTransport.
	KindModelAuth Kind = "model_auth"
	// KindContextTooLong denotes the model signalling that the conversation
	// exceeded its context window. The provider adapters and the react loop
	// do not produce this kind: such a failure surfaces as
	// KindModelTransport.
	KindContextTooLong Kind = "context_too_long"
	// KindCheckpoint covers Checkpointer persistence failures.
	KindCheckpoint Kind = "checkpoint_error"
	// KindMiddleware covers a middleware hook raising an error, wrapped
	// with the offending middleware's name.
	KindMiddleware Kind = "middleware_error"
	// KindTimeout is raised when a single Agent.Invoke exceeds its
	// configured wall-clock budget and the model call fails on the expired
	// deadline.
	KindTimeout Kind = "agent_timeout"
)

// Error is a framework-level failure carrying a Kind tag and an optional
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, enabling
// errors.Is(err, agenterrors.New(KindTimeout, "")) style checks.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// IsRetryable reports whether a KindModelTransport error should be retried,
// per §7: status in {429, 500-504} or a transport timeout. status is the
// HTTP status code observed, or 0 when the failure was a timeout rather
// than an HTTP response.
func IsRetryable(kind Kind, status int) bool {
	if kind != KindModelTransport {
		return false
	}
	if status == 0 {
		return true // timeout
	}
	return status == 429 || (status >= 500 && status <= 504)
}

// MiddlewareError wraps cause with the name of the middleware that raised
// it, per §7's "wrapped with middleware name" policy.
func MiddlewareError(middlewareName string, cause error) *Error {
	return Wrap(KindMiddleware, fmt.Sprintf("middleware %q failed", middlewareName), cause)
}
