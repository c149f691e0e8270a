// File: internal/domain/errors.go
package domain

import (
	"context"
	"errors"
	"fmt"
)

// Lookup sentinels shared by the storage adapters and the services.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrChatNotFound    = errors.New("chat not found")
)

// ErrorKind tags a failure so callers can branch without parsing text.
type ErrorKind string

const (
	KindNotAuthenticated      ErrorKind = "NOT_AUTHENTICATED"
	KindOwnerNotProvisioned   ErrorKind = "OWNER_NOT_PROVISIONED"
	KindRemoteUnavailable     ErrorKind = "REMOTE_UNAVAILABLE"
	KindCompletionUnavailable ErrorKind = "COMPLETION_UNAVAILABLE"
	KindValidationFailed      ErrorKind = "VALIDATION_FAILED"
	KindInvalidCredentials    ErrorKind = "INVALID_CREDENTIALS"
)

// Error is the single error type surfaced by the session and conversation services.
// Message is written for the end user; Cause carries the adapter error.
type Error struct {
	Kind      ErrorKind
	Op        string
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf returns the tag of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given tag.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func NewValidationError(op, msg string) *Error {
	return &Error{Kind: KindValidationFailed, Op: op, Message: msg}
}

// NewChatNotFoundError reports a chat that is gone or belongs to someone
// else. Retrying cannot help, so it is not retryable.
func NewChatNotFoundError(op string, cause error) *Error {
	if cause == nil {
		cause = ErrChatNotFound
	}
	return &Error{Kind: KindValidationFailed, Op: op, Message: "chat not found", Cause: cause}
}

func NewNotAuthenticatedError(op string) *Error {
	return &Error{Kind: KindNotAuthenticated, Op: op, Message: "no active session"}
}

func NewOwnerNotProvisionedError(op string, cause error) *Error {
	return &Error{
		Kind:    KindOwnerNotProvisioned,
		Op:      op,
		Message: "user profile not found, please complete onboarding first",
		Cause:   cause,
	}
}

func NewCompletionUnavailableError(op string, cause error) *Error {
	return &Error{
		Kind:      KindCompletionUnavailable,
		Op:        op,
		Message:   "assistant unavailable, message saved",
		Retryable: true,
		Cause:     cause,
	}
}

func NewInvalidCredentialsError(op, msg string, cause error) *Error {
	return &Error{Kind: KindInvalidCredentials, Op: op, Message: msg, Cause: cause}
}

// NewRemoteError wraps a failed remote call. Deadline expiry and cancellation
// are marked retryable and described as a timeout.
func NewRemoteError(op, msg string, cause error) *Error {
	e := &Error{Kind: KindRemoteUnavailable, Op: op, Message: msg, Retryable: true, Cause: cause}
	if errors.Is(cause, context.DeadlineExceeded) {
		e.Message = msg + " (timed out)"
	}
	return e
}
