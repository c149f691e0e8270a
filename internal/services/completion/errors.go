// File: internal/services/completion/errors.go
package completion

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeProvider    ErrorType = "PROVIDER"
	ErrTypeEmpty       ErrorType = "EMPTY_RESPONSE"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
)

type CompletionError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *CompletionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("completion %s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("completion %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *CompletionError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *CompletionError {
	return &CompletionError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewProviderError(operation, msg string, cause error) *CompletionError {
	return &CompletionError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// ErrUnavailable is the only failure the bridge reports to its callers.
var ErrUnavailable = errors.New("completion service unavailable")

func unavailable(cause error) error {
	return &CompletionError{
		Type:      ErrTypeUnavailable,
		Operation: "reply",
		Message:   ErrUnavailable.Error(),
		Cause:     errors.Join(ErrUnavailable, cause),
	}
}
