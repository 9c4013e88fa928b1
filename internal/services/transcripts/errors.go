package transcripts

import (
	"errors"
	"fmt"

	"github.com/voxnote/transcript-api/pkg/retry"
)

// Common errors
var (
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAuthRequired       = errors.New("authentication required")
	ErrRemoteUnavailable  = errors.New("remote store unavailable")
)

// NotFoundError represents an error when a transcript does not exist or is
// not owned by the caller. The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with identifier %v not found", e.Resource, e.ID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrTranscriptNotFound
}

// ValidationError represents a validation error. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AuthError represents an absent or expired session, or a rejected
// credential at the remote store. Never retried; the caller is told
// explicitly so it can prompt re-authentication.
type AuthError struct {
	Reason string
}

func (e AuthError) Error() string {
	return fmt.Sprintf("auth required: %s", e.Reason)
}

func (e AuthError) Is(target error) bool {
	return target == ErrAuthRequired
}

// TransientError represents a network or server fault at the remote store.
// Retried with bounded attempts, then saves fall back to local persistence.
type TransientError struct {
	Op    string
	Cause error
}

func (e TransientError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Cause)
}

func (e TransientError) Unwrap() error {
	return e.Cause
}

func (e TransientError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// CompensationError reports that the cleanup step of a failed two-phase
// save itself failed, possibly leaving an orphaned empty transcript row.
// Logged at a higher severity than the save failure it follows.
type CompensationError struct {
	TranscriptID string
	Cause        error
}

func (e CompensationError) Error() string {
	return fmt.Sprintf("failed to compensate orphaned transcript %s: %v", e.TranscriptID, e.Cause)
}

func (e CompensationError) Unwrap() error {
	return e.Cause
}

// BatchResult is the aggregate outcome of a batch lifecycle operation.
// Batches are not atomic: each id is processed independently.
type BatchResult struct {
	Processed int
	Failed    int
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(id interface{}) error {
	return NotFoundError{Resource: "transcript", ID: id}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// NewAuthError creates a new AuthError
func NewAuthError(reason string) error {
	return AuthError{Reason: reason}
}

// NewTransientError creates a new TransientError
func NewTransientError(op string, cause error) error {
	return TransientError{Op: op, Cause: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFoundErr NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrTranscriptNotFound)
}

// IsAuth checks if an error is an authentication error
func IsAuth(err error) bool {
	if err == nil {
		return false
	}
	var authErr AuthError
	return errors.As(err, &authErr) || errors.Is(err, ErrAuthRequired)
}

// Classify maps a store error to a retry kind: transient faults are
// retryable, everything else (validation, auth, not found) is fatal.
func Classify(err error) retry.Kind {
	if err == nil {
		return retry.Fatal
	}
	var transient TransientError
	if errors.As(err, &transient) || errors.Is(err, ErrRemoteUnavailable) || retry.IsTransient(err) {
		return retry.Retryable
	}
	return retry.Fatal
}
