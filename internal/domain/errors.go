package domain

import "errors"

var (
	// ErrNotFound is returned when a row does not exist in the caller's organization
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the request carries no valid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller's role does not allow the operation
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable marks transient dependency failures that should surface as 503
	ErrUnavailable = errors.New("temporarily unavailable")

	// ErrInvalidInput is returned for requests that fail validation beyond binding
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCalendarToken is returned when a technician has not connected Google Calendar
	ErrNoCalendarToken = errors.New("technician has no google refresh token")

	// ErrLockHeld is returned when another scan of the same kind is already running
	ErrLockHeld = errors.New("scan already in progress")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
