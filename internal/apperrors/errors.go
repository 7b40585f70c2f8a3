package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is not in a state that allows the requested change.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized indicates the caller could not be identified.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Accounting specific errors. Each wraps one of the generic sentinels above so
// handlers can map them with errors.Is without knowing every domain error.
var (
	// ErrImbalancedEntry is returned when total debits and credits differ by more than the tolerance.
	ErrImbalancedEntry = fmt.Errorf("imbalanced journal entry: %w", ErrValidation)
	// ErrUnknownAccount is returned when a journal line references an account that does not exist.
	ErrUnknownAccount = fmt.Errorf("unknown account: %w", ErrValidation)
	// ErrAccountNotFound is returned by ledger and registry lookups for a missing account.
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	// ErrInvalidStateTransition is returned when post/approve/void/edit is attempted from the wrong status.
	ErrInvalidStateTransition = fmt.Errorf("invalid journal entry state transition: %w", ErrConflict)
	// ErrStorageFailure marks a failed transaction or statement; the enclosing operation was rolled back.
	ErrStorageFailure = fmt.Errorf("storage failure: %w", ErrInternal)
)

// AppError carries an HTTP status code alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the wrapped cause and, for 5xx errors, ErrStorageFailure.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Code >= http.StatusInternalServerError {
		errs = append(errs, ErrStorageFailure)
	}
	return errs
}

// NewStorageError wraps a database failure that caused an operation to abort.
func NewStorageError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}
