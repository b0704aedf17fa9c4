package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/report-tracker-api/internal/policy"
)

var (
	// ErrValidation wraps every malformed-input error; the wrapped message is safe to show.
	ErrValidation = errors.New("validation failed")
	// ErrConflict covers duplicate unique keys and lost compare-and-set races.
	ErrConflict          = errors.New("conflict")
	ErrEmailTaken        = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStorageFailure means the store failed; details are logged, never shown.
	ErrStorageFailure     = errors.New("storage failure")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAIUnavailable      = errors.New("issue suggestions are not configured")

	// Re-exported so handlers only need this package.
	ErrUnauthenticated = policy.ErrUnauthenticated
	ErrForbidden       = policy.ErrForbidden
	ErrNotFound        = policy.ErrNotFound
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
