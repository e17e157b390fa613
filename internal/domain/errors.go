package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Validation errors
	ErrValidation  = errors.New("validation failed")
	ErrInvalidMood = errors.New("invalid mood entry")

	// Upstream data errors
	ErrNoCandidates = errors.New("candidate game pool is empty")
	ErrUserNotFound = errors.New("user not found")
	ErrNoSignals    = errors.New("no player signals recorded for user")

	// Session lifecycle errors
	ErrSessionNotOpen     = errors.New("session is not open")
	ErrSessionAlreadyOpen = errors.New("session is already open")

	// Analytics feature flags
	ErrFeatureDisabled = errors.New("analytics feature disabled")
)

// ValidationError reports a malformed boundary input. Field names the
// offending field using its wire name (e.g. "multiplayerRatio").
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
