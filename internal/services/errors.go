package services

import (
	"errors"
	"fmt"

	apperrors "github.com/surveyforge/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Survey specific errors
	ErrSurveyNotFound  = errors.New("no active survey for identifier")
	ErrSectionNotFound = errors.New("section not found")
	ErrOptionNotFound  = errors.New("option not found")

	// Attempt specific errors
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptAccessDenied  = errors.New("access denied to attempt")
	ErrAttemptNotActive     = errors.New("attempt is not in progress")
	ErrAttemptLimitExceeded = errors.New("maximum attempts exceeded")

	// Answer specific errors
	ErrQuestionMismatch   = errors.New("submitted question does not match current position")
	ErrInvalidCustomInput = errors.New("option requires a numeric custom input")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// AccessError carries who tried to do what to which attempt.
type AccessError struct {
	ParticipantKind string `json:"participant_kind"`
	ParticipantID   string `json:"participant_id"`
	AttemptID       uint   `json:"attempt_id"`
	Action          string `json:"action"`
}

func (ae *AccessError) Error() string {
	return fmt.Sprintf("access denied: participant %s/%s cannot %s attempt %d",
		ae.ParticipantKind, ae.ParticipantID, ae.Action, ae.AttemptID)
}

func (ae *AccessError) Unwrap() error {
	return ErrAttemptAccessDenied
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewAccessError(participantKind, participantID string, attemptID uint, action string) *AccessError {
	return &AccessError{
		ParticipantKind: participantKind,
		ParticipantID:   participantID,
		AttemptID:       attemptID,
		Action:          action,
	}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrOptionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsValidation checks if error represents a caller error that should not be
// retried (stale position, bad custom input, struct validation)
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrQuestionMismatch) ||
		errors.Is(err, ErrInvalidCustomInput) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAttemptLimitExceeded) ||
		errors.Is(err, ErrAttemptNotActive)
}

// IsAccessDenied checks if error represents an authorization failure
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAttemptAccessDenied)
}
