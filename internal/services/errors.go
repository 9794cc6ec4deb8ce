package services

import (
	"errors"

	apperrors "github.com/neurostat/exercise-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Generation errors
	ErrInsufficientContent = errors.New("not enough bank items to build the exercise")
	ErrUnsupportedRuleSet  = errors.New("rule set does not map to any exercise kind")
	ErrRuleNotFound        = errors.New("rule not found")
	ErrExampleNotFound     = errors.New("example not found")
	ErrQuestionNotFound    = errors.New("question not found")

	// Check errors
	ErrNoActiveExercise    = errors.New("no generated exercise for this session slot")
	ErrMalformedSubmission = errors.New("submission shape does not match the exercise kind")

	// Content errors
	ErrImportInvalidFile = errors.New("import file cannot be parsed")
	ErrImportEmptyFile   = errors.New("import file contains no rows")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR CLASSIFICATION =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrExampleNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrNoActiveExercise)
}

func IsValidationError(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrMalformedSubmission) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrImportInvalidFile) ||
		errors.Is(err, ErrImportEmptyFile) {
		return true
	}
	var ve *ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}

// IsUnprocessableError marks requests that are well-formed but cannot be
// served with the current content bank.
func IsUnprocessableError(err error) bool {
	return errors.Is(err, ErrInsufficientContent) || errors.Is(err, ErrUnsupportedRuleSet)
}
