package domain

import (
	"errors"
	"fmt"
)

// Error codes for the engine's failure taxonomy. Only the code and a
// human-readable message cross the engine boundary; internal detail
// (paths, stack traces) stays in logs.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNoMatchingSymptom = "NO_MATCHING_SYMPTOM"
	ErrCodeModelsUnavailable = "MODELS_UNAVAILABLE"
	ErrCodeDataIntegrity     = "DATA_INTEGRITY_FAULT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeStoreUnavailable  = "EXTERNAL_STORE_UNAVAILABLE"
)

// Sentinel errors for errors.Is matching across package boundaries.
var (
	ErrNoMatchingSymptom = errors.New("no matching symptom")
	ErrModelsUnavailable = errors.New("models unavailable")
	ErrDataIntegrity     = errors.New("data integrity fault")
	ErrRateLimited       = errors.New("rate limited")
	ErrStoreUnavailable  = errors.New("external store unavailable")
)

// EngineError is the standardized error crossing the engine boundary.
type EngineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *EngineError) Unwrap() error {
	return e.cause
}

// NewEngineError creates an EngineError wrapping the taxonomy sentinel
// matching the given code.
func NewEngineError(code, message string) *EngineError {
	return &EngineError{Code: code, Message: message, cause: sentinelFor(code)}
}

func sentinelFor(code string) error {
	switch code {
	case ErrCodeNoMatchingSymptom:
		return ErrNoMatchingSymptom
	case ErrCodeModelsUnavailable:
		return ErrModelsUnavailable
	case ErrCodeDataIntegrity:
		return ErrDataIntegrity
	case ErrCodeRateLimited:
		return ErrRateLimited
	case ErrCodeStoreUnavailable:
		return ErrStoreUnavailable
	default:
		return nil
	}
}

// NoMatchingSymptomError builds the engine error for an unresolvable
// initial symptom.
func NoMatchingSymptomError(symptom string) *EngineError {
	return NewEngineError(ErrCodeNoMatchingSymptom,
		fmt.Sprintf("symptom %q not found in medical database", symptom))
}

// ModelsUnavailableError builds the engine error for queries arriving
// before a bundle is ready.
func ModelsUnavailableError(state EngineState) *EngineError {
	return NewEngineError(ErrCodeModelsUnavailable,
		fmt.Sprintf("diagnosis models are not ready (state %s)", state))
}

// RateLimitedError builds the distinguishable rate-limit rejection.
func RateLimitedError(clientKey string) *EngineError {
	return NewEngineError(ErrCodeRateLimited,
		fmt.Sprintf("rate limit exceeded for client %q", clientKey))
}

// DataIntegrityError builds the loud, request-fatal error for a model
// prediction naming a disease absent from the reference tables.
func DataIntegrityError(disease string) *EngineError {
	return NewEngineError(ErrCodeDataIntegrity,
		fmt.Sprintf("model predicted disease %q which is missing from the reference tables", disease))
}

// ValidationError represents a malformed request, recovered at the
// boundary before reaching the engine core.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}
