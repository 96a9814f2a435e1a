package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineErrorSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *EngineError
		code     string
		sentinel error
	}{
		{"no matching symptom", NoMatchingSymptomError("feverr"), ErrCodeNoMatchingSymptom, ErrNoMatchingSymptom},
		{"models unavailable", ModelsUnavailableError(StateLoading), ErrCodeModelsUnavailable, ErrModelsUnavailable},
		{"rate limited", RateLimitedError("client-1"), ErrCodeRateLimited, ErrRateLimited},
		{"data integrity", DataIntegrityError("Ghost Disease"), ErrCodeDataIntegrity, ErrDataIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestEngineErrorWrapping(t *testing.T) {
	inner := NoMatchingSymptomError("xyz")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.True(t, errors.Is(wrapped, ErrNoMatchingSymptom))

	var engineErr *EngineError
	assert.True(t, errors.As(wrapped, &engineErr))
	assert.Equal(t, ErrCodeNoMatchingSymptom, engineErr.Code)
}

func TestEngineErrorMessage(t *testing.T) {
	err := NoMatchingSymptomError("feverr")
	assert.Contains(t, err.Error(), ErrCodeNoMatchingSymptom)
	assert.Contains(t, err.Error(), "feverr")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("days_experiencing", "must be non-negative", -1)
	assert.Contains(t, err.Error(), "days_experiencing")
	assert.Contains(t, err.Error(), "must be non-negative")

	var validationErr *ValidationError
	assert.True(t, errors.As(error(err), &validationErr))
}
