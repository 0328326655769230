// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      string
		retryable bool
		retries   int
	}{
		{"invalid unit count", NewInvalidUnitCountError(0), "INVALID_UNIT_COUNT", false, 0},
		{"parse error", NewParseError(fmt.Errorf("unexpected EOF")), "PARSE_ERROR", false, 0},
		{"llm timeout", NewLLMTimeoutError(5 * time.Second), "LLM_TIMEOUT", true, 1},
		{"llm failure", NewLLMExtractionFailedError(fmt.Errorf("502")), "LLM_EXTRACTION_FAILED", true, 3},
		{"cache", NewCacheUnavailableError("get", fmt.Errorf("dial tcp")), "CACHE_UNAVAILABLE", true, 2},
		{"unmapped code", &StandardError{Code: "SOMETHING_ELSE", Retryable: true}, "SOMETHING_ELSE", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.code, b.Code)
			assert.Equal(t, tt.retryable, b.Retryable)
			assert.Equal(t, tt.retries, b.Retries)

			vars := b.ToErrorVariables()
			assert.Equal(t, tt.code, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestNewInvalidUnitCountError(t *testing.T) {
	err := NewInvalidUnitCountError(-2)
	assert.Equal(t, ErrCodeInvalidUnitCount, err.Code)
	assert.False(t, err.Retryable)
	assert.Equal(t, "units: -2", err.Details)
	assert.Equal(t, -2, err.Metadata["units"])
	assert.Contains(t, err.Error(), "INVALID_UNIT_COUNT")
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("extract listing L-1: %w", NewInvalidUnitCountError(0))
	assert.Equal(t, ErrCodeInvalidUnitCount, Normalize(wrapped).Code)

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, "boom", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestStandardError_Is(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewParseError(stderrors.New("bad json")))
	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeParseError}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeInvalidUnitCount}))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidUnitCount))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMResponseInvalid))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternalError))
}

func TestIsRetryableErrorCode(t *testing.T) {
	require.True(t, IsRetryableErrorCode(ErrCodeLLMExtractionFailed))
	require.False(t, IsRetryableErrorCode(ErrCodeInvalidUnitCount))
}
