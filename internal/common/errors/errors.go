// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidUnitCount    ErrorCode = "INVALID_UNIT_COUNT"
	ErrCodeParseError          ErrorCode = "PARSE_ERROR"
	ErrCodeInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMExtractionFailed ErrorCode = "LLM_EXTRACTION_FAILED"
	ErrCodeLLMResponseInvalid  ErrorCode = "LLM_RESPONSE_INVALID"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeJobCompleteFailed   ErrorCode = "JOB_COMPLETE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches any *StandardError carrying the same code, so callers can test
// with errors.Is(err, &StandardError{Code: ...}).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidUnitCountError is the one fatal extraction condition: a unit
// count hint that is zero or negative.
func NewInvalidUnitCountError(units int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidUnitCount,
		Message:   "Unit count hint must be at least 1",
		Details:   fmt.Sprintf("units: %d", units),
		Retryable: false,
		Metadata:  map[string]interface{}{"units": units},
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError creates a non-retryable error for malformed job variables.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM extraction timeout",
		Details:   fmt.Sprintf("LLM call exceeded %s timeout", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMExtractionFailedError creates a retryable LLM API error.
func NewLLMExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMExtractionFailed,
		Message:   "LLM extraction API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMResponseInvalidError is returned when the model answers with
// something that is not a unit breakdown, even after repair.
func NewLLMResponseInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMResponseInvalid,
		Message:   "LLM response failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Callers log it;
// it never fails a job.
func NewCacheUnavailableError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Extraction cache unavailable",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobCompleteFailedError creates a retryable error for a failed complete command.
func NewJobCompleteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobCompleteFailed,
		Message:   "Failed to complete job",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidUnitCount:    "INVALID_UNIT_COUNT",
	ErrCodeParseError:          "PARSE_ERROR",
	ErrCodeInternalError:       "INTERNAL_ERROR",
	ErrCodeLLMTimeout:          "LLM_TIMEOUT",
	ErrCodeLLMExtractionFailed: "LLM_EXTRACTION_FAILED",
	ErrCodeLLMResponseInvalid:  "LLM_RESPONSE_INVALID",
	ErrCodeCacheUnavailable:    "CACHE_UNAVAILABLE",
	ErrCodeJobCompleteFailed:   "JOB_COMPLETE_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLLMExtractionFailed,
		ErrCodeJobCompleteFailed:
		return 3

	case ErrCodeCacheUnavailable:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "JOB"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
