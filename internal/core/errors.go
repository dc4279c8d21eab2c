// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Selection errors
	ErrSymbolNotAllowed    = &Error{Code: "SYMBOL_NOT_ALLOWED", Message: "symbol is not in the configured list"}
	ErrTimeframeNotAllowed = &Error{Code: "TIMEFRAME_NOT_ALLOWED", Message: "timeframe is not in the configured list"}
	ErrMissingParameter    = &Error{Code: "MISSING_PARAMETER", Message: "required parameter missing"}

	// Analysis errors
	ErrAnalysisFailed  = &Error{Code: "ANALYSIS_FAILED", Message: "Failed to analyze chart."}
	ErrResponseInvalid = &Error{Code: "RESPONSE_INVALID", Message: "analysis response could not be decoded"}
	ErrSnapshotFailed  = &Error{Code: "SNAPSHOT_FAILED", Message: "Failed during screenshot capture"}
	ErrArchiveFailed   = &Error{Code: "ARCHIVE_FAILED", Message: "Failed to store screenshot"}

	// Session errors
	ErrSessionNotFound = &Error{Code: "SESSION_NOT_FOUND", Message: "session not found"}

	// Auth errors
	ErrAPIKeyMissing = &Error{Code: "API_KEY_MISSING", Message: "X-API-Key header required"}
	ErrAPIKeyInvalid = &Error{Code: "API_KEY_INVALID", Message: "API key invalid"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// LLM errors
	ErrLLMFailed  = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
	ErrLLMTimeout = &Error{Code: "LLM_TIMEOUT", Message: "LLM request timeout"}
)
