// Package errors provides standardized error handling for the CLI.
package errors

import (
	"errors"
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
	ErrCodeQueryParseFailed       ErrorCode = "QUERY_PARSE_FAILED"
	ErrCodeQueryTranslationFailed ErrorCode = "QUERY_TRANSLATION_FAILED"

	ErrCodeAPIRequestFailed  ErrorCode = "API_REQUEST_FAILED"
	ErrCodeAPIAuthFailed     ErrorCode = "API_AUTH_FAILED"
	ErrCodeAPIRateLimited    ErrorCode = "API_RATE_LIMITED"
	ErrCodeTaskNotFound      ErrorCode = "TASK_NOT_FOUND"
	ErrCodeTaskInvalid       ErrorCode = "TASK_VALIDATION_FAILED"
	ErrCodeBatchUpdateFailed ErrorCode = "BATCH_UPDATE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeCacheReadFailed  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed ErrorCode = "CACHE_WRITE_FAILED"

	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
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

// UserMessage renders the error the way the CLI reports it: the message,
// plus details when they add anything.
func (e *StandardError) UserMessage() string {
	if e.Details != "" && !strings.Contains(e.Message, e.Details) {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	var serr *StandardError
	if errors.As(err, &serr) {
		return serr.Retryable
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewQueryParseError wraps a malformed query error. Not retryable; the
// user has to fix the query text.
func NewQueryParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryParseFailed,
		Message:   "Failed to parse query",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTranslationError wraps a filter the backend cannot express.
func NewQueryTranslationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTranslationFailed,
		Message:   "Backend cannot execute this query",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPIRequestError creates a retryable remote request error.
func NewAPIRequestError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPIRequestFailed,
		Message:   "API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPIAuthError creates a non-retryable authentication error.
func NewAPIAuthError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPIAuthFailed,
		Message:   "Authentication failed, check your API key",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskNotFoundError creates a non-retryable lookup error.
func NewTaskNotFoundError(taskID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotFound,
		Message:   "Task not found",
		Details:   fmt.Sprintf("taskId: %d", taskID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskValidationError creates a non-retryable payload validation error.
func NewTaskValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskInvalid,
		Message:   "Task payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchUpdateError summarizes per-item failures of a concurrent update.
func NewBatchUpdateError(failed int, total int) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchUpdateFailed,
		Message:   "Batch update completed with errors",
		Details:   fmt.Sprintf("%d of %d updates failed", failed, total),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError creates a retryable database error.
func NewDatabaseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchError creates a retryable search backend error.
func NewSearchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigError creates a non-retryable configuration error.
func NewConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
