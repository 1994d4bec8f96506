// internal/common/errors/errors.go
// Package errors provides standardized error handling for the hiring pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Analysis / scoring
	ErrCodeAnalysisFailed    ErrorCode = "ANALYSIS_FAILED"
	ErrCodeAnalysisMalformed ErrorCode = "ANALYSIS_MALFORMED"

	// Calendar / scheduling
	ErrCodeCalendarUnavailable ErrorCode = "CALENDAR_UNAVAILABLE"
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeNoSlotAvailable     ErrorCode = "NO_SLOT_AVAILABLE"
	ErrCodeEventCreateFailed   ErrorCode = "EVENT_CREATE_FAILED"

	// Notification
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Persistence
	ErrCodeDatabaseFailed ErrorCode = "DATABASE_FAILED"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewAnalysisError wraps a scoring capability failure. Retryable.
func NewAnalysisError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "CV analysis call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisMalformedError marks an out-of-contract analysis response.
// Retryable: the model may produce valid output on a second attempt.
func NewAnalysisMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisMalformed,
		Message:   "CV analysis returned malformed result",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnavailableDataError wraps a calendar fetch failure. Retryable.
func NewUnavailableDataError(calendarRef string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCalendarUnavailable,
		Message:   "Calendar availability fetch failed",
		Details:   fmt.Sprintf("calendarRef: %s, error: %s", calendarRef, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError marks a caller bug in a meeting request. Never retried.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Malformed meeting request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoSlotAvailableError marks an empty slot search outcome once retries
// are pointless: the calendars simply have no common opening.
func NewNoSlotAvailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoSlotAvailable,
		Message:   "No meeting slot satisfies all constraints",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventCreateFailedError wraps a calendar event creation failure. Retryable.
func NewEventCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventCreateFailed,
		Message:   "Calendar event creation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError wraps a mail delivery failure. Retryable.
func NewNotificationSendFailedError(recipient string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("recipient: %s, error: %s", recipient, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError wraps a candidate store failure. Retryable.
func NewDatabaseError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseFailed,
		Message:   "Candidate store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the retry budget for an error code on top of the
// initial attempt. Caller bugs and definitive outcomes get none.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAnalysisFailed,
		ErrCodeAnalysisMalformed,
		ErrCodeCalendarUnavailable,
		ErrCodeEventCreateFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDatabaseFailed:
		return 2

	default:
		return 0
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryable reports whether err carries a retryable StandardError.
// Unknown error types are treated as retryable technical failures.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return true
}

// CodeOf extracts the ErrorCode from err, or empty when it is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
