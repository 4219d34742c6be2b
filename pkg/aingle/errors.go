package aingle

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of an SDK error. The values match
// the codes the AIngle node reports in its error envelopes.
type ErrorCode string

const (
	CodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeInvalidEntry     ErrorCode = "INVALID_ENTRY"
	CodeStorageError     ErrorCode = "STORAGE_ERROR"
	CodeNetworkError     ErrorCode = "NETWORK_ERROR"
	CodeAuthError        ErrorCode = "AUTH_ERROR"
)

var (
	// ErrNotFound is returned when no entry exists for the requested hash.
	ErrNotFound = errors.New("aingle: entry not found")
	// ErrNotConnected is wrapped by failures to establish the socket
	// channel, from Connect or an implicit dial inside Subscribe.
	ErrNotConnected = errors.New("aingle: not connected")
)

// Error is the failure type surfaced by all client operations.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return fmt.Sprintf("aingle: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("aingle: %s", e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf extracts the ErrorCode from err, or "" when err does not wrap an
// SDK error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err indicates a missing entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || CodeOf(err) == CodeNotFound
}

// IsTimeout reports whether err indicates the configured timeout elapsed.
func IsTimeout(err error) bool {
	return CodeOf(err) == CodeTimeout
}
