package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeInvalidTicker       ErrorCode = "INVALID_TICKER"
	CodeInsufficientData    ErrorCode = "INSUFFICIENT_DATA"
	CodeExternalUnavailable ErrorCode = "EXTERNAL_API_ERROR"
	CodeTimeout             ErrorCode = "TIMEOUT_ERROR"
	CodeAllToolsFailed      ErrorCode = "ALL_TOOLS_FAILED"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error is the typed failure used at every component boundary. Two errors
// match under errors.Is when their codes are equal, so callers compare
// against the sentinels below.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

var (
	ErrValidation          = &Error{Code: CodeValidation}
	ErrInvalidTicker       = &Error{Code: CodeInvalidTicker}
	ErrInsufficientData    = &Error{Code: CodeInsufficientData}
	ErrExternalUnavailable = &Error{Code: CodeExternalUnavailable}
	ErrTimeout             = &Error{Code: CodeTimeout}
	ErrAllToolsFailed      = &Error{Code: CodeAllToolsFailed}
	ErrInternal            = &Error{Code: CodeInternal}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validationf(format string, args ...any) *Error {
	return newError(CodeValidation, nil, format, args...)
}

func InvalidTickerf(format string, args ...any) *Error {
	return newError(CodeInvalidTicker, nil, format, args...)
}

func InsufficientDataf(format string, args ...any) *Error {
	return newError(CodeInsufficientData, nil, format, args...)
}

// Unavailable wraps an upstream failure (network, rate limit, malformed payload).
func Unavailable(err error, format string, args ...any) *Error {
	return newError(CodeExternalUnavailable, err, format, args...)
}

func Timeout(err error, format string, args ...any) *Error {
	return newError(CodeTimeout, err, format, args...)
}

func Internal(err error, format string, args ...any) *Error {
	return newError(CodeInternal, err, format, args...)
}

// CodeOf classifies any error into the taxonomy. Deadline expiry maps to
// TIMEOUT_ERROR; anything unrecognised is INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeInternal
}

// ErrorInfo is the serialized form of an error attached to a result.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func InfoFromError(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Code: CodeOf(err), Message: err.Error()}
}

func (i *ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}
