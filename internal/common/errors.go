package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNoTables      = errors.New("no tables found")
	ErrFormat        = errors.New("model output unparsable")
	ErrConfigMissing = errors.New("missing configuration")
	ErrStoreWrite    = errors.New("store write failed")
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// FormatError is raised when no structured payload can be recovered from the
// generation service's response. Raw carries the offending model text so the
// caller can show an actionable message.
type FormatError struct {
	Reason string
	Raw    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func NewFormatError(reason, raw string) *FormatError {
	return &FormatError{Reason: reason, Raw: raw}
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
