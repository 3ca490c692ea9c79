// Package domainerrors defines the closed error taxonomy shared by all
// services. Stores translate infrastructure failures into these codes so the
// authorization and gateway layers never see storage-engine error types.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain error.
type Code string

const (
	CodeNotFound         Code = "not_found"
	CodeDuplicateID      Code = "duplicate_id"
	CodeInvalidRange     Code = "invalid_range"
	CodeUnauthorized     Code = "unauthorized"
	CodeAlreadyRevoked   Code = "already_revoked"
	CodeConflict         Code = "conflict"
	CodeTimeout          Code = "timeout"
	CodeAuditWriteFailed Code = "audit_write_failed"
	CodeInvalidInput     Code = "invalid_input"
	CodeBadRequest       Code = "bad_request"
	CodeInternal         Code = "internal"
)

// Error carries a code, a human-readable message, an optional wrapped cause,
// and optional metadata (e.g. the denial reason on CodeUnauthorized).
type Error struct {
	Code    Code
	Message string
	Err     error
	meta    map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error while preserving
// the cause for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
		de = nil
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool { return HasCode(err, code) }

// Add attaches a metadata key/value to the nearest *Error in the chain.
// Non-domain errors are returned unchanged.
func Add(err error, key, value string) error {
	var de *Error
	if !errors.As(err, &de) {
		return err
	}
	if de.meta == nil {
		de.meta = make(map[string]string)
	}
	de.meta[key] = value
	return err
}

// Load reads a metadata value from the nearest *Error carrying the key.
func Load(err error, key string) (string, bool) {
	var de *Error
	for errors.As(err, &de) {
		if v, ok := de.meta[key]; ok {
			return v, true
		}
		err = de.Err
		de = nil
	}
	return "", false
}
