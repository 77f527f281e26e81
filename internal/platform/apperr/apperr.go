// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package apperr defines the centralized error handling framework for the Lehae client.

It provides a rich error type that bridges the gap between low-level transport
failures and the high-level outcomes the view layer reacts to.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: validation / auth / network / server / shape, each with a constructor.
  - Inspection: errors.As-based helpers so call sites never string-match.

Every error that leaves a client package should be wrapped as an [AppError] to
ensure the CLI (or any embedding view layer) can render it consistently.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by [AppError.Code].
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeNotFound       = "NOT_FOUND"
	CodeNetwork        = "NETWORK_ERROR"
	CodeServer         = "SERVER_ERROR"
	CodeShape          = "SHAPE_ERROR"
)

// AppError is the canonical error type for the Lehae client.
//
// It carries an HTTP status code (zero when the request never completed), a
// machine-readable code, a user-presentable message, and an optional slice of
// field-level validation errors.
//
// The Cause field is for logging only and is never shown to the user verbatim.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NETWORK_ERROR").
	Code string `json:"code"`
	// Message is a human-readable description safe to show the user.
	Message string `json:"error"`
	// HTTPStatus is the response status that produced this error, if any.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors, either produced locally or
	// extracted from a server validation response.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the user-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Field returns the message recorded for the named field, or "" when the
// field has no recorded failure.
func (e *AppError) Field(name string) string {
	for _, d := range e.Details {
		if d.Field == name {
			return d.Message
		}
	}
	return ""
}

// # Pre-Network Errors

// ValidationError creates an [AppError] raised before any network call, with
// optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Authentication Errors

// Unauthorized creates a 401 [AppError] for rejected credentials.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionExpired creates the terminal auth [AppError]: the refresh protocol
// has been exhausted and the user must log in again.
func SessionExpired(cause error) *AppError {
	return &AppError{
		Code:       CodeSessionExpired,
		Message:    "Session expired. Please log in again",
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// # Transport Errors

// Network creates an [AppError] for a request that never completed.
func Network(cause error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: "Could not reach the server",
		Cause:   cause,
	}
}

// Server creates an [AppError] for a non-401 failure response. The message is
// whatever the server supplied, or a generic fallback when it supplied none.
func Server(status int, msg string, details ...FieldError) *AppError {
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", status)
	}
	return &AppError{
		Code:       CodeServer,
		Message:    msg,
		HTTPStatus: status,
		Details:    details,
	}
}

// Shape creates an [AppError] for an unexpected response shape.
//
// Shape errors are usually degraded (logged, defaults substituted) rather
// than surfaced. The constructor exists for the call sites that do surface them.
func Shape(msg string) *AppError {
	return &AppError{Code: CodeShape, Message: msg}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err is an [*AppError] carrying the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
