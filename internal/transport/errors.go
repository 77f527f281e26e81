// Copyright (c) 2026 Lehae. All rights reserved.

package transport

import (
	"encoding/json"
	"net/http"

	"github.com/lehae/lehae-go/internal/platform/apperr"
)

// errorPayload covers every failure body the Lehae backend is known to send:
// a plain message under "error" or "detail", DRF-style per-field arrays, and
// the "message" used by idempotent-conflict responses.
type errorPayload struct {
	Error          string   `json:"error"`
	Detail         string   `json:"detail"`
	Message        string   `json:"message"`
	NonFieldErrors []string `json:"non_field_errors"`
	Username       []string `json:"username"`
	Email          []string `json:"email"`
	Password       []string `json:"password"`
}

// decodeAPIError maps a failure response to an [apperr.AppError].
//
// Message precedence follows the web client: error > detail >
// non_field_errors[0] > generic. Field-level arrays are preserved as Details
// so the registration flow can apply its own display priority.
func decodeAPIError(status int, body []byte) *apperr.AppError {
	var payload errorPayload
	_ = json.Unmarshal(body, &payload)

	message := payload.Error
	if message == "" {
		message = payload.Detail
	}
	if message == "" && len(payload.NonFieldErrors) > 0 {
		message = payload.NonFieldErrors[0]
	}
	if message == "" {
		message = payload.Message
	}

	var details []apperr.FieldError
	appendField := func(field string, values []string) {
		if len(values) > 0 {
			details = append(details, apperr.FieldError{Field: field, Message: values[0]})
		}
	}
	appendField("username", payload.Username)
	appendField("email", payload.Email)
	appendField("password", payload.Password)
	appendField("non_field_errors", payload.NonFieldErrors)

	if status == http.StatusUnauthorized {
		if message == "" {
			message = "Invalid credentials"
		}
		failure := apperr.Unauthorized(message)
		failure.Details = details
		return failure
	}

	return apperr.Server(status, message, details...)
}

// mustJSON encodes a value known to be marshalable (internal request structs).
func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
