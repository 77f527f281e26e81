// Copyright (c) 2026 Lehae. All rights reserved.

// Package contact implements the inquiry-message client.
//
// The web client used to send inquiries to a hardcoded localhost host; here
// the call rides the one configured transport like everything else.
package contact

import (
	"context"

	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/platform/validate"
	"github.com/lehae/lehae-go/internal/transport"
)

// Inquiry is a contact-form message.
type Inquiry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Client sends contact inquiries.
type Client struct {
	api *transport.Client
}

// NewClient constructs a contact [Client].
func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

// Send validates the inquiry locally and posts it.
func (client *Client) Send(ctx context.Context, inquiry Inquiry) error {
	if err := (&validate.Validator{}).
		Required("name", inquiry.Name).
		Email("email", inquiry.Email).
		Required("message", inquiry.Message).
		Err(); err != nil {
		return err
	}

	return client.api.PostJSON(ctx, constants.PathContact, inquiry, nil)
}
