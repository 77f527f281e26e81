// Copyright (c) 2026 Lehae. All rights reserved.

package contact_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehae/lehae-go/internal/apitest"
	"github.com/lehae/lehae-go/internal/contact"
	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/tokenstore"
	"github.com/lehae/lehae-go/internal/transport"
)

func newClient(t *testing.T) (*contact.Client, *apitest.Server) {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)

	api := transport.New(transport.Options{
		BaseURL: server.URL,
		Store:   tokenstore.NewMemoryStore(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return contact.NewClient(api), server
}

func TestClient_Send(t *testing.T) {
	client, server := newClient(t)

	err := client.Send(context.Background(), contact.Inquiry{
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "Is the Maseru flat still available?",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, server.ContactCalls())
}

func TestClient_Send_Invalid(t *testing.T) {
	client, server := newClient(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		inquiry contact.Inquiry
	}{
		{"missing name", contact.Inquiry{Email: "a@b.com", Message: "hi"}},
		{"bad email", contact.Inquiry{Name: "Alice", Email: "not-an-email", Message: "hi"}},
		{"missing message", contact.Inquiry{Name: "Alice", Email: "a@b.com"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := client.Send(ctx, tc.inquiry)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}

	assert.Equal(t, 0, server.Requests(), "invalid inquiries stay local")
}
