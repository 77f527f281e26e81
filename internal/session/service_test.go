// Copyright (c) 2026 Lehae. All rights reserved.

package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehae/lehae-go/internal/apitest"
	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/session"
	"github.com/lehae/lehae-go/internal/tokenstore"
	"github.com/lehae/lehae-go/internal/transport"
)

func newManager(t *testing.T) (*session.Manager, *apitest.Server, *tokenstore.MemoryStore) {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)

	store := tokenstore.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := transport.New(transport.Options{
		BaseURL: server.URL,
		Store:   store,
		Logger:  logger,
	})

	return session.NewManager(api, store, logger), server, store
}

func TestManager_Login(t *testing.T) {
	manager, server, _ := newManager(t)
	ctx := context.Background()

	server.StaticAccess = "A1"
	server.StaticRefresh = "R1"
	server.ProfileJSON = `{"username":"alice","is_landlord":true}`

	profile, err := manager.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Username)
	assert.True(t, profile.IsLandlord)
	assert.True(t, manager.IsAuthenticated())
	assert.True(t, manager.IsLandlord())
	assert.False(t, manager.IsStaff())

	snapshot := manager.Snapshot(ctx)
	assert.Equal(t, "A1", snapshot.AccessToken)
	assert.Equal(t, "R1", snapshot.RefreshToken)
	require.NotNil(t, snapshot.CurrentUser)
	assert.Equal(t, "alice", snapshot.CurrentUser.Username)
}

func TestManager_Login_BadCredentials(t *testing.T) {
	manager, server, store := newManager(t)
	ctx := context.Background()

	_, err := manager.Login(ctx, "alice", "wrong")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
	// The server's own wording wins over the local fallback.
	assert.Equal(t, "No active account found with the given credentials", ae.Message)

	assert.False(t, manager.IsAuthenticated())
	_, getErr := store.Get(ctx, constants.KeyAccessToken)
	assert.Error(t, getErr, "failed login must not persist tokens")
	assert.Equal(t, 1, server.TokenCalls())
}

func TestManager_Login_EmptyFields(t *testing.T) {
	manager, server, _ := newManager(t)

	_, err := manager.Login(context.Background(), "", "secret")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Equal(t, 0, server.Requests(), "validation failures stay local")
}

func TestManager_Login_StandInProfile(t *testing.T) {
	manager, server, _ := newManager(t)

	// Profile endpoint answers with an empty object.
	server.ProfileJSON = `{}`

	profile, err := manager.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestManager_Register(t *testing.T) {
	manager, server, _ := newManager(t)
	ctx := context.Background()

	profile, err := manager.Register(ctx, session.RegisterInput{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "hunter2",
		ConfirmPassword: "hunter2",
		IsLandlord:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, "bob@example.com", profile.Email)
	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, 1, server.RegisterCalls())

	snapshot := manager.Snapshot(ctx)
	assert.NotEmpty(t, snapshot.AccessToken)
	assert.NotEmpty(t, snapshot.RefreshToken)
}

func TestManager_Register_PasswordMismatch(t *testing.T) {
	manager, server, _ := newManager(t)

	_, err := manager.Register(context.Background(), session.RegisterInput{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "hunter2",
		ConfirmPassword: "hunter3",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	assert.Equal(t, "Passwords do not match", ae.Message)
	assert.Equal(t, 0, server.RegisterCalls())
	assert.Equal(t, 0, server.Requests(), "mismatch must produce zero network calls")
}

func TestManager_Register_FieldErrorPriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "username outranks email",
			body: `{"username":["A user with that username already exists."],"email":["Enter a valid email address."]}`,
			want: "A user with that username already exists.",
		},
		{
			name: "email outranks password",
			body: `{"email":["Enter a valid email address."],"password":["This password is too common."]}`,
			want: "Enter a valid email address.",
		},
		{
			name: "non-field errors last",
			body: `{"non_field_errors":["Registration is closed."]}`,
			want: "Registration is closed.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			manager, server, _ := newManager(t)
			server.RegisterStatus = 400
			server.RegisterJSON = tc.body

			_, err := manager.Register(context.Background(), session.RegisterInput{
				Username:        "bob",
				Email:           "bob@example.com",
				Password:        "hunter2",
				ConfirmPassword: "hunter2",
			})

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, tc.want, ae.Message)
		})
	}
}

func TestManager_Bootstrap(t *testing.T) {
	manager, server, store := newManager(t)
	ctx := context.Background()

	server.ProfileJSON = `{"username":"alice","is_staff":true}`
	server.GrantAccess("persisted-token")
	require.NoError(t, store.Set(ctx, constants.KeyAccessToken, "persisted-token"))

	require.NoError(t, manager.Bootstrap(ctx))

	assert.True(t, manager.IsAuthenticated())
	assert.True(t, manager.IsStaff())
	assert.Equal(t, "alice", manager.Current().Username)
}

func TestManager_Bootstrap_NoToken(t *testing.T) {
	manager, server, _ := newManager(t)

	require.NoError(t, manager.Bootstrap(context.Background()))

	assert.False(t, manager.IsAuthenticated())
	assert.Equal(t, 0, server.Requests())
}

func TestManager_Bootstrap_InvalidTokenClearsSession(t *testing.T) {
	manager, _, store := newManager(t)
	ctx := context.Background()

	// Token the server never granted, and no refresh token to recover with.
	require.NoError(t, store.Set(ctx, constants.KeyAccessToken, "revoked"))

	require.NoError(t, manager.Bootstrap(ctx))

	assert.False(t, manager.IsAuthenticated())
	_, err := store.Get(ctx, constants.KeyAccessToken)
	assert.Error(t, err, "stale token should be cleared")
}

func TestManager_Logout(t *testing.T) {
	manager, server, store := newManager(t)
	ctx := context.Background()

	server.StaticAccess = "A1"
	server.StaticRefresh = "R1"
	_, err := manager.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx))

	assert.False(t, manager.IsAuthenticated())
	for _, key := range []string{constants.KeyAccessToken, constants.KeyRefreshToken, constants.KeyUsername} {
		_, err := store.Get(ctx, key)
		assert.Error(t, err, key)
	}

	// Idempotent: a second logout is a no-op.
	require.NoError(t, manager.Logout(ctx))
}
