// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package session owns the authenticated-user state machine of the Lehae client.

It is the sole writer of the token store's auth keys and the sole owner of the
in-memory current-user value. The view layer consumes it through four
operations — Bootstrap, Login, Register, Logout — plus the guard accessors.

Architecture:

  - Manager: orchestrates the lifecycle against the transport layer.
  - Store: receives access/refresh tokens and the username.
  - Transport: performs the actual HTTP, including silent 401 recovery.
*/
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/platform/validate"
	"github.com/lehae/lehae-go/internal/tokenstore"
	"github.com/lehae/lehae-go/internal/transport"
)

// Manager implements the session lifecycle.
//
// Safe for concurrent use; the current-user value is guarded by a read/write
// mutex because transport goroutines may consult it while a login is running.
type Manager struct {
	api    *transport.Client
	store  tokenstore.Store
	logger *slog.Logger

	mu      sync.RWMutex
	current *UserProfile
}

// NewManager constructs a [Manager] with its dependencies.
func NewManager(api *transport.Client, store tokenstore.Store, logger *slog.Logger) *Manager {
	return &Manager{api: api, store: store, logger: logger}
}

// # Lifecycle

/*
Bootstrap restores session state from persisted tokens at startup.

Description: If an access token exists, the profile is fetched (transparently
refreshing if the token has expired). On any failure the tokens are cleared
and the session is left empty — bootstrap itself never fails the program.

Parameters:
  - ctx: context.Context

Returns:
  - error: nil in every recoverable situation; only store write failures surface
*/
func (manager *Manager) Bootstrap(ctx context.Context) error {

	token, err := manager.store.Get(ctx, constants.KeyAccessToken)
	if err != nil || token == "" {
		return nil
	}

	manager.logTokenExpiry(token)

	var profile UserProfile
	if err := manager.api.GetJSON(ctx, constants.PathProfile, nil, &profile); err != nil {
		manager.logger.Info("bootstrap profile fetch failed, clearing session", slog.Any("error", err))
		_ = manager.store.Remove(ctx, constants.KeyAccessToken)
		_ = manager.store.Remove(ctx, constants.KeyRefreshToken)
		manager.setCurrent(nil)
		return nil
	}

	manager.setCurrent(&profile)
	manager.logger.Debug("session restored", slog.String("username", profile.Username))
	return nil
}

// tokenPair is the body of POST /api/token/.
type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

/*
Login authenticates with the identifier/password pair and hydrates the session.

Description: Posts credentials to the token endpoint, persists both tokens,
then fetches the profile. When the profile endpoint returns an empty body, a
local stand-in is synthesized so the caller always receives a usable profile.

Parameters:
  - ctx: context.Context
  - identifier: username or email
  - password: string

Returns:
  - *UserProfile: The authenticated user
  - error: UNAUTHORIZED (invalid credentials), NETWORK_ERROR, or SERVER_ERROR
*/
func (manager *Manager) Login(ctx context.Context, identifier, password string) (*UserProfile, error) {

	if err := (&validate.Validator{}).
		Required("username", identifier).
		Required("password", password).
		Err(); err != nil {
		return nil, err
	}

	var pair tokenPair
	err := manager.api.PostJSON(ctx, constants.PathToken, map[string]string{
		"username": identifier,
		"password": password,
	}, &pair)
	if err != nil {
		if ae := apperr.As(err); ae != nil && ae.Code == apperr.CodeUnauthorized && ae.Message == "Invalid credentials" {
			// Server gave no message of its own; substitute the login wording.
			return nil, apperr.Unauthorized("Invalid username or password")
		}
		return nil, err
	}

	if pair.Access == "" || pair.Refresh == "" {
		return nil, apperr.Shape("Token response missing credentials")
	}

	if err := manager.persistTokens(ctx, pair); err != nil {
		return nil, err
	}

	// The profile fetch rides on the access token persisted above.
	var profile UserProfile
	if err := manager.api.GetJSON(ctx, constants.PathProfile, nil, &profile); err != nil {
		manager.logger.Warn("profile fetch after login failed", slog.Any("error", err))
		return nil, err
	}
	if profile.Username == "" {
		// Best-effort stand-in, mirroring the information the caller supplied.
		profile = UserProfile{Username: identifier}
	}

	_ = manager.store.Set(ctx, constants.KeyUsername, profile.Username)
	manager.setCurrent(&profile)

	manager.logger.Info("login succeeded", slog.String("username", profile.Username))
	return &profile, nil
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	IsLandlord      bool
}

// registerRequest is the wire payload of POST /api/register/.
type registerRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Profile  registerProfile `json:"profile"`
}

type registerProfile struct {
	IsLandlord bool `json:"is_landlord"`
	IsVerified bool `json:"is_verified"`
}

// registerResponse may or may not include the created user.
type registerResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *UserProfile `json:"user"`
}

/*
Register creates a new account and logs it in.

Description: Validates locally first — a mismatched confirmation or malformed
email never produces a network call. On success both tokens are persisted and
the profile is set from the server's user object, or from a locally
constructed stand-in when the server omits it.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *UserProfile: The new account's profile
  - error: VALIDATION_ERROR (local or server field errors) or transport errors
*/
func (manager *Manager) Register(ctx context.Context, input RegisterInput) (*UserProfile, error) {

	if err := (&validate.Validator{}).
		Required("username", input.Username).
		Email("email", input.Email).
		MinLen("password", input.Password, 1).
		Matches("password", input.Password, input.ConfirmPassword, "Passwords do not match").
		Err(); err != nil {
		return nil, err
	}

	var response registerResponse
	err := manager.api.PostJSON(ctx, constants.PathRegister, registerRequest{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Profile:  registerProfile{IsLandlord: input.IsLandlord, IsVerified: false},
	}, &response)
	if err != nil {
		return nil, registrationError(err)
	}

	if response.Access != "" && response.Refresh != "" {
		if err := manager.persistTokens(ctx, tokenPair{Access: response.Access, Refresh: response.Refresh}); err != nil {
			return nil, err
		}
	}

	profile := response.User
	if profile == nil {
		profile = &UserProfile{
			Username:   input.Username,
			Email:      input.Email,
			IsLandlord: input.IsLandlord,
		}
	}

	_ = manager.store.Set(ctx, constants.KeyUsername, profile.Username)
	manager.setCurrent(profile)

	manager.logger.Info("registration succeeded", slog.String("username", profile.Username))
	return profile, nil
}

/*
Logout clears all tokens and the in-memory profile.

Description: Purely local and idempotent; the server keeps its own session
records and simply stops seeing this client's credentials.

Parameters:
  - ctx: context.Context

Returns:
  - error: Store write failures only
*/
func (manager *Manager) Logout(ctx context.Context) error {

	for _, key := range []string{constants.KeyAccessToken, constants.KeyRefreshToken, constants.KeyUsername} {
		if err := manager.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("session: clear %s: %w", key, err)
		}
	}

	manager.setCurrent(nil)
	manager.logger.Info("logged out, tokens cleared")
	return nil
}

// UpdateProfile sends mutable profile fields to the server and replaces the
// in-memory profile with the server's response.
func (manager *Manager) UpdateProfile(ctx context.Context, changes map[string]any) (*UserProfile, error) {
	var profile UserProfile
	if err := manager.api.PutJSON(ctx, constants.PathProfile, changes, &profile); err != nil {
		return nil, err
	}

	manager.setCurrent(&profile)
	return &profile, nil
}

// Snapshot assembles the current [Session] value: persisted tokens plus the
// in-memory profile. Intended for diagnostics and tests.
func (manager *Manager) Snapshot(ctx context.Context) Session {
	access, _ := manager.store.Get(ctx, constants.KeyAccessToken)
	refresh, _ := manager.store.Get(ctx, constants.KeyRefreshToken)
	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		CurrentUser:  manager.Current(),
	}
}

// # Guard Accessors

// Current returns the in-memory profile, or nil when unauthenticated.
func (manager *Manager) Current() *UserProfile {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.current
}

// IsAuthenticated reports whether a profile is loaded.
func (manager *Manager) IsAuthenticated() bool { return manager.Current() != nil }

// IsLandlord reports whether the current user may manage listings.
func (manager *Manager) IsLandlord() bool {
	user := manager.Current()
	return user != nil && user.IsLandlord
}

// IsStaff reports whether the current user may use the admin surface.
func (manager *Manager) IsStaff() bool {
	user := manager.Current()
	return user != nil && user.IsStaff
}

// # Internals

func (manager *Manager) persistTokens(ctx context.Context, pair tokenPair) error {
	if err := manager.store.Set(ctx, constants.KeyAccessToken, pair.Access); err != nil {
		return fmt.Errorf("session: persist access token: %w", err)
	}
	if err := manager.store.Set(ctx, constants.KeyRefreshToken, pair.Refresh); err != nil {
		return fmt.Errorf("session: persist refresh token: %w", err)
	}
	return nil
}

func (manager *Manager) setCurrent(profile *UserProfile) {
	manager.mu.Lock()
	manager.current = profile
	manager.mu.Unlock()
}

// logTokenExpiry decodes the access token claims WITHOUT verification — the
// server owns validity — purely to log how stale the restored session is.
func (manager *Manager) logTokenExpiry(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return
	}
	manager.logger.Debug("restored access token", slog.Time("expires_at", expiry.Time))
}

// registrationError reorders server field errors into the display priority
// the registration form uses: username > email > password > non-field >
// top-level error > generic.
func registrationError(err error) error {
	ae := apperr.As(err)
	if ae == nil {
		return err
	}

	for _, field := range []string{"username", "email", "password", "non_field_errors"} {
		if msg := ae.Field(field); msg != "" {
			return apperr.ValidationError(msg, ae.Details...)
		}
	}

	// No field errors: the transport-level error (server message, network
	// failure, generic fallback) already carries the right wording.
	return ae
}
