// Copyright (c) 2026 Lehae. All rights reserved.

package session

import "encoding/json"

// UserProfile is the server-sourced account record.
//
// Everything except the two gate flags (IsLandlord, IsStaff) is carried as-is
// for display; the nested profile object is entirely opaque to the client.
type UserProfile struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsLandlord bool   `json:"is_landlord"`
	IsStaff    bool   `json:"is_staff"`
	IsVerified bool   `json:"is_verified"`

	// Profile is the nested profile object, passed through untouched.
	Profile json.RawMessage `json:"profile,omitempty"`
}

// Session is the authentication state of the running client.
//
// CurrentUser is non-nil only if an access token was present when the profile
// was fetched. The pair may become momentarily inconsistent when a request
// fails after tokens were cleared; every mutation path converges back to
// either a fully-populated or a fully-empty session.
type Session struct {
	AccessToken  string
	RefreshToken string
	CurrentUser  *UserProfile
}
