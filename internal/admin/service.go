// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package admin implements the staff-only resource client: user listing,
verification, banning, and the aggregate reports view.

Authorization is enforced server-side; the client's only gate is the view
layer consulting session.IsStaff before offering these operations.
*/
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/platform/validate"
	"github.com/lehae/lehae-go/internal/transport"
)

// Client is the typed admin API client.
type Client struct {
	api    *transport.Client
	logger *slog.Logger
}

// NewClient constructs an admin [Client].
func NewClient(api *transport.Client, logger *slog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// User is an account row as the admin panel sees it.
type User struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsLandlord bool   `json:"is_landlord"`
	IsStaff    bool   `json:"is_staff"`
	IsVerified bool   `json:"is_verified"`
}

// Report is the aggregate statistics block. Fields the server adds later
// remain available through Extra.
type Report struct {
	TotalUsers      int `json:"total_users"`
	TotalProperties int `json:"total_properties"`
	TotalFavorites  int `json:"total_favorites"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ListUsers fetches all accounts. A non-array response degrades to an empty
// slice, matching the listings behavior.
func (client *Client) ListUsers(ctx context.Context) ([]User, error) {
	var raw json.RawMessage
	if err := client.api.GetJSON(ctx, constants.PathUsers, nil, &raw); err != nil {
		return nil, err
	}

	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		client.logger.Warn("users response was not an array, degrading to empty list")
		return []User{}, nil
	}

	return users, nil
}

// VerifyUser marks an account as verified.
func (client *Client) VerifyUser(ctx context.Context, userID int) error {
	if err := (&validate.Validator{}).PositiveID("user", userID).Err(); err != nil {
		return err
	}

	body := map[string]map[string]bool{"profile": {"is_verified": true}}
	return client.api.PutJSON(ctx, constants.PathUsers+strconv.Itoa(userID)+"/verify/", body, nil)
}

// BanUser removes an account.
func (client *Client) BanUser(ctx context.Context, userID int) error {
	if err := (&validate.Validator{}).PositiveID("user", userID).Err(); err != nil {
		return err
	}
	return client.api.DeleteJSON(ctx, constants.PathUsers+strconv.Itoa(userID)+"/", nil, nil)
}

// Reports fetches the aggregate statistics.
func (client *Client) Reports(ctx context.Context) (*Report, error) {
	var raw map[string]json.RawMessage
	if err := client.api.GetJSON(ctx, constants.PathReports, nil, &raw); err != nil {
		return nil, err
	}

	report := &Report{Extra: make(map[string]json.RawMessage)}
	for key, value := range raw {
		switch key {
		case "total_users":
			_ = json.Unmarshal(value, &report.TotalUsers)
		case "total_properties":
			_ = json.Unmarshal(value, &report.TotalProperties)
		case "total_favorites":
			_ = json.Unmarshal(value, &report.TotalFavorites)
		default:
			report.Extra[key] = value
		}
	}

	return report, nil
}
