// Copyright (c) 2026 Lehae. All rights reserved.

package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
)

// refreshRequest is the payload of POST /api/token/refresh/.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// refreshResponse carries the newly minted access token.
type refreshResponse struct {
	Access string `json:"access"`
}

/*
recoverAuth runs the refresh protocol after a first-attempt 401.

Description: Reads the refresh token, exchanges it for a new access token, and
persists the result. Outcomes follow the session lifecycle exactly:

  - No refresh token: the access token is cleared, the auth-expired signal
    fires, and the ORIGINAL 401 error is returned (terminal).
  - Refresh succeeds: the new access token is persisted and nil is returned;
    the caller re-issues the original request.
  - Refresh fails: both tokens are cleared, the auth-expired signal fires, and
    the REFRESH error is returned wrapped as SESSION_EXPIRED.

Parameters:
  - ctx: context.Context
  - original: the 401 error from the request being recovered

Returns:
  - error: nil when the caller should retry, terminal error otherwise
*/
func (client *Client) recoverAuth(ctx context.Context, original error) error {

	refreshToken, err := client.store.Get(ctx, constants.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		client.logger.Info("no refresh token available, session terminated")
		_ = client.store.Remove(ctx, constants.KeyAccessToken)
		client.signalAuthExpired()
		return original
	}

	if _, err := client.refreshAccessToken(ctx, refreshToken); err != nil {
		client.logger.Warn("token refresh failed", slog.Any("error", err))
		_ = client.store.Remove(ctx, constants.KeyAccessToken)
		_ = client.store.Remove(ctx, constants.KeyRefreshToken)
		client.signalAuthExpired()
		return apperr.SessionExpired(err)
	}

	return nil
}

// refreshAccessToken exchanges the refresh token for a new access token and
// persists it. Simultaneous callers share a single in-flight exchange, so one
// expiry event produces exactly one refresh round trip.
func (client *Client) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	value, err, _ := client.refreshGroup.Do("token_refresh", func() (any, error) {
		var minted refreshResponse

		// The refresh call is unauthenticated: a stale bearer header here
		// would just 401 again, and recovery must never recurse.
		err := client.do(ctx, call{
			method:          http.MethodPost,
			path:            constants.PathTokenRefresh,
			body:            mustJSON(refreshRequest{Refresh: refreshToken}),
			out:             &minted,
			unauthenticated: true,
		})
		if err != nil {
			return nil, err
		}
		if minted.Access == "" {
			return nil, apperr.Shape("Refresh response carried no access token")
		}

		if err := client.store.Set(ctx, constants.KeyAccessToken, minted.Access); err != nil {
			return nil, err
		}

		client.logger.Debug("access token refreshed")
		return minted.Access, nil
	})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}

func (client *Client) signalAuthExpired() {
	if client.onAuthExpired != nil {
		client.onAuthExpired()
	}
}
