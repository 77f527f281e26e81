// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package transport implements the resilient HTTP access layer of the Lehae client.

Every API call in the application flows through [Client]. It owns the concerns
that must behave identically for all callers:

  - Base URL: one configured root for every request, token refresh included.
  - Decoration: bearer token attachment, request IDs, default content type.
  - Recovery: the 401 refresh-and-retry protocol (at most one retry per call).
  - Politeness: an outbound token-bucket rate limiter.

Per logical request the state machine is
Pending → {Success | Failed | Retrying → {Success | Failed}}, where Retrying
is entered at most once. Concurrent 401s coalesce into a single refresh round
trip shared by every waiting request.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/tokenstore"
)

// contentTypeJSON is the default for every request unless a call overrides it
// (multipart uploads do).
const contentTypeJSON = "application/json"

// # Construction

// Options configures a [Client].
type Options struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// Store supplies and receives the credential pair.
	Store tokenstore.Store

	Logger *slog.Logger

	// Timeout bounds one logical call including a refresh-and-retry cycle.
	// Zero means constants.DefaultHTTPTimeout.
	Timeout time.Duration

	// RateLimitRPS throttles outbound requests. Zero disables throttling.
	RateLimitRPS float64

	// OnAuthExpired is invoked after the client has cleared credentials
	// because the refresh protocol was exhausted. The view layer uses it to
	// send the user back to the login screen. May be nil.
	OnAuthExpired func()

	// HTTPClient overrides the underlying client. Nil means a fresh
	// http.Client; tests inject the httptest server's client here.
	HTTPClient *http.Client
}

// Client is the shared HTTP access layer. Safe for concurrent use.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	store         tokenstore.Store
	logger        *slog.Logger
	limiter       *rate.Limiter
	timeout       time.Duration
	onAuthExpired func()

	// refreshGroup coalesces simultaneous refresh attempts: any number of
	// requests failing on the same expired token produce one refresh call.
	refreshGroup singleflight.Group
}

// New constructs a [Client] from options.
func New(options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: constants.DefaultDialTimeout}).DialContext,
			},
		}
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	var limiter *rate.Limiter
	if options.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RateLimitRPS), constants.DefaultRateLimitBurst)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:       options.BaseURL,
		httpClient:    httpClient,
		store:         options.Store,
		logger:        logger,
		limiter:       limiter,
		timeout:       timeout,
		onAuthExpired: options.OnAuthExpired,
	}
}

// BaseURL returns the configured API root. The normalization layer uses it to
// build absolute media fallback URLs.
func (client *Client) BaseURL() string { return client.baseURL }

// # Request Helpers

// GetJSON performs a GET and decodes the JSON response into out (skipped when
// out is nil).
func (client *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return client.do(ctx, call{method: http.MethodGet, path: path, query: query, out: out})
}

// PostJSON performs a POST with a JSON body.
func (client *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	return client.doWithBody(ctx, http.MethodPost, path, body, out)
}

// PutJSON performs a PUT with a JSON body.
func (client *Client) PutJSON(ctx context.Context, path string, body any, out any) error {
	return client.doWithBody(ctx, http.MethodPut, path, body, out)
}

// DeleteJSON performs a DELETE. The Lehae favorites endpoint takes a JSON
// body on DELETE; body may be nil for conventional deletes.
func (client *Client) DeleteJSON(ctx context.Context, path string, body any, out any) error {
	return client.doWithBody(ctx, http.MethodDelete, path, body, out)
}

// PostMultipart performs a POST with a pre-encoded multipart payload.
func (client *Client) PostMultipart(ctx context.Context, path string, contentType string, payload []byte, out any) error {
	return client.do(ctx, call{
		method:      http.MethodPost,
		path:        path,
		contentType: contentType,
		body:        payload,
		out:         out,
	})
}

func (client *Client) doWithBody(ctx context.Context, method, path string, body any, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("transport: encode request body: %w", err)
		}
	}
	return client.do(ctx, call{method: method, path: path, body: encoded, out: out})
}

// # Core Protocol

// call describes one logical API request. The body is held as bytes so the
// retry after a refresh can replay it.
type call struct {
	method      string
	path        string
	query       url.Values
	contentType string
	body        []byte
	out         any

	// unauthenticated marks the token refresh request itself: no bearer
	// attachment and no recovery, so refresh can never recurse.
	unauthenticated bool
}

// do runs the request state machine: send, and on a first-attempt 401 run the
// refresh protocol and re-issue the request exactly once.
func (client *Client) do(ctx context.Context, call call) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		status, body, err := client.send(ctx, call)
		if err != nil {
			return apperr.Network(err)
		}

		if status < http.StatusBadRequest {
			return decodeInto(call.out, body)
		}

		failure := decodeAPIError(status, body)

		// The retry decision is an explicit function of (status, attempt):
		// never hidden state on a shared request object.
		if status == http.StatusUnauthorized && attempt == 0 && !call.unauthenticated {
			if refreshErr := client.recoverAuth(ctx, failure); refreshErr != nil {
				return refreshErr
			}
			client.logger.Debug("retrying request after token refresh",
				slog.String("method", call.method),
				slog.String("path", call.path),
			)
			continue
		}

		return failure
	}
}

// send performs one network attempt and returns the status with the fully
// read body.
func (client *Client) send(ctx context.Context, call call) (int, []byte, error) {
	if client.limiter != nil {
		if err := client.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	target := client.baseURL + call.path
	if len(call.query) > 0 {
		target += "?" + call.query.Encode()
	}

	var reader io.Reader
	if call.body != nil {
		reader = bytes.NewReader(call.body)
	}

	request, err := http.NewRequestWithContext(ctx, call.method, target, reader)
	if err != nil {
		return 0, nil, err
	}

	contentType := call.contentType
	if contentType == "" {
		contentType = contentTypeJSON
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("X-Request-ID", uuid.NewString())

	if !call.unauthenticated {
		if token, err := client.store.Get(ctx, constants.KeyAccessToken); err == nil && token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}

	return response.StatusCode, body, nil
}

// decodeInto unmarshals a response body, tolerating empty bodies (204s and
// bare-status endpoints).
func decodeInto(out any, body []byte) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Shape("Unexpected response format")
	}
	return nil
}
