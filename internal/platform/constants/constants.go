// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire client.

It defines default timeouts, API endpoint paths, and the persisted state keys
that are shared between different layers of the system.

Categories:

  - Client Timing: HTTP timeouts and rate limiting defaults.
  - State Keys: names of the durable key/value entries.
  - Endpoints: relative paths of the Lehae REST API.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "lehae-cli"
	AppVersion = "0.1.0-dev"
)

// # Client Timing

const (
	// DefaultHTTPTimeout is the deadline applied to a single logical API call,
	// including a possible refresh-and-retry cycle.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultDialTimeout bounds TCP connection establishment.
	DefaultDialTimeout = 5 * time.Second

	// DefaultRateLimitRPS is the outbound requests per second the client
	// allows itself against the API.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the token bucket capacity of the outbound limiter.
	DefaultRateLimitBurst = 40
)

// # Persisted State Keys

const (
	// KeyAccessToken holds the short-lived bearer credential.
	KeyAccessToken = "access_token"

	// KeyRefreshToken holds the long-lived credential used to mint new access tokens.
	KeyRefreshToken = "refresh_token"

	// KeyUsername holds the last authenticated username.
	KeyUsername = "username"

	// KeyLanguage holds the UI language preference. Opaque to the session layer.
	KeyLanguage = "language"
)

// StateKeys lists every key the durable store may hold. Clear operations
// remove exactly this set.
var StateKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUsername, KeyLanguage}

// # API Endpoints

const (
	PathRegister       = "/api/register/"
	PathToken          = "/api/token/"
	PathTokenRefresh   = "/api/token/refresh/"
	PathProfile        = "/api/profile/"
	PathProperties     = "/api/properties/"
	PathPropertyImages = "/api/property-images/"
	PathFavorites      = "/api/favorites/"
	PathUsers          = "/api/users/"
	PathReports        = "/api/reports/"
	PathContact        = "/api/contact/"
)

// # Listings

const (
	// MaxImagesPerListing is the upper bound enforced before uploading.
	MaxImagesPerListing = 3

	// MaxImageBytes is the largest accepted image upload (5 MB).
	MaxImageBytes = 5 * 1024 * 1024

	// DefaultMediaFile is the server-side fallback image name.
	DefaultMediaFile = "default.jpg"

	// PlaceholderImagePath is the client-side placeholder for listings
	// without any image at all.
	PlaceholderImagePath = "/placeholder-property.jpg"
)

// # Defaults

const (
	// DefaultLanguage is used when no language preference has been persisted.
	DefaultLanguage = "en"

	// UnknownText substitutes absent string fields so the view layer never
	// renders an empty value.
	UnknownText = "Unknown"
)
