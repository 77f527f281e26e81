// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package favorites implements the favorites resource client.

The favorites endpoint is the one place where the Lehae backend answers with
two different shapes for the same resource: entries either embed the full
property record or carry a bare property ID. Both are decoded once into an
explicit tagged union at this boundary, and both converge to the canonical
listings.Property with IsFavorited set.
*/
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lehae/lehae-go/internal/listings"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/platform/validate"
	"github.com/lehae/lehae-go/internal/transport"
)

// ErrAlreadyFavorited reports an Add call for a property the user had already
// favorited. Callers treat it as a successful no-op.
var ErrAlreadyFavorited = errors.New("favorites: already favorited")

// hydrationConcurrency bounds the parallel per-ID fetches for ID-shaped lists.
const hydrationConcurrency = 4

// Client is the typed favorites API client.
type Client struct {
	api      *transport.Client
	listings *listings.Client
	logger   *slog.Logger
}

// NewClient constructs a favorites [Client]. The listings client is needed to
// hydrate ID-shaped responses.
func NewClient(api *transport.Client, listingsClient *listings.Client, logger *slog.Logger) *Client {
	return &Client{api: api, listings: listingsClient, logger: logger}
}

// # Wire Shapes

// entry is the tagged union of the two favorite response shapes.
//
// Detail shape: {"id": 7, "property_detail": {...full property...}}
// ID shape:     {"id": 7, "property": 42}
//
// An entry is detail-shaped iff property_detail carries a positive integer id;
// anything else falls back to the ID shape or is invalid.
type entry struct {
	ID             int              `json:"id"`
	PropertyDetail *json.RawMessage `json:"property_detail"`
	Property       int              `json:"property"`
}

// detailID extracts the nested property id, or 0 when the entry is not a
// valid detail shape.
func (e entry) detailID() int {
	if e.PropertyDetail == nil {
		return 0
	}
	var probe struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(*e.PropertyDetail, &probe); err != nil {
		return 0
	}
	if probe.ID <= 0 {
		return 0
	}
	return probe.ID
}

// # Operations

/*
List fetches the user's favorites as canonical property records.

Description: Detects which shape the server used. Detail-shaped lists map
directly, silently dropping malformed entries. ID-shaped lists hydrate each
ID with an independent concurrent property fetch; IDs that fail to resolve
are dropped rather than failing the whole list. Results keep input order.

Parameters:
  - ctx: context.Context

Returns:
  - []listings.Property: Favorited records, IsFavorited always true
  - error: Transport failures of the list call itself
*/
func (client *Client) List(ctx context.Context) ([]listings.Property, error) {

	var raw json.RawMessage
	if err := client.api.GetJSON(ctx, constants.PathFavorites, nil, &raw); err != nil {
		return nil, err
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		client.logger.Warn("favorites response was not an array, degrading to empty list")
		return []listings.Property{}, nil
	}

	// Shape detection happens once per response, not per entry: a single
	// valid detail entry marks the whole list detail-shaped.
	for _, e := range entries {
		if e.detailID() > 0 {
			return client.mapDetailEntries(entries), nil
		}
	}

	return client.hydrateIDEntries(ctx, entries)
}

// mapDetailEntries converts detail-shaped entries, dropping invalid ones.
func (client *Client) mapDetailEntries(entries []entry) []listings.Property {
	favorites := make([]listings.Property, 0, len(entries))

	for _, e := range entries {
		if e.detailID() == 0 {
			client.logger.Warn("dropping malformed favorite entry", slog.Int("favorite_id", e.ID))
			continue
		}

		property, ok := client.decodeDetail(*e.PropertyDetail)
		if !ok {
			client.logger.Warn("dropping undecodable favorite entry", slog.Int("favorite_id", e.ID))
			continue
		}
		favorites = append(favorites, property)
	}

	return favorites
}

// hydrateIDEntries resolves ID-shaped entries with bounded concurrent
// fetches. Failed resolutions are logged and dropped.
func (client *Client) hydrateIDEntries(ctx context.Context, entries []entry) ([]listings.Property, error) {
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.Property <= 0 {
			client.logger.Warn("dropping malformed favorite entry", slog.Int("favorite_id", e.ID))
			continue
		}
		ids = append(ids, e.Property)
	}

	// Reassembled by index, not by arrival order.
	resolved := make([]*listings.Property, len(ids))

	var group errgroup.Group
	group.SetLimit(hydrationConcurrency)

	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			matches, err := client.listings.List(ctx, listings.Filters{ID: id})
			if err != nil || len(matches) == 0 {
				client.logger.Warn("failed to hydrate favorite", slog.Int("property_id", id), slog.Any("error", err))
				return nil
			}
			resolved[i] = &matches[0]
			return nil
		})
	}

	// Workers never return errors; Wait only orders the joins.
	_ = group.Wait()

	favorites := make([]listings.Property, 0, len(ids))
	for _, property := range resolved {
		if property == nil || property.ID <= 0 {
			continue
		}
		property.IsFavorited = true
		favorites = append(favorites, *property)
	}

	return favorites, nil
}

// addResponse is the body of POST /api/favorites/.
type addResponse struct {
	Message        string           `json:"message"`
	PropertyDetail *json.RawMessage `json:"property_detail"`
}

/*
Add favorites a property.

Description: Fails fast locally on a non-positive ID with zero network calls.
Returns the canonical favorited record built from the response's embedded
detail when present, or a minimal record otherwise. A server response of
"Already favorited" surfaces as [ErrAlreadyFavorited].

Parameters:
  - ctx: context.Context
  - propertyID: int

Returns:
  - *listings.Property: The favorited record
  - error: VALIDATION_ERROR, ErrAlreadyFavorited, or transport failures
*/
func (client *Client) Add(ctx context.Context, propertyID int) (*listings.Property, error) {

	if err := (&validate.Validator{}).PositiveID("property", propertyID).Err(); err != nil {
		return nil, err
	}

	var response addResponse
	err := client.api.PostJSON(ctx, constants.PathFavorites, map[string]int{"property": propertyID}, &response)
	if err != nil {
		return nil, err
	}

	if response.Message == "Already favorited" {
		return nil, ErrAlreadyFavorited
	}

	if response.PropertyDetail != nil {
		if property, ok := client.decodeDetail(*response.PropertyDetail); ok {
			property.ID = propertyID
			return &property, nil
		}
	}

	return &listings.Property{ID: propertyID, IsFavorited: true}, nil
}

/*
Remove unfavorites a property.

Description: Fails fast locally on a non-positive ID with zero network calls.
The endpoint takes the property ID in the DELETE body.

Parameters:
  - ctx: context.Context
  - propertyID: int

Returns:
  - error: VALIDATION_ERROR or transport failures
*/
func (client *Client) Remove(ctx context.Context, propertyID int) error {

	if err := (&validate.Validator{}).PositiveID("property", propertyID).Err(); err != nil {
		return err
	}

	return client.api.DeleteJSON(ctx, constants.PathFavorites, map[string]int{"property": propertyID}, nil)
}

// decodeDetail normalizes an embedded property_detail object through the
// listings decoder, forcing IsFavorited.
func (client *Client) decodeDetail(raw json.RawMessage) (listings.Property, bool) {
	property, err := listings.Decode(raw, client.api.BaseURL())
	if err != nil {
		return listings.Property{}, false
	}
	property.IsFavorited = true
	return property, true
}
