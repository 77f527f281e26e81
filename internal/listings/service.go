// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package listings implements the property resource client.

It wraps the transport layer with typed request builders and reshapes the
server's heterogeneous responses into the one canonical [Property] record the
view layer consumes. Errors propagate unchanged; shape mismatches degrade to
empty results rather than failing.
*/
package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/platform/validate"
	"github.com/lehae/lehae-go/internal/transport"
)

// LandlordSelf filters listings to the authenticated landlord's own.
const LandlordSelf = "self"

// Client is the typed property API client.
type Client struct {
	api    *transport.Client
	logger *slog.Logger
}

// NewClient constructs a listings [Client].
func NewClient(api *transport.Client, logger *slog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// # Browsing

// Filters narrows a listings query. Zero values are omitted from the request,
// as is the "all" status placeholder.
type Filters struct {
	ID        int
	District  string
	Area      string
	MinAmount float64
	MaxAmount float64
	Status    string
	Landlord  string
	Limit     int
}

// query encodes only the filters that carry a real value.
func (f Filters) query() url.Values {
	values := url.Values{}

	if f.ID > 0 {
		values.Set("id", strconv.Itoa(f.ID))
	}
	if f.District != "" {
		values.Set("district", f.District)
	}
	if f.Area != "" {
		values.Set("area", f.Area)
	}
	if f.MinAmount > 0 {
		values.Set("min_amount", strconv.FormatFloat(f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount > 0 {
		values.Set("max_amount", strconv.FormatFloat(f.MaxAmount, 'f', -1, 64))
	}
	if f.Status != "" && f.Status != "all" {
		values.Set("status", f.Status)
	}
	if f.Landlord != "" {
		values.Set("landlord", f.Landlord)
	}
	if f.Limit > 0 {
		values.Set("limit", strconv.Itoa(f.Limit))
	}

	return values
}

/*
List fetches listings matching the filters.

Description: Always returns a slice. A response that is not a JSON array is
logged and degraded to an empty result instead of failing the caller.

Parameters:
  - ctx: context.Context
  - filters: Filters

Returns:
  - []Property: Canonical records, possibly empty
  - error: Transport failures only
*/
func (client *Client) List(ctx context.Context, filters Filters) ([]Property, error) {

	var raw json.RawMessage
	if err := client.api.GetJSON(ctx, constants.PathProperties, filters.query(), &raw); err != nil {
		return nil, err
	}

	var payloads []propertyPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		client.logger.Warn("properties response was not an array, degrading to empty list")
		return []Property{}, nil
	}

	properties := make([]Property, 0, len(payloads))
	for _, payload := range payloads {
		properties = append(properties, normalize(payload, client.api.BaseURL()))
	}

	return properties, nil
}

// Get fetches a single listing by ID.
func (client *Client) Get(ctx context.Context, id int) (*Property, error) {
	if err := (&validate.Validator{}).PositiveID("property", id).Err(); err != nil {
		return nil, err
	}

	var payload propertyPayload
	if err := client.api.GetJSON(ctx, propertyPath(id), nil, &payload); err != nil {
		return nil, err
	}

	property := normalize(payload, client.api.BaseURL())
	return &property, nil
}

// # Management

// Draft carries the mutable fields of a listing.
type Draft struct {
	Area         string   `json:"area"`
	District     string   `json:"district"`
	RentalAmount float64  `json:"rental_amount"`
	Deposit      *float64 `json:"deposit"`
	ViewingFee   *float64 `json:"viewing_fee"`
	Status       string   `json:"status"`
	Description  string   `json:"description"`
}

func (d Draft) validate() error {
	return (&validate.Validator{}).
		Required("area", d.Area).
		Required("district", d.District).
		Custom("rental_amount", d.RentalAmount <= 0, "Must be a positive amount").
		OneOf("status", d.Status, string(StatusVacant), string(StatusOccupied)).
		Err()
}

// Create submits a new listing.
func (client *Client) Create(ctx context.Context, draft Draft) (*Property, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	var payload propertyPayload
	if err := client.api.PostJSON(ctx, constants.PathProperties, draft, &payload); err != nil {
		return nil, err
	}

	property := normalize(payload, client.api.BaseURL())
	return &property, nil
}

// Update replaces a listing's mutable fields.
func (client *Client) Update(ctx context.Context, id int, draft Draft) (*Property, error) {
	if err := (&validate.Validator{}).PositiveID("property", id).Err(); err != nil {
		return nil, err
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}

	var payload propertyPayload
	if err := client.api.PutJSON(ctx, propertyPath(id), draft, &payload); err != nil {
		return nil, err
	}

	property := normalize(payload, client.api.BaseURL())
	return &property, nil
}

// Delete removes a listing.
func (client *Client) Delete(ctx context.Context, id int) error {
	if err := (&validate.Validator{}).PositiveID("property", id).Err(); err != nil {
		return err
	}
	return client.api.DeleteJSON(ctx, propertyPath(id), nil, nil)
}

// # Images

/*
UploadImage attaches a photo to a listing via multipart upload.

Description: Enforces the client-side rules before any bytes move: jpeg/png
only, at most 5 MB, and the listing's image slots must not already be full
(the caller passes the current count).

Parameters:
  - ctx: context.Context
  - propertyID: target listing
  - filename: original file name (extension decides the declared type)
  - currentCount: images already on the listing
  - reader: image bytes

Returns:
  - *Image: The stored image record
  - error: VALIDATION_ERROR before upload, transport errors after
*/
func (client *Client) UploadImage(ctx context.Context, propertyID int, filename string, currentCount int, reader io.Reader) (*Image, error) {

	if err := (&validate.Validator{}).
		PositiveID("property_id", propertyID).
		Custom("image", !validImageName(filename), "Only JPEG and PNG images are accepted").
		Custom("image", currentCount >= constants.MaxImagesPerListing,
			fmt.Sprintf("Maximum %d images allowed", constants.MaxImagesPerListing)).
		Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(reader, constants.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("listings: read image: %w", err)
	}
	if len(data) > constants.MaxImageBytes {
		return nil, validate.RequiredError("image", "Image exceeds the 5 MB limit")
	}

	var buffer bytes.Buffer
	form := multipart.NewWriter(&buffer)

	part, err := form.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("listings: build multipart form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("listings: write multipart form: %w", err)
	}
	if err := form.WriteField("property_id", strconv.Itoa(propertyID)); err != nil {
		return nil, fmt.Errorf("listings: write multipart form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("listings: finalize multipart form: %w", err)
	}

	var image Image
	if err := client.api.PostMultipart(ctx, constants.PathPropertyImages, form.FormDataContentType(), buffer.Bytes(), &image); err != nil {
		return nil, err
	}

	return &image, nil
}

// DeleteImage removes a stored image by its own ID.
func (client *Client) DeleteImage(ctx context.Context, imageID int) error {
	if err := (&validate.Validator{}).PositiveID("image", imageID).Err(); err != nil {
		return err
	}
	return client.api.DeleteJSON(ctx, constants.PathPropertyImages+strconv.Itoa(imageID)+"/", nil, nil)
}

// # Helpers

func propertyPath(id int) string {
	return constants.PathProperties + strconv.Itoa(id) + "/"
}

func validImageName(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}
