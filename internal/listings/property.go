// Copyright (c) 2026 Lehae. All rights reserved.

package listings

import (
	"encoding/json"
	"fmt"

	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/pkg/convert"
)

// Status is the occupancy state of a listing.
type Status string

const (
	StatusVacant   Status = "vacant"
	StatusOccupied Status = "occupied"
	StatusUnknown  Status = "unknown"
)

// Image is one photo attached to a listing.
type Image struct {
	ID         int    `json:"id,omitempty"`
	ImageURL   string `json:"image_url"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// Property is the canonical client-side listing record.
//
// Every field is default-guarded: absent strings become "Unknown", absent
// numbers become 0, an absent status becomes "unknown", and Images always
// holds at least one entry. The view layer never sees a hole.
type Property struct {
	ID               int     `json:"id"`
	Area             string  `json:"area"`
	District         string  `json:"district"`
	RentalAmount     float64 `json:"rental_amount"`
	Deposit          float64 `json:"deposit"`
	ViewingFee       float64 `json:"viewing_fee"`
	Status           Status  `json:"status"`
	Description      string  `json:"description"`
	LandlordUsername string  `json:"landlord_username"`
	IsFavorited      bool    `json:"is_favorited"`
	IsApproved       bool    `json:"is_approved"`
	Images           []Image `json:"images"`
}

// # Wire Shapes

// propertyPayload is the loosely-typed record as the server sends it.
// Numerics use [convert.Number] because DRF serializes decimals as strings.
type propertyPayload struct {
	ID               int            `json:"id"`
	Area             string         `json:"area"`
	District         string         `json:"district"`
	RentalAmount     convert.Number `json:"rental_amount"`
	Deposit          convert.Number `json:"deposit"`
	ViewingFee       convert.Number `json:"viewing_fee"`
	Status           string         `json:"status"`
	Description      string         `json:"description"`
	LandlordUsername string         `json:"landlord_username"`
	IsFavorited      bool           `json:"is_favorited"`
	IsApproved       bool           `json:"is_approved"`
	Images           []imagePayload `json:"images"`

	// ImageURL is the legacy single-image field still sent by some endpoints.
	ImageURL string `json:"image_url"`
}

type imagePayload struct {
	ID         int    `json:"id"`
	ImageURL   string `json:"image_url"`
	UploadedAt string `json:"uploaded_at"`
}

// # Normalization

// Decode unmarshals a raw server record and normalizes it. Used by the
// favorites layer for embedded property_detail objects.
func Decode(raw []byte, baseURL string) (Property, error) {
	var payload propertyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Property{}, fmt.Errorf("listings: decode property: %w", err)
	}
	return normalize(payload, baseURL), nil
}

// normalize maps a wire record onto the canonical [Property] shape.
//
// The rules mirror the web client exactly and the result is idempotent:
// normalizing an already-canonical record changes nothing.
func normalize(payload propertyPayload, baseURL string) Property {
	property := Property{
		ID:               payload.ID,
		Area:             convert.StringOr(payload.Area, constants.UnknownText),
		District:         convert.StringOr(payload.District, constants.UnknownText),
		RentalAmount:     payload.RentalAmount.Float64(),
		Deposit:          payload.Deposit.Float64(),
		ViewingFee:       payload.ViewingFee.Float64(),
		Status:           normalizeStatus(payload.Status),
		Description:      payload.Description,
		LandlordUsername: convert.StringOr(payload.LandlordUsername, constants.UnknownText),
		IsFavorited:      payload.IsFavorited,
		IsApproved:       payload.IsApproved,
		Images:           normalizeImages(payload, baseURL),
	}
	return property
}

func normalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusVacant, StatusOccupied:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// normalizeImages applies the image fallback chain:
//
//  1. A non-empty images array is used as-is, each entry's URL falling back
//     to the server's default media path when absent.
//  2. Otherwise a bare image_url is wrapped as a one-element slice.
//  3. Otherwise a single client-side placeholder entry is synthesized.
//
// The result is never empty and never nil.
func normalizeImages(payload propertyPayload, baseURL string) []Image {
	if len(payload.Images) > 0 {
		images := make([]Image, 0, len(payload.Images))
		for _, img := range payload.Images {
			url := img.ImageURL
			if url == "" {
				url = baseURL + "/media/" + constants.DefaultMediaFile
			}
			images = append(images, Image{ID: img.ID, ImageURL: url, UploadedAt: img.UploadedAt})
		}
		return images
	}

	if payload.ImageURL != "" {
		return []Image{{ImageURL: payload.ImageURL}}
	}

	return []Image{{ImageURL: constants.PlaceholderImagePath}}
}
