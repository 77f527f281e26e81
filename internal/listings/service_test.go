// Copyright (c) 2026 Lehae. All rights reserved.

package listings_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehae/lehae-go/internal/apitest"
	"github.com/lehae/lehae-go/internal/listings"
	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/tokenstore"
	"github.com/lehae/lehae-go/internal/transport"
)

func newClient(t *testing.T) (*listings.Client, *apitest.Server) {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), constants.KeyAccessToken, "T1"))
	server.GrantAccess("T1")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := transport.New(transport.Options{BaseURL: server.URL, Store: store, Logger: logger})

	return listings.NewClient(api, logger), server
}

func TestClient_List(t *testing.T) {
	client, server := newClient(t)

	server.PropertiesJSON = `[
		{"id": 1, "district": "Maseru", "rental_amount": "1800.00", "status": "vacant"},
		{"id": 2}
	]`

	properties, err := client.List(context.Background(), listings.Filters{})
	require.NoError(t, err)

	require.Len(t, properties, 2)
	assert.Equal(t, "Maseru", properties[0].District)
	assert.Equal(t, 1800.0, properties[0].RentalAmount)
	assert.Equal(t, "Unknown", properties[1].District)
	assert.NotEmpty(t, properties[1].Images)
}

func TestClient_List_FilterOmission(t *testing.T) {
	client, server := newClient(t)

	_, err := client.List(context.Background(), listings.Filters{
		District: "Maseru",
		Status:   "all",
	})
	require.NoError(t, err)

	query := server.LastListQuery()
	assert.Equal(t, "Maseru", query.Get("district"))
	assert.False(t, query.Has("status"), "the 'all' placeholder must not reach the wire")
	assert.False(t, query.Has("min_amount"))
	assert.False(t, query.Has("max_amount"))
}

func TestClient_List_NonArrayDegrades(t *testing.T) {
	client, server := newClient(t)

	server.PropertiesJSON = `{"detail": "throttled"}`

	properties, err := client.List(context.Background(), listings.Filters{})
	require.NoError(t, err)
	assert.NotNil(t, properties)
	assert.Empty(t, properties)
}

func TestClient_Get(t *testing.T) {
	client, server := newClient(t)

	server.PropertyDetails[5] = `{"id": 5, "district": "Berea", "status": "occupied"}`

	property, err := client.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, property.ID)
	assert.Equal(t, "Berea", property.District)
	assert.Equal(t, listings.StatusOccupied, property.Status)
}

func TestClient_Get_InvalidID(t *testing.T) {
	client, server := newClient(t)

	_, err := client.Get(context.Background(), 0)

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Equal(t, 0, server.Requests())
}

func TestClient_CreateAndUpdate(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	draft := listings.Draft{
		Area:         "Khubetsoana",
		District:     "Maseru",
		RentalAmount: 2000,
		Status:       "vacant",
		Description:  "Two bedroom flat",
	}

	created, err := client.Create(ctx, draft)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Khubetsoana", created.Area)

	draft.RentalAmount = 2200
	updated, err := client.Update(ctx, created.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 2200.0, updated.RentalAmount)
}

func TestClient_Create_InvalidDraft(t *testing.T) {
	client, server := newClient(t)

	tests := []struct {
		name  string
		draft listings.Draft
	}{
		{"missing area", listings.Draft{District: "Maseru", RentalAmount: 100, Status: "vacant"}},
		{"zero amount", listings.Draft{Area: "a", District: "d", Status: "vacant"}},
		{"bad status", listings.Draft{Area: "a", District: "d", RentalAmount: 100, Status: "sold"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Create(context.Background(), tc.draft)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}

	assert.Equal(t, 0, server.Requests(), "invalid drafts stay local")
}

func TestClient_UploadImage(t *testing.T) {
	client, _ := newClient(t)

	image, err := client.UploadImage(context.Background(), 5, "house.jpg", 0, strings.NewReader("fake-jpeg-bytes"))
	require.NoError(t, err)
	assert.NotZero(t, image.ID)
	assert.NotEmpty(t, image.ImageURL)
}

func TestClient_UploadImage_Rejections(t *testing.T) {
	client, server := newClient(t)
	ctx := context.Background()

	// Wrong extension.
	_, err := client.UploadImage(ctx, 5, "house.gif", 0, strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	// Image slots full.
	_, err = client.UploadImage(ctx, 5, "house.jpg", constants.MaxImagesPerListing, strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	// Oversized payload.
	big := strings.NewReader(strings.Repeat("a", constants.MaxImageBytes+1))
	_, err = client.UploadImage(ctx, 5, "house.jpg", 0, big)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	assert.Equal(t, 0, server.Requests(), "rejected uploads never reach the server")
}

func TestClient_Delete_InvalidID(t *testing.T) {
	client, server := newClient(t)

	err := client.Delete(context.Background(), -1)

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Equal(t, 0, server.Requests())
}
