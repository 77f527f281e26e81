// Copyright (c) 2026 Lehae. All rights reserved.

package favorites_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehae/lehae-go/internal/apitest"
	"github.com/lehae/lehae-go/internal/favorites"
	"github.com/lehae/lehae-go/internal/listings"
	"github.com/lehae/lehae-go/internal/platform/apperr"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/tokenstore"
	"github.com/lehae/lehae-go/internal/transport"
)

func newClient(t *testing.T) (*favorites.Client, *apitest.Server) {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), constants.KeyAccessToken, "T1"))
	server.GrantAccess("T1")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := transport.New(transport.Options{BaseURL: server.URL, Store: store, Logger: logger})
	listingsClient := listings.NewClient(api, logger)

	return favorites.NewClient(api, listingsClient, logger), server
}

func TestClient_List_DetailShape(t *testing.T) {
	client, server := newClient(t)

	server.FavoritesJSON = `[
		{"id": 1, "property_detail": {"id": 42, "district": "Maseru", "rental_amount": "1500.00"}},
		{"id": 2, "property_detail": {"id": 43, "status": "occupied"}},
		{"id": 3, "property_detail": {"district": "missing id"}},
		{"id": 4}
	]`

	properties, err := client.List(context.Background())
	require.NoError(t, err)

	// Malformed entries are dropped, valid ones survive in order.
	require.Len(t, properties, 2)
	assert.Equal(t, 42, properties[0].ID)
	assert.Equal(t, "Maseru", properties[0].District)
	assert.Equal(t, 1500.0, properties[0].RentalAmount)
	assert.Equal(t, 43, properties[1].ID)

	for _, p := range properties {
		assert.True(t, p.IsFavorited)
		assert.NotEmpty(t, p.Images)
	}
}

func TestClient_List_IDShape(t *testing.T) {
	client, server := newClient(t)

	server.FavoritesJSON = `[
		{"id": 1, "property": 10},
		{"id": 2, "property": 11},
		{"id": 3, "property": 12}
	]`
	server.PropertiesByID[10] = `[{"id": 10, "district": "Maseru"}]`
	server.PropertiesByID[11] = `[{"id": 11, "district": "Leribe"}]`
	server.PropertiesByID[12] = `[{"id": 12, "district": "Berea"}]`

	properties, err := client.List(context.Background())
	require.NoError(t, err)

	// Each ID is hydrated exactly once and input order is kept.
	require.Len(t, properties, 3)
	assert.Equal(t, []int{10, 11, 12}, []int{properties[0].ID, properties[1].ID, properties[2].ID})
	for _, id := range []int{10, 11, 12} {
		assert.Equal(t, 1, server.IDListCalls(id), "property %d", id)
	}
	for _, p := range properties {
		assert.True(t, p.IsFavorited)
	}
}

func TestClient_List_IDShape_PartialFailure(t *testing.T) {
	client, server := newClient(t)

	server.FavoritesJSON = `[
		{"id": 1, "property": 10},
		{"id": 2, "property": 11},
		{"id": 3, "property": 12}
	]`
	server.PropertiesByID[10] = `[{"id": 10}]`
	server.PropertiesByID[12] = `[{"id": 12}]`
	server.FailPropertyIDs[11] = true

	properties, err := client.List(context.Background())
	require.NoError(t, err)

	// The failing hydration is dropped; the others keep their order.
	require.Len(t, properties, 2)
	assert.Equal(t, 10, properties[0].ID)
	assert.Equal(t, 12, properties[1].ID)
}

func TestClient_List_EmptyAndMalformed(t *testing.T) {
	client, server := newClient(t)
	ctx := context.Background()

	properties, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, properties)

	server.FavoritesJSON = `{"detail": "throttled"}`
	properties, err = client.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, properties)
	assert.Empty(t, properties)
}

func TestClient_Add(t *testing.T) {
	client, server := newClient(t)

	server.FavoriteAdd = `{"id": 1, "property_detail": {"id": 42, "district": "Maseru"}}`

	property, err := client.Add(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, property.ID)
	assert.Equal(t, "Maseru", property.District)
	assert.True(t, property.IsFavorited)
}

func TestClient_Add_MinimalResponse(t *testing.T) {
	client, _ := newClient(t)

	property, err := client.Add(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, property.ID)
	assert.True(t, property.IsFavorited)
}

func TestClient_Add_AlreadyFavorited(t *testing.T) {
	client, server := newClient(t)

	server.FavoriteAdd = `{"message": "Already favorited"}`

	_, err := client.Add(context.Background(), 42)
	assert.ErrorIs(t, err, favorites.ErrAlreadyFavorited)
}

func TestClient_AddRemove_InvalidID(t *testing.T) {
	client, server := newClient(t)
	ctx := context.Background()

	_, err := client.Add(ctx, 0)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	err = client.Remove(ctx, -3)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	assert.Equal(t, 0, server.Requests(), "invalid IDs must produce zero network calls")
}

func TestClient_Remove(t *testing.T) {
	client, _ := newClient(t)

	assert.NoError(t, client.Remove(context.Background(), 42))
}
