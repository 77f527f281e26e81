// Copyright (c) 2026 Lehae. All rights reserved.

package listings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://api.lehae.example"

func TestDecode_FullRecord(t *testing.T) {
	raw := `{
		"id": 7,
		"area": "Khubetsoana",
		"district": "Maseru",
		"rental_amount": "2500.00",
		"deposit": "1000.50",
		"viewing_fee": 50,
		"status": "vacant",
		"description": "Two bedroom flat",
		"landlord_username": "thabo",
		"is_favorited": true,
		"is_approved": true,
		"images": [
			{"id": 1, "image_url": "https://cdn.example/a.jpg", "uploaded_at": "2026-01-05"},
			{"id": 2, "image_url": ""}
		]
	}`

	property, err := Decode([]byte(raw), testBaseURL)
	require.NoError(t, err)

	assert.Equal(t, 7, property.ID)
	assert.Equal(t, "Khubetsoana", property.Area)
	assert.Equal(t, "Maseru", property.District)
	assert.Equal(t, 2500.0, property.RentalAmount)
	assert.Equal(t, 1000.5, property.Deposit)
	assert.Equal(t, 50.0, property.ViewingFee)
	assert.Equal(t, StatusVacant, property.Status)
	assert.True(t, property.IsFavorited)
	assert.True(t, property.IsApproved)

	require.Len(t, property.Images, 2)
	assert.Equal(t, "https://cdn.example/a.jpg", property.Images[0].ImageURL)
	// An entry without a URL falls back to the server's default media file.
	assert.Equal(t, testBaseURL+"/media/default.jpg", property.Images[1].ImageURL)
}

func TestDecode_MinimalRecord(t *testing.T) {
	property, err := Decode([]byte(`{"id": 3}`), testBaseURL)
	require.NoError(t, err)

	assert.Equal(t, 3, property.ID)
	assert.Equal(t, "Unknown", property.Area)
	assert.Equal(t, "Unknown", property.District)
	assert.Equal(t, "Unknown", property.LandlordUsername)
	assert.Zero(t, property.RentalAmount)
	assert.Zero(t, property.Deposit)
	assert.Equal(t, StatusUnknown, property.Status)
	assert.False(t, property.IsFavorited)

	require.Len(t, property.Images, 1)
	assert.Equal(t, "/placeholder-property.jpg", property.Images[0].ImageURL)
}

func TestDecode_StatusValues(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"vacant", StatusVacant},
		{"occupied", StatusOccupied},
		{"", StatusUnknown},
		{"pending", StatusUnknown},
		{"VACANT", StatusUnknown},
	}

	for _, tc := range tests {
		property, err := Decode([]byte(`{"id":1,"status":"`+tc.raw+`"}`), testBaseURL)
		require.NoError(t, err)
		assert.Equal(t, tc.want, property.Status, "status %q", tc.raw)
	}
}

func TestDecode_LegacyImageURL(t *testing.T) {
	raw := `{"id": 4, "image_url": "https://cdn.example/legacy.png"}`

	property, err := Decode([]byte(raw), testBaseURL)
	require.NoError(t, err)

	require.Len(t, property.Images, 1)
	assert.Equal(t, "https://cdn.example/legacy.png", property.Images[0].ImageURL)
}

func TestDecode_ImagesArrayOutranksLegacyField(t *testing.T) {
	raw := `{
		"id": 4,
		"image_url": "https://cdn.example/legacy.png",
		"images": [{"id": 9, "image_url": "https://cdn.example/real.jpg"}]
	}`

	property, err := Decode([]byte(raw), testBaseURL)
	require.NoError(t, err)

	require.Len(t, property.Images, 1)
	assert.Equal(t, "https://cdn.example/real.jpg", property.Images[0].ImageURL)
}

func TestDecode_NumericStrings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain number", `1500`, 1500},
		{"decimal string", `"1500.75"`, 1500.75},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			property, err := Decode([]byte(`{"id":1,"rental_amount":`+tc.raw+`}`), testBaseURL)
			require.NoError(t, err)
			assert.Equal(t, tc.want, property.RentalAmount)
		})
	}
}

// Normalization is idempotent: running a canonical record back through the
// decoder changes nothing.
func TestDecode_Idempotent(t *testing.T) {
	first, err := Decode([]byte(`{"id": 3, "district": "Leribe", "rental_amount": "900"}`), testBaseURL)
	require.NoError(t, err)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := Decode(encoded, testBaseURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`not json`), testBaseURL)
	assert.Error(t, err)
}

func TestFilters_Query(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{"empty", Filters{}, ""},
		{"status all omitted", Filters{Status: "all"}, ""},
		{"status vacant kept", Filters{Status: "vacant"}, "status=vacant"},
		{
			"full set",
			Filters{District: "Maseru", MinAmount: 500, MaxAmount: 3000, Status: "vacant", Limit: 10},
			"district=Maseru&limit=10&max_amount=3000&min_amount=500&status=vacant",
		},
		{"landlord self", Filters{Landlord: LandlordSelf}, "landlord=self"},
		{"id", Filters{ID: 12}, "id=12"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filters.query().Encode())
		})
	}
}

func TestValidImageName(t *testing.T) {
	assert.True(t, validImageName("house.jpg"))
	assert.True(t, validImageName("house.JPEG"))
	assert.True(t, validImageName("house.png"))
	assert.False(t, validImageName("house.gif"))
	assert.False(t, validImageName("house"))
	assert.False(t, validImageName("house.pdf"))
}
