package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigmart/go-order-fulfillment.git/internal/geo"
)

func TestHaversineKnownDistances(t *testing.T) {
	// 1 derajat longitude di equator ~ 111.19 km (R=6371)
	assert.InDelta(t, 111.19, geo.Haversine(0, 0, 0, 1), 0.05)
	// titik identik -> 0, tetap valid
	assert.Equal(t, 0.0, geo.Haversine(-6.2, 106.8, -6.2, 106.8))
}

func TestLocatePicksNearestActiveAddress(t *testing.T) {
	a := geo.Store{ID: "store-a", Name: "Sigmart Tebet", Addresses: []geo.Address{
		{ID: "addr-a1", Lat: -6.2, Lng: 106.8, Active: true},
	}}
	b := geo.Store{ID: "store-b", Name: "Sigmart Bekasi", Addresses: []geo.Address{
		{ID: "addr-b1", Lat: -6.3, Lng: 107.0, Active: false},
	}}

	m, err := geo.Locate(-6.21, 106.81, []geo.Store{a, b})
	require.NoError(t, err)
	assert.Equal(t, "store-a", m.StoreID)
	assert.Equal(t, "addr-a1", m.AddressID)
	assert.InDelta(t, 1.57, m.DistanceKm, 0.05)
}

func TestLocateScansEveryActiveAddress(t *testing.T) {
	stores := []geo.Store{
		{ID: "far", Addresses: []geo.Address{
			{ID: "f1", Lat: 10, Lng: 10, Active: true},
			{ID: "f2", Lat: -1, Lng: 1, Active: true},
		}},
		{ID: "near", Addresses: []geo.Address{
			{ID: "n1", Lat: 50, Lng: 50, Active: true},
			{ID: "n2", Lat: 0.1, Lng: 0.1, Active: true},
		}},
	}

	m, err := geo.Locate(0, 0, stores)
	require.NoError(t, err)
	assert.Equal(t, "near", m.StoreID)
	assert.Equal(t, "n2", m.AddressID)

	// hasil harus <= jarak semua alamat aktif lain
	for _, st := range stores {
		for _, addr := range st.Addresses {
			assert.LessOrEqual(t, m.DistanceKm, geo.Haversine(0, 0, addr.Lat, addr.Lng))
		}
	}
}

func TestLocateTieFirstWins(t *testing.T) {
	stores := []geo.Store{
		{ID: "first", Addresses: []geo.Address{{ID: "p1", Lat: 0, Lng: 1, Active: true}}},
		{ID: "second", Addresses: []geo.Address{{ID: "p2", Lat: 0, Lng: -1, Active: true}}},
	}
	m, err := geo.Locate(0, 0, stores)
	require.NoError(t, err)
	assert.Equal(t, "first", m.StoreID)
}

func TestLocateNoCandidates(t *testing.T) {
	_, err := geo.Locate(0, 0, nil)
	assert.ErrorIs(t, err, geo.ErrNoCandidates)

	// kandidat ada tapi semua alamat nonaktif
	inactive := []geo.Store{{ID: "x", Addresses: []geo.Address{{ID: "x1", Lat: 1, Lng: 1, Active: false}}}}
	_, err = geo.Locate(0, 0, inactive)
	assert.ErrorIs(t, err, geo.ErrNoCandidates)
}

func TestLocateInvalidCoordinate(t *testing.T) {
	stores := []geo.Store{{ID: "x", Addresses: []geo.Address{{ID: "x1", Lat: 1, Lng: 1, Active: true}}}}

	cases := []struct {
		name     string
		lat, lng float64
	}{
		{"nan lat", math.NaN(), 0},
		{"inf lng", 0, math.Inf(1)},
		{"lat out of range", 91, 0},
		{"lng out of range", 0, -181},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geo.Locate(tc.lat, tc.lng, stores)
			assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
		})
	}
}
