package geo

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371.0

var (
	ErrNoCandidates      = errors.New("no candidate store with an active address")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

type Address struct {
	ID     string
	Lat    float64
	Lng    float64
	Active bool
}

type Store struct {
	ID        string
	Name      string
	Addresses []Address
}

// Match adalah hasil pencarian store terdekat.
type Match struct {
	StoreID    string  `json:"store_id"`
	AddressID  string  `json:"store_address_id"`
	DistanceKm float64 `json:"distance_km"`
}

// Locate picks the fulfillment store whose active address is nearest to the
// delivery point. Pure function: no I/O, deterministic for a fixed input order
// (first minimum encountered wins on ties).
func Locate(lat, lng float64, candidates []Store) (Match, error) {
	if !validLat(lat) || !validLng(lng) {
		return Match{}, ErrInvalidCoordinate
	}

	best := Match{DistanceKm: math.Inf(1)}
	found := false
	for _, st := range candidates {
		for _, addr := range st.Addresses {
			if !addr.Active {
				continue
			}
			d := Haversine(lat, lng, addr.Lat, addr.Lng)
			if d < best.DistanceKm {
				best = Match{StoreID: st.ID, AddressID: addr.ID, DistanceKm: d}
				found = true
			}
		}
	}
	if !found {
		return Match{}, ErrNoCandidates
	}
	return best, nil
}

// Haversine menghitung jarak great-circle (km) antara dua titik lat/lng.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func validLat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -90 && v <= 90
}

func validLng(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -180 && v <= 180
}
