package models

import (
	"fmt"
	"math"
)

// coordPrecision is the number of decimal digits a coordinate is rounded to
// before it is used as a spot identity. Five digits is roughly one meter.
const coordPrecision = 1e5

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CoordKey identifies a physical spot: a coordinate rounded to fixed
// precision and stored as integers, so map membership never depends on
// floating-point equality.
type CoordKey struct {
	LatE5 int64
	LonE5 int64
}

// KeyOf rounds c to the dedup precision.
func KeyOf(c Coordinate) CoordKey {
	return CoordKey{
		LatE5: int64(math.Round(c.Lat * coordPrecision)),
		LonE5: int64(math.Round(c.Lon * coordPrecision)),
	}
}

// Coordinate converts the key back to the rounded coordinate it represents.
func (k CoordKey) Coordinate() Coordinate {
	return Coordinate{
		Lat: float64(k.LatE5) / coordPrecision,
		Lon: float64(k.LonE5) / coordPrecision,
	}
}

func (k CoordKey) String() string {
	c := k.Coordinate()
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Station is the canonical docked-station record. Adapters normalize the
// source-specific count fields (num_bikes_available, free_bikes, bikes) into
// Bikes and the coordinate field variants into Lat/Lon before anything else
// sees the record. Pointers mirror upstream optionality: a station may arrive
// without a position.
type Station struct {
	ID    string
	Name  string
	Lat   *float64
	Lon   *float64
	Bikes int
}

// Coordinate returns the station position, reporting whether both components
// are present.
func (s Station) Coordinate() (Coordinate, bool) {
	if s.Lat == nil || s.Lon == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *s.Lat, Lon: *s.Lon}, true
}

// FreeBike is a free-floating bike located by its own reported coordinate.
type FreeBike struct {
	ID  string
	Lat *float64
	Lon *float64
}

// Coordinate returns the bike position, reporting whether both components
// are present.
func (b FreeBike) Coordinate() (Coordinate, bool) {
	if b.Lat == nil || b.Lon == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *b.Lat, Lon: *b.Lon}, true
}

// Spot is a deduplicated pickup location: every station and free bike whose
// rounded coordinate matches contributes to the same Spot.
type Spot struct {
	Coordinate  Coordinate
	Names       []string // insertion-ordered set of station names
	Bikes       int      // sum of contributing station counts
	FreeBikeIDs []string // insertion-ordered set of free bike ids
	DistanceKm  float64  // from the reference point, rounded to 3 decimals
	Direction   string   // 8-point compass sector from the reference point
	Address     string   // optional, attached by the geocoder after ranking
}

// MapURL returns a Google Maps search link for the spot.
func (s Spot) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v",
		s.Coordinate.Lat, s.Coordinate.Lon)
}
