// Package geo provides the great-circle math behind spot ranking: haversine
// distance and an 8-point compass rendering of the initial bearing.
package geo

import (
	"math"

	"github.com/smatkovi/fnb/internal/models"
)

const earthRadiusKm = 6371.0

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// DistanceKm returns the haversine distance between a and b in kilometers.
// Identical points yield 0 and the function is symmetric in its arguments.
// A NaN component (a record whose optional coordinate was never filled in)
// yields +Inf, so malformed entries always rank last instead of panicking.
func DistanceKm(a, b models.Coordinate) float64 {
	if math.IsNaN(a.Lat) || math.IsNaN(a.Lon) || math.IsNaN(b.Lat) || math.IsNaN(b.Lon) {
		return math.Inf(1)
	}

	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// BearingCompass maps the initial bearing from one point toward another onto
// the nearest of the 8 compass points. Sector boundaries round toward the
// higher-index point. When from == to the bearing is undefined (atan2(0,0));
// it is pinned to "N" so the result never varies by platform.
func BearingCompass(from, to models.Coordinate) string {
	if from == to {
		return compassPoints[0]
	}

	dLon := toRadians(to.Lon - from.Lon)
	y := math.Sin(dLon) * math.Cos(toRadians(to.Lat))
	x := math.Cos(toRadians(from.Lat))*math.Sin(toRadians(to.Lat)) -
		math.Sin(toRadians(from.Lat))*math.Cos(toRadians(to.Lat))*math.Cos(dLon)
	bearing := math.Atan2(y, x) * 180 / math.Pi

	idx := int(math.Round(math.Mod(bearing+360, 360)/45)) % 8
	return compassPoints[idx]
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
