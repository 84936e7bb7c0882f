// Package spots merges heterogeneous station and free-bike records into
// deduplicated pickup spots ranked by distance from a reference point.
package spots

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/geo"
	"github.com/smatkovi/fnb/internal/models"
)

// DefaultTopN is the number of spots reported when the caller does not ask
// for a specific count.
const DefaultTopN = 3

// Aggregate merges free bikes and stations into spots keyed by rounded
// coordinate, ranks them by distance from ref, and returns the nearest topN.
//
// Free bikes are keyed first, then stations, preserving each list's order;
// distance ties keep that insertion order. Stations with no available bikes
// are filtered before they can claim a key, so an empty station never wins a
// tie-break slot. Records missing a coordinate component are skipped: that is
// incomplete upstream data, not an error. A free bike and a station sharing a
// rounded coordinate merge into one spot.
func Aggregate(ref models.Coordinate, bikes []models.FreeBike, stations []models.Station, topN int) []models.Spot {
	if topN <= 0 {
		topN = DefaultTopN
	}

	byKey := make(map[models.CoordKey]*models.Spot)
	var order []models.CoordKey
	skipped := 0

	entry := func(key models.CoordKey) *models.Spot {
		if s, ok := byKey[key]; ok {
			return s
		}
		s := &models.Spot{Coordinate: key.Coordinate()}
		byKey[key] = s
		order = append(order, key)
		return s
	}

	for _, b := range bikes {
		c, ok := b.Coordinate()
		if !ok {
			skipped++
			continue
		}
		s := entry(models.KeyOf(c))
		if !contains(s.FreeBikeIDs, b.ID) {
			s.FreeBikeIDs = append(s.FreeBikeIDs, b.ID)
		}
	}

	for _, st := range stations {
		if st.Bikes <= 0 {
			continue
		}
		c, ok := st.Coordinate()
		if !ok {
			skipped++
			continue
		}
		s := entry(models.KeyOf(c))
		s.Bikes += st.Bikes
		if st.Name != "" && !contains(s.Names, st.Name) {
			s.Names = append(s.Names, st.Name)
		}
	}

	if skipped > 0 {
		log.Debug().Int("count", skipped).Msg("Skipped records without coordinates")
	}

	result := make([]models.Spot, 0, len(order))
	for _, key := range order {
		s := byKey[key]
		s.DistanceKm = roundKm(geo.DistanceKm(ref, s.Coordinate))
		s.Direction = geo.BearingCompass(ref, s.Coordinate)
		result = append(result, *s)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})

	if len(result) > topN {
		result = result[:topN]
	}
	return result
}

func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
