package spots

import (
	"testing"

	"github.com/smatkovi/fnb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

var vienna = models.Coordinate{Lat: 48.2082, Lon: 16.3738}

func TestAggregateMergesStationAndFreeBike(t *testing.T) {
	// One station and one free bike at the same rounded coordinate must
	// collapse into a single spot.
	stations := []models.Station{
		{ID: "s1", Name: "A", Lat: ptr(48.2100), Lon: ptr(16.3750), Bikes: 5},
	}
	bikes := []models.FreeBike{
		{ID: "bike-1", Lat: ptr(48.2100), Lon: ptr(16.3750)},
	}

	got := Aggregate(vienna, bikes, stations, 3)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"A"}, got[0].Names)
	assert.Equal(t, 5, got[0].Bikes)
	assert.Equal(t, []string{"bike-1"}, got[0].FreeBikeIDs)
	assert.Greater(t, got[0].DistanceKm, 0.0)
	assert.NotEmpty(t, got[0].Direction)
}

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(vienna, nil, nil, 3)
	assert.Empty(t, got)
}

func TestAggregateTruncatesAndSorts(t *testing.T) {
	stations := []models.Station{
		{ID: "far", Name: "Far", Lat: ptr(48.30), Lon: ptr(16.50), Bikes: 1},
		{ID: "near", Name: "Near", Lat: ptr(48.2083), Lon: ptr(16.3739), Bikes: 1},
		{ID: "mid", Name: "Mid", Lat: ptr(48.2200), Lon: ptr(16.3900), Bikes: 1},
		{ID: "farther", Name: "Farther", Lat: ptr(48.40), Lon: ptr(16.60), Bikes: 1},
	}

	got := Aggregate(vienna, nil, stations, 3)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Near"}, got[0].Names)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].DistanceKm, got[i-1].DistanceKm)
	}
}

func TestAggregateDefaultTopN(t *testing.T) {
	var stations []models.Station
	for i := 0; i < 10; i++ {
		lat := 48.21 + float64(i)*0.001
		stations = append(stations, models.Station{
			Name: "S", Lat: ptr(lat), Lon: ptr(16.37), Bikes: 1,
		})
	}

	got := Aggregate(vienna, nil, stations, 0)
	assert.Len(t, got, DefaultTopN)
}

func TestAggregateSkipsZeroCountStations(t *testing.T) {
	stations := []models.Station{
		{ID: "empty", Name: "Empty", Lat: ptr(48.2083), Lon: ptr(16.3739), Bikes: 0},
		{ID: "stocked", Name: "Stocked", Lat: ptr(48.2200), Lon: ptr(16.3900), Bikes: 2},
	}

	got := Aggregate(vienna, nil, stations, 3)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"Stocked"}, got[0].Names)
}

func TestAggregateZeroCountStationNeverClaimsKey(t *testing.T) {
	// An empty station sharing a coordinate with a free bike must not
	// contribute its name or count, but the bike still makes the spot.
	stations := []models.Station{
		{ID: "empty", Name: "Empty", Lat: ptr(48.2100), Lon: ptr(16.3750), Bikes: 0},
	}
	bikes := []models.FreeBike{
		{ID: "bike-1", Lat: ptr(48.2100), Lon: ptr(16.3750)},
	}

	got := Aggregate(vienna, bikes, stations, 3)

	require.Len(t, got, 1)
	assert.Empty(t, got[0].Names)
	assert.Equal(t, 0, got[0].Bikes)
	assert.Equal(t, []string{"bike-1"}, got[0].FreeBikeIDs)
}

func TestAggregateMergesStationsSharingCoordinate(t *testing.T) {
	stations := []models.Station{
		{ID: "s1", Name: "North Gate", Lat: ptr(48.2100), Lon: ptr(16.3750), Bikes: 2},
		{ID: "s2", Name: "South Gate", Lat: ptr(48.2100), Lon: ptr(16.3750), Bikes: 3},
	}

	got := Aggregate(vienna, nil, stations, 3)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"North Gate", "South Gate"}, got[0].Names)
	assert.Equal(t, 5, got[0].Bikes)
}

func TestAggregateSkipsRecordsWithoutCoordinates(t *testing.T) {
	stations := []models.Station{
		{ID: "ok", Name: "OK", Lat: ptr(48.2100), Lon: ptr(16.3750), Bikes: 1},
		{ID: "no-lon", Name: "Broken", Lat: ptr(48.2200), Bikes: 4},
	}
	bikes := []models.FreeBike{
		{ID: "headless"},
		{ID: "fine", Lat: ptr(48.2090), Lon: ptr(16.3740)},
	}

	got := Aggregate(vienna, bikes, stations, 5)

	require.Len(t, got, 2)
	for _, s := range got {
		assert.NotContains(t, s.Names, "Broken")
		assert.NotContains(t, s.FreeBikeIDs, "headless")
	}
}

func TestAggregateFreeBikeCountPerCoordinate(t *testing.T) {
	bikes := []models.FreeBike{
		{ID: "b1", Lat: ptr(48.2100), Lon: ptr(16.3750)},
		{ID: "b2", Lat: ptr(48.2100), Lon: ptr(16.3750)},
		{ID: "b1", Lat: ptr(48.2100), Lon: ptr(16.3750)}, // duplicate feed entry
		{ID: "b3", Lat: ptr(48.2090), Lon: ptr(16.3740)},
	}

	got := Aggregate(vienna, bikes, nil, 5)

	require.Len(t, got, 2)
	total := 0
	for _, s := range got {
		total += len(s.FreeBikeIDs)
	}
	assert.Equal(t, 3, total)
}

func TestAggregateTieBreakKeepsInsertionOrder(t *testing.T) {
	// A free bike and a station at mirrored offsets are equidistant; the
	// bike was keyed first so it must stay first.
	bikes := []models.FreeBike{
		{ID: "b1", Lat: ptr(48.2182), Lon: ptr(16.3738)},
	}
	stations := []models.Station{
		{ID: "s1", Name: "Mirror", Lat: ptr(48.1982), Lon: ptr(16.3738), Bikes: 1},
	}

	got := Aggregate(vienna, bikes, stations, 3)

	require.Len(t, got, 2)
	assert.Equal(t, got[0].DistanceKm, got[1].DistanceKm)
	assert.Equal(t, []string{"b1"}, got[0].FreeBikeIDs)
	assert.Equal(t, []string{"Mirror"}, got[1].Names)
}

func TestAggregateDistanceRounding(t *testing.T) {
	stations := []models.Station{
		{ID: "s1", Name: "A", Lat: ptr(48.2100), Lon: ptr(16.3750), Bikes: 1},
	}

	got := Aggregate(vienna, nil, stations, 1)

	require.Len(t, got, 1)
	// True distance is 0.21901... km; reported with 3-decimal rounding
	assert.Equal(t, 0.219, got[0].DistanceKm)
}
