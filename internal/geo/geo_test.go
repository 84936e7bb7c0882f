package geo

import (
	"math"
	"testing"

	"github.com/smatkovi/fnb/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	vienna := models.Coordinate{Lat: 48.2082, Lon: 16.3738}
	nearby := models.Coordinate{Lat: 48.2100, Lon: 16.3750}

	t.Run("identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(vienna, vienna))
	})

	t.Run("symmetry", func(t *testing.T) {
		pairs := []struct {
			a, b models.Coordinate
		}{
			{vienna, nearby},
			{models.Coordinate{Lat: 0, Lon: 0}, models.Coordinate{Lat: 1, Lon: 1}},
			{models.Coordinate{Lat: -33.8688, Lon: 151.2093}, models.Coordinate{Lat: 51.5074, Lon: -0.1278}},
		}
		for _, p := range pairs {
			assert.InDelta(t, DistanceKm(p.a, p.b), DistanceKm(p.b, p.a), 1e-12)
		}
	})

	t.Run("known distance", func(t *testing.T) {
		// ~200m north, ~90m east of Vienna center
		assert.InDelta(t, 0.219, DistanceKm(vienna, nearby), 0.005)
	})

	t.Run("antipodal points do not panic", func(t *testing.T) {
		d := DistanceKm(models.Coordinate{Lat: 0, Lon: 0}, models.Coordinate{Lat: 0, Lon: 180})
		// Half the Earth's circumference at R=6371
		assert.InDelta(t, math.Pi*6371, d, 1.0)
	})

	t.Run("missing component is infinitely far", func(t *testing.T) {
		d := DistanceKm(vienna, models.Coordinate{Lat: math.NaN(), Lon: 16.37})
		assert.True(t, math.IsInf(d, 1))
	})
}

func TestBearingCompass(t *testing.T) {
	t.Parallel()

	origin := models.Coordinate{Lat: 0, Lon: 0}

	tests := []struct {
		name string
		to   models.Coordinate
		want string
	}{
		{"due north", models.Coordinate{Lat: 1, Lon: 0}, "N"},
		{"due east", models.Coordinate{Lat: 0, Lon: 1}, "E"},
		{"due south", models.Coordinate{Lat: -1, Lon: 0}, "S"},
		{"due west", models.Coordinate{Lat: 0, Lon: -1}, "W"},
		{"northeast", models.Coordinate{Lat: 1, Lon: 1}, "NE"},
		{"southeast", models.Coordinate{Lat: -1, Lon: 1}, "SE"},
		{"southwest", models.Coordinate{Lat: -1, Lon: -1}, "SW"},
		{"northwest", models.Coordinate{Lat: 1, Lon: -1}, "NW"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BearingCompass(origin, tt.to))
		})
	}

	t.Run("degenerate from==to pins to N", func(t *testing.T) {
		c := models.Coordinate{Lat: 48.2082, Lon: 16.3738}
		assert.Equal(t, "N", BearingCompass(c, c))
	})

	t.Run("always one of the 8 points", func(t *testing.T) {
		valid := map[string]bool{"N": true, "NE": true, "E": true, "SE": true, "S": true, "SW": true, "W": true, "NW": true}
		for lat := -80.0; lat <= 80; lat += 17 {
			for lon := -170.0; lon <= 170; lon += 23 {
				got := BearingCompass(origin, models.Coordinate{Lat: lat, Lon: lon})
				assert.True(t, valid[got], "unexpected direction %q for (%v,%v)", got, lat, lon)
			}
		}
	})
}
