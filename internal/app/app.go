// Package app wires position, data source, aggregation, and report output
// into one run.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/citybikes"
	"github.com/smatkovi/fnb/internal/models"
	"github.com/smatkovi/fnb/internal/spots"
)

// BikeSource produces the raw records for one bike-share system.
type BikeSource interface {
	FetchAll(ctx context.Context) ([]models.FreeBike, []models.Station, error)
}

// CitySource resolves a city to a network and fetches its stations.
type CitySource interface {
	ResolveNetwork(ctx context.Context, query string) (citybikes.Network, error)
	FetchStations(ctx context.Context, networkID string) ([]models.Station, error)
}

// Geocoder attaches street addresses to spots.
type Geocoder interface {
	Reverse(ctx context.Context, coord models.Coordinate) (string, error)
}

type App struct {
	GBFS      BikeSource
	CityBikes CitySource
	Geocoder  Geocoder // nil disables address resolution
	TopN      int
}

// Run locates the nearest spots to ref and writes the report to w. An empty
// city selects the default GBFS system; otherwise the city is resolved
// against the CityBik.es directory. An empty result is a normal outcome.
func (a *App) Run(ctx context.Context, w io.Writer, ref models.Coordinate, city string) error {
	var (
		bikes    []models.FreeBike
		stations []models.Station
		label    string
		err      error
	)

	if city == "" {
		label = "Vienna (WienMobil Rad)"
		log.Info().Msg("Using default GBFS source")
		bikes, stations, err = a.GBFS.FetchAll(ctx)
		if err != nil {
			return err
		}
	} else {
		network, resolveErr := a.CityBikes.ResolveNetwork(ctx, city)
		if resolveErr != nil {
			return resolveErr
		}
		label = network.City
		stations, err = a.CityBikes.FetchStations(ctx, network.ID)
		if err != nil {
			return err
		}
	}

	nearest := spots.Aggregate(ref, bikes, stations, a.TopN)

	if len(nearest) == 0 {
		fmt.Fprintln(w, "No bikes found nearby.")
		return nil
	}

	if a.Geocoder != nil {
		for i := range nearest {
			addr, err := a.Geocoder.Reverse(ctx, nearest[i].Coordinate)
			if err != nil {
				log.Warn().Err(err).Msg("Address lookup failed")
				continue
			}
			nearest[i].Address = addr
		}
	}

	renderReport(w, ref, label, nearest)
	return nil
}

func renderReport(w io.Writer, ref models.Coordinate, label string, nearest []models.Spot) {
	fmt.Fprintf(w, "\nNearest %d bike spots to (%v, %v) in %s:\n\n",
		len(nearest), ref.Lat, ref.Lon, label)

	for _, spot := range nearest {
		fmt.Fprintf(w, "- %s\n", spotTitle(spot))
		fmt.Fprintf(w, "  Location: (%v, %v)\n", spot.Coordinate.Lat, spot.Coordinate.Lon)
		if spot.Address != "" {
			fmt.Fprintf(w, "  Address: %s\n", spot.Address)
		}
		fmt.Fprintf(w, "  Distance: %v km\n", spot.DistanceKm)
		fmt.Fprintf(w, "  Bikes available: %d\n", spot.Bikes)
		if len(spot.FreeBikeIDs) > 0 {
			fmt.Fprintf(w, "  Free bikes: %s\n", freeBikeList(spot.FreeBikeIDs))
		}
		fmt.Fprintf(w, "  Direction: %s\n", spot.Direction)
		fmt.Fprintf(w, "  Map: %s\n\n", spot.MapURL())
	}
}

func spotTitle(spot models.Spot) string {
	if len(spot.Names) == 0 {
		return "Free-floating bikes"
	}
	return strings.Join(spot.Names, ", ")
}

// freeBikeList shows at most three ids and summarizes the rest.
func freeBikeList(ids []string) string {
	if len(ids) <= 3 {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(ids[:3], ", "), len(ids)-3)
}
