// Command geocode converts between free-text addresses and coordinates via
// Nominatim. An argument that looks like "lat,lon" is reverse-geocoded;
// anything else is treated as an address.
package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/smatkovi/fnb/internal/config"
	"github.com/smatkovi/fnb/internal/geocode"
	"github.com/smatkovi/fnb/internal/models"
	"github.com/smatkovi/fnb/pkg/http/client"
)

// Accepts "48.2, 16.37" and the decimal-comma form "48,2, 16,37".
var coordPattern = regexp.MustCompile(`^(-?\d{1,3}(?:[.,]\d+)?),\s+(-?\d{1,3}(?:[.,]\d+)?)$|^(-?\d{1,3}(?:\.\d+)?),\s*(-?\d{1,3}(?:\.\d+)?)$`)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: geocode '<address OR lat,lon>'")
		os.Exit(1)
	}
	query := strings.TrimSpace(os.Args[1])

	geocoder, err := geocode.NewClient(client.New(client.Options{
		BaseURL:   cfg.NominatimBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if coord, ok := parseCoordinates(query); ok {
		address, err := geocoder.Reverse(ctx, coord)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Could not find an address for these coordinates.")
			os.Exit(1)
		}
		fmt.Printf("Address: %s\n", address)
		return
	}

	coord, err := geocoder.Search(ctx, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not find coordinates for this address.")
		os.Exit(1)
	}
	fmt.Printf("Coordinates: %v, %v\n", coord.Lat, coord.Lon)
}

// parseCoordinates reports whether query looks like a coordinate pair and
// parses it, normalizing decimal commas.
func parseCoordinates(query string) (models.Coordinate, bool) {
	m := coordPattern.FindStringSubmatch(query)
	if m == nil {
		return models.Coordinate{}, false
	}
	latStr, lonStr := m[1], m[2]
	if latStr == "" {
		latStr, lonStr = m[3], m[4]
	}

	lat, err := strconv.ParseFloat(strings.ReplaceAll(latStr, ",", "."), 64)
	if err != nil {
		return models.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.ReplaceAll(lonStr, ",", "."), 64)
	if err != nil {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Lat: lat, Lon: lon}, true
}
