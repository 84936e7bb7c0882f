package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/app"
	"github.com/smatkovi/fnb/internal/citybikes"
	"github.com/smatkovi/fnb/internal/config"
	"github.com/smatkovi/fnb/internal/fixcache"
	"github.com/smatkovi/fnb/internal/gbfs"
	"github.com/smatkovi/fnb/internal/geocode"
	"github.com/smatkovi/fnb/internal/gps"
	"github.com/smatkovi/fnb/internal/models"
	"github.com/smatkovi/fnb/pkg/http/client"
)

const usage = `Usage: fnb [lat lon [city]] | [city]

Finds the nearest shared-bike pickup spots.

  fnb 48.2082 16.3738        spots near explicit coordinates (default GBFS source)
  fnb 48.2082 16.3738 berlin spots near explicit coordinates in a CityBik.es city
  fnb berlin                 GPS fix for position, CityBik.es city for data
  fnb                        GPS fix for position, default GBFS source
`

func main() {
	// A .env next to the binary is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if err := run(context.Background(), cfg, flag.Args()); err != nil {
		var matchErr *citybikes.CityMatchError
		if errors.As(err, &matchErr) {
			printCityCandidates(matchErr)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	ref, city, err := resolveRequest(ctx, cfg, args)
	if err != nil {
		return err
	}

	gbfsClient := gbfs.NewClient(client.New(client.Options{
		BaseURL:   cfg.GBFSBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}))
	cityBikesClient := citybikes.NewClient(client.New(client.Options{
		BaseURL:   cfg.CityBikesBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}))

	a := &app.App{
		GBFS:      gbfsClient,
		CityBikes: cityBikesClient,
		TopN:      cfg.TopN,
	}

	if cfg.ResolveAddresses {
		geocoder, err := geocode.NewClient(client.New(client.Options{
			BaseURL:   cfg.NominatimBaseURL,
			Timeout:   cfg.HTTPTimeout,
			UserAgent: cfg.UserAgent,
		}))
		if err != nil {
			return err
		}
		a.Geocoder = geocoder
	}

	return a.Run(ctx, os.Stdout, ref, city)
}

// resolveRequest decides the reference position and the data source from the
// positional arguments. Explicit coordinates take precedence; anything less
// falls back to a device fix.
func resolveRequest(ctx context.Context, cfg *config.Config, args []string) (models.Coordinate, string, error) {
	switch len(args) {
	case 0:
		ref, err := deviceFix(ctx, cfg)
		return ref, "", err
	case 1:
		ref, err := deviceFix(ctx, cfg)
		return ref, args[0], err
	case 2, 3:
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return models.Coordinate{}, "", fmt.Errorf("invalid latitude %q: %w", args[0], err)
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return models.Coordinate{}, "", fmt.Errorf("invalid longitude %q: %w", args[1], err)
		}
		city := ""
		if len(args) == 3 {
			city = args[2]
		}
		return models.Coordinate{Lat: lat, Lon: lon}, city, nil
	default:
		return models.Coordinate{}, "", fmt.Errorf("too many arguments")
	}
}

func deviceFix(ctx context.Context, cfg *config.Config) (models.Coordinate, error) {
	deviceCfg, err := config.LoadDeviceConfig(cfg.DeviceConfigPath)
	if err != nil {
		return models.Coordinate{}, err
	}

	store := fixcache.NewStore(cfg.CacheDir)

	var provider gps.Provider
	switch deviceCfg.GPS.Mode {
	case "nmea":
		provider = gps.NewNMEAProvider(deviceCfg.GPS.PortPath, deviceCfg.GPS.BaudRate)
	default:
		provider = gps.NewGpsdProvider(deviceCfg.GPS, store)
	}

	log.Info().Str("provider", provider.Name()).Dur("timeout", cfg.GPSTimeout).Msg("Waiting for GPS fix")

	fixCtx, cancel := context.WithTimeout(ctx, cfg.GPSTimeout)
	defer cancel()

	fix, err := gps.Resolve(fixCtx, provider, store)
	if err != nil {
		return models.Coordinate{}, err
	}
	return models.Coordinate{Lat: fix.Lat, Lon: fix.Lon}, nil
}

func printCityCandidates(err *citybikes.CityMatchError) {
	if err.Ambiguous {
		fmt.Fprintf(os.Stderr, "Multiple matches for %q:\n", err.Query)
	} else {
		fmt.Fprintf(os.Stderr, "No matches found for %q. Try one of these:\n", err.Query)
	}
	for _, c := range err.Candidates {
		fmt.Fprintf(os.Stderr, "- %s\n", c)
	}
}
