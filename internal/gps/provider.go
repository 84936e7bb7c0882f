// Package gps acquires the reference position from a device, with a
// cached-fix fallback when the device cannot deliver.
package gps

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/fixcache"
)

// ErrPositionUnavailable means the device produced no fix and no cached fix
// exists. Terminal for the run.
var ErrPositionUnavailable = errors.New("no GPS fix and no cached fallback available")

// Fix is a single acquired position.
type Fix struct {
	Lat  float64
	Lon  float64
	Time time.Time
}

// Provider is a source of device fixes.
type Provider interface {
	Name() string
	// Acquire blocks until a fix is available or ctx expires.
	Acquire(ctx context.Context) (Fix, error)
}

// Resolve acquires a fix from the provider, persisting it to the store on
// success. When acquisition fails it falls back to the last cached fix; if
// the cache is empty too, the position is unavailable.
func Resolve(ctx context.Context, provider Provider, store *fixcache.Store) (Fix, error) {
	fix, err := provider.Acquire(ctx)
	if err == nil {
		log.Info().Float64("lat", fix.Lat).Float64("lon", fix.Lon).
			Str("provider", provider.Name()).Msg("GPS fix acquired")
		if saveErr := store.Save(fixcache.Fix{Lat: fix.Lat, Lon: fix.Lon, Time: fix.Time}); saveErr != nil {
			log.Warn().Err(saveErr).Msg("Could not cache GPS fix")
		}
		return fix, nil
	}

	log.Warn().Err(err).Str("provider", provider.Name()).Msg("GPS acquisition failed, trying cached fix")

	cached, ok, loadErr := store.Load()
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("Could not read fix cache")
	}
	if !ok {
		return Fix{}, ErrPositionUnavailable
	}

	log.Info().Float64("lat", cached.Lat).Float64("lon", cached.Lon).
		Time("acquired_at", cached.Time).Msg("Using last known coordinates")
	return Fix{Lat: cached.Lat, Lon: cached.Lon, Time: cached.Time}, nil
}
