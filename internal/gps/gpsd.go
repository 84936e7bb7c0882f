package gps

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/config"
	"github.com/smatkovi/fnb/internal/fixcache"
)

// GpsdProvider reads fixes from a running gpsd through gpspipe's JSON watch
// stream. Before listening it optionally prepares the receiver: powers the
// GNSS chip on through sysfs, injects assist data when the last injection is
// older than the configured threshold, and (re)starts gpsd on the right
// device. All preparation steps are best-effort; a cold receiver just takes
// longer to fix.
type GpsdProvider struct {
	cfg   config.GPSDeviceConfig
	store *fixcache.Store
}

func NewGpsdProvider(cfg config.GPSDeviceConfig, store *fixcache.Store) *GpsdProvider {
	return &GpsdProvider{cfg: cfg, store: store}
}

func (p *GpsdProvider) Name() string { return "gpsd" }

func (p *GpsdProvider) Acquire(ctx context.Context) (Fix, error) {
	p.prepareDevice(ctx)

	cmd := exec.CommandContext(ctx, p.cfg.GpspipeBinary, "-w")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Fix{}, fmt.Errorf("connecting to %s: %w", p.cfg.GpspipeBinary, err)
	}
	if err := cmd.Start(); err != nil {
		return Fix{}, fmt.Errorf("starting %s: %w", p.cfg.GpspipeBinary, err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		fix, ok := parseTPV(scanner.Text())
		if ok {
			return fix, nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() != nil {
		return Fix{}, fmt.Errorf("waiting for GPS fix: %w", ctx.Err())
	}
	return Fix{}, fmt.Errorf("gpspipe stream ended without a fix")
}

// parseTPV extracts a 2D-or-better fix from one gpsd TPV sentence.
func parseTPV(line string) (Fix, bool) {
	if !strings.Contains(line, `"class":"TPV"`) {
		return Fix{}, false
	}

	var tpv struct {
		Class string   `json:"class"`
		Mode  int      `json:"mode"`
		Lat   *float64 `json:"lat"`
		Lon   *float64 `json:"lon"`
	}
	if err := json.Unmarshal([]byte(line), &tpv); err != nil {
		return Fix{}, false
	}
	if tpv.Class != "TPV" || tpv.Mode < 2 || tpv.Lat == nil || tpv.Lon == nil {
		return Fix{}, false
	}
	return Fix{Lat: *tpv.Lat, Lon: *tpv.Lon, Time: time.Now()}, true
}

func (p *GpsdProvider) prepareDevice(ctx context.Context) {
	if p.cfg.PowerControlPath != "" {
		if err := os.WriteFile(p.cfg.PowerControlPath, []byte("on\n"), 0o644); err != nil {
			log.Warn().Err(err).Msg("GNSS power control failed")
		} else {
			log.Debug().Msg("GNSS powered on")
		}
	}

	if p.cfg.AgpsBinary != "" {
		if p.store.NeedsInjection(p.cfg.AgpsThreshold()) {
			log.Info().Str("binary", p.cfg.AgpsBinary).Msg("Injecting assist data")
			// gpsd holds the device exclusively, so stop it first.
			_ = exec.CommandContext(ctx, "killall", "gpsd").Run()
			injectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
			defer cancel()
			if err := exec.CommandContext(injectCtx, p.cfg.AgpsBinary).Run(); err != nil {
				log.Warn().Err(err).Msg("Assist data injection failed")
			} else if err := p.store.MarkInjected(); err != nil {
				log.Warn().Err(err).Msg("Could not record injection time")
			}
		} else {
			log.Debug().Msg("Assist data injected recently, skipping")
		}
	}

	if p.cfg.GpsdDevice != "" {
		args := []string{p.cfg.GpsdDevice}
		if p.cfg.GpsdSocket != "" {
			args = append(args, "-F", p.cfg.GpsdSocket)
		}
		if err := exec.CommandContext(ctx, "gpsd", args...).Run(); err != nil {
			log.Warn().Err(err).Str("device", p.cfg.GpsdDevice).Msg("Could not start gpsd")
		}
	}
}
