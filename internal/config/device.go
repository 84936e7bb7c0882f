package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DeviceConfig describes how to reach the GPS hardware on this machine.
// It is loaded from an optional YAML profile (FNB_DEVICE_CONFIG) because the
// paths differ wildly between a Droid 4 running Maemo Leste and a desktop
// with a USB GPS puck.
type DeviceConfig struct {
	GPS GPSDeviceConfig `yaml:"gps"`
}

type GPSDeviceConfig struct {
	// Mode selects the provider: "gpsd" (default) or "nmea".
	Mode string `yaml:"mode"`

	// gpsd mode
	GpsdDevice       string `yaml:"gpsd_device"`        // e.g. /dev/gnss0
	GpsdSocket       string `yaml:"gpsd_socket"`        // e.g. /var/run/gpsd.sock
	GpspipeBinary    string `yaml:"gpspipe_binary"`     // defaults to "gpspipe"
	PowerControlPath string `yaml:"power_control_path"` // sysfs GNSS power switch, optional
	AgpsBinary       string `yaml:"agps_binary"`        // assist-data injector, optional
	AgpsThresholdMin int    `yaml:"agps_threshold_minutes"`

	// nmea mode
	PortPath string `yaml:"port_path"` // e.g. /dev/ttyACM0
	BaudRate int    `yaml:"baud_rate"`
}

// DefaultDeviceConfig returns the profile used when no file is given:
// plain gpsd with no device preparation.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		GPS: GPSDeviceConfig{
			Mode:             "gpsd",
			GpspipeBinary:    "gpspipe",
			AgpsThresholdMin: 30,
		},
	}
}

// LoadDeviceConfig reads a YAML device profile, filling in defaults for
// omitted fields. An empty path returns the default profile.
func LoadDeviceConfig(path string) (DeviceConfig, error) {
	cfg := DefaultDeviceConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading device config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing device config %s: %w", path, err)
	}

	if cfg.GPS.Mode == "" {
		cfg.GPS.Mode = "gpsd"
	}
	if cfg.GPS.GpspipeBinary == "" {
		cfg.GPS.GpspipeBinary = "gpspipe"
	}
	if cfg.GPS.AgpsThresholdMin <= 0 {
		cfg.GPS.AgpsThresholdMin = 30
	}
	if cfg.GPS.BaudRate == 0 {
		cfg.GPS.BaudRate = 9600
	}
	return cfg, nil
}

// AgpsThreshold returns the assist-data refresh interval.
func (g GPSDeviceConfig) AgpsThreshold() time.Duration {
	return time.Duration(g.AgpsThresholdMin) * time.Minute
}
