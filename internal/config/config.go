package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultGBFSBaseURL is the WienMobil Rad (Vienna) nextbike GBFS feed.
	DefaultGBFSBaseURL = "https://gbfs.nextbike.net/maps/gbfs/v2/nextbike_wr/en"
	// DefaultCityBikesBaseURL is the CityBik.es aggregator API.
	DefaultCityBikesBaseURL = "https://api.citybik.es"
	// DefaultNominatimBaseURL is the OpenStreetMap geocoding service.
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
)

type Config struct {
	Environment      string
	LogLevel         zerolog.Level
	HTTPTimeout      time.Duration
	GBFSBaseURL      string
	CityBikesBaseURL string
	NominatimBaseURL string
	UserAgent        string
	TopN             int
	GPSTimeout       time.Duration
	CacheDir         string
	ResolveAddresses bool
	DeviceConfigPath string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithTopN allows setting how many spots are reported
func WithTopN(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithGPSTimeout allows setting the device-fix acquisition timeout
func WithGPSTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.GPSTimeout = timeout
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:      "production",
		LogLevel:         zerolog.InfoLevel,
		HTTPTimeout:      10 * time.Second,
		GBFSBaseURL:      DefaultGBFSBaseURL,
		CityBikesBaseURL: DefaultCityBikesBaseURL,
		NominatimBaseURL: DefaultNominatimBaseURL,
		UserAgent:        "fnb/1.0 (+https://github.com/smatkovi/fnb)",
		TopN:             3,
		GPSTimeout:       30 * time.Second,
		CacheDir:         defaultCacheDir(),
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Report output goes to stdout; logs stay on stderr so piping the
	// report works.
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithTopN(getIntEnvOrDefault("FNB_TOP_N", 3)),
		WithGPSTimeout(getDurationEnvOrDefault("FNB_GPS_TIMEOUT", 30*time.Second)),
	)

	cfg.GBFSBaseURL = getEnvOrDefault("FNB_GBFS_URL", cfg.GBFSBaseURL)
	cfg.CityBikesBaseURL = getEnvOrDefault("FNB_CITYBIKES_URL", cfg.CityBikesBaseURL)
	cfg.NominatimBaseURL = getEnvOrDefault("FNB_NOMINATIM_URL", cfg.NominatimBaseURL)
	cfg.UserAgent = getEnvOrDefault("FNB_USER_AGENT", cfg.UserAgent)
	cfg.CacheDir = getEnvOrDefault("FNB_CACHE_DIR", cfg.CacheDir)
	cfg.ResolveAddresses = getBoolEnvOrDefault("FNB_RESOLVE_ADDRESSES", false)
	cfg.DeviceConfigPath = getEnvOrDefault("FNB_DEVICE_CONFIG", "")

	return cfg
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "fnb")
	}
	return os.TempDir()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultValue
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
