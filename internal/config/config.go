package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-map-viewer/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Defaults used optimistically before the first metadata document loads.
	DefaultDomain   string
	DefaultVariable string

	// Outbound fetches.
	MetadataTimeout time.Duration
	StyleURL        string
	StyleTimeout    time.Duration

	// Tile proxy.
	TileCacheSize int
	TileTimeout   time.Duration
	TileArchive   string

	// Bounds tracking sink. Disabled unless brokers are configured.
	KafkaBrokers  []string
	BoundsTopic   string
	BoundsEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	metadataTimeout, err := parseDuration("METADATA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	tileTimeout, err := parseDuration("TILE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	styleTimeout, err := parseDuration("STYLE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	tileCacheSize, err := parseInt("TILE_CACHE_SIZE", 512)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	boundsEnabled := len(brokers) > 0
	if v := os.Getenv("BOUNDS_TRACKING_ENABLED"); v != "" {
		boundsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DefaultDomain:   envOrDefault("DEFAULT_DOMAIN", "dwd_icon_d2"),
		DefaultVariable: envOrDefault("DEFAULT_VARIABLE", "temperature_2m"),

		MetadataTimeout: metadataTimeout,
		StyleURL:        envOrDefault("STYLE_URL", "https://map-tiles.open-meteo.com/styles/bright/style.json"),
		StyleTimeout:    styleTimeout,

		TileCacheSize: tileCacheSize,
		TileTimeout:   tileTimeout,
		TileArchive:   envOrDefault("TILE_ARCHIVE", "https://tiles.openfreemap.org/planet"),

		KafkaBrokers:  brokers,
		BoundsTopic:   envOrDefault("BOUNDS_TOPIC", "viewer-bounds-events"),
		BoundsEnabled: boundsEnabled,
	}

	if _, ok := domain.DomainByID(cfg.DefaultDomain); !ok {
		return nil, fmt.Errorf("DEFAULT_DOMAIN %q is not in the domain catalogue", cfg.DefaultDomain)
	}
	if cfg.DefaultVariable == "" {
		return nil, errors.New("DEFAULT_VARIABLE must not be empty")
	}
	if cfg.TileCacheSize <= 0 {
		return nil, errors.New("TILE_CACHE_SIZE must be positive")
	}
	if cfg.BoundsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("BOUNDS_TRACKING_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
