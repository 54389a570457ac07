package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/amsilva/stationview/internal/common"
)

type AppConfig struct {
	// Remote document store.
	DatabaseURL string
	AuthToken   string

	// Optional Google API key for resolving station addresses.
	GeocoderAPIKey string

	// StationAllowlist restricts the catalog to these station ids when
	// non-empty.
	StationAllowlist []string

	// Outbound HTTP behaviour.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the live cache is refreshed.
	RefreshInterval time.Duration

	// Live cache retention.
	CacheMaxHistory int           // max number of readings per station (0 = unlimited)
	CacheMaxAge     time.Duration // max age of readings (0 = unlimited)

	// History fetch bounds and default smoothing window.
	FetchLimitDefault int
	FetchLimitMax     int
	MovingAvgWindow   int

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("FIREBASE_DB_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("FIREBASE_DB_URL is required")
	}
	cfg.AuthToken = os.Getenv("FIREBASE_AUTH_TOKEN")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.StationAllowlist = common.SplitTrim(os.Getenv("STATION_ALLOWLIST"), ",")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Refresh interval: default 1 minute, matching typical station
	// reporting cadence.
	intervalStr := getenvDefault("REFRESH_INTERVAL", "1m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	// Live cache retention.
	cfg.CacheMaxHistory = getenvInt("CACHE_MAX_HISTORY", 1440) // roughly 24h at 1-minute refreshes

	maxAgeStr := getenvDefault("CACHE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAX_AGE: %w", err)
	}
	cfg.CacheMaxAge = maxAge

	cfg.FetchLimitDefault = getenvInt("FETCH_LIMIT_DEFAULT", 30)
	cfg.FetchLimitMax = getenvInt("FETCH_LIMIT_MAX", 500)
	cfg.MovingAvgWindow = getenvInt("MOVING_AVG_WINDOW", 5)
	if cfg.FetchLimitDefault < 1 || cfg.FetchLimitMax < cfg.FetchLimitDefault {
		return nil, fmt.Errorf("invalid fetch limits: default=%d max=%d", cfg.FetchLimitDefault, cfg.FetchLimitMax)
	}
	if cfg.MovingAvgWindow < 1 {
		return nil, fmt.Errorf("invalid MOVING_AVG_WINDOW: %d", cfg.MovingAvgWindow)
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
