package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries everything wired at startup. Rosters are
// configuration, not compiled-in constants, so they are swappable per
// deployment and injectable in tests.
type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// ModelsDir is the model store root; DBPath the sqlite history.
	ModelsDir string
	DBPath    string

	// RefreshRoster is monitored for cached intel; RetrainRoster for
	// warm retrains. They may overlap or differ.
	RefreshRoster []string
	RetrainRoster []string

	// LookbackDays bounds the historical series fetched for training.
	LookbackDays int

	RefreshInterval time.Duration
	RetrainInterval time.Duration
	GlobalTrainAt   string

	CacheTTL time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:          getenvDefault("PORT", "8080"),
		ModelsDir:     getenvDefault("MODELS_DIR", "weather_models"),
		DBPath:        getenvDefault("DB_PATH", "weatherai.db"),
		GlobalTrainAt: getenvDefault("GLOBAL_TRAIN_AT", "00:00"),
		LookbackDays:  getenvInt("HISTORY_DAYS", 7),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RetrainInterval, err = getenvDuration("RETRAIN_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "1h"); err != nil {
		return nil, err
	}

	cfg.RefreshRoster = splitCities(getenvDefault("CITIES", "Warsaw,Berlin,London,Paris,Madrid"))
	cfg.RetrainRoster = splitCities(getenvDefault("RETRAIN_CITIES", strings.Join(cfg.RefreshRoster, ",")))

	return cfg, nil
}

func splitCities(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
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

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
