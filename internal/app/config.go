package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime wiring options for building the app. Values come from
// GATHERLY_* environment variables, optionally seeded from a .env file;
// command-line flags override on top.
type Config struct {
	// APIBaseURL is the Gatherly API root, e.g. https://api.gatherly.app.
	APIBaseURL string `envconfig:"API_URL" default:"http://127.0.0.1:8080"`
	// Home is the local state directory, e.g. $HOME/.gatherly.
	Home string `envconfig:"HOME_DIR"`
	// LogLevel is a zerolog level name (trace..panic).
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	// HTTPTimeout bounds each API round-trip.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; a missing one is fine.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process("gatherly", &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Home = filepath.Join(dir, ".gatherly")
	}
	return cfg, nil
}
