// Package config reads process settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds everything the run sequence needs to open the store.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration
	ShowQueries bool
	LogLevel    logrus.Level
}

// Load reads DB_DRIVER, DB_PATH, DB_BUSY_TIMEOUT, SHOW_QUERIES and LOG_LEVEL.
// Unset variables take their defaults; malformed values are errors.
func Load() (Config, error) {
	cfg := Config{
		Driver:      getenv("DB_DRIVER", "sqlite3"),
		Path:        getenv("DB_PATH", ":memory:"),
		BusyTimeout: 5 * time.Second,
		LogLevel:    logrus.InfoLevel,
	}
	switch cfg.Driver {
	case "sqlite3", "sqlite":
	default:
		return Config{}, errors.Errorf("config: unknown DB_DRIVER %q", cfg.Driver)
	}
	if v := os.Getenv("DB_BUSY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "config: DB_BUSY_TIMEOUT")
		}
		if d < 0 {
			return Config{}, errors.Errorf("config: DB_BUSY_TIMEOUT %s is negative", d)
		}
		cfg.BusyTimeout = d
	}
	if v := os.Getenv("SHOW_QUERIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "config: SHOW_QUERIES")
		}
		cfg.ShowQueries = b
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "config: LOG_LEVEL")
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
