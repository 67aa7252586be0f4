// Package config resolves process settings from an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// Config holds the reconciler's process settings
type Config struct {
	ConfigFiles    []string
	ConfigDir      string
	PlaybookBinary string
	Role           string
	Timeout        time.Duration
	Workers        int
	StrictBinding  bool
	Listen         string
	Debug          bool
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		PlaybookBinary: constants.DefaultPlaybookBinary,
		Role:           constants.DefaultRoleName,
		Timeout:        constants.DefaultTimeoutSeconds * time.Second,
		Workers:        constants.DefaultWorkers,
		StrictBinding:  true,
		Listen:         constants.DefaultListen,
	}
}

// Load reads envFile if it exists, then the NETANS_* environment variables.
// An empty envFile means ".env" in the working directory.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Default()
	var errs []error

	cfg.ConfigFiles = utils.SplitList(os.Getenv(constants.EnvConfigFiles))
	cfg.ConfigDir = getEnv(constants.EnvConfigDir, "")
	cfg.PlaybookBinary = getEnv(constants.EnvPlaybookBinary, cfg.PlaybookBinary)
	cfg.Role = getEnv(constants.EnvRole, cfg.Role)
	cfg.Listen = getEnv(constants.EnvListen, cfg.Listen)

	if v := getEnv(constants.EnvTimeout, ""); v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", constants.EnvTimeout, err))
		}
		cfg.Timeout = d
	}

	if v := getEnv(constants.EnvWorkers, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid integer %q", constants.EnvWorkers, v))
		}
		cfg.Workers = n
	}

	if v := getEnv(constants.EnvStrictBinding, ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", constants.EnvStrictBinding, v))
		}
		cfg.StrictBinding = b
	}

	if v := getEnv(constants.EnvDebug, ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", constants.EnvDebug, v))
		}
		cfg.Debug = b
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for values the reconciler cannot run with
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if strings.TrimSpace(c.PlaybookBinary) == "" {
		return fmt.Errorf("ansible-playbook binary is not set")
	}
	return nil
}

// InventorySources reports whether any inventory file or directory is configured
func (c Config) InventorySources() bool {
	return len(c.ConfigFiles) > 0 || c.ConfigDir != ""
}

// ParseTimeout accepts a Go duration ("90s", "5m") or a plain number of seconds
func ParseTimeout(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}

// getEnv fetches environment variable or returns fallback
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
