package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aayushbajaj/step-telemetry/internal/pedometer"
	"github.com/aayushbajaj/step-telemetry/internal/storage"
)

// Config holds the user-adjustable settings. Precedence, lowest first:
// defaults, config file, environment (STEPTEL_*), command-line flags.
type Config struct {
	DataFile          string        `yaml:"data_file" env:"STEPTEL_DATA_FILE"`
	Backend           string        `yaml:"backend" env:"STEPTEL_BACKEND"`
	RefreshInterval   time.Duration `yaml:"refresh_interval" env:"STEPTEL_REFRESH_INTERVAL"`
	PollInterval      time.Duration `yaml:"poll_interval" env:"STEPTEL_POLL_INTERVAL"`
	MovementThreshold float64       `yaml:"movement_threshold" env:"STEPTEL_MOVEMENT_THRESHOLD"`
	StepThreshold     int           `yaml:"step_threshold" env:"STEPTEL_STEP_THRESHOLD"`
	Theme             string        `yaml:"theme" env:"STEPTEL_THEME"`
	LogLevel          string        `yaml:"log_level" env:"STEPTEL_LOG_LEVEL"`
	LogDir            string        `yaml:"log_dir" env:"STEPTEL_LOG_DIR"`

	// Source is the config file that was read, or "<defaults>".
	Source string `yaml:"-"`
}

// Default returns the built-in configuration. DataFile is left empty and
// resolved by LedgerPath.
func Default() Config {
	return Config{
		Backend:           storage.BackendJSON,
		RefreshInterval:   100 * time.Millisecond,
		PollInterval:      50 * time.Millisecond,
		MovementThreshold: pedometer.DefaultMovementThreshold,
		StepThreshold:     pedometer.DefaultStepThreshold,
		Theme:             "default",
		LogLevel:          "info",
		Source:            "<defaults>",
	}
}

// DefaultPath returns ~/.config/steptel/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "steptel", "config.yaml")
}

// Load builds the configuration. An empty path means DefaultPath, which may
// be absent; an explicit path must exist. A .env file in the working
// directory is loaded into the environment first if present.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultPath()
	}

	data, err := os.ReadFile(candidate)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", candidate, err)
		}
		cfg.Source = candidate
	case errors.Is(err, os.ErrNotExist):
		if explicit {
			return cfg, fmt.Errorf("config file %q not found", candidate)
		}
	default:
		return cfg, fmt.Errorf("read config %s: %w", candidate, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	switch c.Backend {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		return fmt.Errorf("unsupported backend %q (want %s or %s)", c.Backend, storage.BackendJSON, storage.BackendSQLite)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.MovementThreshold <= 0 {
		return fmt.Errorf("movement_threshold must be positive, got %v", c.MovementThreshold)
	}
	if c.StepThreshold <= 0 {
		return fmt.Errorf("step_threshold must be positive, got %d", c.StepThreshold)
	}
	return nil
}

// LedgerPath returns DataFile, or the backend's default file in the data
// directory when DataFile is unset.
func (c Config) LedgerPath() (string, error) {
	if c.DataFile != "" {
		return c.DataFile, nil
	}
	dir, err := storage.DefaultDataDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	if c.Backend == storage.BackendSQLite {
		return filepath.Join(dir, "steptel.db"), nil
	}
	return filepath.Join(dir, storage.DefaultFileName), nil
}

// PedometerOptions maps the thresholds onto the counter options.
func (c Config) PedometerOptions() pedometer.Options {
	return pedometer.Options{
		MovementThreshold: c.MovementThreshold,
		StepThreshold:     c.StepThreshold,
	}
}
