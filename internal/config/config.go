// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; tokens go to the OS keychain.
//
// Precedence, lowest first: built-in defaults, config.json, a .env file in the
// working directory, then CHAINLEDGER_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"chainledger/cli/internal/xdg"
)

// EnvPrefix prefixes every environment override, e.g. CHAINLEDGER_ISSUER_URL.
const EnvPrefix = "CHAINLEDGER"

// Config holds non-sensitive CLI settings.
type Config struct {
	IssuerURL   string `json:"issuer_url" envconfig:"ISSUER_URL" validate:"required,url"`
	TokenPath   string `json:"token_path" envconfig:"TOKEN_PATH" validate:"required,startswith=/"`
	RefreshPath string `json:"refresh_path" envconfig:"REFRESH_PATH" validate:"required,startswith=/"`
	ProfilePath string `json:"profile_path" envconfig:"PROFILE_PATH" validate:"required,startswith=/"`

	RefreshSkewSeconds    int `json:"refresh_skew_seconds" envconfig:"REFRESH_SKEW_SECONDS" validate:"gt=0"`
	MaxTimerDelaySeconds  int `json:"max_timer_delay_seconds" envconfig:"MAX_TIMER_DELAY_SECONDS" validate:"gt=0"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds" envconfig:"REQUEST_TIMEOUT_SECONDS" validate:"gt=0"`

	LogLevel  string `json:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `json:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`

	KeyringBackend string `json:"keyring_backend" envconfig:"KEYRING_BACKEND" validate:"oneof=auto keychain wincred secret-service pass file"`
	KeyringFileDir string `json:"keyring_file_dir,omitempty" envconfig:"KEYRING_FILE_DIR"`
	// KeyringPassword unlocks the file backend; environment only, never written to disk.
	KeyringPassword string `json:"-" envconfig:"KEYRING_PASSWORD"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IssuerURL:             "http://localhost:8000",
		TokenPath:             "/api/token/",
		RefreshPath:           "/api/token/refresh/",
		ProfilePath:           "/api/user/update/",
		RefreshSkewSeconds:    60,
		MaxTimerDelaySeconds:  24 * 60 * 60,
		RequestTimeoutSeconds: 10,
		LogLevel:              "info",
		LogFormat:             "text",
		KeyringBackend:        "auto",
	}
}

// RefreshSkew is the margin subtracted from token expiry when scheduling a refresh.
func (c Config) RefreshSkew() time.Duration {
	return time.Duration(c.RefreshSkewSeconds) * time.Second
}

// MaxTimerDelay caps a single timer wait; longer waits are split.
func (c Config) MaxTimerDelay() time.Duration {
	return time.Duration(c.MaxTimerDelaySeconds) * time.Second
}

// RequestTimeout bounds each issuer round trip.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Environment overrides
// are applied last and the result is validated.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

// LoadFile is Load for an explicit config path.
func LoadFile(p string) (Config, error) {
	c, err := ReadFile(p)
	if err != nil {
		return c, err
	}

	// .env is optional; a missing file is the common case
	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return c, fmt.Errorf("failed to process config from environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Stored returns defaults overlaid with config.json only. Environment overrides
// are not applied, so the result is safe to modify and Save.
func Stored() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	return ReadFile(p)
}

// ReadFile is Stored for an explicit config path. A missing file yields defaults.
func ReadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile is Save for an explicit config path.
func SaveFile(p string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Set assigns a config value by its JSON key.
func (c *Config) Set(key, value string) error {
	atoi := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}

	switch key {
	case "issuer_url":
		c.IssuerURL = value
	case "token_path":
		c.TokenPath = value
	case "refresh_path":
		c.RefreshPath = value
	case "profile_path":
		c.ProfilePath = value
	case "refresh_skew_seconds":
		return atoi(&c.RefreshSkewSeconds)
	case "max_timer_delay_seconds":
		return atoi(&c.MaxTimerDelaySeconds)
	case "request_timeout_seconds":
		return atoi(&c.RequestTimeoutSeconds)
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "keyring_backend":
		c.KeyringBackend = value
	case "keyring_file_dir":
		c.KeyringFileDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
