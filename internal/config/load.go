package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TRAQCHECK_API_BASE_URL for api.base_url.
const EnvPrefix = "TRAQCHECK"

// DefaultMaxUploadBytes matches the backend's resume size cap.
const DefaultMaxUploadBytes = 5 << 20

// Default values for settings that are not explicitly configured.
var defaults = map[string]interface{}{
	"api.base_url":                 "http://localhost:8000",
	"api.timeout":                  30 * time.Second,
	"api.max_upload_bytes":         DefaultMaxUploadBytes,
	"poll.interval":                1500 * time.Millisecond,
	"log.level":                    "info",
	"log.format":                   "json",
	"requests.org_name":            "TraqCheck",
	"requests.support_email":       "support@traqcheck.local",
	"requests.upload_url_template": "http://localhost:5173/upload/{id}",
	"requests.channel":             "auto",
	"requests.send_now":            false,
	"batch.workers":                2,
	"metrics.addr":                 "",
}

// Load reads configuration from defaults, an optional traqcheck.yaml in the
// working directory, and environment variables. Environment variables take
// precedence over the file.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("traqcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile is like Load but reads the given file, which must exist.
// An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
