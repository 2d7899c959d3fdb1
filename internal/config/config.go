// Package config loads opptrack settings.
//
// Sources, lowest precedence first:
//  1. defaults (Default)
//  2. a .env file in the working directory, copied into the environment
//  3. a YAML file named by --config or OPPTRACK_CONFIG
//  4. environment variables with the OPPTRACK_ prefix
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/roach88/opptrack/internal/schedule"
)

const (
	EnvPrefix = "OPPTRACK_"

	// EnvConfigFile names the YAML file when no path is passed to Load.
	EnvConfigFile = EnvPrefix + "CONFIG"
)

// Config holds process settings.
type Config struct {
	// StorePath is the opportunity store database file.
	StorePath string `koanf:"store_path" validate:"required"`

	// AuditPath is the audit log database file. It may equal StorePath.
	AuditPath string `koanf:"audit_path" validate:"required"`

	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Actor is recorded on audit entries written by ingestion.
	Actor string `koanf:"actor" validate:"required,max=100"`

	// Timezones overrides entries of the fixed abbreviation table, in
	// signed whole hours from UTC.
	Timezones map[string]int `koanf:"timezones" validate:"dive,keys,required,endkeys,min=-12,max=14"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		StorePath: "opptrack.db",
		AuditPath: "opptrack-audit.db",
		LogLevel:  "info",
		LogFormat: "text",
		Actor:     "ingest",
	}
}

// Load layers defaults, .env, the YAML file at path (or OPPTRACK_CONFIG when
// path is empty) and OPPTRACK_* variables, then validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// OPPTRACK_STORE_PATH -> store_path. Underscores are kept so keys match
	// the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Offsets returns the timezone resolver with configured overrides applied.
func (c *Config) Offsets() schedule.OffsetResolver {
	return schedule.WithOverrides(schedule.DefaultOffsets, c.Timezones)
}
