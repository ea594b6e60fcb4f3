// Package config loads runtime configuration, layered lowest to
// highest: flag defaults, YAML config file, PAWN_* environment
// variables (a .env file is honored), then explicitly set flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "PAWN_"

var validate = validator.New()

// Config stores the runtime configuration.
type Config struct {
	Database  string        `koanf:"database" validate:"required"`
	Listen    string        `koanf:"listen" validate:"required"`
	Repos     string        `koanf:"repos" validate:"required"`
	Interval  time.Duration `koanf:"interval" validate:"min=0"`
	Engine    string        `koanf:"engine" validate:"oneof=fsrs sm2"`
	Retention float64       `koanf:"retention" validate:"gt=0,lte=1"`
}

// Load assembles the configuration from all layers and validates it.
// The flag set must already be parsed.
func Load(flags *pflag.FlagSet) (Config, error) {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("loading flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
