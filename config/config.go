// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Package config loads the rxcards configuration. Values are resolved in
// order of increasing precedence from defaults, config.yml, a .env file,
// RXCARDS_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rxcards/rxcards/cards"
	"github.com/rxcards/rxcards/logging"
	"github.com/rxcards/rxcards/tracing"
)

const EnvPrefix = "RXCARDS"

type Config struct {
	Log     logging.Config `mapstructure:"log"`
	Server  Server         `mapstructure:"server"`
	Runner  cards.Config   `mapstructure:"runner"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// Server configures the HTTP API.
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	// RunRate is the number of card runs per second the API accepts.
	RunRate float64 `mapstructure:"run_rate" validate:"gt=0"`
	// RunBurst is the number of runs accepted at once.
	RunBurst int `mapstructure:"run_burst" validate:"gte=1"`
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		Log: logging.DefaultConfig(),
		Server: Server{
			Host:     "127.0.0.1",
			Port:     8080,
			RunRate:  5,
			RunBurst: 10,
		},
		Runner:  cards.DefaultConfig(),
		Tracing: tracing.DefaultConfig(),
	}
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"host":       "server.host",
	"port":       "server.port",
	"run-rate":   "server.run_rate",
	"timeout":    "runner.timeout",
	"time-scale": "runner.time_scale",
	"tracing":    "tracing.enabled",
	"otlp":       "tracing.endpoint",
}

// RegisterFlags adds the configuration flags to 'flags'.
func RegisterFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.String("config", "", "Path to config.yml")
	flags.String("env-file", "", "Path to a .env file")
	flags.String("log-level", def.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", def.Log.Format, "Log format (json, console)")
	flags.String("host", def.Server.Host, "Address the API listens on")
	flags.Int("port", def.Server.Port, "Port the API listens on")
	flags.Float64("run-rate", def.Server.RunRate, "Card runs per second accepted by the API")
	flags.Duration("timeout", def.Runner.Timeout, "Cancel card runs after this long")
	flags.Float64("time-scale", def.Runner.TimeScale, "Multiplier for the durations of timed cards")
	flags.Bool("tracing", def.Tracing.Enabled, "Export traces over OTLP")
	flags.String("otlp", def.Tracing.Endpoint, "OTLP HTTP endpoint (host:port)")
}

// Load resolves the configuration. 'flags' may be nil; flags that were not
// set on the command line do not override other sources.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	var configFile, envFile string
	if flags != nil {
		configFile, _ = flags.GetString("config")
		envFile, _ = flags.GetString("env-file")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	// godotenv does not override variables that are already set, so real
	// environment variables win over the .env file.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)
	v.SetDefault("log.no_color", def.Log.NoColor)
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.run_rate", def.Server.RunRate)
	v.SetDefault("server.run_burst", def.Server.RunBurst)
	v.SetDefault("runner.timeout", def.Runner.Timeout)
	v.SetDefault("runner.time_scale", def.Runner.TimeScale)
	v.SetDefault("tracing.enabled", def.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", def.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", def.Tracing.Insecure)
	v.SetDefault("tracing.sample_rate", def.Tracing.SampleRate)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports every invalid field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// ErrInvalid is returned by Load and Validate for invalid configurations.
var ErrInvalid = errors.New("invalid configuration")

