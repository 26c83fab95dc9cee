// Package config loads the service configuration from the environment.
//
// Variables use the V8N_ prefix and a double underscore for nesting:
//
//	V8N_SERVER__PORT=8080           -> server.port
//	V8N_VALIDATION__ROUTES_FILE=... -> validation.routes_file
//
// A `.env` file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Loads .env into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every configuration variable.
const EnvPrefix = "V8N_"

// ErrNoRouteSource is returned when neither a route file nor an OpenAPI
// document is configured.
var ErrNoRouteSource = errors.New("validation.routes_file or validation.openapi_file is required")

// Config is the root configuration object.
//
// Observability is optional; defaults are injected when it is missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Validation    ValidationConfig     `koanf:"validation" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary describes the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig holds the HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// ValidationConfig tells where the route schemas come from and how they are
// applied.
type ValidationConfig struct {
	// RoutesFile is a YAML route file.
	RoutesFile string `koanf:"routes_file" validate:"required_without=OpenAPIFile"`

	// OpenAPIFile is an OpenAPI 3 document whose operations become routes.
	OpenAPIFile string `koanf:"openapi_file" validate:"required_without=RoutesFile"`

	// AllowUnknown, when set, overrides the unknown-field policy of every
	// route that does not set its own.
	AllowUnknown *bool `koanf:"allow_unknown"`

	// Concurrent validates the regions of a request in parallel.
	Concurrent bool `koanf:"concurrent"`
}

// Default returns the configuration used for keys missing from the
// environment.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
	}
}

// envKey maps V8N_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Override sets one configuration key on top of the environment, e.g.
// from a command line flag. Key uses the dotted form: "server.port".
type Override struct {
	Key   string
	Value any
}

// LoadConfig reads the environment into a Config, applies the overrides
// and defaults and validates the result.
func LoadConfig(overrides ...Override) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	for _, o := range overrides {
		if err := k.Set(o.Key, o.Value); err != nil {
			return nil, fmt.Errorf("could not apply %s: %w", o.Key, err)
		}
	}

	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if mainConfig.Validation.RoutesFile == "" && mainConfig.Validation.OpenAPIFile == "" {
		return nil, ErrNoRouteSource
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; the environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
