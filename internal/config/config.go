// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates the blocks the
// process cannot start without.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (rate limit, observability, ...).
//
// Form delivery settings (addresses, webhook URLs, provider keys) are NOT
// validated here. A missing delivery setting must surface as a per-request
// configuration error, so those checks live next to the form pipeline
// (see Delivery.Missing).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before anything
	// reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the MHE_ prefix. A double underscore separates
	nesting levels, a single underscore stays part of the key:

	  MHE_SERVER__PORT                     -> server.port
	  MHE_FORMS__INQUIRY__WEBHOOK_URL      -> forms.inquiry.webhook_url
	  MHE_RATE_LIMIT__MAX_REQUESTS         -> rate_limit.max_requests
*/

// EnvPrefix is the prefix every recognised environment variable carries.
const EnvPrefix = "MHE_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Forms         FormsConfig          `koanf:"forms"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// IntegrationConfig stores credentials and endpoints of outbound providers.
type IntegrationConfig struct {
	ResendAPIKey       string        `koanf:"resend_api_key"`
	ResendBaseURL      string        `koanf:"resend_base_url" validate:"omitempty,url"`
	RecaptchaSecretKey string        `koanf:"recaptcha_secret_key"`
	RecaptchaVerifyURL string        `koanf:"recaptcha_verify_url" validate:"omitempty,url"`
	RecaptchaMinScore  float64       `koanf:"recaptcha_min_score" validate:"gte=0,lte=1"`
	OutboundTimeout    time.Duration `koanf:"outbound_timeout" validate:"min=1s"`
}

// RateLimitConfig configures both the hourly submission quota and the
// short-term per-IP burst guard in front of the form routes.
type RateLimitConfig struct {
	// Backend selects where quota counters live: "memory" or "redis".
	Backend       string        `koanf:"backend" validate:"oneof=memory redis"`
	MaxRequests   int           `koanf:"max_requests" validate:"min=1"`
	Window        time.Duration `koanf:"window" validate:"min=1s"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=1s"`

	BurstRPS float64 `koanf:"burst_rps" validate:"gt=0"`
	Burst    int     `koanf:"burst" validate:"min=1"`
}

// RedisConfig contains Redis connection details. Only used when
// RateLimit.Backend is "redis". Address is "host:port".
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Default returns a Config populated with every default the service relies
// on. LoadConfig overlays the environment on top of it.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Integration: IntegrationConfig{
			RecaptchaVerifyURL: "https://www.google.com/recaptcha/api/siteverify",
			RecaptchaMinScore:  0.5,
			OutboundTimeout:    10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Backend:       "memory",
			MaxRequests:   5,
			Window:        time.Hour,
			SweepInterval: 2 * time.Hour,
			BurstRPS:      1,
			Burst:         10,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys are decoded from comma separated values.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
}

// envKey maps MHE_FORMS__INQUIRY__TO_ADDRESS to forms.inquiry.to_address.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// envValue maps the variable name with envKey and splits list values on
// commas, dropping blanks.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}

	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// LoadConfig loads configuration from environment variables, unmarshals it
// on top of Default(), validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary block so logs
	// and traces agree with each other.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.RateLimit.Backend == "redis" && mainConfig.Redis.Address == "" {
		return nil, fmt.Errorf("redis.address is required when rate_limit.backend is redis")
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
