package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, 2*time.Hour, cfg.RateLimit.SweepInterval)
	assert.InDelta(t, 0.5, cfg.Integration.RecaptchaMinScore, 1e-9)
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, cfg.Primary.Env, cfg.Observability.Environment)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MHE_PRIMARY__ENV", "production")
	t.Setenv("MHE_SERVER__PORT", "9090")
	t.Setenv("MHE_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MHE_FORMS__FROM_ADDRESS", "noreply@example.com")
	t.Setenv("MHE_FORMS__INQUIRY__TO_ADDRESS", "sales@example.com")
	t.Setenv("MHE_FORMS__INQUIRY__WEBHOOK_URL", "https://hooks.example.com/inquiry")
	t.Setenv("MHE_RATE_LIMIT__MAX_REQUESTS", "10")
	t.Setenv("MHE_RATE_LIMIT__WINDOW", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Primary.Env)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "sales@example.com", cfg.Forms.Inquiry.ToAddress)
	assert.Equal(t, "https://hooks.example.com/inquiry", cfg.Forms.Inquiry.WebhookURL)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"Unknown rate limit backend":    {"MHE_RATE_LIMIT__BACKEND": "memcached"},
		"Redis backend without address": {"MHE_RATE_LIMIT__BACKEND": "redis"},
		"Bad log level":                 {"MHE_OBSERVABILITY__LOGGING__LEVEL": "chatty"},
		"Score above one":               {"MHE_INTEGRATION__RECAPTCHA_MIN_SCORE": "1.5"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestDeliveryMissing(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg  func(*Config)
		want []string
	}{
		"Everything set": {
			cfg: func(c *Config) {
				c.Forms.FromAddress = "from@example.com"
				c.Forms.Inquiry = FormConfig{ToAddress: "to@example.com", WebhookURL: "https://hook"}
				c.Integration.ResendAPIKey = "re_key"
				c.Integration.RecaptchaSecretKey = "secret"
			},
		},
		"Nothing set": {
			cfg: func(*Config) {},
			want: []string{
				"MHE_FORMS__INQUIRY__TO_ADDRESS",
				"MHE_FORMS__FROM_ADDRESS",
				"MHE_FORMS__INQUIRY__WEBHOOK_URL",
				"MHE_INTEGRATION__RESEND_API_KEY",
				"MHE_INTEGRATION__RECAPTCHA_SECRET_KEY",
			},
		},
		"Only webhook missing": {
			cfg: func(c *Config) {
				c.Forms.FromAddress = "from@example.com"
				c.Forms.Inquiry = FormConfig{ToAddress: "to@example.com"}
				c.Integration.ResendAPIKey = "re_key"
				c.Integration.RecaptchaSecretKey = "secret"
			},
			want: []string{"MHE_FORMS__INQUIRY__WEBHOOK_URL"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.cfg(cfg)
			assert.Equal(t, tc.want, cfg.InquiryDelivery().Missing())
		})
	}
}

func TestServiceRequestDeliveryUsesOwnBlock(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Forms.ServiceRequest = FormConfig{ToAddress: "service@example.com", WebhookURL: "https://hook/service"}

	d := cfg.ServiceRequestDelivery()
	assert.Equal(t, "service@example.com", d.To)
	assert.Equal(t, "https://hook/service", d.WebhookURL)
	assert.NotContains(t, d.Missing(), "MHE_FORMS__SERVICE_REQUEST__TO_ADDRESS")
	assert.Contains(t, d.Missing(), "MHE_FORMS__FROM_ADDRESS")
}

func TestEnvValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		name    string
		value   string
		wantKey string
		want    any
	}{
		"Scalar": {
			name:    "MHE_FORMS__INQUIRY__WEBHOOK_URL",
			value:   "https://hooks.example.com/a,b",
			wantKey: "forms.inquiry.webhook_url",
			want:    "https://hooks.example.com/a,b",
		},
		"Single origin": {
			name:    "MHE_SERVER__CORS_ALLOWED_ORIGINS",
			value:   "https://a.example",
			wantKey: "server.cors_allowed_origins",
			want:    []string{"https://a.example"},
		},
		"Origins with blanks": {
			name:    "MHE_SERVER__CORS_ALLOWED_ORIGINS",
			value:   " https://a.example , ,https://b.example,",
			wantKey: "server.cors_allowed_origins",
			want:    []string{"https://a.example", "https://b.example"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			key, value := envValue(tc.name, tc.value)
			assert.Equal(t, tc.wantKey, key)
			assert.Equal(t, tc.want, value)
		})
	}
}

func TestLoadConfig_CORSOriginsWithSpaces(t *testing.T) {
	t.Setenv("MHE_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}
