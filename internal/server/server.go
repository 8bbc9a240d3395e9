// Package server defines the core Server struct that composes the app's main
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - optional redis client (shared rate-limit counters)
//   - the submission quota store and its sweep janitor
//   - outbound clients: email provider, webhook, reCAPTCHA
//   - the Prometheus registry
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/markethub-essentials/backend/internal/config"
	"github.com/markethub-essentials/backend/internal/lib/email"
	"github.com/markethub-essentials/backend/internal/lib/recaptcha"
	"github.com/markethub-essentials/backend/internal/lib/webhook"
	loggerPkg "github.com/markethub-essentials/backend/internal/logger"
	"github.com/markethub-essentials/backend/internal/metrics"
	"github.com/markethub-essentials/backend/internal/ratelimit"
)

// Server is the application container that holds shared resources. It is
// not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// Redis is nil unless redis.address is configured.
	Redis *redis.Client

	RateLimiter *ratelimit.Limiter
	// memoryStore is set when quota counters live in process.
	memoryStore *ratelimit.MemoryStore

	Email     *email.Client
	Webhook   *webhook.Notifier
	Recaptcha *recaptcha.Client

	Registry *prometheus.Registry
	Metrics  *metrics.Recorder

	httpServer    *http.Server
	stopBackground context.CancelFunc
}

// New constructs a Server and initializes core dependencies. It does not
// start listening; that is SetupHTTPServer + Start.
//
// Redis connection failure does not block startup: the quota store fails
// open and /status reports the outage.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	if cfg.Redis.Address != "" {
		s.Redis = newRedisClient(cfg, logger, loggerService)
	}

	var store ratelimit.Store
	switch cfg.RateLimit.Backend {
	case "redis":
		if s.Redis == nil {
			return nil, errors.New("rate limit backend redis requires redis.address")
		}
		store = ratelimit.NewRedisStore(s.Redis)
	default:
		s.memoryStore = ratelimit.NewMemoryStore()
		store = s.memoryStore
	}
	s.RateLimiter = ratelimit.New(store, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, logger)

	outbound := newOutboundClient(cfg, loggerService)

	var emailOpts []email.Option
	if cfg.Integration.ResendBaseURL != "" {
		emailOpts = append(emailOpts, email.WithBaseURL(cfg.Integration.ResendBaseURL))
	}
	emailClient, err := email.NewClient(cfg.Integration.ResendAPIKey, outbound, logger, emailOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email client: %w", err)
	}
	s.Email = emailClient
	s.Webhook = webhook.NewNotifier(outbound)
	s.Recaptcha = recaptcha.NewClient(cfg.Integration.RecaptchaSecretKey,
		recaptcha.WithHTTPClient(outbound),
		recaptcha.WithVerifyURL(cfg.Integration.RecaptchaVerifyURL),
		recaptcha.WithMinScore(cfg.Integration.RecaptchaMinScore),
	)

	s.Registry = prometheus.NewRegistry()
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.Metrics = metrics.New(s.Registry)

	return s, nil
}

func newRedisClient(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	// Redis commands show up in distributed traces when APM is on.
	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, quota checks fail open until it recovers")
	}

	return client
}

// newOutboundClient is shared by every provider call. With APM on, each call
// becomes an external segment of the request transaction.
func newOutboundClient(cfg *config.Config, loggerService *loggerPkg.LoggerService) *http.Client {
	client := &http.Client{Timeout: cfg.Integration.OutboundTimeout}
	if loggerService.GetApplication() != nil {
		client.Transport = newrelic.NewRoundTripper(http.DefaultTransport)
	}
	return client
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start launches the background sweep and runs the HTTP server. It blocks
// until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	if s.memoryStore != nil {
		s.memoryStore.StartJanitor(ctx, s.Config.RateLimit.SweepInterval)
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("rate_limit_backend", s.Config.RateLimit.Backend).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server (in-flight requests finish until ctx
// expires), the janitor and the redis client, then flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopBackground != nil {
		s.stopBackground()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
