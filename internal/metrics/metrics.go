// Package metrics exposes Prometheus counters for the lead pipeline and an
// echo middleware tracking HTTP requests.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/markethub-essentials/backend/internal/errs"
)

// Submission outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeConfiguration  = "configuration_error"
	OutcomeCSRF           = "csrf_rejected"
	OutcomeInvalidBody    = "invalid_body"
	OutcomeBotRejected    = "bot_rejected"
	OutcomeValidation     = "validation_error"
	OutcomeRateLimited    = "rate_limited"
	OutcomeInvalidEmail   = "invalid_email"
	OutcomeDeliveryFailed = "delivery_failed"
)

// Bot verification results.
const (
	BotPassed       = "passed"
	BotLowScore     = "low_score"
	BotMissingToken = "missing_token"
	BotUnavailable  = "unavailable"
)

// Limiter names.
const (
	LimiterQuota = "quota"
	LimiterBurst = "burst"
)

// Recorder holds the domain counters. A nil *Recorder records nothing.
type Recorder struct {
	submissions      *prometheus.CounterVec
	webhookFailures  *prometheus.CounterVec
	botVerifications *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers every collector on registry.
func New(registry prometheus.Registerer) *Recorder {
	factory := promauto.With(registry)

	return &Recorder{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Form submissions by form and outcome.",
		}, []string{"form", "outcome"}),
		webhookFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_webhook_failures_total",
			Help: "Webhook notifications that failed after the email was sent.",
		}, []string{"form"}),
		botVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_bot_verifications_total",
			Help: "reCAPTCHA verifications by result.",
		}, []string{"result"}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_rate_limited_total",
			Help: "Requests rejected by a rate limiter.",
		}, []string{"limiter"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Tracks the number of HTTP requests.",
		}, []string{"method", "code", "path"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "code", "path"}),
	}
}

func (r *Recorder) Submission(form, outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(form, outcome).Inc()
}

func (r *Recorder) WebhookFailure(form string) {
	if r == nil {
		return
	}
	r.webhookFailures.WithLabelValues(form).Inc()
}

func (r *Recorder) BotVerification(result string) {
	if r == nil {
		return
	}
	r.botVerifications.WithLabelValues(result).Inc()
}

func (r *Recorder) RateLimited(limiter string) {
	if r == nil {
		return
	}
	r.rateLimited.WithLabelValues(limiter).Inc()
}

// Middleware records count and latency of every request, labelled with the
// route pattern rather than the raw path.
func (r *Recorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unknown"
			}
			labels := []string{c.Request().Method, strconv.Itoa(statusOf(c, err)), path}

			r.requestsTotal.WithLabelValues(labels...).Inc()
			r.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// statusOf resolves the status the error handler will write for err.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}

	return http.StatusInternalServerError
}
