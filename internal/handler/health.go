package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/markethub-essentials/backend/internal/middleware"
	"github.com/markethub-essentials/backend/internal/server"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth always answers 200 while the process serves requests. An
// unreachable Redis only degrades the service: the quota fails open, so
// submissions keep flowing.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      StatusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: cfg.Primary.Env,
		Checks:      map[string]CheckResult{},
	}

	if cfg.Observability.HealthChecks.Enabled && h.server.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Observability.HealthChecks.Timeout)
		defer cancel()

		redisStart := time.Now()
		if err := h.server.Redis.Ping(ctx).Err(); err != nil {
			response.Status = StatusDegraded
			response.Checks["redis"] = CheckResult{
				Status:       StatusUnhealthy,
				ResponseTime: time.Since(redisStart).String(),
				Error:        err.Error(),
			}

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(redisStart)).
				Msg("redis health check failed")

			if app := h.server.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]any{
					"check_type":       "redis",
					"operation":        "health_check",
					"error_type":       "redis_unhealthy",
					"response_time_ms": time.Since(redisStart).Milliseconds(),
					"error_message":    err.Error(),
				})
			}
		} else {
			response.Checks["redis"] = CheckResult{
				Status:       StatusHealthy,
				ResponseTime: time.Since(redisStart).String(),
			}
		}
	}

	logger.Debug().
		Str("status", response.Status).
		Dur("total_duration", time.Since(start)).
		Msg("health check completed")

	return c.JSON(http.StatusOK, response)
}
