package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markethub-essentials/backend/internal/handler"
	"github.com/markethub-essentials/backend/internal/server"
)

// registerSystemRoutes registers endpoints that are not part of the lead
// pipeline: health, metrics, the routing probe and, outside production,
// the email preview.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{
		Registry: s.Registry,
	})))

	r.GET("/api/test", h.Probe.Get)
	r.POST("/api/test", h.Probe.Post)

	if !s.Config.Observability.IsProduction() {
		r.GET("/dev/emails/:template", h.Preview.PreviewEmail)
	}
}
