package router

import (
	"github.com/labstack/echo/v4"

	"github.com/markethub-essentials/backend/internal/handler"
	"github.com/markethub-essentials/backend/internal/middleware"
)

// registerFormRoutes mounts the public lead forms. Both form routes sit
// behind the per-IP burst guard and the body size limit.
func registerFormRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	api := r.Group("/api")

	api.GET("/csrf-token", h.CSRF.IssueToken)

	guard := []echo.MiddlewareFunc{
		m.RateLimit.BurstGuard(),
		m.Global.BodyLimit(),
	}
	api.POST("/send-inquiry-email", h.Forms.SendInquiry, guard...)
	api.POST("/send-service-request", h.Forms.SendServiceRequest, guard...)
}
