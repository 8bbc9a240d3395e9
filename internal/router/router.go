// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/markethub-essentials/backend/internal/handler"
	"github.com/markethub-essentials/backend/internal/middleware"
	"github.com/markethub-essentials/backend/internal/server"
)

// NewRouter builds the echo instance with the global middleware chain and
// every route.
//
// Order matters: the request id must exist before tracing and the context
// logger read it, and the context logger must exist before the request
// logger writes the per-request line.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		s.Metrics.Middleware(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, s, h)
	registerFormRoutes(router, h, middlewares)

	return router
}
