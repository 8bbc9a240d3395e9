package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/markethub-essentials/backend/internal/middleware"
	"github.com/markethub-essentials/backend/internal/server"
)

// Handler is the base handler type that holds shared application
// dependencies. Concrete handlers embed it.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// ResponseHandler writes a successful result and names the operation in
// logs and traces.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// HTMLResponseHandler writes a string result as an HTML page that is never
// cached.
type HTMLResponseHandler struct {
	status int
}

func (h HTMLResponseHandler) Handle(c echo.Context, result any) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(h.status, result.(string))
}

func (h HTMLResponseHandler) GetOperation() string {
	return "handler_html"
}

// handleRequest is the shared execution pipeline: it times the call, logs
// the outcome with the request-scoped logger, annotates the New Relic
// transaction and writes the response. Errors are returned untouched for
// the global error handler.
func handleRequest(
	c echo.Context,
	handler func(c echo.Context) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	txn.AddAttribute("handler.name", route)

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	result, err := handler(c)
	duration := time.Since(start)
	if err != nil {
		logger.Debug().
			Err(err).
			Dur("handler_duration", duration).
			Msg("handler returned error")

		txn.AddAttribute("handler.status", "error")
		txn.AddAttribute("handler.duration_ms", duration.Milliseconds())
		return err
	}

	txn.AddAttribute("handler.status", "success")
	txn.AddAttribute("handler.duration_ms", duration.Milliseconds())

	logger.Debug().
		Dur("handler_duration", duration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps fn into the shared pipeline with a JSON response.
func Handle[Res any](fn func(c echo.Context) (Res, error), status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context) (any, error) {
			return fn(c)
		}, JSONResponseHandler{status: status})
	}
}

// HandleHTML wraps fn into the shared pipeline with an HTML response.
func HandleHTML(fn func(c echo.Context) (string, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context) (any, error) {
			return fn(c)
		}, HTMLResponseHandler{status: http.StatusOK})
	}
}
