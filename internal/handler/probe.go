package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/markethub-essentials/backend/internal/server"
)

type ProbeResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ProbeHandler answers /api/test so deploys can check that API routing
// works, independently of /status.
type ProbeHandler struct {
	Handler
	now func() time.Time
}

func NewProbeHandler(s *server.Server) *ProbeHandler {
	return &ProbeHandler{Handler: NewHandler(s), now: time.Now}
}

func (h *ProbeHandler) Get(c echo.Context) error {
	return Handle(func(echo.Context) (ProbeResponse, error) {
		return h.response("API routes are working!"), nil
	}, http.StatusOK)(c)
}

func (h *ProbeHandler) Post(c echo.Context) error {
	return Handle(func(echo.Context) (ProbeResponse, error) {
		return h.response("POST to API routes is working!"), nil
	}, http.StatusOK)(c)
}

func (h *ProbeHandler) response(message string) ProbeResponse {
	return ProbeResponse{
		Message:   message,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	}
}
