package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markethub-essentials/backend/internal/server"
	"github.com/markethub-essentials/backend/internal/service"
)

// FormDispatcher runs the submission pipeline of each public form.
type FormDispatcher interface {
	Inquiry(ctx context.Context, in service.Inbound) (*service.Ack, error)
	ServiceRequest(ctx context.Context, in service.Inbound) (*service.Ack, error)
}

type FormHandler struct {
	Handler
	forms FormDispatcher
}

func NewFormHandler(s *server.Server, forms FormDispatcher) *FormHandler {
	return &FormHandler{
		Handler: NewHandler(s),
		forms:   forms,
	}
}

// SendInquiry handles POST /api/send-inquiry-email.
func (h *FormHandler) SendInquiry(c echo.Context) error {
	return Handle(func(c echo.Context) (*service.Ack, error) {
		in, err := inbound(c)
		if err != nil {
			return nil, err
		}
		return h.forms.Inquiry(c.Request().Context(), in)
	}, http.StatusOK)(c)
}

// SendServiceRequest handles POST /api/send-service-request.
func (h *FormHandler) SendServiceRequest(c echo.Context) error {
	return Handle(func(c echo.Context) (*service.Ack, error) {
		in, err := inbound(c)
		if err != nil {
			return nil, err
		}
		return h.forms.ServiceRequest(c.Request().Context(), in)
	}, http.StatusOK)(c)
}

// inbound reads the raw body; the service decides whether it parses.
func inbound(c echo.Context) (service.Inbound, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// BodyLimit reports oversized streams as an echo 413.
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			return service.Inbound{}, echoErr
		}
		return service.Inbound{}, errors.Wrap(err, "failed to read request body")
	}

	return service.Inbound{
		Header: c.Request().Header,
		Body:   body,
	}, nil
}
