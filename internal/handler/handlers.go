package handler

import (
	"github.com/markethub-essentials/backend/internal/server"
	"github.com/markethub-essentials/backend/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one value around.
type Handlers struct {
	Health  *HealthHandler
	Forms   *FormHandler
	CSRF    *CSRFHandler
	Probe   *ProbeHandler
	Preview *PreviewHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		Forms:   NewFormHandler(s, services.Forms),
		CSRF:    NewCSRFHandler(s),
		Probe:   NewProbeHandler(s),
		Preview: NewPreviewHandler(s),
	}
}
