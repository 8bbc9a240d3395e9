package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/markethub-essentials/backend/internal/lib/email"
	"github.com/markethub-essentials/backend/internal/server"
)

// PreviewHandler renders the notification emails with sample data. The
// router only mounts it outside production.
type PreviewHandler struct {
	Handler
}

func NewPreviewHandler(s *server.Server) *PreviewHandler {
	return &PreviewHandler{Handler: NewHandler(s)}
}

// PreviewEmail handles GET /dev/emails/:template.
func (h *PreviewHandler) PreviewEmail(c echo.Context) error {
	return HandleHTML(func(c echo.Context) (string, error) {
		forms := h.server.Config.Forms
		msg, err := email.Preview(email.Template(c.Param("template")), forms.FromAddress, forms.Inquiry.ToAddress)
		if err != nil {
			return "", err
		}
		return msg.HTML, nil
	})(c)
}
