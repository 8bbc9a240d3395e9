package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markethub-essentials/backend/internal/server"
)

// CSRFTokenBytes is the entropy of an issued token (64 hex characters).
const CSRFTokenBytes = 32

type CSRFToken struct {
	Token string `json:"token"`
}

// CSRFHandler issues the anti-forgery token the inquiry form sends back in
// X-CSRF-Token.
type CSRFHandler struct {
	Handler
}

func NewCSRFHandler(s *server.Server) *CSRFHandler {
	return &CSRFHandler{Handler: NewHandler(s)}
}

// IssueToken handles GET /api/csrf-token.
func (h *CSRFHandler) IssueToken(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store")

	return Handle(func(echo.Context) (CSRFToken, error) {
		token, err := GenerateCSRFToken()
		return CSRFToken{Token: token}, err
	}, http.StatusOK)(c)
}

// GenerateCSRFToken returns CSRFTokenBytes random bytes, hex encoded.
func GenerateCSRFToken() (string, error) {
	buf := make([]byte, CSRFTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate csrf token")
	}
	return hex.EncodeToString(buf), nil
}
