// Package service contains the business logic.
//
// It sits between the handler layer and the outbound integrations
// (email provider, webhook, bot verifier). It receives raw form
// requests from the handler, runs the submission pipeline, and
// reports one outcome per request.
package service

import (
	"github.com/markethub-essentials/backend/internal/server"
)

type Services struct {
	Forms *Dispatcher
}

func NewServices(s *server.Server) *Services {
	return &Services{
		Forms: NewDispatcher(s.Config, Deps{
			Email:   s.Email,
			Webhook: s.Webhook,
			Bots:    s.Recaptcha,
			Limiter: s.RateLimiter,
			Metrics: s.Metrics,
			Logger:  s.Logger,
		}),
	}
}
