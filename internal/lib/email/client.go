// Package email sends the lead notification emails.
//
// It uses Resend (resend-go) as the provider and renders HTML bodies from
// templates embedded in the binary.
package email

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Message is one fully rendered email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Client wraps the Resend client and a logger.
type Client struct {
	client *resend.Client
	logger *zerolog.Logger
}

type Option func(*resend.Client) error

// WithBaseURL points the client at another Resend-compatible API. The URL
// must end with a slash.
func WithBaseURL(raw string) Option {
	return func(c *resend.Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return errors.Wrap(err, "invalid resend base url")
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates an email Client for apiKey. httpClient carries the
// outbound timeout.
func NewClient(apiKey string, httpClient *http.Client, logger *zerolog.Logger, opts ...Option) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	rc := resend.NewCustomClient(httpClient, apiKey)
	for _, opt := range opts {
		if err := opt(rc); err != nil {
			return nil, err
		}
	}

	return &Client{client: rc, logger: logger}, nil
}

// Send delivers msg and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "failed to send email")
	}

	c.logger.Debug().
		Str("email_id", sent.Id).
		Str("subject", msg.Subject).
		Msg("email accepted by provider")

	return sent.Id, nil
}
