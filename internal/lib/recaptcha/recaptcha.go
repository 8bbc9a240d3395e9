// Package recaptcha verifies reCAPTCHA v3 tokens against Google's siteverify
// endpoint.
//
// Verify reports what actually happened: a scored answer, or the service
// being unreachable. Callers gating on it must treat an error as a failed
// check (fail-closed) but can still tell an outage from a low score.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	DefaultMinScore  = 0.5
)

// ErrVerificationUnavailable wraps every transport, status and decode
// failure. It is never a judgement on the token itself.
var ErrVerificationUnavailable = errors.New("bot verification unavailable")

// Response is the siteverify JSON answer.
type Response struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	Hostname    string   `json:"hostname"`
	ChallengeTS string   `json:"challenge_ts"`
	ErrorCodes  []string `json:"error-codes"`
}

// Result is the interpreted verification outcome.
type Result struct {
	Response
	// Valid is Success && Score > min score.
	Valid bool
}

// Client talks to the siteverify endpoint.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
	minScore   float64
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithVerifyURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.verifyURL = u
		}
	}
}

// WithMinScore sets the exclusive score threshold (default 0.5).
func WithMinScore(score float64) Option {
	return func(cl *Client) { cl.minScore = score }
}

func NewClient(secret string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		verifyURL:  DefaultVerifyURL,
		secret:     secret,
		minScore:   DefaultMinScore,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify posts the token and interprets the answer.
func (c *Client) Verify(ctx context.Context, token string) (Result, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: siteverify returned status %d", ErrVerificationUnavailable, resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("%w: decoding siteverify response: %v", ErrVerificationUnavailable, err)
	}

	return Result{
		Response: body,
		Valid:    body.Success && body.Score > c.minScore,
	}, nil
}
