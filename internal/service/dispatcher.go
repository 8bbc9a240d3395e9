package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/markethub-essentials/backend/internal/config"
	"github.com/markethub-essentials/backend/internal/errs"
	"github.com/markethub-essentials/backend/internal/lib/email"
	"github.com/markethub-essentials/backend/internal/lib/recaptcha"
	"github.com/markethub-essentials/backend/internal/metrics"
	"github.com/markethub-essentials/backend/internal/model"
	"github.com/markethub-essentials/backend/internal/validation"
)

const (
	// HeaderCSRFToken must be present (any non-empty value) on inquiry
	// submissions.
	HeaderCSRFToken = "X-CSRF-Token"

	UnknownClient = "unknown"
)

type EmailSender interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

type WebhookNotifier interface {
	Notify(ctx context.Context, url string, payload any) error
}

type BotVerifier interface {
	Verify(ctx context.Context, token string) (recaptcha.Result, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, identifier string) bool
}

// Inbound is the transport-neutral part of a form request.
type Inbound struct {
	Header http.Header
	Body   []byte
}

// Ack is the success body of a submission.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Dispatcher runs the submission pipeline shared by every form: gate checks,
// sanitization, then one concurrent email + webhook fan-out.
type Dispatcher struct {
	cfg     *config.Config
	email   EmailSender
	webhook WebhookNotifier
	bots    BotVerifier
	limiter RateLimiter
	metrics *metrics.Recorder
	logger  *zerolog.Logger
	now     func() time.Time
}

// Deps are the collaborators of a Dispatcher. Metrics may be nil.
type Deps struct {
	Email   EmailSender
	Webhook WebhookNotifier
	Bots    BotVerifier
	Limiter RateLimiter
	Metrics *metrics.Recorder
	Logger  *zerolog.Logger
	Now     func() time.Time
}

func NewDispatcher(cfg *config.Config, deps Deps) *Dispatcher {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	return &Dispatcher{
		cfg:     cfg,
		email:   deps.Email,
		webhook: deps.Webhook,
		bots:    deps.Bots,
		limiter: deps.Limiter,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     deps.Now,
	}
}

type form[S model.Submission[S]] struct {
	kind        model.FormType
	requireCSRF bool
	delivery    config.Delivery
	success     string
	render      func(from, to string, s S) (email.Message, error)
}

// Inquiry handles a property inquiry. It is the only form guarded by the
// CSRF header.
func (d *Dispatcher) Inquiry(ctx context.Context, in Inbound) (*Ack, error) {
	return dispatch(ctx, d, form[model.InquirySubmission]{
		kind:        model.FormInquiry,
		requireCSRF: true,
		delivery:    d.cfg.InquiryDelivery(),
		success:     "Inquiry submitted successfully",
		render:      email.InquiryMessage,
	}, in)
}

// ServiceRequest handles a machine service request.
func (d *Dispatcher) ServiceRequest(ctx context.Context, in Inbound) (*Ack, error) {
	return dispatch(ctx, d, form[model.ServiceRequestSubmission]{
		kind:     model.FormServiceRequest,
		delivery: d.cfg.ServiceRequestDelivery(),
		success:  "Service request submitted successfully",
		render:   email.ServiceRequestMessage,
	}, in)
}

func dispatch[S model.Submission[S]](ctx context.Context, d *Dispatcher, f form[S], in Inbound) (*Ack, error) {
	logger := d.log(ctx).With().Str("form", string(f.kind)).Logger()
	kind := string(f.kind)

	if missing := f.delivery.Missing(); len(missing) > 0 {
		logger.Error().Strs("missing", missing).Msg("form delivery is not configured")
		d.metrics.Submission(kind, metrics.OutcomeConfiguration)
		return nil, errs.NewConfigurationError(missing)
	}

	if f.requireCSRF && in.Header.Get(HeaderCSRFToken) == "" {
		d.metrics.Submission(kind, metrics.OutcomeCSRF)
		return nil, errs.NewCSRFError()
	}

	var submission S
	if err := validation.DecodeJSON(in.Body, &submission); err != nil {
		d.metrics.Submission(kind, metrics.OutcomeInvalidBody)
		return nil, err
	}

	if !d.verifyBot(ctx, &logger, submission.Token()) {
		d.metrics.Submission(kind, metrics.OutcomeBotRejected)
		return nil, errs.NewBotVerificationError()
	}

	if err := validation.Check(submission, "Missing required fields"); err != nil {
		d.metrics.Submission(kind, metrics.OutcomeValidation)
		return nil, err
	}

	client := ClientIdentifier(in.Header)
	if !d.limiter.Allow(ctx, client) {
		logger.Info().Str("client", client).Msg("submission quota exhausted")
		d.metrics.RateLimited(metrics.LimiterQuota)
		d.metrics.Submission(kind, metrics.OutcomeRateLimited)
		return nil, errs.NewRateLimitError()
	}

	clean := submission.Sanitize()
	if clean.EmailAddress() == "" {
		d.metrics.Submission(kind, metrics.OutcomeInvalidEmail)
		return nil, errs.NewValidationError("Invalid email address", nil)
	}

	msg, err := f.render(f.delivery.From, f.delivery.To, clean)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render notification email")
	}

	report := d.deliver(ctx, msg, f.delivery.WebhookURL, clean.Webhook(d.now()))

	switch report.reconcile() {
	case outcomeDeliveryFailed:
		logger.Error().Err(report.emailErr).Msg("failed to send notification email")
		noticeError(ctx, report.emailErr)
		d.metrics.Submission(kind, metrics.OutcomeDeliveryFailed)
		if report.webhookErr != nil {
			d.webhookFailed(ctx, &logger, kind, report.webhookErr)
		}
		return nil, errs.NewDeliveryError()

	case outcomeNotificationWarning:
		d.webhookFailed(ctx, &logger, kind, report.webhookErr)
	}

	logger.Info().Str("email_id", report.emailID).Msg("submission delivered")
	d.metrics.Submission(kind, metrics.OutcomeSuccess)

	return &Ack{Success: true, Message: f.success}, nil
}

// verifyBot collapses every result except a valid one to false. An
// unreachable verifier rejects the submission.
func (d *Dispatcher) verifyBot(ctx context.Context, logger *zerolog.Logger, token string) bool {
	if token == "" {
		d.metrics.BotVerification(metrics.BotMissingToken)
		return false
	}

	result, err := d.bots.Verify(ctx, token)
	if err != nil {
		logger.Warn().Err(err).Msg("bot verification unavailable")
		d.metrics.BotVerification(metrics.BotUnavailable)
		return false
	}

	if !result.Valid {
		logger.Info().
			Bool("success", result.Success).
			Float64("score", result.Score).
			Strs("error_codes", result.ErrorCodes).
			Msg("bot verification rejected submission")
		d.metrics.BotVerification(metrics.BotLowScore)
		return false
	}

	d.metrics.BotVerification(metrics.BotPassed)
	return true
}

func (d *Dispatcher) webhookFailed(ctx context.Context, logger *zerolog.Logger, kind string, err error) {
	logger.Warn().Err(err).Msg("webhook notification failed")
	noticeError(ctx, err)
	d.metrics.WebhookFailure(kind)
}

// log prefers the request-scoped logger carried by ctx.
func (d *Dispatcher) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return d.logger
}

func noticeError(ctx context.Context, err error) {
	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(nrpkgerrors.Wrap(err))
	}
}

// ClientIdentifier keys the submission quota: the raw X-Forwarded-For value
// (repeated header lines joined with ", "), else X-Real-IP, else "unknown".
func ClientIdentifier(h http.Header) string {
	if v := strings.Join(h.Values("X-Forwarded-For"), ", "); v != "" {
		return v
	}
	if v := h.Get("X-Real-IP"); v != "" {
		return v
	}
	return UnknownClient
}

type outcome int

const (
	outcomeDelivered outcome = iota
	// outcomeNotificationWarning: email sent, webhook failed. Reported as a
	// success.
	outcomeNotificationWarning
	outcomeDeliveryFailed
)

type deliveryReport struct {
	emailID    string
	emailErr   error
	webhookErr error
}

func (r deliveryReport) reconcile() outcome {
	switch {
	case r.emailErr != nil:
		return outcomeDeliveryFailed
	case r.webhookErr != nil:
		return outcomeNotificationWarning
	default:
		return outcomeDelivered
	}
}

// deliver starts the email and the webhook together and waits for both.
func (d *Dispatcher) deliver(ctx context.Context, msg email.Message, webhookURL string, payload any) deliveryReport {
	var (
		report deliveryReport
		wg     sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer recoverInto(&report.emailErr, "email send")
		defer segment(ctx, "email.send").End()
		report.emailID, report.emailErr = d.email.Send(ctx, msg)
	}()
	go func() {
		defer wg.Done()
		defer recoverInto(&report.webhookErr, "webhook notify")
		defer segment(ctx, "webhook.notify").End()
		report.webhookErr = d.webhook.Notify(ctx, webhookURL, payload)
	}()
	wg.Wait()

	return report
}

// recoverInto turns a panic of a delivery goroutine into an error. echo's
// Recover only covers the handler goroutine.
func recoverInto(dst *error, op string) {
	if r := recover(); r != nil {
		*dst = errors.Errorf("%s panicked: %v", op, r)
	}
}

// segment opens a New Relic segment on an async copy of the request
// transaction. With no transaction the returned segment is a no-op.
func segment(ctx context.Context, name string) *newrelic.Segment {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}
	return txn.NewGoroutine().StartSegment(name)
}
