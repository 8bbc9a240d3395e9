package errs

import (
	"net/http"
	"strings"
)

func newHTTPError(kind Kind, status int, message string) *HTTPError {
	return &HTTPError{
		Kind:    kind,
		Status:  status,
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
	}
}

// NewConfigurationError reports missing deployment settings (500).
// missing holds setting names, never their values.
func NewConfigurationError(missing []string) *HTTPError {
	err := newHTTPError(KindConfiguration, http.StatusInternalServerError, "Configuration missing")
	if len(missing) > 0 {
		err.Details = "Missing: " + strings.Join(missing, ", ")
	}
	return err
}

// NewCSRFError reports a missing anti-forgery token (403).
func NewCSRFError() *HTTPError {
	return newHTTPError(KindCSRF, http.StatusForbidden, "CSRF token missing")
}

// NewBotVerificationError reports a failed or unreachable bot check (403).
func NewBotVerificationError() *HTTPError {
	return newHTTPError(KindBotVerification, http.StatusForbidden, "Bot verification failed")
}

// NewValidationError reports a client error with optional field details (400).
func NewValidationError(message string, fields []FieldError) *HTTPError {
	err := newHTTPError(KindValidation, http.StatusBadRequest, message)
	err.Errors = fields
	return err
}

// NewRateLimitError reports an exhausted quota (429).
func NewRateLimitError() *HTTPError {
	return newHTTPError(KindRateLimit, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// NewDeliveryError reports that the email provider rejected the message (500).
func NewDeliveryError() *HTTPError {
	return newHTTPError(KindDelivery, http.StatusInternalServerError, "Failed to send email")
}

// NewNotFoundError creates a 404.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(KindNotFound, http.StatusNotFound, message)
}

// NewInternalServerError is the generic 500. It never carries the cause.
func NewInternalServerError() *HTTPError {
	return newHTTPError(KindInternal, http.StatusInternalServerError, "Internal server error")
}
