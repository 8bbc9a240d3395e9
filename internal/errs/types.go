package errs

import "strings"

// Kind names the failure class of an HTTPError.
type Kind string

const (
	KindConfiguration   Kind = "configuration"
	KindCSRF            Kind = "csrf"
	KindBotVerification Kind = "bot_verification"
	KindValidation      Kind = "validation"
	KindRateLimit       Kind = "rate_limit"
	KindDelivery        Kind = "delivery"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "email", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error shape returned to API clients.
//
// The wire form is {"error": message, "code": CODE} with optional details
// and field errors. Status and Kind stay server-side.
type HTTPError struct {
	Kind    Kind         `json:"-"`
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"error"`
	Details string       `json:"details,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError of the same Kind. A target
// without a Kind matches any HTTPError.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// WithDetails returns a copy of e carrying details.
func (e *HTTPError) WithDetails(details string) *HTTPError {
	cp := *e
	cp.Details = details
	return &cp
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
