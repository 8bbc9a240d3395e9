// Package model holds the transient form submissions accepted by the public
// endpoints. Nothing here is ever persisted: a submission lives for one
// request.
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// FormType tags which form a submission came from.
type FormType string

const (
	FormInquiry        FormType = "inquiry"
	FormServiceRequest FormType = "service_request"
)

// Submission is implemented by every form payload. S is the concrete type,
// so Sanitize can return a value of the same shape.
type Submission[S any] interface {
	// Validate checks required-field presence.
	Validate() error
	// Sanitize returns a copy with every field cleaned. The reCAPTCHA token
	// is kept verbatim.
	Sanitize() S
	EmailAddress() string
	Token() string
	// Webhook builds the JSON body sent to the notification webhook.
	Webhook(submittedAt time.Time) any
}

// Text is a string that decodes any non-string JSON value (null, numbers,
// objects) to "". Public forms are untrusted; a wrongly typed field is
// treated as absent rather than failing the whole body.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Text(s)
	return nil
}

// Tags is an ordered list of strings. A non-array value decodes to nil and
// non-string elements decode to "".
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		*t = nil
		return nil
	}

	var raw []Text
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = nil
		return nil
	}

	out := make(Tags, 0, len(raw))
	for _, v := range raw {
		out = append(out, string(v))
	}
	*t = out
	return nil
}
