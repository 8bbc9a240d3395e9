package model

import (
	"time"

	"github.com/markethub-essentials/backend/internal/sanitize"
)

// InquirySubmission is the property inquiry form.
type InquirySubmission struct {
	Name            Text `json:"name" validate:"required"`
	CompanyName     Text `json:"companyName" validate:"required"`
	Email           Text `json:"email" validate:"required"`
	Phone           Text `json:"phone"`
	PropertyType    Text `json:"propertyType" validate:"required"`
	Message         Text `json:"message"`
	FirstPlacement  Text `json:"firstPlacement" validate:"required"`
	ExistingVending Text `json:"existingVending" validate:"required"`
	Expectations    Text `json:"expectations" validate:"required"`
	RecaptchaToken  Text `json:"recaptchaToken"`
}

func (s InquirySubmission) Validate() error {
	return validate.Struct(s)
}

func (s InquirySubmission) Sanitize() InquirySubmission {
	return InquirySubmission{
		Name:            clean(s.Name),
		CompanyName:     clean(s.CompanyName),
		Email:           Text(sanitize.Email(string(s.Email))),
		Phone:           Text(sanitize.Phone(string(s.Phone))),
		PropertyType:    clean(s.PropertyType),
		Message:         clean(s.Message),
		FirstPlacement:  clean(s.FirstPlacement),
		ExistingVending: clean(s.ExistingVending),
		Expectations:    clean(s.Expectations),
		RecaptchaToken:  s.RecaptchaToken,
	}
}

func (s InquirySubmission) EmailAddress() string { return string(s.Email) }

func (s InquirySubmission) Token() string { return string(s.RecaptchaToken) }

// InquiryWebhook is the webhook body of an inquiry.
type InquiryWebhook struct {
	InquirySubmission
	SubmittedAt string   `json:"submittedAt"`
	FormType    FormType `json:"formType"`
}

func (s InquirySubmission) Webhook(submittedAt time.Time) any {
	return InquiryWebhook{
		InquirySubmission: s,
		SubmittedAt:       submittedAt.UTC().Format(time.RFC3339Nano),
		FormType:          FormInquiry,
	}
}

func clean(t Text) Text {
	return Text(sanitize.Input(string(t)))
}
