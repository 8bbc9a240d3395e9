package model

import (
	"time"

	"github.com/markethub-essentials/backend/internal/sanitize"
)

// Known service issue tags.
const (
	IssueCardReaderNotWorking = "card_reader_not_working"
	IssueMachineNotCooling    = "machine_not_cooling"
	IssueNoisyMachine         = "noisy_machine"
	IssueNone                 = "none"
)

var serviceIssueLabels = map[string]string{
	IssueCardReaderNotWorking: "Card Reader not working (not allowing machine access)",
	IssueMachineNotCooling:    "Machine not cooling",
	IssueNoisyMachine:         "Noisy Machine",
	IssueNone:                 "None of the above",
}

// ServiceIssueLabel returns the human label of tag, or tag itself when it is
// not one of the known issues.
func ServiceIssueLabel(tag string) string {
	if label, ok := serviceIssueLabels[tag]; ok {
		return label
	}
	return tag
}

// ServiceRequestSubmission is the machine service request form.
type ServiceRequestSubmission struct {
	FirstName         Text `json:"firstName" validate:"required"`
	LastName          Text `json:"lastName" validate:"required"`
	Email             Text `json:"email" validate:"required"`
	Phone             Text `json:"phone"`
	BusinessName      Text `json:"businessName" validate:"required"`
	BusinessAddress   Text `json:"businessAddress"`
	City              Text `json:"city"`
	State             Text `json:"state"`
	CustomerID        Text `json:"customerId"`
	ServiceIssues     Tags `json:"serviceIssues" validate:"required,min=1"`
	AdditionalDetails Text `json:"additionalDetails"`
	RecaptchaToken    Text `json:"recaptchaToken"`
}

func (s ServiceRequestSubmission) Validate() error {
	return validate.Struct(s)
}

func (s ServiceRequestSubmission) Sanitize() ServiceRequestSubmission {
	return ServiceRequestSubmission{
		FirstName:         clean(s.FirstName),
		LastName:          clean(s.LastName),
		Email:             Text(sanitize.Email(string(s.Email))),
		Phone:             Text(sanitize.Phone(string(s.Phone))),
		BusinessName:      clean(s.BusinessName),
		BusinessAddress:   clean(s.BusinessAddress),
		City:              clean(s.City),
		State:             clean(s.State),
		CustomerID:        clean(s.CustomerID),
		ServiceIssues:     Tags(sanitize.Strings(s.ServiceIssues)),
		AdditionalDetails: clean(s.AdditionalDetails),
		RecaptchaToken:    s.RecaptchaToken,
	}
}

func (s ServiceRequestSubmission) EmailAddress() string { return string(s.Email) }

func (s ServiceRequestSubmission) Token() string { return string(s.RecaptchaToken) }

// IssueLabels returns the display label of every selected issue, in order.
func (s ServiceRequestSubmission) IssueLabels() []string {
	labels := make([]string, 0, len(s.ServiceIssues))
	for _, tag := range s.ServiceIssues {
		labels = append(labels, ServiceIssueLabel(tag))
	}
	return labels
}

// ServiceRequestWebhook is the webhook body of a service request.
type ServiceRequestWebhook struct {
	ServiceRequestSubmission
	SubmittedAt string   `json:"submittedAt"`
	FormType    FormType `json:"formType"`
}

func (s ServiceRequestSubmission) Webhook(submittedAt time.Time) any {
	return ServiceRequestWebhook{
		ServiceRequestSubmission: s,
		SubmittedAt:              submittedAt.UTC().Format(time.RFC3339Nano),
		FormType:                 FormServiceRequest,
	}
}
