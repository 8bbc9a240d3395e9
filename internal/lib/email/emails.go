package email

import (
	"fmt"
	"strings"

	"github.com/markethub-essentials/backend/internal/model"
)

// InquiryMessage renders the notification email of a sanitized inquiry.
func InquiryMessage(from, to string, s model.InquirySubmission) (Message, error) {
	html, err := Render(TemplateInquiry, s)
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("New Inquiry from %s - %s", s.Name, s.CompanyName),
		HTML:    html,
	}, nil
}

type serviceRequestView struct {
	model.ServiceRequestSubmission
	Location string
	Issues   []string
}

// ServiceRequestMessage renders the notification email of a sanitized
// service request.
func ServiceRequestMessage(from, to string, s model.ServiceRequestSubmission) (Message, error) {
	var location []string
	for _, part := range []model.Text{s.City, s.State} {
		if part != "" {
			location = append(location, string(part))
		}
	}

	html, err := Render(TemplateServiceRequest, serviceRequestView{
		ServiceRequestSubmission: s,
		Location:                 strings.Join(location, ", "),
		Issues:                   s.IssueLabels(),
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("Service Request from %s %s - %s", s.FirstName, s.LastName, s.BusinessName),
		HTML:    html,
	}, nil
}
