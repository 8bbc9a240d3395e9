package email

import (
	"github.com/markethub-essentials/backend/internal/errs"
	"github.com/markethub-essentials/backend/internal/model"
)

// PreviewData contains sample submissions for local preview of each
// template.
var PreviewData = map[Template]func(from, to string) (Message, error){
	TemplateInquiry: func(from, to string) (Message, error) {
		return InquiryMessage(from, to, model.InquirySubmission{
			Name:            "Jane Doe",
			CompanyName:     "Acme Apartments",
			Email:           "jane@acme.example",
			Phone:           "+1 (202) 555-0143",
			PropertyType:    "Apartment complex",
			Message:         "Lobby with 40 sq ft free next to the mailroom.",
			FirstPlacement:  "Yes",
			ExistingVending: "No",
			Expectations:    "Fresh snacks and drinks for 300 residents.",
		})
	},
	TemplateServiceRequest: func(from, to string) (Message, error) {
		return ServiceRequestMessage(from, to, model.ServiceRequestSubmission{
			FirstName:         "John",
			LastName:          "Smith",
			Email:             "john@corner.example",
			BusinessName:      "Corner Gym",
			BusinessAddress:   "12 Main St",
			City:              "Austin",
			State:             "TX",
			CustomerID:        "C-1042",
			ServiceIssues:     model.Tags{model.IssueCardReaderNotWorking, model.IssueNoisyMachine},
			AdditionalDetails: "Reader shows an error after every tap.",
		})
	},
}

// Preview renders the sample email of name.
func Preview(name Template, from, to string) (Message, error) {
	build, ok := PreviewData[name]
	if !ok {
		return Message{}, errs.NewNotFoundError("Unknown email template")
	}
	return build(from, to)
}
