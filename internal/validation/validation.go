// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields) defined in struct tags and extracts
// validation errors into a format the client can understand.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/markethub-essentials/backend/internal/errs"
)

// Validatable is implemented by request payload types that know how to
// validate themselves, typically by running validator.Struct on a struct
// with `validate:"..."` tags.
type Validatable interface {
	Validate() error
}

// DecodeJSON parses body into payload, which must be a pointer. Malformed
// JSON (or a body that is not a JSON object) yields a 400.
func DecodeJSON(body []byte, payload any) error {
	if err := json.Unmarshal(body, payload); err != nil {
		return errs.NewValidationError("Invalid request body", nil)
	}
	return nil
}

// Check validates payload. Failures become a 400 carrying message and one
// FieldError per failing field.
func Check(payload Validatable, message string) error {
	if err := payload.Validate(); err != nil {
		return errs.NewValidationError(message, extractValidationError(err))
	}
	return nil
}

func extractValidationError(err error) []errs.FieldError {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"

		case "min":
			switch fe.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			case reflect.Slice:
				msg = fmt.Sprintf("must contain at least %s item(s)", fe.Param())
			default:
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", fe.Field(), fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
			}
		}

		// Field() is the JSON name; see model.newValidator.
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: msg,
		})
	}

	return fieldErrors
}
