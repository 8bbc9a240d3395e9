package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports field names by their JSON tag ("companyName", not
// "CompanyName").
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
