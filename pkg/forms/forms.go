// Package forms validates the bodies the portal and the CLI send upstream.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		f, _ := v.Interface().(decimal.Decimal).Float64()
		return f
	}, decimal.Decimal{})

	if err := validate.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return CheckPassword(fl.Field().String()).Strong()
	}); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return slices.Contains(Categories, fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s.",
	"max":      "The field '%s' must be no more than %s.",
	"gt":       "The field '%s' must be greater than %s.",
	"gte":      "The field '%s' must be greater than or equal to %s.",
	"oneof":    "The field '%s' must be one of %s.",
	"datetime": "The field '%s' must match the format %s.",
	"url":      "The field '%s' must be a valid URL.",
	"category": "The field '%s' must be a known category.",
}

// overrides are keyed field.tag and win over messages.
var overrides = map[string]string{
	"confirm_password.eqfield": "Passwords do not match",
	"password.strongpw":        "Please create a stronger password",
	"event.required":           "Please select an event",
	"event.gt":                 "Please select an event",
	"rating.required":          "Please provide a rating",
	"rating.min":               "Please provide a rating",
}

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
}

// Errors is returned by every validator in this package.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Message is the first error, for single-banner forms.
func (e Errors) Message() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// Missing lists the fields that failed "required", in struct order.
func (e Errors) Missing() []string {
	var out []string
	for _, fe := range e {
		if fe.Tag == "required" {
			out = append(out, fe.Field)
		}
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	if msg, ok := overrides[field+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, field, fe.Param())
		}
		return fmt.Sprintf(msg, field)
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", field, fe.Tag())
}

// Struct validates v and returns Errors, or nil when v is valid.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: message(fe.Field(), fe)})
	}
	return out
}
