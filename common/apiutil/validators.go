package apiutil

import (
	"reflect"
	"strings"

	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/go-playground/validator/v10"
)

func NewValidator() *Validator {
	validator := validator.New()
	validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator}
}

type Validator struct {
	validator *validator.Validate
}

// Validate checks i against its validate tags. Violations come back as an
// errors.Invalid with one field error per failed rule.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		validationErr := errors.Invalid.Explain("validation error")
		var fieldsError validator.ValidationErrors
		if errors.As(err, &fieldsError) {
			for _, fieldErr := range fieldsError {
				validationErr = validationErr.WithField(fieldErr.Tag(), fieldErr.Field(), fieldMessage(fieldErr))
			}
		}
		return validationErr
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
