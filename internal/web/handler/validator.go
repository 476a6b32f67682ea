package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oneid-io/oneid/internal/apperr"
)

const msgMalformedBody = "malformed request body"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		if name == "" {
			return fld.Name
		}

		return name
	})

	return v
}

// Validate checks data against its validate tags. Failures are returned as
// an *apperr.ValidationError keyed by json field name.
func Validate(data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}

	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	default:
		return "invalid"
	}
}

// Parse decodes the request body into out and validates it.
func Parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errors.Join(err, apperr.Invalid(fieldNonField, msgMalformedBody))
	}

	return Validate(out)
}
