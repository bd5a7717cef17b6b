package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct checks the `validate` tags of v and converts the first failure per
// field into a readable error wrapping ErrInvalid.
func Struct(v any) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrInvalid)
	}
	return formatValidationError(validate.Struct(v))
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, describe(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	field := e.Namespace()
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", field, param)
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s", field, param)
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s: must be less than %s", field, param)
	case "ltefield":
		return fmt.Sprintf("%s: must not exceed %s", field, param)
	case "gtefield":
		return fmt.Sprintf("%s: must be at least %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, param)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
}
