package migration

import (
	"errors"
	"fmt"
)

const validationErrorWithCauseTemplateConstant = "%s: %s"

// ValidationError reports a problem detected before any remote mutation.
type ValidationError struct {
	Message string
	Cause   error
}

// Error describes the validation failure.
func (validationError ValidationError) Error() string {
	switch {
	case validationError.Cause == nil:
		return validationError.Message
	case len(validationError.Message) == 0:
		return validationError.Cause.Error()
	default:
		return fmt.Sprintf(validationErrorWithCauseTemplateConstant, validationError.Message, validationError.Cause)
	}
}

// Unwrap exposes the underlying cause.
func (validationError ValidationError) Unwrap() error {
	return validationError.Cause
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var validationError ValidationError
	return errors.As(err, &validationError)
}
