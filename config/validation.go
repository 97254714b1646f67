package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the configuration against its declared constraints plus
// the cross-field rules the struct tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}

	if cfg.Retry.Max > 0 {
		if cfg.Retry.MinDelay > cfg.Retry.MaxDelay && cfg.Retry.MaxDelay > 0 {
			return fmt.Errorf("retry min_delay %s exceeds max_delay %s", cfg.Retry.MinDelay, cfg.Retry.MaxDelay)
		}
		if cfg.Retry.Factor != 0 && cfg.Retry.Factor <= 1 {
			return fmt.Errorf("retry factor must be greater than 1, got %g", cfg.Retry.Factor)
		}
	}

	if (cfg.Auth.Username == "") != (cfg.Auth.Password == "") {
		return fmt.Errorf("auth requires both username and password")
	}

	return nil
}

// ValidationError wraps field-level failures with readable messages.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError describes a single failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// NewValidationError converts go-playground/validator errors into a
// structured, user-facing form.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fieldErrors := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   err.Namespace(),
			Message: getErrorMessage(err),
			Value:   fmt.Sprintf("%v", err.Value()),
		})
	}
	return &ValidationError{Errors: fieldErrors}
}

func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
	}
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation", fe.Field())
	}
}
