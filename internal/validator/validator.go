package validator

import (
	"github.com/go-playground/validator/v10"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

var validate *validator.Validate

// NewValidator builds the shared validator. Besides the stock tags it knows
// utc_timestamp, which accepts the canonical UTC timestamp strings of the API.
func NewValidator() *validator.Validate {
	validate = validator.New()
	_ = validate.RegisterValidation("utc_timestamp", func(fl validator.FieldLevel) bool {
		_, err := types.ParseTimestamp(fl.Field().String())
		return err == nil
	})
	return validate
}

func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
