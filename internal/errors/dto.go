package errors

// ErrorResponse is the body returned for every failed API call
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Display string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the machine readable code of the first sentinel the error is marked with
func CodeFromErr(err error) string {
	for _, e := range []*InternalError{
		ErrNotFound, ErrAlreadyExists, ErrValidation, ErrInvalidOperation,
		ErrConfiguration, ErrNoActivePlan, ErrDataIntegrity, ErrPartialMutation,
		ErrDatabase, ErrSystem,
	} {
		if Is(err, e) {
			return e.Code
		}
	}
	return ErrCodeSystemError
}
