package errs

import (
	"net/http"

	"github.com/deppfellow/v8n/internal/validation"
)

// CodeValidationFailed is the code of responses produced from an aggregated
// request validation error.
const CodeValidationFailed = "VALIDATION_FAILED"

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewBadRequestError creates a 400 HTTPError. code defaults to "BAD_REQUEST"
// when nil; errors and action are optional.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404 HTTPError. code defaults to "NOT_FOUND".
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a generic 500 HTTPError. The real cause is
// logged, never sent.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// NewValidationFailedError turns an aggregated request validation error into
// a 400 response. The violations are sent untouched under "details", and a
// flattened field/error list under "errors" for form clients.
func NewValidationFailedError(err *validation.Error) *HTTPError {
	fields := make([]FieldError, 0, len(err.Errors))
	for _, v := range err.Errors {
		field, _ := v.Context["label"].(string)
		fields = append(fields, FieldError{Field: field, Error: v.Message})
	}

	code := CodeValidationFailed
	httpErr := NewBadRequestError("Validation failed", false, &code, fields, nil)
	httpErr.Details = err.JSON()
	return httpErr
}
