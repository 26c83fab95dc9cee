package validation

import (
	"encoding/json"
	"errors"
)

const (
	// ErrorName identifies the aggregate validation error kind.
	ErrorName = "v8nError"

	// ErrorMessage is the fixed description of the aggregate validation error.
	ErrorMessage = "v8n error"
)

// Configuration errors. They are returned by New and never by Validate.
var (
	ErrSchemaRequired = errors.New("schema is required")
	ErrEngineRequired = errors.New("validation engine is required")
	ErrUnknownRegion  = errors.New("unknown request region")
)

// ErrorPayload is the structured form of Error, ready to be serialized by an
// error handler.
type ErrorPayload struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Errors  []Violation `json:"errors"`
}

// Error aggregates every violation found in a request, across all regions.
//
// An Error is only created when there is at least one violation and is not
// modified after creation.
type Error struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Errors  []Violation `json:"errors"`
}

// NewError wraps violations into an aggregate validation error.
func NewError(violations []Violation) *Error {
	return &Error{
		Name:    ErrorName,
		Message: ErrorMessage,
		Errors:  violations,
	}
}

// Error returns the JSON form of the error.
func (e *Error) Error() string {
	b, err := json.Marshal(e.JSON())
	if err != nil {
		return e.Message
	}
	return string(b)
}

// JSON returns the structured form of the error.
func (e *Error) JSON() ErrorPayload {
	return ErrorPayload{
		Name:    e.Name,
		Message: e.Message,
		Errors:  e.Errors,
	}
}

// Is makes errors.Is(err, &Error{}) match any aggregate validation error.
func (e *Error) Is(target error) bool {
	_, ok := target.(*Error)
	return ok
}

// AsError extracts the aggregate validation error from err's chain.
func AsError(err error) (*Error, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// IsValidationError reports whether err carries an aggregate validation error.
func IsValidationError(err error) bool {
	_, ok := AsError(err)
	return ok
}
