package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/v8n/internal/validation"
)

func TestNewValidationFailedError(t *testing.T) {
	vErr := validation.NewError([]validation.Violation{
		{Message: `"name" is required`, Path: []string{"name"}, Type: "required", Context: map[string]any{"label": "name"}},
		{Message: "must be >= 1", Path: []string{"items", "0", "qty"}, Type: "minimum", Context: map[string]any{"label": "items.0.qty"}},
	})

	httpErr := NewValidationFailedError(vErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, CodeValidationFailed, httpErr.Code)
	assert.Equal(t, []FieldError{
		{Field: "name", Error: `"name" is required`},
		{Field: "items.0.qty", Error: "must be >= 1"},
	}, httpErr.Errors)

	raw, err := json.Marshal(httpErr)
	require.NoError(t, err)

	var body struct {
		Details validation.ErrorPayload `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, validation.ErrorName, body.Details.Name)
	assert.Equal(t, validation.ErrorMessage, body.Details.Message)
	assert.Equal(t, vErr.Errors, body.Details.Errors)
}

func TestHTTPError(t *testing.T) {
	code := "ROUTE_NOT_FOUND"
	err := error(NewNotFoundError("missing", false, &code))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "missing", err.Error())
	assert.Equal(t, code, httpErr.Code)
	assert.True(t, errors.Is(err, &HTTPError{}))

	assert.Equal(t, "NOT_FOUND", NewNotFoundError("x", false, nil).Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", NewInternalServerError().Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", MakeUpperCaseWithUnderscores("Method Not Allowed"))
}

func TestHTTPError_OmitsEmptyDetails(t *testing.T) {
	raw, err := json.Marshal(NewBadRequestError("bad", false, nil, nil, nil))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "details")
}
