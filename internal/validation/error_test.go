package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_String(t *testing.T) {
	err := NewError([]Violation{{
		Message: `"name" must be a string`,
		Path:    []string{"name"},
		Type:    "string.base",
		Context: map[string]any{"key": "name"},
	}})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(err.Error()), &decoded))
	assert.Equal(t, "v8nError", decoded["name"])
	assert.Equal(t, "v8n error", decoded["message"])

	errs, ok := decoded["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, `"name" must be a string`, first["message"])
	assert.Equal(t, []any{"name"}, first["path"])
	assert.Equal(t, "string.base", first["type"])
}

func TestError_JSONMatchesMarshal(t *testing.T) {
	err := NewError([]Violation{{Message: "m", Path: []string{"a", "0"}, Type: "t"}})

	direct, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	payload, mErr := json.Marshal(err.JSON())
	require.NoError(t, mErr)

	assert.JSONEq(t, string(payload), string(direct))
	assert.JSONEq(t, string(payload), err.Error())
}

func TestError_Identity(t *testing.T) {
	original := NewError([]Violation{{Message: "m"}})
	wrapped := fmt.Errorf("route users: %w", original)

	assert.True(t, errors.Is(wrapped, &Error{}))
	assert.True(t, IsValidationError(wrapped))

	got, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, original, got)

	assert.False(t, IsValidationError(errors.New("other")))
}

func TestError_KeepsViolationsVerbatim(t *testing.T) {
	violations := []Violation{
		{Message: "dup", Path: []string{"a"}, Type: "x"},
		{Message: "dup", Path: []string{"a"}, Type: "x"},
	}
	err := NewError(violations)
	assert.Equal(t, violations, err.Errors)
}
