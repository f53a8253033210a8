package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)))
}

func TestNewBadRequestError(t *testing.T) {
	fieldErrors := []FieldError{{Field: "course", Error: "is required"}}

	err := NewBadRequestError("Validation failed", true, nil, fieldErrors, nil)
	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, err.Override)
	assert.Equal(t, fieldErrors, err.Errors)

	code := "REFERRAL_INVALID"
	err = NewBadRequestError("nope", false, &code, nil, nil)
	assert.Equal(t, "REFERRAL_INVALID", err.Code)
}

func TestNewInternalServerError_IsGeneric(t *testing.T) {
	err := NewInternalServerError()
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.False(t, err.Override)
}

func TestNewTooManyRequestsError(t *testing.T) {
	err := NewTooManyRequestsError("slow down")
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
	if assert.NotNil(t, err.Action) {
		assert.Equal(t, ActionTypeRetry, err.Action.Type)
	}
}

func TestHTTPError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("creating referral: %w", NewNotFoundError("missing", false, nil))

	var httpErr *HTTPError
	assert.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.True(t, errors.Is(wrapped, &HTTPError{}))
}

func TestHTTPError_WithMessage(t *testing.T) {
	base := NewForbiddenError("Origin not allowed", false)
	updated := base.WithMessage("Nope")

	assert.Equal(t, "Nope", updated.Message)
	assert.Equal(t, "Origin not allowed", base.Message)
	assert.Equal(t, base.Status, updated.Status)
}

func TestNewResponse_CarriesErrorKey(t *testing.T) {
	body, err := json.Marshal(NewResponse(*NewBadRequestError("Validation failed", true, nil,
		[]FieldError{{Field: "course", Error: "is required"}}, nil)))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "Validation failed", decoded["error"])
	assert.Equal(t, "Validation failed", decoded["message"])
	assert.Equal(t, "BAD_REQUEST", decoded["code"])
	assert.Len(t, decoded["errors"], 1)
}
