package validation_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/course-referral/internal/errs"
	"github.com/deppfellow/course-referral/internal/model"
	"github.com/deppfellow/course-referral/internal/validation"
)

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/referrals", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func requireHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	return httpErr
}

func TestBindAndValidate_Valid(t *testing.T) {
	c := newContext(`{"referrerName":"Asha","referrerEmail":"asha@example.com","refereeName":"Vikram","refereeEmail":"vikram@example.com","course":"Data Science"}`)

	payload := &model.CreateReferralPayload{}
	require.NoError(t, validation.BindAndValidate(c, payload))
	assert.Equal(t, "Vikram", payload.RefereeName)
}

func TestBindAndValidate_MissingFields(t *testing.T) {
	c := newContext(`{"referrerName":"Asha","referrerEmail":"asha-at-example","refereeName":"  "}`)

	err := validation.BindAndValidate(c, &model.CreateReferralPayload{})
	httpErr := requireHTTPError(t, err)

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "referrerEmail", Error: "must be a valid email address"},
		{Field: "refereeName", Error: "is required"},
		{Field: "refereeEmail", Error: "is required"},
		{Field: "course", Error: "is required"},
	}, httpErr.Errors)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	c := newContext(`{"referrerName":`)

	httpErr := requireHTTPError(t, validation.BindAndValidate(c, &model.CreateReferralPayload{}))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Nil(t, httpErr.Errors)
	assert.NotEmpty(t, httpErr.Message)
}

type opaquePayload struct {
	Name string `json:"name"`
}

func (p *opaquePayload) Validate() error {
	return errors.New("name is reserved")
}

func TestBindAndValidate_NonValidatorError(t *testing.T) {
	c := newContext(`{"name":"admin"}`)

	httpErr := requireHTTPError(t, validation.BindAndValidate(c, &opaquePayload{}))
	assert.Equal(t, []errs.FieldError{{Field: "body", Error: "name is reserved"}}, httpErr.Errors)
}
