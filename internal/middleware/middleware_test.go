package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/errs"
	"github.com/deppfellow/course-referral/internal/server"
)

func newTestServer(t *testing.T, logOutput *bytes.Buffer) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	cfg.Server.CORSAllowedOrigins = []string{"http://localhost:3000"}

	logger := zerolog.Nop()
	if logOutput != nil {
		logger = zerolog.New(logOutput)
	}

	return &server.Server{Config: cfg, Logger: &logger}
}

func newTestEcho(s *server.Server) *echo.Echo {
	mw := NewMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(
		RequestID(),
		mw.Global.OriginGuard(),
		mw.Global.CORS(),
		mw.ContextEnhancer.EnhanceContext(),
	)
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.Response {
	t.Helper()
	var body errs.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestOriginGuard(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	called := 0
	e.POST("/api/referrals", func(c echo.Context) error {
		called++
		return c.NoContent(http.StatusCreated)
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/referrals", nil)
		req.Header.Set(echo.HeaderOrigin, "https://evil.example")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.Zero(t, called)
	})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/referrals", nil)
		req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, 1, called)
	})

	t.Run("no origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/referrals", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 2, called)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/referrals", nil)
		req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil)
	s.Config.Server.RateLimit = 0.5

	e := newTestEcho(s)
	e.POST("/api/referrals", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, NewRateLimitMiddleware(s).Limit())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/referrals", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/referrals", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Code)
	require.NotNil(t, body.Action)
	assert.Equal(t, errs.ActionTypeRetry, body.Action.Type)
}

func TestRateLimit_Disabled(t *testing.T) {
	s := newTestServer(t, nil)
	s.Config.Server.RateLimit = 0

	e := newTestEcho(s)
	e.POST("/api/referrals", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, NewRateLimitMiddleware(s).Limit())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/referrals", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("dial tcp 10.0.0.1:5432: connection refused")
	})
	e.GET("/invalid", func(c echo.Context) error {
		return errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "course", Error: "is required"}}, nil)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "NOT_FOUND", body.Code)
		assert.Equal(t, "Route not found", body.Message)
		assert.Equal(t, "Route not found", body.Error)
	})

	t.Run("unexpected error is sanitized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
		assert.Equal(t, "Internal Server Error", body.Error)
		assert.NotContains(t, rec.Body.String(), "10.0.0.1")
	})

	t.Run("http error keeps field errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invalid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.True(t, body.Override)
		assert.Equal(t, "Validation failed", body.Error)
		assert.Equal(t, []errs.FieldError{{Field: "course", Error: "is required"}}, body.Errors)
	})
}

func TestContextEnhancer_StoresRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(t, &logs))
	e.GET("/log", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from service")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
	assert.Contains(t, logs.String(), `"message":"from service"`)
	assert.Contains(t, logs.String(), `"path":"/log"`)
}
