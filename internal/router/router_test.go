package router_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/router"
)

// serve registers one route that fails with err and returns the recorded
// response after the error handler ran.
func serve(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = router.ErrorHandler()
	e.GET("/boom", func(echo.Context) error { return err })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rec
}

type envelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_TypedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthorized", apperr.Unauthorized("invalid credentials"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperr.Forbidden("insufficient privileges"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", apperr.Conflict("email is already registered"), http.StatusConflict, "CONFLICT"},
		{"not found", apperr.NotFound("request not found"), http.StatusNotFound, "NOT_FOUND"},
		{"rate limited", apperr.RateLimited("too many attempts, slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestErrorHandler_ValidationFields(t *testing.T) {
	rec := serve(t, apperr.Validation("invalid request", map[string]string{
		"email": "must be a valid email address",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "must be a valid email address", body.Fields["email"])
}

// Unknown errors must never leak internals to the client.
func TestErrorHandler_UnknownError(t *testing.T) {
	rec := serve(t, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

// The attached cause travels to the logs, never to the response body.
func TestErrorHandler_CauseNotSerialized(t *testing.T) {
	rec := serve(t, apperr.Internal("could not load user").
		WithCause(errors.New("driver: bad connection")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "driver: bad connection")
}

func TestErrorHandler_RouteMiss(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = router.ErrorHandler()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "NOT_FOUND", body.Code)
}
