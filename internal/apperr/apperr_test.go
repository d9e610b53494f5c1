package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasraf/service-desk/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *apperr.Error
		status int
	}{
		{apperr.Validation("bad", nil), http.StatusBadRequest},
		{apperr.Unauthorized("no"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.RateLimited("slow down"), http.StatusTooManyRequests},
		{apperr.Internal("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status(), "code %s", tt.err.Code)
	}
}

func TestWithCauseUnwrap(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := apperr.Internal("could not load user").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "could not load user")
	assert.Contains(t, err.Error(), cause.Error())
}

func TestFrom(t *testing.T) {
	ae := apperr.NotFound("request not found")

	require.Same(t, ae, apperr.From(ae))
	// From sees through wrapping.
	wrapped := fmt.Errorf("handler: %w", ae)
	require.Same(t, ae, apperr.From(wrapped))

	assert.Nil(t, apperr.From(errors.New("plain")))
	assert.Nil(t, apperr.From(nil))
}
