package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/auth"
)

// Identity is the authenticated-request context value produced by the
// Authenticate stage. Handlers receive it through CurrentIdentity instead
// of fishing untyped claims out of the request.
type Identity struct {
	UserID uint64
	Email  string
	Role   string
}

// identityKey is the single context key the Identity travels under.
const identityKey = "identity"

// Authenticate returns an Echo middleware that validates a Bearer access
// token statelessly and places the token's identity into the request
// context. Verification errors propagate as typed errors to the boundary
// translator; an expired token yields a different message than a malformed
// one so clients know whether to attempt a refresh or force a re-login.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the JWT.
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return apperr.Unauthorized("missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := auth.VerifyAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return apperr.Unauthorized("access token expired")
				}
				return apperr.Unauthorized("invalid access token")
			}

			c.Set(identityKey, Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			return next(c)
		}
	}
}

// CurrentIdentity returns the Identity stored by Authenticate. The second
// return value is false on routes that did not pass through the
// authentication stage.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
