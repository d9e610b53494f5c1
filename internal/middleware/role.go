package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/kasraf/service-desk/internal/apperr"
)

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the given roles. It assumes Authenticate already ran on
// the route; a missing identity is treated as unauthenticated rather than
// forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return apperr.Unauthorized("missing bearer token")
			}
			if !allowed[id.Role] {
				return apperr.Forbidden("insufficient privileges")
			}
			return next(c)
		}
	}
}
