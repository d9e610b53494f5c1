package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/handler"    // import the handlers that implement endpoint logic
	"github.com/kasraf/service-desk/internal/middleware" // import middleware for authentication, roles, rate limiting
	"github.com/kasraf/service-desk/internal/model"
)

// errorBody is the single error envelope every failure serializes to.
// Bodies never include stack traces, password hashes or token secrets.
type errorBody struct {
	Code    apperr.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorHandler is the boundary translator: every typed error raised by a
// middleware stage, handler or service is mapped here to a status + code +
// message exactly once. Unknown errors are downgraded to a generic
// internal response so internals never leak to clients.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := errorBody{Code: apperr.CodeInternal, Message: "internal error"}
		status := http.StatusInternalServerError

		if ae := apperr.From(err); ae != nil {
			body = errorBody{Code: ae.Code, Message: ae.Message, Fields: ae.Fields}
			status = ae.Status()
		} else if he, ok := err.(*echo.HTTPError); ok {
			// Echo's own errors (404 route miss, 405, body too large).
			status = he.Code
			body.Message = http.StatusText(status)
			switch status {
			case http.StatusNotFound:
				body.Code = apperr.CodeNotFound
			case http.StatusBadRequest:
				body.Code = apperr.CodeValidation
			}
		} else {
			c.Logger().Errorf("unhandled error: %v", err)
		}

		if status >= http.StatusInternalServerError {
			c.Logger().Errorf("request failed: %v", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

// RegisterRoutes registers routes that require neither authentication nor
// rate limiting. Currently only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints under /v1/auth. All
// of them are public and sit behind the rate limiter: they are the brute
// force surface of the application.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", ratelimit)
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Logout is public by design: possession of the refresh token is the
	// credential being revoked.
	g.POST("/logout", a.Logout)
	g.POST("/refresh", a.Refresh)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	g.POST("/verify-email/otp", a.VerifyEmailOTP)
	g.GET("/verify-email/:token", a.VerifyEmailLink)
	g.POST("/resend-verification", a.ResendVerification)
}

// RegisterAPI registers the protected surface under /v1. The pipeline per
// route is: authenticate -> (cache on read routes) -> authorize -> handler;
// each stage short-circuits with a typed error handled by ErrorHandler.
func RegisterAPI(
	e *echo.Echo,
	a *handler.AuthHandler,
	r *handler.RequestHandler,
	u *handler.UserHandler,
	n *handler.NotificationHandler,
	jwtSecret string,
	cache echo.MiddlewareFunc,
) {
	api := e.Group("/v1")
	api.Use(middleware.Authenticate(jwtSecret))

	api.GET("/me", a.Me)

	api.POST("/requests", r.Create)
	api.GET("/requests", r.List, cache)
	api.GET("/requests/:id", r.Get, cache)
	api.PATCH("/requests/:id/status", r.UpdateStatus,
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
	api.PATCH("/requests/:id/assign", r.Assign,
		middleware.RequireRole(model.RoleAdmin))
	api.POST("/requests/:id/comments", r.Comment)
	api.GET("/requests/:id/comments", r.Comments, cache)

	api.GET("/notifications", n.List)
	api.POST("/notifications/:id/read", n.MarkRead)

	admin := api.Group("/users", middleware.RequireRole(model.RoleAdmin))
	admin.GET("", u.List)
	admin.PATCH("/:id/active", u.SetActive)
}
