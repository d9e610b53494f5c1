package handler

import (
	"net/http" // HTTP status codes and primitives

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/middleware"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/service"
	"github.com/kasraf/service-desk/internal/validate"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth     *service.AuthService
	Validate *validate.Validator
}

func NewAuthHandler(auth *service.AuthService, v *validate.Validator) *AuthHandler {
	return &AuthHandler{Auth: auth, Validate: v}
}

// ----- DTOs -----

type signupReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetReq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

type verifyOTPReq struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type resendReq struct {
	Email string `json:"email" validate:"required,email"`
}

type userPart struct {
	ID            uint64 `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

type tokenPairResp struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         userPart `json:"user"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

// Signup creates an account and queues the verification email. The
// response never includes tokens; the client logs in separately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	u, err := h.Auth.Signup(c.Request().Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"userId":  u.ID,
		"email":   u.Email,
		"message": "account created, check your email for the verification code",
	})
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password,
		c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  res.Access.Token,
		RefreshToken: res.Refresh.Raw,
		User:         toUserPart(res.User),
	})
}

// Logout revokes the presented refresh token. Always 200: revoking an
// unknown or already-revoked token is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	_ = c.Bind(&req)

	if err := h.Auth.Logout(c.Request().Context(), req.RefreshToken, c.RealIP()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Refresh rotates a refresh token into a new access/refresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	res, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken,
		c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  res.Access.Token,
		RefreshToken: res.Refresh.Raw,
		User:         toUserPart(res.User),
	})
}

// ForgotPassword queues a reset email. The response is identical whether
// or not the email exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	if err := h.Auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	if err := h.Auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword, c.RealIP()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated, please log in again"})
}

// VerifyEmailOTP confirms an account with the emailed 6-digit code.
func (h *AuthHandler) VerifyEmailOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	if err := h.Auth.VerifyEmailByOTP(c.Request().Context(), req.Email, req.OTP, c.RealIP()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// VerifyEmailLink confirms an account via the emailed link token.
func (h *AuthHandler) VerifyEmailLink(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return apperr.Validation("missing verification token", nil)
	}
	if err := h.Auth.VerifyEmailByToken(c.Request().Context(), token, c.RealIP()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// ResendVerification issues a fresh verification token, invalidating any
// previous ones. The response never reveals whether the email exists or is
// already verified.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req resendReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	if err := h.Auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "if the email is registered and unverified, a new code has been sent",
	})
}

// Me returns the authenticated identity; a cheap probe for clients to
// check their token.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperr.Unauthorized("missing bearer token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"userId": id.UserID,
		"email":  id.Email,
		"role":   id.Role,
	})
}
