// Package service holds the business flows between handlers and
// repositories. AuthService owns the whole session/token lifecycle;
// RequestService owns the helpdesk ticket lifecycle.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/auth"
	"github.com/kasraf/service-desk/internal/config"
	"github.com/kasraf/service-desk/internal/mailer"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/repository"
)

// AuthService orchestrates signup, login, logout, refresh, password-reset
// and email-verification flows. All session state lives in the token
// stores; the service itself is stateless and safe for concurrent use.
type AuthService struct {
	cfg      config.Config
	users    repository.UserStore
	tokens   repository.RefreshTokenStore
	onetime  repository.OneTimeTokenStore
	mail     mailer.Mailer
	activity repository.ActivitySink
	notes    repository.NotificationStore
}

func NewAuthService(
	cfg config.Config,
	users repository.UserStore,
	tokens repository.RefreshTokenStore,
	onetime repository.OneTimeTokenStore,
	mail mailer.Mailer,
	activity repository.ActivitySink,
	notes repository.NotificationStore,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		onetime:  onetime,
		mail:     mail,
		activity: activity,
		notes:    notes,
	}
}

// SignupInput carries validated signup fields. The handler has already
// enforced the password policy.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthResult is returned by Login and Refresh: the user plus a fresh
// access/refresh pair. Refresh.Raw is the only time the raw refresh token
// leaves the server.
type AuthResult struct {
	User    model.User
	Access  auth.AccessToken
	Refresh auth.RefreshToken
}

// Signup creates an unverified account and queues the verification email.
// The password is hashed before the uniqueness check resolves, so the
// "email taken" and "created" paths do comparable work.
func (s *AuthService) Signup(ctx context.Context, in SignupInput, ip string) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, apperr.Internal("could not process signup").WithCause(err)
	}

	u := &model.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Phone:         strings.TrimSpace(in.Phone),
		Role:          model.RoleClient,
		IsActive:      true,
		EmailVerified: false,
	}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, apperr.Conflict("email is already registered")
		}
		return model.User{}, apperr.Internal("could not create user").WithCause(err)
	}
	u.ID = id

	if err := s.issueVerification(ctx, u); err != nil {
		// The account exists; verification can be re-sent later.
		log.Printf("auth: queue verification for user %d failed: %v", id, err)
	}

	s.audit(ctx, id, model.ActionSignup, "account created", ip)
	return *u, nil
}

// Login verifies credentials and issues a token pair. A missing account
// and a wrong password collapse into the same generic unauthorized error
// so callers cannot probe which factor failed. Deactivated accounts get a
// distinct forbidden error: their identity is already proven at that
// point.
func (s *AuthService) Login(ctx context.Context, email, password, device, ip string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal("could not load user").WithCause(err)
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		// Corrupt stored hash: verification fails, with a trace for ops.
		log.Printf("auth: corrupt password hash for user %d: %v", u.ID, err)
	}
	if !ok {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("account is deactivated")
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		log.Printf("auth: touch last login for user %d failed: %v", u.ID, err)
	}

	res, err := s.issuePair(ctx, u, device, ip)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, u.ID, model.ActionLogin, "logged in", ip)
	return res, nil
}

// Logout revokes the session behind the presented refresh token. It is
// idempotent: unknown, expired and already-revoked tokens all count as a
// successful logout.
func (s *AuthService) Logout(ctx context.Context, rawRefresh, ip string) error {
	raw := strings.TrimSpace(rawRefresh)
	if raw == "" {
		return nil
	}
	hash := auth.HashRefreshRaw(raw)
	userID, err := s.tokens.Redeem(ctx, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound),
			errors.Is(err, repository.ErrTokenUsed),
			errors.Is(err, repository.ErrTokenExpired):
			return nil
		default:
			return apperr.Internal("could not log out").WithCause(err)
		}
	}
	s.audit(ctx, userID, model.ActionLogout, "logged out", ip)
	return nil
}

// Refresh redeems a refresh token and rotates it: the redeemed record is
// revoked inside the store's conditional update, and a brand-new
// access/refresh pair is issued. A replayed, expired or unknown token
// fails with a generic unauthorized error, forcing re-login.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh, device, ip string) (*AuthResult, error) {
	raw := strings.TrimSpace(rawRefresh)
	if raw == "" {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	userID, err := s.tokens.Redeem(ctx, auth.HashRefreshRaw(raw))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound),
			errors.Is(err, repository.ErrTokenUsed),
			errors.Is(err, repository.ErrTokenExpired):
			return nil, apperr.Unauthorized("invalid refresh token")
		default:
			return nil, apperr.Internal("could not refresh session").WithCause(err)
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("account is deactivated")
	}
	return s.issuePair(ctx, u, device, ip)
}

// ForgotPassword creates a reset token and queues the reset email. The
// caller always sees success; an unknown email is indistinguishable from a
// known one.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperr.Internal("could not process request").WithCause(err)
	}

	token, err := auth.NewLinkToken()
	if err != nil {
		return apperr.Internal("could not create reset token").WithCause(err)
	}
	exp := time.Now().UTC().Add(time.Duration(s.cfg.ResetTTLMin) * time.Minute)
	if err := s.onetime.CreateReset(ctx, u.ID, token, exp); err != nil {
		return apperr.Internal("could not store reset token").WithCause(err)
	}

	link := s.cfg.BaseURL + "/reset-password?token=" + token
	if err := s.mail.SendPasswordReset(ctx, u.Email, u.FirstName, link); err != nil {
		log.Printf("auth: queue reset mail for user %d failed: %v", u.ID, err)
	}
	return nil
}

// ResetPassword redeems a reset token, replaces the password and revokes
// every refresh token of the user, so a reset terminates all other active
// sessions.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, ip string) error {
	userID, err := s.onetime.RedeemReset(ctx, strings.TrimSpace(token))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound),
			errors.Is(err, repository.ErrTokenUsed),
			errors.Is(err, repository.ErrTokenExpired):
			return apperr.Unauthorized("invalid or expired reset token")
		default:
			return apperr.Internal("could not reset password").WithCause(err)
		}
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal("could not reset password").WithCause(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal("could not reset password").WithCause(err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return apperr.Internal("could not revoke sessions").WithCause(err)
	}

	s.audit(ctx, userID, model.ActionPasswordReset, "password reset, all sessions revoked", ip)
	s.notify(ctx, userID, "Password changed",
		"Your password was just changed. If this was not you, contact support immediately.")
	return nil
}

// VerifyEmailByToken marks the account verified using the long link token.
func (s *AuthService) VerifyEmailByToken(ctx context.Context, token, ip string) error {
	userID, err := s.onetime.RedeemVerificationByToken(ctx, strings.TrimSpace(token))
	return s.finishVerification(ctx, userID, err, ip)
}

// VerifyEmailByOTP marks the account verified using the 6-digit code. The
// code is scoped to the email's account; both paths redeem the same stored
// record, so whichever lands first invalidates the other.
func (s *AuthService) VerifyEmailByOTP(ctx context.Context, email, otp, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Unauthorized("invalid or expired verification code")
	}
	userID, err := s.onetime.RedeemVerificationByOTP(ctx, u.ID, strings.TrimSpace(otp))
	return s.finishVerification(ctx, userID, err, ip)
}

func (s *AuthService) finishVerification(ctx context.Context, userID uint64, redeemErr error, ip string) error {
	if redeemErr != nil {
		switch {
		case errors.Is(redeemErr, repository.ErrNotFound),
			errors.Is(redeemErr, repository.ErrTokenUsed),
			errors.Is(redeemErr, repository.ErrTokenExpired):
			return apperr.Unauthorized("invalid or expired verification code")
		default:
			return apperr.Internal("could not verify email").WithCause(redeemErr)
		}
	}
	if err := s.users.SetEmailVerified(ctx, userID); err != nil {
		return apperr.Internal("could not verify email").WithCause(err)
	}
	s.audit(ctx, userID, model.ActionEmailVerified, "email verified", ip)
	return nil
}

// ResendVerification invalidates any outstanding verification tokens and
// issues a fresh one. Unknown and already-verified emails return success
// without side effects, matching the forgot-password anti-enumeration
// stance.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperr.Internal("could not process request").WithCause(err)
	}
	if u.EmailVerified {
		return nil
	}

	if err := s.onetime.InvalidateVerificationsForUser(ctx, u.ID); err != nil {
		return apperr.Internal("could not refresh verification").WithCause(err)
	}
	if err := s.issueVerification(ctx, &u); err != nil {
		return apperr.Internal("could not refresh verification").WithCause(err)
	}
	return nil
}

// issuePair mints an access token and a rotated refresh token, persisting
// only the refresh token's hash together with the caller metadata.
func (s *AuthService) issuePair(ctx context.Context, u model.User, device, ip string) (*AuthResult, error) {
	access, err := auth.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, apperr.Internal("could not issue access token").WithCause(err)
	}
	refresh, err := auth.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, apperr.Internal("could not issue refresh token").WithCause(err)
	}
	if err := s.tokens.Store(ctx, u.ID, auth.HashRefreshRaw(refresh.Raw), device, ip, refresh.Exp); err != nil {
		return nil, apperr.Internal("could not persist session").WithCause(err)
	}
	return &AuthResult{User: u, Access: access, Refresh: refresh}, nil
}

// issueVerification creates a verification token/OTP pair and queues the
// email carrying both.
func (s *AuthService) issueVerification(ctx context.Context, u *model.User) error {
	token, err := auth.NewLinkToken()
	if err != nil {
		return err
	}
	otp, err := auth.NewOTP()
	if err != nil {
		return err
	}
	exp := time.Now().UTC().Add(time.Duration(s.cfg.VerifyTTLMin) * time.Minute)
	if err := s.onetime.CreateVerification(ctx, u.ID, token, otp, exp); err != nil {
		return err
	}
	link := s.cfg.BaseURL + "/v1/auth/verify-email/" + token
	return s.mail.SendVerification(ctx, u.Email, u.FirstName, link, otp)
}

// audit appends an activity log entry; failures are logged, never
// propagated, since audit writes must not fail the user-facing flow.
func (s *AuthService) audit(ctx context.Context, userID uint64, action, detail, ip string) {
	err := s.activity.Append(ctx, &model.ActivityLog{UserID: userID, Action: action, Detail: detail, IP: ip})
	if err != nil {
		log.Printf("auth: audit %s for user %d failed: %v", action, userID, err)
	}
}

func (s *AuthService) notify(ctx context.Context, userID uint64, title, body string) {
	err := s.notes.Create(ctx, &model.Notification{UserID: userID, Title: title, Body: body})
	if err != nil {
		log.Printf("auth: notify user %d failed: %v", userID, err)
	}
}
