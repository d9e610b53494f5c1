package repository

import (
	"context"
	"database/sql"
	"time"
)

// OneTimeRepo persists email-verification and password-reset tokens. Both
// families are single-use: redemption is the same conditional-UPDATE
// pattern as refresh tokens, keyed on used_at instead of revoked_at.
//
// Verification rows carry a long link token and a short numeric OTP that
// redeem the same row. Both public redemption methods funnel into one
// private function so the two paths can never both succeed against the
// same record.
type OneTimeRepo struct{ DB *sql.DB }

func NewOneTimeRepo(db *sql.DB) *OneTimeRepo { return &OneTimeRepo{DB: db} }

// CreateVerification inserts a verification token/OTP pair.
func (r *OneTimeRepo) CreateVerification(ctx context.Context, userID uint64, token, otp string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO email_verification_tokens (user_id, token, otp, expires_at) VALUES (?,?,?,?)",
		userID, token, otp, exp)
	return err
}

// RedeemVerificationByToken redeems a row by its link token.
func (r *OneTimeRepo) RedeemVerificationByToken(ctx context.Context, token string) (uint64, error) {
	return r.redeem(ctx, "email_verification_tokens", "token=?", token)
}

// RedeemVerificationByOTP redeems a row by the user-scoped numeric code.
func (r *OneTimeRepo) RedeemVerificationByOTP(ctx context.Context, userID uint64, otp string) (uint64, error) {
	return r.redeem(ctx, "email_verification_tokens", "user_id=? AND otp=?", userID, otp)
}

// InvalidateVerificationsForUser marks every outstanding verification row
// of the user as used so a resend leaves only the fresh code redeemable.
func (r *OneTimeRepo) InvalidateVerificationsForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE email_verification_tokens SET used_at=NOW() WHERE user_id=? AND used_at IS NULL",
		userID)
	return err
}

// CreateReset inserts a password-reset token.
func (r *OneTimeRepo) CreateReset(ctx context.Context, userID uint64, token string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, token, exp)
	return err
}

// RedeemReset redeems a password-reset token.
func (r *OneTimeRepo) RedeemReset(ctx context.Context, token string) (uint64, error) {
	return r.redeem(ctx, "password_reset_tokens", "token=?", token)
}

// redeem performs the atomic mark-used-and-return-owner step shared by all
// one-time token paths. The conditional UPDATE matches only a live row;
// when it misses, a follow-up SELECT classifies the failure the same way
// TokenRepo does.
func (r *OneTimeRepo) redeem(ctx context.Context, table, where string, args ...any) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE "+table+" SET used_at=NOW() WHERE "+where+" AND used_at IS NULL AND expires_at > UTC_TIMESTAMP()",
		args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, r.classify(ctx, table, where, args...)
	}
	var userID uint64
	err = r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM "+table+" WHERE "+where+" LIMIT 1", args...).Scan(&userID)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (r *OneTimeRepo) classify(ctx context.Context, table, where string, args ...any) error {
	var (
		expiresAt time.Time
		usedAt    sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT expires_at, used_at FROM "+table+" WHERE "+where+" ORDER BY id DESC LIMIT 1",
		args...).Scan(&expiresAt, &usedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if usedAt.Valid {
		return ErrTokenUsed
	}
	if time.Now().UTC().After(expiresAt) {
		return ErrTokenExpired
	}
	return ErrTokenUsed
}
