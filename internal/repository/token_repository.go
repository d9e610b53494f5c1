package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists hashed refresh tokens. The redeem path is a single
// conditional UPDATE so that two server instances racing on the same raw
// token value resolve to exactly one winner inside MySQL, without any
// in-process locking.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row with optional device/IP metadata.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash, device, ip string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, device, ip, expires_at) VALUES (?,?,?,?,?)",
		userID, tokenHash, device, ip, exp)
	return err
}

// Redeem revokes the token identified by hash and returns the owning user
// id. The UPDATE only matches a live row (not revoked, not expired), so
// RowsAffected decides the winner under concurrent redemption. When the
// conditional update misses, a follow-up SELECT classifies the failure.
func (r *TokenRepo) Redeem(ctx context.Context, tokenHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()",
		tokenHash)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, r.classify(ctx, tokenHash)
	}
	var userID uint64
	err = r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens WHERE token_hash=? LIMIT 1", tokenHash).Scan(&userID)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// classify explains why a redeem missed: unknown hash, already revoked, or
// expired. Always returns a non-nil error.
func (r *TokenRepo) classify(ctx context.Context, tokenHash string) error {
	var (
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&expiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if revokedAt.Valid {
		return ErrTokenUsed
	}
	if time.Now().UTC().After(expiresAt) {
		return ErrTokenExpired
	}
	// The row went live between UPDATE and SELECT; treat as used.
	return ErrTokenUsed
}

// Revoke marks a token as revoked. Revoking an unknown or already-revoked
// hash is a no-op so logout stays idempotent.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes every active token of the user. Called on
// password reset and account deactivation to kill all sessions.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
