package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each row is
// one logged-in device/session. The plain token is never stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token value.
//  Device    – optional client-reported device/user-agent string.
//  IP        – optional client address captured at issue time.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null while active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	Device    string
	IP        string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// EmailVerificationToken is a one-time signup-confirmation artifact from the
// `email_verification_tokens` table. The long link token and the short
// numeric OTP redeem the same row: once UsedAt is set neither works again.
type EmailVerificationToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	OTP       string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// PasswordResetToken is a one-time reset artifact from the
// `password_reset_tokens` table, with the same single-use and expiry
// semantics as the verification token.
type PasswordResetToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
