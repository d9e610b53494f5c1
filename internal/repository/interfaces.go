package repository

import (
	"context"
	"time"

	"github.com/kasraf/service-desk/internal/model"
)

// The interfaces below are what services depend on. They are constructed
// once at startup and passed by reference; nothing resolves a repository
// through a global. Tests substitute in-memory fakes.

// UserStore is the user-record collaborator of the session service.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	SetEmailVerified(ctx context.Context, id uint64) error
	SetActive(ctx context.Context, id uint64, active bool) error
	TouchLastLogin(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// RefreshTokenStore persists hashed refresh tokens and enforces the
// at-most-one-redemption invariant.
type RefreshTokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash, device, ip string, exp time.Time) error
	// Redeem atomically revokes the token identified by hash and returns
	// the owning user id. Exactly one of two concurrent calls with the
	// same hash succeeds; the loser gets ErrTokenUsed (or ErrNotFound /
	// ErrTokenExpired when applicable).
	Redeem(ctx context.Context, tokenHash string) (uint64, error)
	// Revoke marks a token revoked. Unknown or already-revoked hashes are
	// not an error; logout is idempotent.
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// OneTimeTokenStore persists email-verification and password-reset tokens.
type OneTimeTokenStore interface {
	CreateVerification(ctx context.Context, userID uint64, token, otp string, exp time.Time) error
	// RedeemVerificationByToken and RedeemVerificationByOTP redeem the
	// same underlying row; whichever lands first invalidates both paths.
	RedeemVerificationByToken(ctx context.Context, token string) (uint64, error)
	RedeemVerificationByOTP(ctx context.Context, userID uint64, otp string) (uint64, error)
	// InvalidateVerificationsForUser marks every outstanding verification
	// token of the user used, so resends cannot stockpile redeemable codes.
	InvalidateVerificationsForUser(ctx context.Context, userID uint64) error
	CreateReset(ctx context.Context, userID uint64, token string, exp time.Time) error
	RedeemReset(ctx context.Context, token string) (uint64, error)
}

// RequestStore owns service requests and their comments.
type RequestStore interface {
	Create(ctx context.Context, r *model.ServiceRequest) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.ServiceRequest, error)
	List(ctx context.Context, f RequestFilter) ([]model.ServiceRequest, error)
	// UpdateStatus applies a transition conditionally on the current
	// status; a concurrent update that already moved the row away from
	// `from` yields ErrConflict.
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
	Assign(ctx context.Context, id, assigneeID uint64) error
	AddComment(ctx context.Context, c *model.RequestComment) (uint64, error)
	ListComments(ctx context.Context, requestID uint64) ([]model.RequestComment, error)
}

// RequestFilter narrows List results. Zero values mean "any".
type RequestFilter struct {
	RequesterID uint64
	AssigneeID  uint64
	Status      string
	Priority    string
	Limit       int
	Offset      int
}

// ActivitySink is the append-only audit log collaborator.
type ActivitySink interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
}

// NotificationStore is the user-facing message sink and reader.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint64) error
}
