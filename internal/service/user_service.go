package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/repository"
)

// UserService covers the admin user-management surface.
type UserService struct {
	users    repository.UserStore
	tokens   repository.RefreshTokenStore
	activity repository.ActivitySink
}

func NewUserService(users repository.UserStore, tokens repository.RefreshTokenStore, activity repository.ActivitySink) *UserService {
	return &UserService{users: users, tokens: tokens, activity: activity}
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	out, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("could not list users").WithCause(err)
	}
	return out, nil
}

// SetActive activates or deactivates an account. Deactivation also
// revokes every refresh token, so existing sessions die with the account.
func (s *UserService) SetActive(ctx context.Context, actorID, userID uint64, active bool, ip string) error {
	if actorID == userID && !active {
		return apperr.Conflict("cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("could not update user").WithCause(err)
	}
	if !active {
		if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
			return apperr.Internal("could not revoke sessions").WithCause(err)
		}
		err := s.activity.Append(ctx, &model.ActivityLog{
			UserID: actorID,
			Action: model.ActionUserDeactivated,
			Detail: fmt.Sprintf("user %d deactivated, sessions revoked", userID),
			IP:     ip,
		})
		if err != nil {
			log.Printf("users: audit deactivation of %d failed: %v", userID, err)
		}
	}
	return nil
}
