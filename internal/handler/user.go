package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/middleware"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/service"
	"github.com/kasraf/service-desk/internal/validate"
)

// UserHandler serves the admin user-management endpoints.
type UserHandler struct {
	Users    *service.UserService
	Validate *validate.Validator
}

func NewUserHandler(users *service.UserService, v *validate.Validator) *UserHandler {
	return &UserHandler{Users: users, Validate: v}
}

type setActiveReq struct {
	Active *bool `json:"active" validate:"required"`
}

type adminUserResp struct {
	ID            uint64 `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role"`
	IsActive      bool   `json:"isActive"`
	EmailVerified bool   `json:"emailVerified"`
	LastLoginAt   string `json:"lastLoginAt,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

func toAdminUserResp(u model.User) adminUserResp {
	out := adminUserResp{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		Role:          u.Role,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt.UTC().Format(timeLayout),
	}
	if u.LastLoginAt != nil {
		out.LastLoginAt = u.LastLoginAt.UTC().Format(timeLayout)
	}
	return out
}

// List returns a page of users for the admin dashboard. Password hashes
// never leave the handler layer.
func (h *UserHandler) List(c echo.Context) error {
	out, err := h.Users.List(c.Request().Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	resp := make([]adminUserResp, 0, len(out))
	for _, u := range out {
		resp = append(resp, toAdminUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": resp})
}

// SetActive activates or deactivates an account.
func (h *UserHandler) SetActive(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	userID, err := pathID(c)
	if err != nil {
		return err
	}

	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	if err := h.Users.SetActive(c.Request().Context(), id.UserID, userID, *req.Active, c.RealIP()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}
