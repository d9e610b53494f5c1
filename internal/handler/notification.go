package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/middleware"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/repository"
)

// NotificationHandler lists and acknowledges the caller's notifications.
// The handler talks to the store directly; there is no business logic
// beyond owner scoping, which the repository enforces.
type NotificationHandler struct {
	Notes repository.NotificationStore
}

func NewNotificationHandler(notes repository.NotificationStore) *NotificationHandler {
	return &NotificationHandler{Notes: notes}
}

type notificationResp struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func toNotificationResp(n model.Notification) notificationResp {
	return notificationResp{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.ReadAt != nil,
		CreatedAt: n.CreatedAt.UTC().Format(timeLayout),
	}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	out, err := h.Notes.ListForUser(c.Request().Context(), id.UserID,
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return apperr.Internal("could not list notifications").WithCause(err)
	}
	resp := make([]notificationResp, 0, len(out))
	for _, n := range out {
		resp = append(resp, toNotificationResp(n))
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": resp})
}

// MarkRead acknowledges one notification.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	noteID, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Notes.MarkRead(c.Request().Context(), noteID, id.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return apperr.Internal("could not update notification").WithCause(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "marked read"})
}
