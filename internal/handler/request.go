package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/middleware"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/repository"
	"github.com/kasraf/service-desk/internal/service"
	"github.com/kasraf/service-desk/internal/validate"
)

// RequestHandler serves the service-request endpoints.
type RequestHandler struct {
	Requests *service.RequestService
	Validate *validate.Validator
}

func NewRequestHandler(requests *service.RequestService, v *validate.Validator) *RequestHandler {
	return &RequestHandler{Requests: requests, Validate: v}
}

type createRequestReq struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category" validate:"omitempty,max=100"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high urgent"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed cancelled"`
}

type assignReq struct {
	AssigneeID uint64 `json:"assigneeId" validate:"required"`
}

type commentReq struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type requestResp struct {
	ID          uint64  `json:"id"`
	RequesterID uint64  `json:"requesterId"`
	AssigneeID  *uint64 `json:"assigneeId,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type commentResp struct {
	ID        uint64 `json:"id"`
	RequestID uint64 `json:"requestId"`
	AuthorID  uint64 `json:"authorId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func toRequestResp(sr model.ServiceRequest) requestResp {
	return requestResp{
		ID:          sr.ID,
		RequesterID: sr.RequesterID,
		AssigneeID:  sr.AssigneeID,
		Title:       sr.Title,
		Description: sr.Description,
		Category:    sr.Category,
		Priority:    sr.Priority,
		Status:      sr.Status,
		CreatedAt:   sr.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   sr.UpdatedAt.UTC().Format(timeLayout),
	}
}

func toCommentResp(c model.RequestComment) commentResp {
	return commentResp{
		ID:        c.ID,
		RequestID: c.RequestID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.UTC().Format(timeLayout),
	}
}

// Create opens a new request owned by the caller.
func (h *RequestHandler) Create(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)

	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	sr, err := h.Requests.Create(c.Request().Context(), id.UserID, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	}, c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRequestResp(sr))
}

// List returns requests visible to the caller, filtered by optional
// status/priority query parameters.
func (h *RequestHandler) List(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)

	f := repository.RequestFilter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	}
	out, err := h.Requests.List(c.Request().Context(), id.UserID, id.Role, f)
	if err != nil {
		return err
	}
	resp := make([]requestResp, 0, len(out))
	for _, sr := range out {
		resp = append(resp, toRequestResp(sr))
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": resp})
}

// Get returns one request.
func (h *RequestHandler) Get(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	reqID, err := pathID(c)
	if err != nil {
		return err
	}
	sr, err := h.Requests.Get(c.Request().Context(), id.UserID, id.Role, reqID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResp(sr))
}

// UpdateStatus applies a lifecycle transition (staff/admin only, enforced
// by route middleware).
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	reqID, err := pathID(c)
	if err != nil {
		return err
	}

	var req statusReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	sr, err := h.Requests.UpdateStatus(c.Request().Context(), id.UserID, reqID, req.Status, c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResp(sr))
}

// Assign hands a request to a staff member (admin only).
func (h *RequestHandler) Assign(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	reqID, err := pathID(c)
	if err != nil {
		return err
	}

	var req assignReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	sr, err := h.Requests.Assign(c.Request().Context(), id.UserID, reqID, req.AssigneeID, c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResp(sr))
}

// Comment appends a comment to a request.
func (h *RequestHandler) Comment(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	reqID, err := pathID(c)
	if err != nil {
		return err
	}

	var req commentReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	if err := h.Validate.Struct(&req); err != nil {
		return err
	}

	cm, err := h.Requests.Comment(c.Request().Context(), id.UserID, id.Role, reqID, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentResp(cm))
}

// Comments lists a request's comments.
func (h *RequestHandler) Comments(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	reqID, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.Requests.Comments(c.Request().Context(), id.UserID, id.Role, reqID)
	if err != nil {
		return err
	}
	resp := make([]commentResp, 0, len(out))
	for _, cm := range out {
		resp = append(resp, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": resp})
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id", nil)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
