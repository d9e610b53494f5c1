package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/queue"
	"github.com/kasraf/service-desk/internal/repository"
)

// EventPublisher ships request lifecycle events to the message broker.
// Production wiring passes queue.PublishRequestEvent; tests substitute a
// recorder.
type EventPublisher func(ctx context.Context, event queue.RequestEvent) error

// RequestService owns the service-request lifecycle. Authorization is
// role-scoped: clients only see and comment on their own requests, staff
// and admins see everything, assignment is admin-only (enforced at the
// route level, re-checked here where it matters for data scoping).
type RequestService struct {
	requests  repository.RequestStore
	users     repository.UserStore
	activity  repository.ActivitySink
	notes     repository.NotificationStore
	publisher EventPublisher
}

func NewRequestService(
	requests repository.RequestStore,
	users repository.UserStore,
	activity repository.ActivitySink,
	notes repository.NotificationStore,
	publisher EventPublisher,
) *RequestService {
	return &RequestService{requests: requests, users: users, activity: activity, notes: notes, publisher: publisher}
}

// CreateInput carries validated fields for a new request.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// Create opens a new request owned by the caller.
func (s *RequestService) Create(ctx context.Context, requesterID uint64, in CreateInput, ip string) (model.ServiceRequest, error) {
	sr := &model.ServiceRequest{
		RequesterID: requesterID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Priority:    in.Priority,
		Status:      model.StatusOpen,
	}
	id, err := s.requests.Create(ctx, sr)
	if err != nil {
		return model.ServiceRequest{}, apperr.Internal("could not create request").WithCause(err)
	}
	sr.ID = id

	s.audit(ctx, requesterID, model.ActionRequestCreated, fmt.Sprintf("request #%d created", id), ip)
	s.publish(ctx, queue.RequestEvent{
		Kind:        queue.EventRequestCreated,
		RequestID:   id,
		RequesterID: requesterID,
		ActorID:     requesterID,
		Title:       sr.Title,
		Priority:    sr.Priority,
		Status:      sr.Status,
	})
	return s.requests.GetByID(ctx, id)
}

// List returns requests visible to the caller. Clients are forced onto
// their own requests regardless of the filter they send.
func (s *RequestService) List(ctx context.Context, callerID uint64, callerRole string, f repository.RequestFilter) ([]model.ServiceRequest, error) {
	if callerRole == model.RoleClient {
		f.RequesterID = callerID
	}
	out, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("could not list requests").WithCause(err)
	}
	return out, nil
}

// Get returns one request, enforcing client scoping.
func (s *RequestService) Get(ctx context.Context, callerID uint64, callerRole string, id uint64) (model.ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ServiceRequest{}, apperr.NotFound("request not found")
		}
		return model.ServiceRequest{}, apperr.Internal("could not load request").WithCause(err)
	}
	if callerRole == model.RoleClient && sr.RequesterID != callerID {
		// Do not confirm the request exists to a stranger.
		return model.ServiceRequest{}, apperr.NotFound("request not found")
	}
	return sr, nil
}

// UpdateStatus applies a lifecycle transition and notifies the requester.
func (s *RequestService) UpdateStatus(ctx context.Context, actorID uint64, id uint64, to, ip string) (model.ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ServiceRequest{}, apperr.NotFound("request not found")
		}
		return model.ServiceRequest{}, apperr.Internal("could not load request").WithCause(err)
	}
	if !model.AllowedTransition(sr.Status, to) {
		return model.ServiceRequest{}, apperr.Conflict(
			fmt.Sprintf("cannot move request from %s to %s", sr.Status, to))
	}
	if err := s.requests.UpdateStatus(ctx, id, sr.Status, to); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.ServiceRequest{}, apperr.Conflict("request was updated concurrently")
		}
		return model.ServiceRequest{}, apperr.Internal("could not update request").WithCause(err)
	}

	s.audit(ctx, actorID, model.ActionRequestStatus,
		fmt.Sprintf("request #%d: %s -> %s", id, sr.Status, to), ip)
	s.notifyUser(ctx, sr.RequesterID, "Request updated",
		fmt.Sprintf("Your request %q is now %s.", sr.Title, to))
	s.publish(ctx, queue.RequestEvent{
		Kind:        queue.EventStatusChanged,
		RequestID:   id,
		RequesterID: sr.RequesterID,
		ActorID:     actorID,
		Title:       sr.Title,
		Priority:    sr.Priority,
		Status:      to,
	})
	return s.requests.GetByID(ctx, id)
}

// Assign hands a request to a staff member and notifies them.
func (s *RequestService) Assign(ctx context.Context, actorID, id, assigneeID uint64, ip string) (model.ServiceRequest, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ServiceRequest{}, apperr.NotFound("assignee not found")
		}
		return model.ServiceRequest{}, apperr.Internal("could not load assignee").WithCause(err)
	}
	if assignee.Role == model.RoleClient {
		return model.ServiceRequest{}, apperr.Validation("assignee must be staff or admin", nil)
	}
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ServiceRequest{}, apperr.NotFound("request not found")
		}
		return model.ServiceRequest{}, apperr.Internal("could not load request").WithCause(err)
	}
	if err := s.requests.Assign(ctx, id, assigneeID); err != nil {
		return model.ServiceRequest{}, apperr.Internal("could not assign request").WithCause(err)
	}

	s.audit(ctx, actorID, model.ActionRequestAssigned,
		fmt.Sprintf("request #%d assigned to user %d", id, assigneeID), ip)
	s.notifyUser(ctx, assigneeID, "Request assigned to you",
		fmt.Sprintf("Request %q has been assigned to you.", sr.Title))
	s.publish(ctx, queue.RequestEvent{
		Kind:        queue.EventRequestAssigned,
		RequestID:   id,
		RequesterID: sr.RequesterID,
		ActorID:     actorID,
		Title:       sr.Title,
		Priority:    sr.Priority,
		Status:      sr.Status,
	})
	return s.requests.GetByID(ctx, id)
}

// Comment appends a comment; clients may only comment on their own
// requests. Commenting notifies the other side of the conversation.
func (s *RequestService) Comment(ctx context.Context, callerID uint64, callerRole string, requestID uint64, body string) (model.RequestComment, error) {
	sr, err := s.Get(ctx, callerID, callerRole, requestID)
	if err != nil {
		return model.RequestComment{}, err
	}
	c := &model.RequestComment{
		RequestID: requestID,
		AuthorID:  callerID,
		Body:      strings.TrimSpace(body),
	}
	id, err := s.requests.AddComment(ctx, c)
	if err != nil {
		return model.RequestComment{}, apperr.Internal("could not add comment").WithCause(err)
	}
	c.ID = id
	c.CreatedAt = time.Now().UTC()

	if callerID != sr.RequesterID {
		s.notifyUser(ctx, sr.RequesterID, "New comment on your request",
			fmt.Sprintf("Request %q has a new comment.", sr.Title))
	} else if sr.AssigneeID != nil {
		s.notifyUser(ctx, *sr.AssigneeID, "New comment",
			fmt.Sprintf("Request %q has a new comment from the requester.", sr.Title))
	}
	return *c, nil
}

// Comments lists a request's comments with the same visibility rules as
// Get.
func (s *RequestService) Comments(ctx context.Context, callerID uint64, callerRole string, requestID uint64) ([]model.RequestComment, error) {
	if _, err := s.Get(ctx, callerID, callerRole, requestID); err != nil {
		return nil, err
	}
	out, err := s.requests.ListComments(ctx, requestID)
	if err != nil {
		return nil, apperr.Internal("could not list comments").WithCause(err)
	}
	return out, nil
}

func (s *RequestService) audit(ctx context.Context, userID uint64, action, detail, ip string) {
	err := s.activity.Append(ctx, &model.ActivityLog{UserID: userID, Action: action, Detail: detail, IP: ip})
	if err != nil {
		log.Printf("requests: audit %s failed: %v", action, err)
	}
}

func (s *RequestService) notifyUser(ctx context.Context, userID uint64, title, body string) {
	err := s.notes.Create(ctx, &model.Notification{UserID: userID, Title: title, Body: body})
	if err != nil {
		log.Printf("requests: notify user %d failed: %v", userID, err)
	}
}

func (s *RequestService) publish(ctx context.Context, ev queue.RequestEvent) {
	if s.publisher == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	// Broker outages must not fail the request; the event stream is
	// best-effort.
	_ = s.publisher(ctx, ev)
}
