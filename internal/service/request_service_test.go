package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasraf/service-desk/internal/apperr"
	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/queue"
	"github.com/kasraf/service-desk/internal/repository"
	"github.com/kasraf/service-desk/internal/service"
)

// eventRecorder is an EventPublisher that keeps the published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []queue.RequestEvent
}

func (r *eventRecorder) publish(_ context.Context, ev queue.RequestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type requestEnv struct {
	svc      *service.RequestService
	requests *fakeRequests
	users    *fakeUsers
	notes    *fakeNotes
	events   *eventRecorder

	client, otherClient, staff, admin model.User
}

func newRequestEnv(t *testing.T) *requestEnv {
	t.Helper()
	env := &requestEnv{
		requests: newFakeRequests(),
		users:    newFakeUsers(),
		notes:    &fakeNotes{},
		events:   &eventRecorder{},
	}
	env.svc = service.NewRequestService(env.requests, env.users, &fakeActivity{}, env.notes, env.events.publish)

	ctx := context.Background()
	mk := func(email, role string) model.User {
		u := &model.User{Email: email, Role: role, IsActive: true}
		id, err := env.users.Create(ctx, u)
		require.NoError(t, err)
		u.ID = id
		return *u
	}
	env.client = mk("client@example.com", model.RoleClient)
	env.otherClient = mk("other@example.com", model.RoleClient)
	env.staff = mk("staff@example.com", model.RoleStaff)
	env.admin = mk("admin@example.com", model.RoleAdmin)
	return env
}

func (env *requestEnv) create(t *testing.T, requester uint64, title string) model.ServiceRequest {
	t.Helper()
	sr, err := env.svc.Create(context.Background(), requester, service.CreateInput{
		Title:       title,
		Description: "printer on floor 3 jams on duplex",
		Category:    "hardware",
		Priority:    model.PriorityMedium,
	}, "")
	require.NoError(t, err)
	return sr
}

func TestRequestService_CreateAndGet(t *testing.T) {
	env := newRequestEnv(t)
	ctx := context.Background()

	sr := env.create(t, env.client.ID, "Printer jam")
	assert.Equal(t, model.StatusOpen, sr.Status)
	assert.Equal(t, env.client.ID, sr.RequesterID)
	assert.Equal(t, []string{queue.EventRequestCreated}, env.events.kinds())

	// The owner and staff can read it.
	_, err := env.svc.Get(ctx, env.client.ID, model.RoleClient, sr.ID)
	require.NoError(t, err)
	_, err = env.svc.Get(ctx, env.staff.ID, model.RoleStaff, sr.ID)
	require.NoError(t, err)

	// A stranger gets not-found, never forbidden: existence is not leaked.
	_, err = env.svc.Get(ctx, env.otherClient.ID, model.RoleClient, sr.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)

	_, err = env.svc.Get(ctx, env.client.ID, model.RoleClient, 9999)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestRequestService_ListScoping(t *testing.T) {
	env := newRequestEnv(t)
	ctx := context.Background()

	env.create(t, env.client.ID, "Mine")
	env.create(t, env.otherClient.ID, "Theirs")

	// A client sees only their own, even when the filter asks for more.
	out, err := env.svc.List(ctx, env.client.ID, model.RoleClient, repository.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, env.client.ID, out[0].RequesterID)

	out, err = env.svc.List(ctx, env.client.ID, model.RoleClient,
		repository.RequestFilter{RequesterID: env.otherClient.ID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, env.client.ID, out[0].RequesterID)

	// Staff sees everything.
	out, err = env.svc.List(ctx, env.staff.ID, model.RoleStaff, repository.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestRequestService_UpdateStatus(t *testing.T) {
	env := newRequestEnv(t)
	ctx := context.Background()
	sr := env.create(t, env.client.ID, "Printer jam")

	got, err := env.svc.UpdateStatus(ctx, env.staff.ID, sr.ID, model.StatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)

	// The requester is told about the change.
	assert.NotEmpty(t, env.notes.forUser(env.client.ID))
	assert.Contains(t, env.events.kinds(), queue.EventStatusChanged)

	// Illegal transitions are rejected with a conflict.
	_, err = env.svc.UpdateStatus(ctx, env.staff.ID, sr.ID, model.StatusOpen, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.From(err).Code)

	_, err = env.svc.UpdateStatus(ctx, env.staff.ID, 9999, model.StatusResolved, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestRequestService_Assign(t *testing.T) {
	env := newRequestEnv(t)
	ctx := context.Background()
	sr := env.create(t, env.client.ID, "Printer jam")

	got, err := env.svc.Assign(ctx, env.admin.ID, sr.ID, env.staff.ID, "")
	require.NoError(t, err)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, env.staff.ID, *got.AssigneeID)
	assert.NotEmpty(t, env.notes.forUser(env.staff.ID), "assignee is notified")
	assert.Contains(t, env.events.kinds(), queue.EventRequestAssigned)

	// Clients cannot be assignees.
	_, err = env.svc.Assign(ctx, env.admin.ID, sr.ID, env.otherClient.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)

	_, err = env.svc.Assign(ctx, env.admin.ID, sr.ID, 9999, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestRequestService_Comments(t *testing.T) {
	env := newRequestEnv(t)
	ctx := context.Background()
	sr := env.create(t, env.client.ID, "Printer jam")
	_, err := env.svc.Assign(ctx, env.admin.ID, sr.ID, env.staff.ID, "")
	require.NoError(t, err)

	// A staff comment notifies the requester.
	before := len(env.notes.forUser(env.client.ID))
	_, err = env.svc.Comment(ctx, env.staff.ID, model.RoleStaff, sr.ID, "ordered a replacement part")
	require.NoError(t, err)
	assert.Greater(t, len(env.notes.forUser(env.client.ID)), before)

	// A requester comment notifies the assignee.
	beforeStaff := len(env.notes.forUser(env.staff.ID))
	_, err = env.svc.Comment(ctx, env.client.ID, model.RoleClient, sr.ID, "still jamming today")
	require.NoError(t, err)
	assert.Greater(t, len(env.notes.forUser(env.staff.ID)), beforeStaff)

	out, err := env.svc.Comments(ctx, env.client.ID, model.RoleClient, sr.ID)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	// Strangers can neither read nor write comments.
	_, err = env.svc.Comment(ctx, env.otherClient.ID, model.RoleClient, sr.ID, "drive-by")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
	_, err = env.svc.Comments(ctx, env.otherClient.ID, model.RoleClient, sr.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}
