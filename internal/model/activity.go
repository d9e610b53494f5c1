package model

import "time"

// Activity log actions written on security-relevant and lifecycle events.
const (
	ActionSignup          = "auth.signup"
	ActionLogin           = "auth.login"
	ActionLogout          = "auth.logout"
	ActionPasswordReset   = "auth.password_reset"
	ActionEmailVerified   = "auth.email_verified"
	ActionRequestCreated  = "request.created"
	ActionRequestStatus   = "request.status_changed"
	ActionRequestAssigned = "request.assigned"
	ActionUserDeactivated = "user.deactivated"
)

// ActivityLog is an append-only audit record in the `activity_logs` table.
// Detail is a short human-readable summary; IP is the client address when
// the event originated from an HTTP request.
type ActivityLog struct {
	ID        uint64
	UserID    uint64
	Action    string
	Detail    string
	IP        string
	CreatedAt time.Time
}

// Notification is a user-facing message record in the `notifications`
// table, surfaced by the dashboard.
type Notification struct {
	ID        uint64
	UserID    uint64
	Title     string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}
