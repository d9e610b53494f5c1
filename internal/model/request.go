package model

import "time"

// ServiceRequest status lifecycle. Open requests may be cancelled by their
// owner; everything else moves forward through staff updates.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
	StatusCancelled  = "cancelled"
)

// Priority values accepted on create.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ServiceRequest mirrors the `service_requests` table: one helpdesk ticket
// raised by a client and worked by staff.
type ServiceRequest struct {
	ID          uint64
	RequesterID uint64
	AssigneeID  *uint64
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequestComment mirrors the `request_comments` table.
type RequestComment struct {
	ID        uint64
	RequestID uint64
	AuthorID  uint64
	Body      string
	CreatedAt time.Time
}

// AllowedTransition reports whether a request may move from one status to
// another. Terminal states reject every transition.
func AllowedTransition(from, to string) bool {
	switch from {
	case StatusOpen:
		return to == StatusInProgress || to == StatusResolved || to == StatusCancelled
	case StatusInProgress:
		return to == StatusResolved
	case StatusResolved:
		return to == StatusClosed || to == StatusInProgress
	default:
		return false
	}
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}
