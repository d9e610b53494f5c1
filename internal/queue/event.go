// Package queue defines domain events exchanged over the message broker
// and the publisher that ships them.
package queue

// RequestEvent is published on service-request lifecycle changes. It
// carries enough information for downstream consumers (reporting,
// dashboards, escalation bots) to act without querying the primary
// database.
type RequestEvent struct {
	Kind        string `json:"kind"` // created | status_changed | assigned
	RequestID   uint64 `json:"request_id"`
	RequesterID uint64 `json:"requester_id"`
	ActorID     uint64 `json:"actor_id"`
	Title       string `json:"title"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	OccurredAt  string `json:"occurred_at"`
}

// RequestEvent kinds.
const (
	EventRequestCreated  = "created"
	EventStatusChanged   = "status_changed"
	EventRequestAssigned = "assigned"
)
