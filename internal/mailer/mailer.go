// Package mailer moves outbound account emails through RabbitMQ. The HTTP
// request path only publishes a message; a background consumer drains the
// queue and delivers (in this deployment, to a mail log a real SMTP worker
// would replace).
package mailer

import "context"

// Kind of outbound mail.
const (
	KindVerification  = "verification"
	KindPasswordReset = "password_reset"
)

// OutboundMail is the payload published to the mail.outbound queue. Token
// and OTP are the raw one-time secrets; they travel only over the broker
// side channel and are never echoed in HTTP responses.
type OutboundMail struct {
	Kind      string `json:"kind"`
	To        string `json:"to"`
	FirstName string `json:"first_name,omitempty"`
	Link      string `json:"link,omitempty"`
	OTP       string `json:"otp,omitempty"`
	QueuedAt  string `json:"queued_at"`
}

// Mailer is the side-channel delivery collaborator of the session service.
// Implementations must not block the request path on broker availability
// beyond a dial attempt; callers log and continue when delivery fails.
type Mailer interface {
	SendVerification(ctx context.Context, to, firstName, link, otp string) error
	SendPasswordReset(ctx context.Context, to, firstName, link string) error
}
