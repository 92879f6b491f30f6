package notification

import (
	"context"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/principal"
)

// Notification is one durable per-recipient alert record. The sink
// dedups on (EventID, Recipient.ID) so at-least-once redelivery of an
// event never doubles notifications.
type Notification struct {
	ID        string                 `json:"id"`
	EventID   string                 `json:"event_id"`
	Recipient principal.Principal    `json:"recipient"`
	Category  string                 `json:"category"`
	Severity  string                 `json:"severity"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	ActionURL string                 `json:"action_url,omitempty"`
	RiskScore int                    `json:"risk_score,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Sink persists notifications durably, at-least-once.
type Sink interface {
	// Notify persists one notification. Persisting the same
	// (event, recipient) pair twice must be a no-op.
	Notify(ctx context.Context, n *Notification) error
}

// Mailer queues outbound alert emails, best-effort and asynchronous.
// Rendering and delivery belong to the surrounding application.
type Mailer interface {
	QueueEmail(ctx context.Context, template string, n *Notification) error
}
