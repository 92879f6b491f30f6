package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/notification"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

type NotificationSink struct {
	db     *sql.DB
	driver string
}

func NewNotificationSink(db *sql.DB) notification.Sink {
	return &NotificationSink{db: db, driver: driverOf(db)}
}

// Notify persists one notification. The unique index on
// (event_id, recipient_id) makes redelivered events a no-op.
func (s *NotificationSink) Notify(ctx context.Context, n *notification.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return errors.Storage("Failed to encode notification data", err)
	}

	query := `
		INSERT INTO notifications (id, event_id, recipient_id, recipient_email, category, severity, title, message, action_url, risk_score, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id, recipient_id) DO NOTHING
	`

	_, err = s.db.ExecContext(ctx, rebind(s.driver, query),
		n.ID, n.EventID, n.Recipient.ID, n.Recipient.Email, n.Category, n.Severity,
		n.Title, n.Message, n.ActionURL, n.RiskScore, string(data),
		n.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Storage("Failed to persist notification", err)
	}

	return nil
}
