package mailer

import (
	"context"

	"github.com/vigilo-hq/vigilo/internal/domain/notification"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
)

// LogMailer records outbound emails in the structured log. Rendering
// and SMTP delivery belong to the surrounding application; this side of
// the boundary only queues.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(log *logger.Logger) notification.Mailer {
	return &LogMailer{logger: log}
}

func (m *LogMailer) QueueEmail(ctx context.Context, template string, n *notification.Notification) error {
	m.logger.WithFields(map[string]interface{}{
		"template":  template,
		"event_id":  n.EventID,
		"recipient": n.Recipient.Email,
		"severity":  n.Severity,
		"title":     n.Title,
	}).Info("Alert email queued")
	return nil
}
