package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/audit"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

type AuditStore struct {
	db     *sql.DB
	driver string
}

func NewAuditStore(db *sql.DB) audit.Store {
	return &AuditStore{db: db, driver: driverOf(db)}
}

func (s *AuditStore) AppendAudit(ctx context.Context, e *audit.Entry) error {
	facts, err := json.Marshal(e.Facts)
	if err != nil {
		return errors.Storage("Failed to encode audit facts", err)
	}

	query := `
		INSERT INTO audit_entries (id, event_id, kind, category, severity, actor, target, facts, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, rebind(s.driver, query),
		e.ID, e.EventID, e.Kind, e.Category, e.Severity, e.Actor, e.Target, string(facts),
		e.OccurredAt.Format(time.RFC3339), e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Storage("Failed to append audit entry", err)
	}

	return nil
}

func (s *AuditStore) CreateSecurityAlert(ctx context.Context, a *audit.SecurityAlert) error {
	query := `
		INSERT INTO security_alerts (id, type, severity, title, description, risk_score, source_ip, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, rebind(s.driver, query),
		a.ID, a.Type, a.Severity, a.Title, a.Description, a.RiskScore, a.SourceIP, a.UserID,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Storage("Failed to create security alert", err)
	}

	return nil
}

func (s *AuditStore) RecentByKind(ctx context.Context, kind string, since time.Time) ([]*audit.Entry, error) {
	query := `
		SELECT id, event_id, kind, category, severity, actor, target, facts, occurred_at, created_at
		FROM audit_entries
		WHERE kind = ? AND occurred_at >= ?
		ORDER BY occurred_at DESC
	`

	rows, err := s.db.QueryContext(ctx, rebind(s.driver, query), kind, since.Format(time.RFC3339))
	if err != nil {
		return nil, errors.Storage("Failed to query audit entries", err)
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		var facts, occurredAt, createdAt string
		if err := rows.Scan(
			&e.ID, &e.EventID, &e.Kind, &e.Category, &e.Severity, &e.Actor, &e.Target,
			&facts, &occurredAt, &createdAt,
		); err != nil {
			return nil, errors.Storage("Failed to scan audit entry", err)
		}

		if err := json.Unmarshal([]byte(facts), &e.Facts); err != nil {
			return nil, errors.Storage("Failed to decode audit facts", err)
		}
		e.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
