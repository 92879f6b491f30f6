package audit

import (
	"context"
	"time"
)

// Entry is one append-only audit record: what happened and what
// automated action was taken.
type Entry struct {
	ID         string                 `json:"id"`
	EventID    string                 `json:"event_id"`
	Kind       string                 `json:"kind"`
	Category   string                 `json:"category"`
	Severity   string                 `json:"severity"`
	Actor      string                 `json:"actor,omitempty"`
	Target     string                 `json:"target,omitempty"`
	Facts      map[string]interface{} `json:"facts"`
	OccurredAt time.Time              `json:"occurred_at"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SecurityAlert is a secondary alert record, created either directly by
// a dispatcher for security-grade events or by a pattern check.
type SecurityAlert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RiskScore   int       `json:"risk_score,omitempty"`
	SourceIP    string    `json:"source_ip,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the append-only audit/alert persistence collaborator.
// Ordering is by OccurredAt; writers never coordinate.
type Store interface {
	// AppendAudit appends one audit entry
	AppendAudit(ctx context.Context, e *Entry) error

	// CreateSecurityAlert appends one security alert record
	CreateSecurityAlert(ctx context.Context, a *SecurityAlert) error

	// RecentByKind returns entries of one event kind observed since the
	// given time, newest first. Used by pattern checks; eventual
	// consistency is acceptable.
	RecentByKind(ctx context.Context, kind string, since time.Time) ([]*Entry, error)
}
