package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
	"github.com/vigilo-hq/vigilo/internal/pkg/validator"
)

// Event is an immutable record of something noteworthy. Every method is
// a pure function of the event's own fields; construction captures all
// facts needed for classification so the pipeline never re-queries
// mutable collaborators.
type Event interface {
	// ID returns the unique event identifier
	ID() string

	// Kind returns the variant name, e.g. "security.failed_login"
	Kind() string

	// Category returns the dispatch family
	Category() Category

	// OccurredAt returns when the event happened
	OccurredAt() time.Time

	// Severity classifies the event from its own fields
	Severity() Severity

	// Title returns a short human-readable summary
	Title() string

	// Description returns a longer human-readable summary
	Description() string

	// ShouldSendEmail reports whether the event warrants an email on
	// top of the durable notification
	ShouldSendEmail() bool

	// QueueName returns the delivery lane for this event
	QueueName() string

	// ActionURL returns the admin path for triaging this event
	ActionURL() string

	// Actor returns the acting user ID, or "" when the event has no
	// known actor
	Actor() string

	// Target returns the affected user ID, or "" when the event has no
	// target user
	Target() string

	// EscalatesToManagers reports the category-specific escalation
	// predicate, independent of severity
	EscalatesToManagers() bool

	// EscalatesToHR reports whether the most-severe escalation applies
	EscalatesToHR() bool

	// LogFields returns the flat key-value projection used by the audit
	// and notification sinks
	LogFields() map[string]interface{}
}

// RiskScorer is implemented by security events that carry an advisory
// risk score in [0,100]
type RiskScorer interface {
	RiskScore() int
}

// Meta carries the attributes common to every variant. Variants embed
// it and override the predicate defaults they need.
type Meta struct {
	EventID string    `json:"event_id" validate:"required"`
	At      time.Time `json:"occurred_at" validate:"required"`
}

func newMeta(at time.Time) Meta {
	return Meta{EventID: uuid.New().String(), At: at.UTC()}
}

func (m Meta) ID() string                { return m.EventID }
func (m Meta) OccurredAt() time.Time     { return m.At }
func (m Meta) Actor() string             { return "" }
func (m Meta) Target() string            { return "" }
func (m Meta) EscalatesToManagers() bool { return false }
func (m Meta) EscalatesToHR() bool       { return false }

var validate = validator.New()

// checkFields runs struct validation and converts failures into a
// classification error. Malformed events must fail at construction,
// never silently default to LOW.
func checkFields(kind string, ev interface{}) error {
	if errs := validate.Validate(ev); len(errs) > 0 {
		return errors.Classification("invalid "+kind+" event", errs)
	}
	return nil
}

// defaultShouldEmail is the shared email policy: HIGH and CRITICAL
// events get emailed, variants may override.
func defaultShouldEmail(s Severity) bool {
	return s.AtLeast(SeverityHigh)
}

// baseFields seeds the log-field projection with the attributes every
// variant shares.
func baseFields(ev Event) map[string]interface{} {
	return map[string]interface{}{
		"event_id":    ev.ID(),
		"kind":        ev.Kind(),
		"category":    string(ev.Category()),
		"severity":    ev.Severity().String(),
		"occurred_at": ev.OccurredAt().Format(time.RFC3339),
	}
}
