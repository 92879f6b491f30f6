package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vigilo-hq/vigilo/internal/domain/audit"
	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/notification"
	"github.com/vigilo-hq/vigilo/internal/domain/principal"
	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/domain/task"
	"github.com/vigilo-hq/vigilo/internal/pkg/clock"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
	"github.com/vigilo-hq/vigilo/internal/pkg/metrics"
	"github.com/vigilo-hq/vigilo/internal/resolver"
)

// Deps bundles the collaborators every dispatcher needs. Threading them
// explicitly keeps dispatch deterministic under test; no ambient
// globals.
type Deps struct {
	Resolver  *resolver.Resolver
	Notifier  notification.Sink
	Mailer    notification.Mailer
	Audit     audit.Store
	Tasks     task.Store
	Actions   remediation.Actions
	Directory principal.Directory
	Clock     clock.Clock
	Logger    *logger.Logger

	// BaseURL prefixes event action paths in notifications
	BaseURL string

	// MailEnabled gates stage 4 globally
	MailEnabled bool

	// PatternWindow bounds how far back pattern checks scan
	PatternWindow time.Duration
}

// policy is the per-severity channel configuration picked in stage 1.
// Selection has no side effects.
type policy struct {
	emailTemplate string
	email         bool
}

func policyFor(ev event.Event, mailEnabled bool) policy {
	p := policy{email: mailEnabled && ev.ShouldSendEmail()}
	switch ev.Severity() {
	case event.SeverityCritical:
		p.emailTemplate = "alert_critical"
	case event.SeverityHigh:
		p.emailTemplate = "alert_high"
	default:
		p.emailTemplate = "alert"
	}
	return p
}

// family supplies the category-specific stages of the pipeline:
// remediation checks (stage 6) and pattern checks (stage 8).
type family interface {
	category() event.Category
	remediate(ctx context.Context, ev event.Event)
	patterns(ctx context.Context, ev event.Event)
}

// Dispatcher turns one event into durable side effects through a fixed
// stage order. Stages 1-2 are prerequisites: their failure aborts the
// dispatch so the queue redelivers. Later stages are independently
// retryable and isolated from one another.
type Dispatcher struct {
	deps Deps
	fam  family
}

// Dispatch runs the full pipeline for one event.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event) error {
	start := d.deps.Clock.Now()
	severity := ev.Severity()
	log := d.deps.Logger.WithFields(map[string]interface{}{
		"event_id": ev.ID(),
		"kind":     ev.Kind(),
		"severity": severity.String(),
	})

	// Stage 1: configure
	pol := policyFor(ev, d.deps.MailEnabled)

	// Stage 2: resolve recipients
	recipients, err := d.deps.Resolver.Resolve(ctx, ev)
	if err != nil {
		metrics.RecordStageFailure("resolve")
		return err
	}

	// Stage 3: persist notifications
	d.notifyAll(ctx, ev, recipients, log)

	// Stage 4: email
	if pol.email {
		d.emailAll(ctx, ev, pol.emailTemplate, recipients, log)
	}

	// Stage 5: structured log, always at warning or above
	d.logAlert(ev, log)

	// Stage 6: remediation checks
	d.fam.remediate(ctx, ev)

	// Stage 7: audit trail
	d.writeAudit(ctx, ev, log)

	// Stage 8: pattern checks
	d.fam.patterns(ctx, ev)

	metrics.RecordDispatch(string(ev.Category()), severity.String(), d.deps.Clock.Now().Sub(start).Seconds())
	return nil
}

func (d *Dispatcher) notifyAll(ctx context.Context, ev event.Event, recipients []principal.Principal, log *logger.Logger) {
	risk := 0
	if scorer, ok := ev.(event.RiskScorer); ok {
		risk = scorer.RiskScore()
	}

	for _, p := range recipients {
		n := &notification.Notification{
			ID:        uuid.New().String(),
			EventID:   ev.ID(),
			Recipient: p,
			Category:  string(ev.Category()),
			Severity:  ev.Severity().String(),
			Title:     ev.Title(),
			Message:   ev.Description(),
			ActionURL: d.deps.BaseURL + ev.ActionURL(),
			RiskScore: risk,
			Data:      ev.LogFields(),
			CreatedAt: d.deps.Clock.Now(),
		}
		if err := d.deps.Notifier.Notify(ctx, n); err != nil {
			metrics.RecordStageFailure("notify")
			log.WithFields(map[string]interface{}{
				"recipient": p.ID,
			}).ErrorWithErr(err, "Failed to persist notification")
			continue
		}
		metrics.RecordNotification(string(ev.Category()))
	}
}

func (d *Dispatcher) emailAll(ctx context.Context, ev event.Event, template string, recipients []principal.Principal, log *logger.Logger) {
	for _, p := range recipients {
		n := &notification.Notification{
			EventID:   ev.ID(),
			Recipient: p,
			Severity:  ev.Severity().String(),
			Title:     ev.Title(),
			Message:   ev.Description(),
			ActionURL: d.deps.BaseURL + ev.ActionURL(),
		}
		if err := d.deps.Mailer.QueueEmail(ctx, template, n); err != nil {
			// Best effort: a mail failure never rolls back the durable
			// notifications from stage 3.
			metrics.RecordStageFailure("email")
			log.WithFields(map[string]interface{}{
				"recipient": p.ID,
			}).ErrorWithErr(err, "Failed to queue alert email")
			continue
		}
		metrics.RecordEmailQueued()
	}
}

func (d *Dispatcher) logAlert(ev event.Event, log *logger.Logger) {
	entry := log.WithFields(ev.LogFields())
	switch ev.Severity() {
	case event.SeverityCritical, event.SeverityHigh:
		entry.Error(ev.Title())
	default:
		entry.Warn(ev.Title())
	}
}

func (d *Dispatcher) writeAudit(ctx context.Context, ev event.Event, log *logger.Logger) {
	entry := &audit.Entry{
		ID:         uuid.New().String(),
		EventID:    ev.ID(),
		Kind:       ev.Kind(),
		Category:   string(ev.Category()),
		Severity:   ev.Severity().String(),
		Actor:      ev.Actor(),
		Target:     ev.Target(),
		Facts:      ev.LogFields(),
		OccurredAt: ev.OccurredAt(),
		CreatedAt:  d.deps.Clock.Now(),
	}
	if err := d.deps.Audit.AppendAudit(ctx, entry); err != nil {
		// Observability failure, not a correctness failure: log and
		// move on.
		metrics.RecordStageFailure("audit")
		log.ErrorWithErr(err, "Failed to write audit entry")
	}
}

// runCheck isolates one remediation check: a failure is logged, counted
// and converted into a manual-intervention task, and never prevents the
// remaining checks from running.
func (d *Dispatcher) runCheck(ctx context.Context, ev event.Event, name string, check func() error) {
	if err := check(); err != nil {
		metrics.RecordStageFailure("remediation")
		d.deps.Logger.WithFields(map[string]interface{}{
			"event_id": ev.ID(),
			"check":    name,
		}).ErrorWithErr(err, "Remediation check failed")
		d.createInterventionTask(ctx, ev, name, err)
	}
}

func (d *Dispatcher) createInterventionTask(ctx context.Context, ev event.Event, check string, cause error) {
	assignee, err := d.anyAdmin(ctx)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Cannot assign intervention task")
		return
	}

	t := &task.Task{
		ID:          uuid.New().String(),
		Kind:        task.KindManualIntervention,
		Title:       fmt.Sprintf("Manual intervention required: %s", check),
		Description: fmt.Sprintf("Automated remediation %q failed for event %s: %v", check, ev.ID(), cause),
		AssigneeID:  assignee.ID,
		EventID:     ev.ID(),
		DueAt:       d.deps.Clock.Now().Add(24 * time.Hour),
		CreatedAt:   d.deps.Clock.Now(),
	}
	if err := d.deps.Tasks.CreateTask(ctx, t); err != nil {
		d.deps.Logger.ErrorWithErr(err, "Failed to create intervention task")
	}
}

// anyAdmin returns an admin to own follow-up work. An empty admin set
// is a configuration error, surfaced instead of dereferencing nothing.
func (d *Dispatcher) anyAdmin(ctx context.Context) (*principal.Principal, error) {
	admins, err := d.deps.Directory.UsersWithRole(ctx, principal.RoleAdmin)
	if err != nil {
		return nil, errors.Delivery("failed to look up admins", err)
	}
	if len(admins) == 0 {
		return nil, errors.Config("no admin users configured for task assignment")
	}
	return &admins[0], nil
}

// createTask opens a follow-up work item assigned to an admin. A
// persistence failure here is logged, never retried; the audit trail
// and structured log still carry the event.
func (d *Dispatcher) createTask(ctx context.Context, ev event.Event, kind, title, description string) {
	assignee, err := d.anyAdmin(ctx)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Cannot assign follow-up task")
		return
	}

	t := &task.Task{
		ID:          uuid.New().String(),
		Kind:        kind,
		Title:       title,
		Description: description,
		AssigneeID:  assignee.ID,
		EventID:     ev.ID(),
		DueAt:       d.deps.Clock.Now().Add(24 * time.Hour),
		CreatedAt:   d.deps.Clock.Now(),
	}
	if err := d.deps.Tasks.CreateTask(ctx, t); err != nil {
		d.deps.Logger.ErrorWithErr(err, "Failed to create follow-up task")
	}
}

// createReview opens a formal review for an operation. The reviewer is
// the actor's manager when one exists, otherwise an admin.
func (d *Dispatcher) createReview(ctx context.Context, ev event.Event, subject, actorID string) {
	var reviewerID string
	if actorID != "" {
		if mgr, err := d.deps.Directory.ManagerOf(ctx, actorID); err == nil && mgr != nil {
			reviewerID = mgr.ID
		}
	}
	if reviewerID == "" {
		admin, err := d.anyAdmin(ctx)
		if err != nil {
			d.deps.Logger.ErrorWithErr(err, "Cannot assign reviewer")
			return
		}
		reviewerID = admin.ID
	}

	r := &task.Review{
		ID:          uuid.New().String(),
		Subject:     subject,
		ReviewerID:  reviewerID,
		EventID:     ev.ID(),
		RequestedAt: d.deps.Clock.Now(),
	}
	if err := d.deps.Tasks.CreateReview(ctx, r); err != nil {
		d.deps.Logger.ErrorWithErr(err, "Failed to create review")
	}
}

// secondaryAlert records a pattern-detected alert distinct from the
// primary notification flow. Failures are swallowed after logging;
// pattern detection is best effort.
func (d *Dispatcher) secondaryAlert(ctx context.Context, alertType string, sev event.Severity, title, description, sourceIP, userID string, risk int) {
	metrics.RecordPatternHit(alertType)
	a := &audit.SecurityAlert{
		ID:          uuid.New().String(),
		Type:        alertType,
		Severity:    sev.String(),
		Title:       title,
		Description: description,
		RiskScore:   risk,
		SourceIP:    sourceIP,
		UserID:      userID,
		CreatedAt:   d.deps.Clock.Now(),
	}
	if err := d.deps.Audit.CreateSecurityAlert(ctx, a); err != nil {
		metrics.RecordStageFailure("pattern")
		d.deps.Logger.ErrorWithErr(err, "Failed to record pattern alert")
	}
}

// Router hands each event to the dispatcher for its family.
type Router struct {
	security *Dispatcher
	content  *Dispatcher
	business *Dispatcher
	system   *Dispatcher
}

// NewRouter wires one dispatcher per event family over shared deps
func NewRouter(deps Deps) *Router {
	security := &Dispatcher{deps: deps}
	security.fam = &securityFamily{d: security}
	content := &Dispatcher{deps: deps}
	content.fam = &contentFamily{d: content}
	business := &Dispatcher{deps: deps}
	business.fam = &businessFamily{d: business}
	system := &Dispatcher{deps: deps}
	system.fam = &systemFamily{d: system}

	return &Router{
		security: security,
		content:  content,
		business: business,
		system:   system,
	}
}

// Dispatch routes an event to its family dispatcher
func (r *Router) Dispatch(ctx context.Context, ev event.Event) error {
	switch ev.Category() {
	case event.CategorySecurity:
		return r.security.Dispatch(ctx, ev)
	case event.CategoryContent:
		return r.content.Dispatch(ctx, ev)
	case event.CategoryBusiness:
		return r.business.Dispatch(ctx, ev)
	case event.CategorySystem:
		return r.system.Dispatch(ctx, ev)
	default:
		return errors.Classification(fmt.Sprintf("no dispatcher for category %q", ev.Category()), nil)
	}
}

// Sweep re-runs the pattern checks of every family against recent
// history. Invoked on a schedule so detection does not depend solely on
// the inline stage-8 pass.
func (r *Router) Sweep(ctx context.Context) {
	for _, d := range []*Dispatcher{r.security, r.content, r.business, r.system} {
		d.fam.patterns(ctx, nil)
	}
}
