package resolver

import (
	"context"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/principal"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
)

// Resolver computes the deduplicated set of principals who must be
// notified for an event.
type Resolver struct {
	directory principal.Directory
	logger    *logger.Logger
}

// New creates a new recipient resolver
func New(directory principal.Directory, log *logger.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		logger:    log,
	}
}

// Resolve builds the recipient set: the category's base role set, the
// escalation roles when severity or a category predicate crosses the
// threshold, and the context-specific individuals. Membership is
// deduplicated by principal ID; insertion order carries no meaning.
func (r *Resolver) Resolve(ctx context.Context, ev event.Event) ([]principal.Principal, error) {
	set := make(map[string]principal.Principal)

	// Base role set: every category starts with the admins. A directory
	// with no admins is a configuration error, never a silent fallback.
	admins, err := r.directory.UsersWithRole(ctx, principal.RoleAdmin)
	if err != nil {
		return nil, errors.Delivery("failed to resolve admin recipients", err)
	}
	if len(admins) == 0 {
		return nil, errors.Config("no admin users configured for alert delivery")
	}
	for _, p := range admins {
		set[p.ID] = p
	}

	severity := ev.Severity()
	escalate := severity.AtLeast(event.SeverityHigh) || ev.EscalatesToManagers()

	if escalate {
		managers, err := r.directory.UsersWithRole(ctx, principal.RoleManager)
		if err != nil {
			return nil, errors.Delivery("failed to resolve manager recipients", err)
		}
		for _, p := range managers {
			set[p.ID] = p
		}
	}

	if ev.EscalatesToHR() {
		hr, err := r.directory.UsersWithRole(ctx, principal.RoleHR)
		if err != nil {
			return nil, errors.Delivery("failed to resolve hr recipients", err)
		}
		for _, p := range hr {
			set[p.ID] = p
		}
	}

	// Context-specific individuals: the acting user sees the outcome of
	// their own action, the target user is told, and so is the target's
	// direct manager when distinct. Absent actors are skipped, never
	// substituted with a placeholder.
	r.addUser(ctx, set, ev.Actor())
	target := ev.Target()
	r.addUser(ctx, set, target)

	if target != "" {
		manager, err := r.directory.ManagerOf(ctx, target)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"event_id": ev.ID(),
				"user_id":  target,
			}).ErrorWithErr(err, "Failed to resolve reporting-line manager")
		} else if manager != nil && manager.ID != target {
			set[manager.ID] = *manager
		}
	}

	recipients := make([]principal.Principal, 0, len(set))
	for _, p := range set {
		recipients = append(recipients, p)
	}
	return recipients, nil
}

func (r *Resolver) addUser(ctx context.Context, set map[string]principal.Principal, userID string) {
	if userID == "" {
		return
	}
	if _, ok := set[userID]; ok {
		return
	}
	p, err := r.directory.ByID(ctx, userID)
	if err != nil || p == nil {
		// A missing individual is tolerable; the role sets still get
		// the alert.
		return
	}
	set[p.ID] = *p
}
