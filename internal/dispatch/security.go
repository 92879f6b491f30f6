package dispatch

import (
	"context"
	"fmt"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
)

// securityFamily dispatches security events. It is the only family that
// drives the TTL-backed countermeasures directly.
type securityFamily struct {
	d *Dispatcher
}

func (securityFamily) category() event.Category { return event.CategorySecurity }

func (f *securityFamily) remediate(ctx context.Context, ev event.Event) {
	d := f.d

	switch e := ev.(type) {
	case *event.FailedLogin:
		if e.ShouldBlockIP() {
			d.runCheck(ctx, ev, "block_ip", func() error {
				return d.deps.Actions.BlockIP(ctx, e.IPAddress,
					remediation.SecurityBlockDuration(e.Severity()), remediation.Reason(e), e.Severity())
			})
		}
		if e.IsBruteForce() {
			d.secondaryAlert(ctx, "brute_force_attack", e.Severity(), e.Title(), e.Description(), e.IPAddress, "", 0)
		}

	case *event.AccessViolation:
		if e.ShouldBlockIP() {
			d.runCheck(ctx, ev, "block_ip", func() error {
				return d.deps.Actions.BlockIP(ctx, e.IPAddress,
					remediation.SecurityBlockDuration(e.Severity()), remediation.Reason(e), e.Severity())
			})
		}
		if e.ShouldSuspendUser() {
			d.runCheck(ctx, ev, "suspend_account", func() error {
				return d.deps.Actions.SuspendAccount(ctx, e.UserID,
					remediation.SecurityBlockDuration(e.Severity()), remediation.Reason(e))
			})
			d.runCheck(ctx, ev, "restrict_privileges", func() error {
				return d.deps.Actions.RestrictPrivileges(ctx, e.UserID,
					remediation.SecurityBlockDuration(e.Severity()), remediation.Reason(e))
			})
		}
		if e.RequiresImmediateIntervention() {
			d.secondaryAlert(ctx, "access_violation", e.Severity(), e.Title(), e.Description(),
				e.IPAddress, e.UserID, e.RiskScore())
		}

	case *event.AdminAccountModified:
		if e.ShouldSuspendUser() {
			d.runCheck(ctx, ev, "suspend_account", func() error {
				return d.deps.Actions.SuspendAccount(ctx, e.TargetUserID,
					remediation.SecurityBlockDuration(e.Severity()), remediation.Reason(e))
			})
			d.runCheck(ctx, ev, "force_password_reset", func() error {
				return d.deps.Actions.ForcePasswordReset(ctx, e.TargetUserID,
					remediation.SecurityBlockDuration(e.Severity()))
			})
		}

	case *event.SuspiciousSession:
		if e.ShouldTerminateSession() {
			d.runCheck(ctx, ev, "terminate_session", func() error {
				return d.deps.Actions.TerminateSession(ctx, e.UserID, e.SessionID)
			})
		}
		if e.HasTakeoverIndicators() {
			d.runCheck(ctx, ev, "terminate_all_sessions", func() error {
				return d.deps.Actions.TerminateAllSessions(ctx, e.UserID)
			})
			d.runCheck(ctx, ev, "force_password_reset", func() error {
				return d.deps.Actions.ForcePasswordReset(ctx, e.UserID,
					remediation.SessionBlockDuration(e.Severity()))
			})
			d.runCheck(ctx, ev, "require_extra_auth", func() error {
				return d.deps.Actions.RequireExtraAuth(ctx, e.UserID,
					remediation.SessionBlockDuration(e.Severity()))
			})
		}
		if e.ShouldBlockIP() {
			// Session hijacks use the shorter duration table.
			d.runCheck(ctx, ev, "block_ip", func() error {
				return d.deps.Actions.BlockIP(ctx, e.IPAddress,
					remediation.SessionBlockDuration(e.Severity()), remediation.Reason(e), e.Severity())
			})
		}
		if e.RequiresMonitoring() {
			d.runCheck(ctx, ev, "enable_monitoring", func() error {
				return d.deps.Actions.EnableMonitoring(ctx, e.UserID,
					remediation.SessionBlockDuration(e.Severity()))
			})
		}

	case *event.AccountDeleted:
		if e.WasAdmin {
			d.secondaryAlert(ctx, "admin_account_deleted", e.Severity(), e.Title(), e.Description(), "", e.TargetUserID, 0)
		}
	}
}

// patterns looks for streaks the single-event rules cannot see:
// deletion sprees by one actor and repeated violations by one user.
func (f *securityFamily) patterns(ctx context.Context, _ event.Event) {
	d := f.d
	since := d.deps.Clock.Now().Add(-d.deps.PatternWindow)

	entries, err := d.deps.Audit.RecentByKind(ctx, event.AccountDeleted{}.Kind(), since)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Pattern scan failed for account deletions")
	} else {
		for actor, n := range countByActor(entries) {
			if actor == "" || n < 3 {
				continue
			}
			d.secondaryAlert(ctx, "account_deletion_spree", event.SeverityHigh,
				fmt.Sprintf("User %s deleted %d accounts", actor, n),
				fmt.Sprintf("User %s deleted %d accounts within %s", actor, n, d.deps.PatternWindow),
				"", actor, 0)
		}
	}

	entries, err = d.deps.Audit.RecentByKind(ctx, event.AccessViolation{}.Kind(), since)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Pattern scan failed for access violations")
		return
	}
	for actor, n := range countByActor(entries) {
		if actor == "" || n < 3 {
			continue
		}
		d.secondaryAlert(ctx, "repeated_access_violations", event.SeverityHigh,
			fmt.Sprintf("User %s triggered %d access violations", actor, n),
			fmt.Sprintf("User %s triggered %d access violations within %s", actor, n, d.deps.PatternWindow),
			"", actor, 0)
	}
}
