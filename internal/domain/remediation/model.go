package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
)

// ProtectiveState is the time-bounded record behind a block, suspension
// or verification flag. It lives in the TTL store and expires
// implicitly; there is no explicit unblock operation.
type ProtectiveState struct {
	Subject   string        `json:"subject"`
	AppliedAt time.Time     `json:"applied_at"`
	Duration  time.Duration `json:"duration"`
	Until     time.Time     `json:"until"`
	Reason    string        `json:"reason"`
	Severity  string        `json:"severity"`
}

// Active reports whether the state is still in force at the given time
func (p ProtectiveState) Active(now time.Time) bool {
	return now.Before(p.Until)
}

// Key builders for the TTL store
func BlockedIPKey(ip string) string         { return "blocked_ip:" + ip }
func SuspendedKey(userID string) string     { return "suspended_account:" + userID }
func ExtraAuthKey(userID string) string     { return "requires_2fa:" + userID }
func PasswordResetKey(userID string) string { return "force_password_reset:" + userID }
func RestrictedKey(userID string) string    { return "privileges_restricted:" + userID }
func MonitoredKey(userID string) string     { return "enhanced_monitoring:" + userID }
func VerificationKey(userID string) string  { return "requires_verification:" + userID }
func SessionKey(sessionID string) string    { return "session:" + sessionID }
func SessionIndexKey(userID string) string  { return "user_sessions:" + userID }

// SecurityBlockDuration is the IP-block duration table used by the
// security family (failed logins, access violations).
func SecurityBlockDuration(s event.Severity) time.Duration {
	switch s {
	case event.SeverityCritical:
		return 7 * 24 * time.Hour
	case event.SeverityHigh:
		return 3 * 24 * time.Hour
	case event.SeverityMedium:
		return 24 * time.Hour
	default:
		return 12 * time.Hour
	}
}

// SessionBlockDuration is the shorter IP-block duration table used by
// the session-hijack flow. The two tables are intentionally distinct
// per call site; do not unify them.
func SessionBlockDuration(s event.Severity) time.Duration {
	switch s {
	case event.SeverityCritical:
		return 24 * time.Hour
	case event.SeverityHigh:
		return 12 * time.Hour
	case event.SeverityMedium:
		return 2 * time.Hour
	default:
		return 30 * time.Minute
	}
}

// KV is the TTL key-value collaborator backing protective state.
// Put replaces any existing record wholesale (last-write-wins).
type KV interface {
	Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Delete(ctx context.Context, key string) error
}

// SessionIndex tracks live sessions per user so "terminate all" can
// find them. Terminating an empty set is a no-op.
type SessionIndex interface {
	SessionsOf(ctx context.Context, userID string) ([]string, error)
	RemoveSession(ctx context.Context, userID, sessionID string) error
	ClearSessions(ctx context.Context, userID string) error
}

// Actions are the stateful remediation primitives. Every action is an
// idempotent upsert keyed by its subject.
type Actions interface {
	BlockIP(ctx context.Context, ip string, d time.Duration, reason string, sev event.Severity) error
	SuspendAccount(ctx context.Context, userID string, d time.Duration, reason string) error
	TerminateSession(ctx context.Context, userID, sessionID string) error
	TerminateAllSessions(ctx context.Context, userID string) error
	ForcePasswordReset(ctx context.Context, userID string, d time.Duration) error
	RequireExtraAuth(ctx context.Context, userID string, d time.Duration) error
	RestrictPrivileges(ctx context.Context, userID string, d time.Duration, reason string) error
	EnableMonitoring(ctx context.Context, userID string, d time.Duration) error
	RequireVerification(ctx context.Context, userID string, d time.Duration) error

	// IsIPBlocked returns the active block for an address, if any
	IsIPBlocked(ctx context.Context, ip string) (*ProtectiveState, error)

	// IsSuspended returns the active suspension for a user, if any
	IsSuspended(ctx context.Context, userID string) (*ProtectiveState, error)
}

// Reason builds a stable reason string from an event
func Reason(ev event.Event) string {
	return fmt.Sprintf("%s (%s)", ev.Title(), ev.ID())
}
