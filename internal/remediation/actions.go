package remediation

import (
	"context"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/pkg/clock"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
	"github.com/vigilo-hq/vigilo/internal/pkg/metrics"
)

// Service implements remediation.Actions over a TTL key-value store and
// a session index. Every mutation is a last-write-wins upsert keyed by
// its subject, so concurrent dispatches for the same subject converge
// on the most recent decision.
type Service struct {
	kv       remediation.KV
	sessions remediation.SessionIndex
	clk      clock.Clock
	logger   *logger.Logger
}

// NewService creates a new remediation actions service
func NewService(kv remediation.KV, sessions remediation.SessionIndex, clk clock.Clock, log *logger.Logger) remediation.Actions {
	return &Service{
		kv:       kv,
		sessions: sessions,
		clk:      clk,
		logger:   log,
	}
}

func (s *Service) putState(ctx context.Context, action, key, subject, reason string, d time.Duration, sev event.Severity) error {
	now := s.clk.Now()
	state := remediation.ProtectiveState{
		Subject:   subject,
		AppliedAt: now,
		Duration:  d,
		Until:     now.Add(d),
		Reason:    reason,
		Severity:  sev.String(),
	}

	if err := s.kv.Put(ctx, key, state, d); err != nil {
		metrics.RecordRemediation(action, "error")
		return errors.Remediation("failed to apply "+action, err)
	}

	metrics.RecordRemediation(action, "applied")
	s.logger.WithFields(map[string]interface{}{
		"action":   action,
		"subject":  subject,
		"duration": d.String(),
		"until":    state.Until.Format(time.RFC3339),
		"reason":   reason,
	}).Warn("Remediation action applied")

	return nil
}

// BlockIP writes a timed block record for an address. Re-blocking an
// already blocked address replaces the record with the new TTL.
func (s *Service) BlockIP(ctx context.Context, ip string, d time.Duration, reason string, sev event.Severity) error {
	return s.putState(ctx, "block_ip", remediation.BlockedIPKey(ip), ip, reason, d, sev)
}

// SuspendAccount writes a timed suspension record for a user
func (s *Service) SuspendAccount(ctx context.Context, userID string, d time.Duration, reason string) error {
	return s.putState(ctx, "suspend_account", remediation.SuspendedKey(userID), userID, reason, d, event.SeverityHigh)
}

// TerminateSession removes one session immediately
func (s *Service) TerminateSession(ctx context.Context, userID, sessionID string) error {
	if err := s.kv.Delete(ctx, remediation.SessionKey(sessionID)); err != nil {
		metrics.RecordRemediation("terminate_session", "error")
		return errors.Remediation("failed to terminate session "+sessionID, err)
	}
	if err := s.sessions.RemoveSession(ctx, userID, sessionID); err != nil {
		metrics.RecordRemediation("terminate_session", "error")
		return errors.Remediation("failed to deindex session "+sessionID, err)
	}

	metrics.RecordRemediation("terminate_session", "applied")
	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
	}).Warn("Session terminated")

	return nil
}

// TerminateAllSessions removes every live session for a user and clears
// the session index. Terminating an empty set is a no-op.
func (s *Service) TerminateAllSessions(ctx context.Context, userID string) error {
	ids, err := s.sessions.SessionsOf(ctx, userID)
	if err != nil {
		metrics.RecordRemediation("terminate_all_sessions", "error")
		return errors.Remediation("failed to list sessions for "+userID, err)
	}

	for _, id := range ids {
		if err := s.kv.Delete(ctx, remediation.SessionKey(id)); err != nil {
			metrics.RecordRemediation("terminate_all_sessions", "error")
			return errors.Remediation("failed to terminate session "+id, err)
		}
	}

	if err := s.sessions.ClearSessions(ctx, userID); err != nil {
		metrics.RecordRemediation("terminate_all_sessions", "error")
		return errors.Remediation("failed to clear session index for "+userID, err)
	}

	metrics.RecordRemediation("terminate_all_sessions", "applied")
	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"sessions": len(ids),
	}).Warn("All sessions terminated")

	return nil
}

// ForcePasswordReset flags a user's next login to require a password
// change, until the deadline.
func (s *Service) ForcePasswordReset(ctx context.Context, userID string, d time.Duration) error {
	return s.putState(ctx, "force_password_reset", remediation.PasswordResetKey(userID), userID, "forced password reset", d, event.SeverityCritical)
}

// RequireExtraAuth mandates 2FA for a user until the deadline
func (s *Service) RequireExtraAuth(ctx context.Context, userID string, d time.Duration) error {
	return s.putState(ctx, "require_extra_auth", remediation.ExtraAuthKey(userID), userID, "mandatory 2fa", d, event.SeverityCritical)
}

// RestrictPrivileges limits a user's privileges until the deadline
func (s *Service) RestrictPrivileges(ctx context.Context, userID string, d time.Duration, reason string) error {
	return s.putState(ctx, "restrict_privileges", remediation.RestrictedKey(userID), userID, reason, d, event.SeverityHigh)
}

// EnableMonitoring turns on enhanced monitoring for a user until the
// deadline
func (s *Service) EnableMonitoring(ctx context.Context, userID string, d time.Duration) error {
	return s.putState(ctx, "enable_monitoring", remediation.MonitoredKey(userID), userID, "enhanced monitoring", d, event.SeverityMedium)
}

// RequireVerification requires additional identity verification until
// the deadline
func (s *Service) RequireVerification(ctx context.Context, userID string, d time.Duration) error {
	return s.putState(ctx, "require_verification", remediation.VerificationKey(userID), userID, "additional verification", d, event.SeverityMedium)
}

// IsIPBlocked returns the active block for an address, if any
func (s *Service) IsIPBlocked(ctx context.Context, ip string) (*remediation.ProtectiveState, error) {
	return s.getState(ctx, remediation.BlockedIPKey(ip))
}

// IsSuspended returns the active suspension for a user, if any
func (s *Service) IsSuspended(ctx context.Context, userID string) (*remediation.ProtectiveState, error) {
	return s.getState(ctx, remediation.SuspendedKey(userID))
}

func (s *Service) getState(ctx context.Context, key string) (*remediation.ProtectiveState, error) {
	var state remediation.ProtectiveState
	ok, err := s.kv.Get(ctx, key, &state)
	if err != nil {
		return nil, err
	}
	if !ok || !state.Active(s.clk.Now()) {
		return nil, nil
	}
	return &state, nil
}
