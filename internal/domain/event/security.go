package event

import (
	"fmt"
	"strings"
	"time"
)

// FailedLogin records repeated authentication failures for one account
// from one address within a time window.
type FailedLogin struct {
	Meta
	Email         string `json:"email" validate:"required,email"`
	IPAddress     string `json:"ip_address" validate:"required,ip"`
	UserAgent     string `json:"user_agent,omitempty"`
	Attempts      int    `json:"attempts" validate:"min=1"`
	WindowMinutes int    `json:"window_minutes" validate:"min=1"`
	KnownAttacker bool   `json:"known_attacker"`
	SuspiciousIP  bool   `json:"suspicious_ip"`
	BruteForce    bool   `json:"brute_force"`
}

// NewFailedLogin constructs a FailedLogin event, failing fast on
// incomplete facts.
func NewFailedLogin(at time.Time, fl FailedLogin) (*FailedLogin, error) {
	fl.Meta = newMeta(at)
	if err := checkFields(fl.Kind(), fl); err != nil {
		return nil, err
	}
	return &fl, nil
}

func (FailedLogin) Kind() string       { return "security.failed_login" }
func (FailedLogin) Category() Category { return CategorySecurity }

// Severity rules are ordered; the first match wins.
func (e FailedLogin) Severity() Severity {
	switch {
	case e.KnownAttacker || e.BruteForce:
		return SeverityCritical
	case e.SuspiciousIP || e.Attempts >= 10:
		return SeverityHigh
	case e.Attempts >= 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e FailedLogin) Title() string {
	return fmt.Sprintf("Failed login attempts for %s", e.Email)
}

func (e FailedLogin) Description() string {
	return fmt.Sprintf("%d failed login attempts for %s from %s within %d minutes",
		e.Attempts, e.Email, e.IPAddress, e.WindowMinutes)
}

func (e FailedLogin) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e FailedLogin) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e FailedLogin) ActionURL() string     { return "/admin/security/logins" }

// IsBruteForce reports the brute-force pattern flag
func (e FailedLogin) IsBruteForce() bool { return e.BruteForce }

// ShouldBlockIP reports whether the source address must be blocked
func (e FailedLogin) ShouldBlockIP() bool { return e.BruteForce || e.KnownAttacker }

func (e FailedLogin) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["email"] = e.Email
	f["ip_address"] = e.IPAddress
	f["user_agent"] = e.UserAgent
	f["attempts"] = e.Attempts
	f["window_minutes"] = e.WindowMinutes
	f["known_attacker"] = e.KnownAttacker
	f["suspicious_ip"] = e.SuspiciousIP
	f["brute_force"] = e.BruteForce
	return f
}

// AccessViolation records an attempt to act outside granted permissions.
type AccessViolation struct {
	Meta
	UserID              string `json:"user_id" validate:"required"`
	Resource            string `json:"resource" validate:"required"`
	Action              string `json:"action" validate:"required"`
	IPAddress           string `json:"ip_address" validate:"required,ip"`
	PrivilegeEscalation bool   `json:"privilege_escalation"`
	AdminResource       bool   `json:"admin_resource"`
	DataBreach          bool   `json:"data_breach"`
	RecentViolations    int    `json:"recent_violations" validate:"min=0"`
	SuspiciousIP        bool   `json:"suspicious_ip"`
}

// NewAccessViolation constructs an AccessViolation event.
func NewAccessViolation(at time.Time, av AccessViolation) (*AccessViolation, error) {
	av.Meta = newMeta(at)
	if err := checkFields(av.Kind(), av); err != nil {
		return nil, err
	}
	return &av, nil
}

func (AccessViolation) Kind() string       { return "security.access_violation" }
func (AccessViolation) Category() Category { return CategorySecurity }

func (e AccessViolation) Severity() Severity {
	switch {
	case e.PrivilegeEscalation || e.DataBreach:
		return SeverityCritical
	case e.AdminResource || e.SuspiciousIP || e.RecentViolations >= 3:
		return SeverityHigh
	case e.RecentViolations >= 1:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e AccessViolation) Title() string {
	return fmt.Sprintf("Access violation by user %s", e.UserID)
}

func (e AccessViolation) Description() string {
	return fmt.Sprintf("User %s attempted %q on %s from %s",
		e.UserID, e.Action, e.Resource, e.IPAddress)
}

func (e AccessViolation) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e AccessViolation) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e AccessViolation) ActionURL() string     { return "/admin/security/violations" }
func (e AccessViolation) Actor() string         { return e.UserID }
func (e AccessViolation) Target() string        { return e.UserID }

func (e AccessViolation) EscalatesToManagers() bool {
	return e.AdminResource || e.PrivilegeEscalation
}

func (e AccessViolation) EscalatesToHR() bool {
	return e.PrivilegeEscalation || e.DataBreach
}

// IsPrivilegeEscalation reports whether the violation attempted to gain
// elevated privileges
func (e AccessViolation) IsPrivilegeEscalation() bool { return e.PrivilegeEscalation }

// RequiresImmediateIntervention reports whether automated
// countermeasures must run without waiting for triage
func (e AccessViolation) RequiresImmediateIntervention() bool {
	return e.PrivilegeEscalation || e.DataBreach
}

// ShouldBlockIP reports whether the source address must be blocked
func (e AccessViolation) ShouldBlockIP() bool { return e.PrivilegeEscalation }

// ShouldSuspendUser reports whether the acting account must be suspended
func (e AccessViolation) ShouldSuspendUser() bool {
	return e.PrivilegeEscalation || e.DataBreach
}

// RiskScore computes the advisory 0-100 score for triage
func (e AccessViolation) RiskScore() int {
	return RiskScore(RiskFactors{
		PrivilegeEscalation: e.PrivilegeEscalation,
		AdminResource:       e.AdminResource,
		DataBreach:          e.DataBreach,
		RecentViolations:    e.RecentViolations > 0,
		SuspiciousIP:        e.SuspiciousIP,
	})
}

func (e AccessViolation) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["user_id"] = e.UserID
	f["resource"] = e.Resource
	f["action"] = e.Action
	f["ip_address"] = e.IPAddress
	f["privilege_escalation"] = e.PrivilegeEscalation
	f["admin_resource"] = e.AdminResource
	f["data_breach"] = e.DataBreach
	f["recent_violations"] = e.RecentViolations
	f["suspicious_ip"] = e.SuspiciousIP
	f["risk_score"] = e.RiskScore()
	return f
}

// AdminAccountModified records a change applied to an administrator
// account.
type AdminAccountModified struct {
	Meta
	TargetUserID    string   `json:"target_user_id" validate:"required"`
	ModifiedBy      string   `json:"modified_by" validate:"required"`
	ChangedFields   []string `json:"changed_fields" validate:"required,min=1"`
	RoleElevated    bool     `json:"role_elevated"`
	PasswordChanged bool     `json:"password_changed"`
	SelfModified    bool     `json:"self_modified"`
	Suspicious      bool     `json:"suspicious"`
}

// NewAdminAccountModified constructs an AdminAccountModified event.
func NewAdminAccountModified(at time.Time, am AdminAccountModified) (*AdminAccountModified, error) {
	am.Meta = newMeta(at)
	if err := checkFields(am.Kind(), am); err != nil {
		return nil, err
	}
	return &am, nil
}

func (AdminAccountModified) Kind() string       { return "security.admin_account_modified" }
func (AdminAccountModified) Category() Category { return CategorySecurity }

func (e AdminAccountModified) Severity() Severity {
	switch {
	case e.Suspicious:
		return SeverityCritical
	case e.RoleElevated || e.PasswordChanged:
		return SeverityHigh
	case !e.SelfModified:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e AdminAccountModified) Title() string {
	return fmt.Sprintf("Admin account %s modified", e.TargetUserID)
}

func (e AdminAccountModified) Description() string {
	return fmt.Sprintf("Admin account %s modified by %s (fields: %s)",
		e.TargetUserID, e.ModifiedBy, strings.Join(e.ChangedFields, ", "))
}

func (e AdminAccountModified) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e AdminAccountModified) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e AdminAccountModified) ActionURL() string     { return "/admin/security/accounts" }
func (e AdminAccountModified) Actor() string         { return e.ModifiedBy }
func (e AdminAccountModified) Target() string        { return e.TargetUserID }

func (e AdminAccountModified) EscalatesToManagers() bool { return e.RoleElevated }
func (e AdminAccountModified) EscalatesToHR() bool       { return e.Suspicious }

// ShouldSuspendUser reports whether the modified account must be
// suspended pending review
func (e AdminAccountModified) ShouldSuspendUser() bool { return e.Suspicious }

func (e AdminAccountModified) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["target_user_id"] = e.TargetUserID
	f["modified_by"] = e.ModifiedBy
	f["changed_fields"] = strings.Join(e.ChangedFields, ",")
	f["role_elevated"] = e.RoleElevated
	f["password_changed"] = e.PasswordChanged
	f["self_modified"] = e.SelfModified
	f["suspicious"] = e.Suspicious
	return f
}

// SuspiciousSession records anomalies observed on an authenticated
// session.
type SuspiciousSession struct {
	Meta
	SessionID        string `json:"session_id" validate:"required"`
	UserID           string `json:"user_id" validate:"required"`
	IPAddress        string `json:"ip_address" validate:"required,ip"`
	UserAgent        string `json:"user_agent,omitempty"`
	HijackIndicators bool   `json:"hijack_indicators"`
	ImpossibleTravel bool   `json:"impossible_travel"`
	NewDevice        bool   `json:"new_device"`
	NewLocation      bool   `json:"new_location"`
	Terminable       bool   `json:"terminable"`
}

// NewSuspiciousSession constructs a SuspiciousSession event.
func NewSuspiciousSession(at time.Time, ss SuspiciousSession) (*SuspiciousSession, error) {
	ss.Meta = newMeta(at)
	if err := checkFields(ss.Kind(), ss); err != nil {
		return nil, err
	}
	return &ss, nil
}

func (SuspiciousSession) Kind() string       { return "security.suspicious_session" }
func (SuspiciousSession) Category() Category { return CategorySecurity }

func (e SuspiciousSession) Severity() Severity {
	switch {
	case e.HijackIndicators || e.ImpossibleTravel:
		return SeverityCritical
	case e.NewDevice && e.NewLocation:
		return SeverityHigh
	case e.NewDevice || e.NewLocation:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e SuspiciousSession) Title() string {
	return fmt.Sprintf("Suspicious session for user %s", e.UserID)
}

func (e SuspiciousSession) Description() string {
	return fmt.Sprintf("Session %s for user %s from %s shows anomalous activity",
		e.SessionID, e.UserID, e.IPAddress)
}

func (e SuspiciousSession) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e SuspiciousSession) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e SuspiciousSession) ActionURL() string     { return "/admin/security/sessions" }
func (e SuspiciousSession) Target() string        { return e.UserID }

// HasTakeoverIndicators reports whether the session shows account
// takeover signals. Only this grade triggers forced password reset and
// mandatory 2FA.
func (e SuspiciousSession) HasTakeoverIndicators() bool {
	return e.HijackIndicators || e.ImpossibleTravel
}

// ShouldTerminateSession reports whether the flagged session may be
// terminated immediately
func (e SuspiciousSession) ShouldTerminateSession() bool { return e.Terminable }

// ShouldBlockIP reports whether the session's address must be blocked
func (e SuspiciousSession) ShouldBlockIP() bool { return e.HijackIndicators }

// RequiresMonitoring reports whether the account should go under
// enhanced monitoring. New-device or new-location sign-ins that do not
// reach takeover grade are watched rather than punished.
func (e SuspiciousSession) RequiresMonitoring() bool {
	return (e.NewDevice || e.NewLocation) && !e.HasTakeoverIndicators()
}

func (e SuspiciousSession) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["session_id"] = e.SessionID
	f["user_id"] = e.UserID
	f["ip_address"] = e.IPAddress
	f["user_agent"] = e.UserAgent
	f["hijack_indicators"] = e.HijackIndicators
	f["impossible_travel"] = e.ImpossibleTravel
	f["new_device"] = e.NewDevice
	f["new_location"] = e.NewLocation
	f["terminable"] = e.Terminable
	return f
}

// AccountDeleted records the removal of a user account.
type AccountDeleted struct {
	Meta
	TargetUserID string `json:"target_user_id" validate:"required"`
	TargetEmail  string `json:"target_email" validate:"required,email"`
	DeletedBy    string `json:"deleted_by,omitempty"`
	WasAdmin     bool   `json:"was_admin"`
	SelfDeleted  bool   `json:"self_deleted"`
	DataPurged   bool   `json:"data_purged"`
}

// NewAccountDeleted constructs an AccountDeleted event.
func NewAccountDeleted(at time.Time, ad AccountDeleted) (*AccountDeleted, error) {
	ad.Meta = newMeta(at)
	if err := checkFields(ad.Kind(), ad); err != nil {
		return nil, err
	}
	return &ad, nil
}

func (AccountDeleted) Kind() string       { return "security.account_deleted" }
func (AccountDeleted) Category() Category { return CategorySecurity }

func (e AccountDeleted) Severity() Severity {
	switch {
	case e.WasAdmin:
		return SeverityCritical
	case e.DataPurged:
		return SeverityHigh
	case !e.SelfDeleted:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e AccountDeleted) Title() string {
	return fmt.Sprintf("Account %s deleted", e.TargetEmail)
}

func (e AccountDeleted) Description() string {
	who := "the account owner"
	if !e.SelfDeleted && e.DeletedBy != "" {
		who = "user " + e.DeletedBy
	}
	return fmt.Sprintf("Account %s (%s) was deleted by %s", e.TargetUserID, e.TargetEmail, who)
}

func (e AccountDeleted) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e AccountDeleted) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e AccountDeleted) ActionURL() string     { return "/admin/security/accounts" }
func (e AccountDeleted) Actor() string         { return e.DeletedBy }
func (e AccountDeleted) Target() string        { return e.TargetUserID }

func (e AccountDeleted) EscalatesToHR() bool { return e.WasAdmin }

func (e AccountDeleted) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["target_user_id"] = e.TargetUserID
	f["target_email"] = e.TargetEmail
	f["deleted_by"] = e.DeletedBy
	f["was_admin"] = e.WasAdmin
	f["self_deleted"] = e.SelfDeleted
	f["data_purged"] = e.DataPurged
	return f
}
