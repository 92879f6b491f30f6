package event

// RiskFactors are the weighted boolean contributions to the advisory
// risk score attached to security notifications and audit entries.
type RiskFactors struct {
	PrivilegeEscalation bool
	AdminResource       bool
	DataBreach          bool
	RecentViolations    bool
	SuspiciousIP        bool
}

// Risk factor weights. Any violation starts at the base score; each
// factor present adds its fixed increment.
const (
	riskBase                = 20
	riskPrivilegeEscalation = 40
	riskAdminResource       = 30
	riskDataBreach          = 35
	riskRecentViolations    = 25
	riskSuspiciousIP        = 20
)

// RiskScore computes the additive score and clamps it to 100. The raw
// sum can reach 170 with every factor present; the clamp is deliberate.
func RiskScore(f RiskFactors) int {
	score := riskBase
	if f.PrivilegeEscalation {
		score += riskPrivilegeEscalation
	}
	if f.AdminResource {
		score += riskAdminResource
	}
	if f.DataBreach {
		score += riskDataBreach
	}
	if f.RecentViolations {
		score += riskRecentViolations
	}
	if f.SuspiciousIP {
		score += riskSuspiciousIP
	}
	if score > 100 {
		score = 100
	}
	return score
}
