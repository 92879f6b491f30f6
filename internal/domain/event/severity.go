package event

import "fmt"

// Severity is the ordered classification driving routing and remediation
// gating. Higher values are more severe.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// AtLeast reports whether s is at or above the given severity
func (s Severity) AtLeast(min Severity) bool {
	return s >= min
}

// Category groups event variants into dispatch families
type Category string

const (
	CategorySecurity Category = "security"
	CategoryContent  Category = "content"
	CategoryBusiness Category = "business"
	CategorySystem   Category = "system"
)

// QueueNameFor maps a category and severity to one of the fixed queue
// lanes used for prioritized delivery. This is a routing hint only.
func QueueNameFor(c Category, s Severity) string {
	switch s {
	case SeverityCritical:
		return fmt.Sprintf("%s-critical-alerts", c)
	case SeverityHigh:
		return fmt.Sprintf("%s-high-alerts", c)
	default:
		return fmt.Sprintf("%s-alerts", c)
	}
}
