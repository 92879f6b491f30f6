package principal

import "context"

// Role classifies a principal for recipient resolution
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleTarget   Role = "target"
	RoleApprover Role = "approver"
)

// Principal is a notifiable user reference
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// Directory resolves principals by role and reporting line. It is an
// externally-owned, read-mostly collaborator.
type Directory interface {
	// UsersWithRole returns all principals holding the given role
	UsersWithRole(ctx context.Context, role Role) ([]Principal, error)

	// ManagerOf returns the direct manager of a user, or nil when the
	// user has none
	ManagerOf(ctx context.Context, userID string) (*Principal, error)

	// ByID returns a principal by ID
	ByID(ctx context.Context, userID string) (*Principal, error)
}
