package domain

// Role is the workflow role a caller acts under.
type Role string

const (
	RoleCreator    Role = "creator"
	RoleSupervisor Role = "supervisor"
	RoleVendor     Role = "vendor"
	RolePurchase   Role = "purchase"
)

// IsValid reports whether r is a known workflow role.
func (r Role) IsValid() bool {
	switch r {
	case RoleCreator, RoleSupervisor, RoleVendor, RolePurchase:
		return true
	}
	return false
}

// Actor describes the authenticated caller of a lifecycle operation. Vendors
// are matched against Ticket.AssignedVendor by email.
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  Role
}
