package domain

import "time"

// Reserved system role names. System roles carry no company id and are
// visible to every tenant.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

// SystemRoleNames lists the reserved role names in seeding order.
var SystemRoleNames = []string{RoleAdmin, RoleManager, RoleUser}

// IsReservedRoleName reports whether name belongs to the fixed system role set.
func IsReservedRoleName(name string) bool {
	for _, reserved := range SystemRoleNames {
		if name == reserved {
			return true
		}
	}
	return false
}

// Role is either a system role (CompanyID nil) or a tenant-owned custom role.
// The pair (Name, CompanyID) is unique, the NULL company id being a scope of
// its own.
type Role struct {
	ID          string
	Name        string
	CompanyID   *string
	Description *string
	CreatedAt   time.Time
}

// IsSystem reports whether the role carries a reserved name. The stored
// company id is deliberately ignored: a reserved name is system-scoped even
// if a row were ever mis-written with a tenant id.
func (r Role) IsSystem() bool {
	return IsReservedRoleName(r.Name)
}

// Permission defines a named capability, globally unique by name. Names are
// opaque `namespace:action` tokens; the core never interprets their structure.
type Permission struct {
	ID               string
	Name             string
	ServiceNamespace string
	Action           string
	Description      *string
}

// RolePermission grants a permission to a role.
type RolePermission struct {
	RoleID       string
	PermissionID string
}

// Membership binds one user to exactly one role within exactly one company.
// The (UserID, CompanyID) identity is immutable after creation; only RoleID
// may change. At most one membership exists per user.
type Membership struct {
	UserID     string
	CompanyID  string
	RoleID     string
	AssignedAt time.Time
	UpdatedAt  time.Time
}
