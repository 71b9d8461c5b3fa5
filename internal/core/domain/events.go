package domain

import "time"

// Audit events emitted on administrative mutations. Publishing is
// fire-and-forget; no access decision ever depends on an event reaching the
// bus.

// CompanyCreatedEvent records the provisioning of a new tenant.
type CompanyCreatedEvent struct {
	EventID   string
	CompanyID string
	Name      string
	CreatedAt time.Time
	Metadata  map[string]any
}

// RoleCreatedEvent records the creation of a custom role within a tenant.
type RoleCreatedEvent struct {
	EventID   string
	RoleID    string
	Name      string
	CompanyID *string
	CreatedAt time.Time
	Metadata  map[string]any
}

// RoleDeletedEvent records the removal of a role.
type RoleDeletedEvent struct {
	EventID   string
	RoleID    string
	Name      string
	CompanyID *string
	DeletedAt time.Time
	Metadata  map[string]any
}

// MembershipAssignedEvent records a user joining a tenant with a role.
type MembershipAssignedEvent struct {
	EventID    string
	UserID     string
	CompanyID  string
	RoleID     string
	AssignedAt time.Time
	Metadata   map[string]any
}

// MembershipRoleChangedEvent records a role re-assignment on an existing
// membership. The (user, company) identity never changes.
type MembershipRoleChangedEvent struct {
	EventID        string
	UserID         string
	CompanyID      string
	PreviousRoleID string
	RoleID         string
	ChangedAt      time.Time
	Metadata       map[string]any
}

// MembershipRemovedEvent records a user leaving a tenant.
type MembershipRemovedEvent struct {
	EventID   string
	UserID    string
	CompanyID string
	RoleID    string
	RemovedAt time.Time
	Metadata  map[string]any
}
