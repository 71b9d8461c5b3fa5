package domain

import "time"

// Company is the unit of tenant isolation. Custom roles and memberships
// belong to exactly one company.
type Company struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain is a globally unique namespace string (typically an email suffix or
// hostname) used to resolve an inbound identity to its owning tenant.
type Domain struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CompanyDomain links a domain to the company that owns it. A domain is
// linked to at most one company at a time.
type CompanyDomain struct {
	CompanyID string
	DomainID  string
	LinkedAt  time.Time
}
