package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all PostgreSQL-backed repositories.
type Repositories struct {
	Companies   *CompanyRepository
	Domains     *DomainRepository
	Users       *UserRepository
	Roles       *RoleRepository
	Permissions *PermissionRepository
	Memberships *MembershipRepository
}

// NewRepositories constructs the full repository set over a shared pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Companies:   NewCompanyRepository(pool),
		Domains:     NewDomainRepository(pool),
		Users:       NewUserRepository(pool),
		Roles:       NewRoleRepository(pool),
		Permissions: NewPermissionRepository(pool),
		Memberships: NewMembershipRepository(pool),
	}
}
