package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

var (
	// ErrRoleExists indicates a role with the provided name already exists in
	// the scope.
	ErrRoleExists = errors.New("role already exists")
	// ErrReservedRoleName indicates an attempt to create a custom role using
	// a system role name.
	ErrReservedRoleName = errors.New("role name is reserved for system roles")
	// ErrRoleInUse indicates the role still has live membership assignments.
	ErrRoleInUse = errors.New("role is referenced by memberships")
	// ErrRoleNotInCompany indicates a custom role failed tenant-scope
	// validation: no membership binds it to the requesting company.
	ErrRoleNotInCompany = errors.New("role is not visible in this company")
)

// CreateRoleInput captures the payload for creating a custom role.
type CreateRoleInput struct {
	Name        string
	Description *string
}

// RoleService resolves role visibility across the system and tenant scopes
// and owns the role lifecycle.
type RoleService struct {
	roles       port.RoleRepository
	memberships port.MembershipRepository
	companies   port.CompanyRepository
	events      port.EventPublisher
	logger      *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, memberships port.MembershipRepository, companies port.CompanyRepository, events port.EventPublisher) *RoleService {
	return &RoleService{
		roles:       roles,
		memberships: memberships,
		companies:   companies,
		events:      events,
		logger:      zap.NewNop(),
	}
}

// WithLogger attaches a logger.
func (s *RoleService) WithLogger(logger *zap.Logger) *RoleService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// FindSystemRoles returns the platform-wide roles: NULL company id and a
// reserved name. The name filter is defensive; rows outside the reserved set
// never surface here even if stored with a NULL company id.
func (s *RoleService) FindSystemRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.ListSystem(ctx)
	if err != nil {
		return nil, fmt.Errorf("list system roles: %w", err)
	}

	system := make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		if domain.IsReservedRoleName(role.Name) {
			system = append(system, role)
		}
	}

	return system, nil
}

// FindCustomRolesByCompany returns the company's own roles. Reserved names
// are filtered out defensively: even a mis-written reserved name with a
// company id would not surface as a custom role.
func (s *RoleService) FindCustomRolesByCompany(ctx context.Context, companyID string) ([]domain.Role, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id is required")
	}

	roles, err := s.roles.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company roles: %w", err)
	}

	custom := make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		if !domain.IsReservedRoleName(role.Name) {
			custom = append(custom, role)
		}
	}

	return custom, nil
}

// FindAllRolesForCompany returns the union of system roles and the company's
// custom roles, system roles first. The two sets are disjoint by the
// reserved-name invariant, so no deduplication happens.
func (s *RoleService) FindAllRolesForCompany(ctx context.Context, companyID string) ([]domain.Role, error) {
	system, err := s.FindSystemRoles(ctx)
	if err != nil {
		return nil, err
	}

	custom, err := s.FindCustomRolesByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return append(system, custom...), nil
}

// FindAvailableRolesForUser returns every role assignable to the user: only
// the system roles when the user belongs to no tenant, otherwise the system
// roles plus the custom roles of the user's tenant.
func (s *RoleService) FindAvailableRolesForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user memberships: %w", err)
	}

	if len(memberships) == 0 {
		return s.FindSystemRoles(ctx)
	}

	// Single tenancy holds one membership per user; the first row is the
	// only row.
	return s.FindAllRolesForCompany(ctx, memberships[0].CompanyID)
}

// IsSystemRole reports whether the role exists and carries a reserved name,
// regardless of its stored company id. An unknown role is simply not a
// system role.
func (s *RoleService) IsSystemRole(ctx context.Context, roleID string) (bool, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get role: %w", err)
	}

	return role.IsSystem(), nil
}

// FindRoleWithCompanyValidation is the principal scoping check. System roles
// pass unconditionally; a custom role is returned only when at least one
// membership binds it to the requesting company, which rejects every
// cross-tenant leak of custom roles.
func (s *RoleService) FindRoleWithCompanyValidation(ctx context.Context, roleID, companyID string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	if role.IsSystem() {
		return role, nil
	}

	bound, err := s.memberships.ExistsForRole(ctx, roleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("check role binding: %w", err)
	}

	if !bound {
		return nil, ErrRoleNotInCompany
	}

	return role, nil
}

// FindByName performs a scope-exact lookup: a nil companyID matches only
// roles whose company id is NULL, never a fuzzy any-tenant search.
func (s *RoleService) FindByName(ctx context.Context, name string, companyID *string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}

	role, err := s.roles.GetByName(ctx, name, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get role by name: %w", err)
	}

	return role, nil
}

// CreateCustomRole provisions a tenant-owned role. Reserved names are
// rejected here rather than left to the store: the uniqueness constraint on
// (name, company_id) cannot express "forbidden regardless of company id".
func (s *RoleService) CreateCustomRole(ctx context.Context, companyID string, input CreateRoleInput) (*domain.Role, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}

	if domain.IsReservedRoleName(name) {
		return nil, ErrReservedRoleName
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	role := domain.Role{
		ID:        uuid.NewString(),
		Name:      name,
		CompanyID: &companyID,
		CreatedAt: time.Now().UTC(),
	}

	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			role.Description = &trimmed
		}
	}

	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	if s.events != nil {
		event := domain.RoleCreatedEvent{
			EventID:   uuid.NewString(),
			RoleID:    role.ID,
			Name:      role.Name,
			CompanyID: role.CompanyID,
			CreatedAt: role.CreatedAt,
		}
		if err := s.events.PublishRoleCreated(ctx, event); err != nil {
			s.logger.Warn("publish role created event failed", zap.Error(err))
		}
	}

	return &role, nil
}

// SeedSystemRoles ensures the reserved roles exist, creating missing ones and
// never touching existing rows or their grants (no-op on conflict).
func (s *RoleService) SeedSystemRoles(ctx context.Context) ([]domain.Role, error) {
	seeded := make([]domain.Role, 0, len(domain.SystemRoleNames))

	for _, name := range domain.SystemRoleNames {
		existing, err := s.roles.GetByName(ctx, name, nil)
		if err == nil {
			seeded = append(seeded, *existing)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup system role %s: %w", name, err)
		}

		role := domain.Role{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}

		if err := s.roles.Create(ctx, role); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				// Lost a seeding race; read the winner.
				if existing, err := s.roles.GetByName(ctx, name, nil); err == nil {
					seeded = append(seeded, *existing)
					continue
				}
			}
			return nil, fmt.Errorf("create system role %s: %w", name, err)
		}

		seeded = append(seeded, role)
	}

	return seeded, nil
}

// DeleteRole removes a custom role once nothing references it. System roles
// are never deletable.
func (s *RoleService) DeleteRole(ctx context.Context, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("role id is required")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return fmt.Errorf("get role: %w", err)
	}

	if role.IsSystem() {
		return ErrReservedRoleName
	}

	count, err := s.memberships.CountByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("count role memberships: %w", err)
	}
	if count > 0 {
		return ErrRoleInUse
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if s.events != nil {
		event := domain.RoleDeletedEvent{
			EventID:   uuid.NewString(),
			RoleID:    role.ID,
			Name:      role.Name,
			CompanyID: role.CompanyID,
			DeletedAt: time.Now().UTC(),
		}
		if err := s.events.PublishRoleDeleted(ctx, event); err != nil {
			s.logger.Warn("publish role deleted event failed", zap.Error(err))
		}
	}

	return nil
}
