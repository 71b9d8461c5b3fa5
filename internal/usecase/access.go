package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

// Deny reasons carried by an AccessDecision.
const (
	DenyReasonNoMembership      = "user has no membership in company"
	DenyReasonCompanyInactive   = "company is inactive"
	DenyReasonMissingPermission = "role does not grant the required permission"
)

// AuthorizeInput captures one access decision request.
type AuthorizeInput struct {
	UserID             string
	CompanyID          string
	RequiredPermission string
	IsSystemAdmin      bool
}

// AccessDecision is the outcome of an authorization check. Deny is a
// decision value, not an error; errors are reserved for store failures and
// unknown entities.
type AccessDecision struct {
	Allowed     bool
	Reason      string
	Role        *domain.Role
	Permissions []domain.Permission
}

// AccessService is the top-level guard: it decides tenant access and renders
// allow/deny by composing the role and permission resolvers.
type AccessService struct {
	companies   port.CompanyRepository
	memberships port.MembershipRepository
	roles       *RoleService
	permissions *PermissionService
}

// NewAccessService constructs an AccessService.
func NewAccessService(companies port.CompanyRepository, memberships port.MembershipRepository, roles *RoleService, permissions *PermissionService) *AccessService {
	return &AccessService{
		companies:   companies,
		memberships: memberships,
		roles:       roles,
		permissions: permissions,
	}
}

// CanUserAccessCompany reports whether the user may act within the company.
// Platform administrators bypass tenant scoping entirely; everyone else needs
// a membership row.
func (s *AccessService) CanUserAccessCompany(ctx context.Context, companyID, userID string, isSystemAdmin bool) (bool, error) {
	if isSystemAdmin {
		return true, nil
	}

	companyID = strings.TrimSpace(companyID)
	userID = strings.TrimSpace(userID)
	if companyID == "" || userID == "" {
		return false, fmt.Errorf("company id and user id are required")
	}

	if _, err := s.memberships.Get(ctx, userID, companyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get membership: %w", err)
	}

	return true, nil
}

// GetCompaniesByUser returns the companies visible to the user: every company
// for a platform administrator, otherwise the single company of the user's
// membership or an empty set. One company per user is a documented
// constraint of the model, not an oversight.
func (s *AccessService) GetCompaniesByUser(ctx context.Context, userID string, isSystemAdmin bool) ([]domain.Company, error) {
	if isSystemAdmin {
		companies, err := s.companies.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list companies: %w", err)
		}
		return companies, nil
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user memberships: %w", err)
	}

	companies := make([]domain.Company, 0, len(memberships))
	for _, m := range memberships {
		company, err := s.companies.GetByID(ctx, m.CompanyID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get company %s: %w", m.CompanyID, err)
		}
		companies = append(companies, *company)
	}

	return companies, nil
}

// Authorize renders the full access decision: membership → role →
// permission expansion. Platform administrators are allowed without
// resolution. An inactive company is a hard deny, mirroring the tenant
// resolver's rule.
func (s *AccessService) Authorize(ctx context.Context, input AuthorizeInput) (*AccessDecision, error) {
	if input.IsSystemAdmin {
		return &AccessDecision{Allowed: true}, nil
	}

	userID := strings.TrimSpace(input.UserID)
	companyID := strings.TrimSpace(input.CompanyID)
	permissionName := strings.TrimSpace(input.RequiredPermission)
	if userID == "" || companyID == "" || permissionName == "" {
		return nil, fmt.Errorf("user id, company id, and permission are required")
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}

	if !company.IsActive {
		return &AccessDecision{Allowed: false, Reason: DenyReasonCompanyInactive}, nil
	}

	membership, err := s.memberships.Get(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &AccessDecision{Allowed: false, Reason: DenyReasonNoMembership}, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	role, err := s.roles.FindRoleWithCompanyValidation(ctx, membership.RoleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("resolve membership role: %w", err)
	}

	permissions, err := s.permissions.ResolvePermissions(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve role permissions: %w", err)
	}

	decision := &AccessDecision{
		Role:        role,
		Permissions: permissions,
	}

	for _, permission := range permissions {
		if permission.Name == permissionName {
			decision.Allowed = true
			return decision, nil
		}
	}

	decision.Reason = DenyReasonMissingPermission
	return decision, nil
}
