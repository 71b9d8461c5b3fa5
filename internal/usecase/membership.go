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
	// ErrMembershipExists indicates the user already holds a membership. The
	// model is strictly single-tenant per user: a second membership is
	// rejected whether it targets the same company or a different one.
	ErrMembershipExists = errors.New("user already holds a membership")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// MembershipService owns the user-role-company binding lifecycle.
type MembershipService struct {
	memberships port.MembershipRepository
	users       port.UserRepository
	companies   port.CompanyRepository
	roles       port.RoleRepository
	events      port.EventPublisher
	logger      *zap.Logger
}

// NewMembershipService constructs a MembershipService.
func NewMembershipService(memberships port.MembershipRepository, users port.UserRepository, companies port.CompanyRepository, roles port.RoleRepository, events port.EventPublisher) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		users:       users,
		companies:   companies,
		roles:       roles,
		events:      events,
		logger:      zap.NewNop(),
	}
}

// WithLogger attaches a logger.
func (s *MembershipService) WithLogger(logger *zap.Logger) *MembershipService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// AssignRole creates the membership binding the user to a role within the
// company. The membership's (user, company) identity is immutable afterwards;
// only the role may be relinked via ReassignRole.
func (s *MembershipService) AssignRole(ctx context.Context, userID, companyID, roleID string) (*domain.Membership, error) {
	userID = strings.TrimSpace(userID)
	companyID = strings.TrimSpace(companyID)
	roleID = strings.TrimSpace(roleID)
	if userID == "" || companyID == "" || roleID == "" {
		return nil, fmt.Errorf("user id, company id, and role id are required")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user %s: %w", userID, err)
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	if err := s.validateRoleAssignable(ctx, roleID, companyID); err != nil {
		return nil, err
	}

	// Strict single tenancy: any live membership blocks a second one. The
	// store's unique index on user_id closes the race window.
	existing, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user memberships: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrMembershipExists
	}

	now := time.Now().UTC()
	membership := domain.Membership{
		UserID:     userID,
		CompanyID:  companyID,
		RoleID:     roleID,
		AssignedAt: now,
		UpdatedAt:  now,
	}

	if err := s.memberships.Create(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMembershipExists
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}

	if s.events != nil {
		event := domain.MembershipAssignedEvent{
			EventID:    uuid.NewString(),
			UserID:     userID,
			CompanyID:  companyID,
			RoleID:     roleID,
			AssignedAt: now,
		}
		if err := s.events.PublishMembershipAssigned(ctx, event); err != nil {
			s.logger.Warn("publish membership assigned event failed", zap.Error(err))
		}
	}

	return &membership, nil
}

// ReassignRole relinks an existing membership to a new role. This is the
// overwrite path: the previous role id is replaced in place while the
// (user, company) identity stays fixed.
func (s *MembershipService) ReassignRole(ctx context.Context, userID, companyID, roleID string) (*domain.Membership, error) {
	userID = strings.TrimSpace(userID)
	companyID = strings.TrimSpace(companyID)
	roleID = strings.TrimSpace(roleID)
	if userID == "" || companyID == "" || roleID == "" {
		return nil, fmt.Errorf("user id, company id, and role id are required")
	}

	current, err := s.memberships.Get(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	if err := s.validateRoleAssignable(ctx, roleID, companyID); err != nil {
		return nil, err
	}

	if err := s.memberships.UpdateRole(ctx, userID, companyID, roleID); err != nil {
		return nil, fmt.Errorf("update membership role: %w", err)
	}

	if s.events != nil {
		event := domain.MembershipRoleChangedEvent{
			EventID:        uuid.NewString(),
			UserID:         userID,
			CompanyID:      companyID,
			PreviousRoleID: current.RoleID,
			RoleID:         roleID,
			ChangedAt:      time.Now().UTC(),
		}
		if err := s.events.PublishMembershipRoleChanged(ctx, event); err != nil {
			s.logger.Warn("publish membership role changed event failed", zap.Error(err))
		}
	}

	updated := *current
	updated.RoleID = roleID
	return &updated, nil
}

// RemoveMembership deletes the binding. Re-joining the company afterwards is
// a fresh AssignRole; there is no other transition out of the assigned state.
func (s *MembershipService) RemoveMembership(ctx context.Context, userID, companyID string) error {
	userID = strings.TrimSpace(userID)
	companyID = strings.TrimSpace(companyID)
	if userID == "" || companyID == "" {
		return fmt.Errorf("user id and company id are required")
	}

	current, err := s.memberships.Get(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("get membership: %w", err)
	}

	if err := s.memberships.Delete(ctx, userID, companyID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	if s.events != nil {
		event := domain.MembershipRemovedEvent{
			EventID:   uuid.NewString(),
			UserID:    userID,
			CompanyID: companyID,
			RoleID:    current.RoleID,
			RemovedAt: time.Now().UTC(),
		}
		if err := s.events.PublishMembershipRemoved(ctx, event); err != nil {
			s.logger.Warn("publish membership removed event failed", zap.Error(err))
		}
	}

	return nil
}

// GetMembership retrieves the binding for the (user, company) pair.
func (s *MembershipService) GetMembership(ctx context.Context, userID, companyID string) (*domain.Membership, error) {
	membership, err := s.memberships.Get(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return membership, nil
}

// ListCompanyMembers returns all memberships within the company.
func (s *MembershipService) ListCompanyMembers(ctx context.Context, companyID string) ([]domain.Membership, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id is required")
	}

	memberships, err := s.memberships.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company memberships: %w", err)
	}

	return memberships, nil
}

// validateRoleAssignable ensures the role may be bound within the company:
// system roles always, custom roles only when owned by that company.
func (s *MembershipService) validateRoleAssignable(ctx context.Context, roleID, companyID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("role %s: %w", roleID, repository.ErrNotFound)
		}
		return fmt.Errorf("get role: %w", err)
	}

	if role.IsSystem() {
		return nil
	}

	if role.CompanyID == nil || *role.CompanyID != companyID {
		return ErrRoleNotInCompany
	}

	return nil
}
