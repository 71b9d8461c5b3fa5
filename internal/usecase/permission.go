package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

var (
	// ErrPermissionExists indicates a permission with the provided name
	// already exists.
	ErrPermissionExists = errors.New("permission already exists")
	// ErrInvalidNamespace indicates the service namespace is invalid or empty.
	ErrInvalidNamespace = errors.New("invalid service namespace")
	// ErrInvalidAction indicates the action is invalid or empty.
	ErrInvalidAction = errors.New("invalid action")
)

// CreatePermissionInput captures the payload for creating a permission.
type CreatePermissionInput struct {
	ServiceNamespace string
	Action           string
	Description      *string
}

// PermissionService expands roles into their granted capability set and owns
// the permission lifecycle.
type PermissionService struct {
	permissions port.PermissionRepository
	roles       port.RoleRepository
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(permissions port.PermissionRepository, roles port.RoleRepository) *PermissionService {
	return &PermissionService{permissions: permissions, roles: roles}
}

// ResolvePermissions expands a role into its granted permissions. A role
// with no grants resolves to an empty set, not an error.
func (s *PermissionService) ResolvePermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, fmt.Errorf("role id is required")
	}

	permissions, err := s.permissions.ListByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	return permissions, nil
}

// CreatePermission provisions a new capability under its canonical
// `namespace:action` name.
func (s *PermissionService) CreatePermission(ctx context.Context, input CreatePermissionInput) (*domain.Permission, error) {
	namespace := strings.TrimSpace(input.ServiceNamespace)
	if namespace == "" {
		return nil, ErrInvalidNamespace
	}

	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil, ErrInvalidAction
	}

	name := fmt.Sprintf("%s:%s", namespace, action)

	permission := domain.Permission{
		ID:               uuid.NewString(),
		Name:             name,
		ServiceNamespace: namespace,
		Action:           action,
	}

	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			permission.Description = &trimmed
		}
	}

	if err := s.permissions.Create(ctx, permission); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPermissionExists
		}
		return nil, fmt.Errorf("create permission: %w", err)
	}

	return &permission, nil
}

// GetPermissionByName retrieves a permission by its canonical name.
func (s *PermissionService) GetPermissionByName(ctx context.Context, name string) (*domain.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("permission name is required")
	}

	permission, err := s.permissions.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get permission by name: %w", err)
	}

	return permission, nil
}

// ListPermissions returns permissions with optional filtering and pagination.
func (s *PermissionService) ListPermissions(ctx context.Context, filter port.PermissionFilter) ([]domain.Permission, error) {
	permissions, err := s.permissions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	return permissions, nil
}

// GrantPermissions links permissions to a role and returns the number of new
// grants. Pairs that already exist are skipped, never overwritten, so
// repeated seeding is safe.
func (s *PermissionService) GrantPermissions(ctx context.Context, roleID string, permissionIDs []string) (int, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return 0, fmt.Errorf("role id is required")
	}

	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return 0, fmt.Errorf("get role: %w", err)
	}

	unique := make([]string, 0, len(permissionIDs))
	seen := make(map[string]struct{}, len(permissionIDs))
	for _, permissionID := range permissionIDs {
		trimmed := strings.TrimSpace(permissionID)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}

		if _, err := s.permissions.GetByID(ctx, trimmed); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, fmt.Errorf("permission %s: %w", trimmed, repository.ErrNotFound)
			}
			return 0, fmt.Errorf("lookup permission %s: %w", trimmed, err)
		}

		unique = append(unique, trimmed)
	}

	granted, err := s.permissions.Grant(ctx, roleID, unique)
	if err != nil {
		return 0, fmt.Errorf("grant permissions: %w", err)
	}

	return granted, nil
}

// RevokePermissions removes grants from a role and returns the number of
// grants removed.
func (s *PermissionService) RevokePermissions(ctx context.Context, roleID string, permissionIDs []string) (int, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return 0, fmt.Errorf("role id is required")
	}

	revoked, err := s.permissions.Revoke(ctx, roleID, permissionIDs)
	if err != nil {
		return 0, fmt.Errorf("revoke permissions: %w", err)
	}

	return revoked, nil
}
