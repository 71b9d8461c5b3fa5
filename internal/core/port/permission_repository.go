package port

import (
	"context"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// PermissionFilter narrows permission listings.
type PermissionFilter struct {
	ServiceNamespace string
	Limit            int
	Offset           int
}

// PermissionRepository handles permission CRUD and role grants.
type PermissionRepository interface {
	Create(ctx context.Context, permission domain.Permission) error
	GetByID(ctx context.Context, id string) (*domain.Permission, error)
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context, filter PermissionFilter) ([]domain.Permission, error)
	Delete(ctx context.Context, id string) error

	// ListByRole returns the permissions granted to a role, empty when the
	// role has no grants.
	ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error)

	// Grant inserts role-permission rows, skipping pairs that already exist,
	// and returns the number of rows actually inserted.
	Grant(ctx context.Context, roleID string, permissionIDs []string) (int, error)
	Revoke(ctx context.Context, roleID string, permissionIDs []string) (int, error)
}
