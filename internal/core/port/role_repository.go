package port

import (
	"context"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// RoleRepository handles role CRUD across both scopes.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)

	// GetByName is scope-exact: a nil companyID matches only rows whose
	// company id is NULL, never "any tenant".
	GetByName(ctx context.Context, name string, companyID *string) (*domain.Role, error)

	// ListSystem returns roles with a NULL company id in insertion order.
	ListSystem(ctx context.Context) ([]domain.Role, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, id string) error
}
