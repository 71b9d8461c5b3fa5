package port

import (
	"context"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// MembershipRepository handles user-role-company bindings. The store enforces
// uniqueness on (user_id, company_id) and, under the single-tenancy model,
// on user_id alone; violations surface as repository.ErrConflict.
type MembershipRepository interface {
	Create(ctx context.Context, m domain.Membership) error
	Get(ctx context.Context, userID, companyID string) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Membership, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Membership, error)

	// UpdateRole relinks the membership to a new role. The (user, company)
	// identity is immutable; there is no update for it.
	UpdateRole(ctx context.Context, userID, companyID, roleID string) error
	Delete(ctx context.Context, userID, companyID string) error

	// ExistsForRole reports whether any membership binds roleID within
	// companyID.
	ExistsForRole(ctx context.Context, roleID, companyID string) (bool, error)
	CountByRole(ctx context.Context, roleID string) (int, error)
}
