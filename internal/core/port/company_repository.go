package port

import (
	"context"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// CompanyRepository handles tenant CRUD.
type CompanyRepository interface {
	Create(ctx context.Context, company domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
	Update(ctx context.Context, company domain.Company) error
	Delete(ctx context.Context, id string) error
}
