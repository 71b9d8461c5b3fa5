package port

import (
	"context"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// DomainRepository handles domain rows and their company links.
type DomainRepository interface {
	Create(ctx context.Context, d domain.Domain) error
	GetByID(ctx context.Context, id string) (*domain.Domain, error)
	GetByName(ctx context.Context, name string) (*domain.Domain, error)
	Delete(ctx context.Context, id string) error

	// Link binds the domain to a company. A domain already linked to any
	// company yields repository.ErrConflict.
	Link(ctx context.Context, companyID, domainID string) error
	Unlink(ctx context.Context, companyID, domainID string) error
	GetLinkByDomain(ctx context.Context, domainID string) (*domain.CompanyDomain, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Domain, error)
}
