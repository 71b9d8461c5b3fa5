package port

import (
	"context"
	"time"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// TenantCache provides read-through caching for domain name → company
// resolution. A cache miss returns repository.ErrNotFound; any other error is
// treated as a soft failure by callers.
type TenantCache interface {
	GetCompanyByDomain(ctx context.Context, domainName string) (*domain.Company, error)
	SetCompanyByDomain(ctx context.Context, domainName string, company domain.Company, ttl time.Duration) error
	InvalidateDomain(ctx context.Context, domainName string) error
}
