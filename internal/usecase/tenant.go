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
	// ErrCompanyInactive indicates the tenant exists but is administratively
	// disabled. Callers must treat this as a hard deny, not a missing
	// resource.
	ErrCompanyInactive = errors.New("company is inactive")
	// ErrDomainTaken indicates the domain is already linked to a company.
	ErrDomainTaken = errors.New("domain already linked to a company")
)

// CreateCompanyInput captures the payload for provisioning a tenant.
type CreateCompanyInput struct {
	Name string
}

// TenantService resolves inbound domains to active tenants and owns the
// administrative company/domain lifecycle.
type TenantService struct {
	companies port.CompanyRepository
	domains   port.DomainRepository
	events    port.EventPublisher
	cache     port.TenantCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewTenantService constructs a TenantService.
func NewTenantService(companies port.CompanyRepository, domains port.DomainRepository, events port.EventPublisher) *TenantService {
	return &TenantService{
		companies: companies,
		domains:   domains,
		events:    events,
		logger:    zap.NewNop(),
	}
}

// WithCache enables read-through caching of domain resolution.
func (s *TenantService) WithCache(cache port.TenantCache, ttl time.Duration) *TenantService {
	s.cache = cache
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	s.cacheTTL = ttl
	return s
}

// WithLogger attaches a logger.
func (s *TenantService) WithLogger(logger *zap.Logger) *TenantService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ResolveTenantByDomain maps an inbound domain name to its active tenant.
// Returns repository.ErrNotFound when the domain or its link is unknown and
// ErrCompanyInactive when the owning company is disabled. Cache failures are
// soft: resolution always falls back to the store.
func (s *TenantService) ResolveTenantByDomain(ctx context.Context, domainName string) (*domain.Company, error) {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}

	if s.cache != nil {
		if company, err := s.cache.GetCompanyByDomain(ctx, domainName); err == nil {
			if !company.IsActive {
				return nil, ErrCompanyInactive
			}
			return company, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("tenant cache read failed", zap.String("domain", domainName), zap.Error(err))
		}
	}

	d, err := s.domains.GetByName(ctx, domainName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup domain %q: %w", domainName, err)
	}

	link, err := s.domains.GetLinkByDomain(ctx, d.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup domain link: %w", err)
	}

	company, err := s.companies.GetByID(ctx, link.CompanyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup company %s: %w", link.CompanyID, err)
	}

	if s.cache != nil {
		if err := s.cache.SetCompanyByDomain(ctx, domainName, *company, s.cacheTTL); err != nil {
			s.logger.Warn("tenant cache write failed", zap.String("domain", domainName), zap.Error(err))
		}
	}

	if !company.IsActive {
		return nil, ErrCompanyInactive
	}

	return company, nil
}

// CreateCompany provisions a new tenant.
func (s *TenantService) CreateCompany(ctx context.Context, input CreateCompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("company name is required")
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:        uuid.NewString(),
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	if s.events != nil {
		event := domain.CompanyCreatedEvent{
			EventID:   uuid.NewString(),
			CompanyID: company.ID,
			Name:      company.Name,
			CreatedAt: now,
		}
		if err := s.events.PublishCompanyCreated(ctx, event); err != nil {
			s.logger.Warn("publish company created event failed", zap.Error(err))
		}
	}

	return &company, nil
}

// GetCompany retrieves a tenant by ID.
func (s *TenantService) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id is required")
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	return company, nil
}

// SetCompanyStatus flips the tenant's activation flag and invalidates every
// cached domain that resolves to it.
func (s *TenantService) SetCompanyStatus(ctx context.Context, companyID string, active bool) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	company.IsActive = active
	company.UpdatedAt = time.Now().UTC()

	if err := s.companies.Update(ctx, *company); err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}

	s.invalidateCompanyDomains(ctx, companyID)

	return company, nil
}

// AddDomain attaches a domain name to the company, creating the domain row
// when it does not exist yet. A domain owned by any company cannot be linked
// again; that surfaces as ErrDomainTaken.
func (s *TenantService) AddDomain(ctx context.Context, companyID, domainName string) (*domain.Domain, error) {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	d, err := s.domains.GetByName(ctx, domainName)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup domain %q: %w", domainName, err)
		}

		candidate := domain.Domain{
			ID:        uuid.NewString(),
			Name:      domainName,
			CreatedAt: time.Now().UTC(),
		}

		if err := s.domains.Create(ctx, candidate); err != nil {
			// Concurrent creation: fall back to the winner's row.
			if !errors.Is(err, repository.ErrConflict) {
				return nil, fmt.Errorf("create domain %q: %w", domainName, err)
			}
			if d, err = s.domains.GetByName(ctx, domainName); err != nil {
				return nil, fmt.Errorf("lookup domain %q after conflict: %w", domainName, err)
			}
		} else {
			d = &candidate
		}
	}

	if err := s.domains.Link(ctx, companyID, d.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDomainTaken
		}
		return nil, fmt.Errorf("link domain %q: %w", domainName, err)
	}

	s.invalidateDomain(ctx, domainName)

	return d, nil
}

// RemoveDomain detaches a domain name from the company.
func (s *TenantService) RemoveDomain(ctx context.Context, companyID, domainName string) error {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return fmt.Errorf("domain name is required")
	}

	d, err := s.domains.GetByName(ctx, domainName)
	if err != nil {
		return fmt.Errorf("lookup domain %q: %w", domainName, err)
	}

	if err := s.domains.Unlink(ctx, companyID, d.ID); err != nil {
		return fmt.Errorf("unlink domain %q: %w", domainName, err)
	}

	s.invalidateDomain(ctx, domainName)

	return nil
}

func (s *TenantService) invalidateDomain(ctx context.Context, domainName string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDomain(ctx, domainName); err != nil {
		s.logger.Warn("tenant cache invalidation failed", zap.String("domain", domainName), zap.Error(err))
	}
}

func (s *TenantService) invalidateCompanyDomains(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}

	domains, err := s.domains.ListByCompany(ctx, companyID)
	if err != nil {
		s.logger.Warn("list company domains for invalidation failed", zap.String("company_id", companyID), zap.Error(err))
		return
	}

	for _, d := range domains {
		s.invalidateDomain(ctx, d.Name)
	}
}
