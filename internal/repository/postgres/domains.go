package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

// DomainRepository implements domain and company-domain link persistence.
type DomainRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDomainRepository constructs a PostgreSQL-backed domain repository.
func NewDomainRepository(exec pgExecutor) *DomainRepository {
	repo := &DomainRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *DomainRepository) WithTx(tx pgx.Tx) *DomainRepository {
	if tx == nil {
		return r
	}
	return &DomainRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new domain row. Domain names are globally unique.
func (r *DomainRepository) Create(ctx context.Context, d domain.Domain) error {
	stmt, args, err := r.builder.Insert("access.domains").
		Columns("id", "name", "created_at").
		Values(d.ID, d.Name, d.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert domain sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert domain: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a domain by its ID.
func (r *DomainRepository) GetByID(ctx context.Context, id string) (*domain.Domain, error) {
	return r.getByColumn(ctx, "id", id)
}

// GetByName retrieves a domain by its unique name.
func (r *DomainRepository) GetByName(ctx context.Context, name string) (*domain.Domain, error) {
	return r.getByColumn(ctx, "name", name)
}

func (r *DomainRepository) getByColumn(ctx context.Context, column, value string) (*domain.Domain, error) {
	stmt, args, err := r.builder.Select("id", "name", "created_at").
		From("access.domains").
		Where(squirrel.Eq{column: value}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select domain sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var d domain.Domain
	if err := row.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain: %w", err)
	}

	return &d, nil
}

// Delete removes a domain by ID.
func (r *DomainRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("access.domains").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete domain sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Link binds the domain to a company. The domain_id column carries a unique
// index, so linking an already-owned domain raises a conflict.
func (r *DomainRepository) Link(ctx context.Context, companyID, domainID string) error {
	stmt, args, err := r.builder.Insert("access.company_domains").
		Columns("company_id", "domain_id", "linked_at").
		Values(companyID, domainID, squirrel.Expr("now()")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build link domain sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("link domain: %w", translateError(err))
	}

	return nil
}

// Unlink removes the company-domain binding.
func (r *DomainRepository) Unlink(ctx context.Context, companyID, domainID string) error {
	stmt, args, err := r.builder.Delete("access.company_domains").
		Where(squirrel.Eq{"company_id": companyID, "domain_id": domainID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unlink domain sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("unlink domain: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetLinkByDomain returns the company link owning the domain, if any.
func (r *DomainRepository) GetLinkByDomain(ctx context.Context, domainID string) (*domain.CompanyDomain, error) {
	stmt, args, err := r.builder.Select("company_id", "domain_id", "linked_at").
		From("access.company_domains").
		Where(squirrel.Eq{"domain_id": domainID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select domain link sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var link domain.CompanyDomain
	if err := row.Scan(&link.CompanyID, &link.DomainID, &link.LinkedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain link: %w", err)
	}

	return &link, nil
}

// ListByCompany returns all domains linked to the company.
func (r *DomainRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Domain, error) {
	stmt, args, err := r.builder.Select("d.id", "d.name", "d.created_at").
		From("access.domains d").
		Join("access.company_domains cd ON cd.domain_id = d.id").
		Where(squirrel.Eq{"cd.company_id": companyID}).
		OrderBy("d.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build domains by company sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query domains by company: %w", err)
	}
	defer rows.Close()

	domains := make([]domain.Domain, 0)
	for rows.Next() {
		var d domain.Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan domain by company: %w", err)
		}
		domains = append(domains, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains by company: %w", err)
	}

	return domains, nil
}

var _ port.DomainRepository = (*DomainRepository)(nil)
