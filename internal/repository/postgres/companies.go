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

// CompanyRepository implements tenant persistence operations.
type CompanyRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCompanyRepository constructs a PostgreSQL-backed company repository.
func NewCompanyRepository(exec pgExecutor) *CompanyRepository {
	repo := &CompanyRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *CompanyRepository) WithTx(tx pgx.Tx) *CompanyRepository {
	if tx == nil {
		return r
	}
	return &CompanyRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new company.
func (r *CompanyRepository) Create(ctx context.Context, company domain.Company) error {
	stmt, args, err := r.builder.Insert("access.companies").
		Columns("id", "name", "is_active", "created_at", "updated_at").
		Values(company.ID, company.Name, company.IsActive, company.CreatedAt, company.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert company sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert company: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a company by its ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	stmt, args, err := r.builder.Select("id", "name", "is_active", "created_at", "updated_at").
		From("access.companies").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select company sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var company domain.Company
	if err := row.Scan(&company.ID, &company.Name, &company.IsActive, &company.CreatedAt, &company.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}

	return &company, nil
}

// List retrieves all companies sorted by name.
func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	stmt, args, err := r.builder.Select("id", "name", "is_active", "created_at", "updated_at").
		From("access.companies").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list companies sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.IsActive, &company.CreatedAt, &company.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, company)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}

	return companies, nil
}

// Update modifies an existing company.
func (r *CompanyRepository) Update(ctx context.Context, company domain.Company) error {
	stmt, args, err := r.builder.Update("access.companies").
		Set("name", company.Name).
		Set("is_active", company.IsActive).
		Set("updated_at", company.UpdatedAt).
		Where(squirrel.Eq{"id": company.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update company sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update company: %w", translateError(err))
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a company by ID (cascades to domains links, roles, and
// memberships via FK).
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("access.companies").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete company sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CompanyRepository = (*CompanyRepository)(nil)
