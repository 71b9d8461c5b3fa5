package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

// RoleRepository implements role persistence operations.
type RoleRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	repo := &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new role. A duplicate (name, company_id) pair raises a
// conflict.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Insert("access.roles").
		Columns("id", "name", "company_id", "description", "created_at").
		Values(role.ID, role.Name, role.CompanyID, role.Description, role.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert role: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a role by its ID.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name", "company_id", "description", "created_at").
		From("access.roles").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by id sql: %w", err)
	}

	role, err := r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role by id: %w", err)
	}

	return role, nil
}

// GetByName retrieves a role by name within the exact scope: a nil companyID
// matches only rows whose company_id is NULL.
func (r *RoleRepository) GetByName(ctx context.Context, name string, companyID *string) (*domain.Role, error) {
	query := r.builder.Select("id", "name", "company_id", "description", "created_at").
		From("access.roles").
		Where(squirrel.Eq{"name": name})

	if companyID == nil {
		query = query.Where(squirrel.Eq{"company_id": nil})
	} else {
		query = query.Where(squirrel.Eq{"company_id": *companyID})
	}

	stmt, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by name sql: %w", err)
	}

	role, err := r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role by name: %w", err)
	}

	return role, nil
}

// ListSystem retrieves roles with a NULL company id in insertion order.
func (r *RoleRepository) ListSystem(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name", "company_id", "description", "created_at").
		From("access.roles").
		Where(squirrel.Eq{"company_id": nil}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list system roles sql: %w", err)
	}

	return r.queryRoles(ctx, stmt, args)
}

// ListByCompany retrieves roles owned by the company sorted by name.
func (r *RoleRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name", "company_id", "description", "created_at").
		From("access.roles").
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list company roles sql: %w", err)
	}

	return r.queryRoles(ctx, stmt, args)
}

// Update modifies an existing role.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Update("access.roles").
		Set("name", role.Name).
		Set("description", role.Description).
		Where(squirrel.Eq{"id": role.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", translateError(err))
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a role by ID (cascades to role_permissions via FK).
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("access.roles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *RoleRepository) scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		role        domain.Role
		companyID   sql.NullString
		description sql.NullString
	)

	if err := row.Scan(&role.ID, &role.Name, &companyID, &description, &role.CreatedAt); err != nil {
		return nil, err
	}

	if companyID.Valid {
		role.CompanyID = &companyID.String
	}
	if description.Valid {
		role.Description = &description.String
	}

	return &role, nil
}

func (r *RoleRepository) queryRoles(ctx context.Context, stmt string, args []any) ([]domain.Role, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var (
			role        domain.Role
			companyID   sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&role.ID, &role.Name, &companyID, &description, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		if companyID.Valid {
			role.CompanyID = &companyID.String
		}
		if description.Valid {
			role.Description = &description.String
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
