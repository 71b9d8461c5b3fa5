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

// PermissionRepository implements permission persistence operations.
type PermissionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a PostgreSQL-backed permission repository.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	repo := &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *PermissionRepository) WithTx(tx pgx.Tx) *PermissionRepository {
	if tx == nil {
		return r
	}
	return &PermissionRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new permission. Names are globally unique.
func (r *PermissionRepository) Create(ctx context.Context, permission domain.Permission) error {
	stmt, args, err := r.builder.Insert("access.permissions").
		Columns("id", "name", "service_namespace", "action", "description").
		Values(permission.ID, permission.Name, permission.ServiceNamespace, permission.Action, permission.Description).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert permission sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert permission: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a permission by its ID.
func (r *PermissionRepository) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	return r.getByColumn(ctx, "id", id)
}

// GetByName retrieves a permission by its unique name.
func (r *PermissionRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	return r.getByColumn(ctx, "name", name)
}

func (r *PermissionRepository) getByColumn(ctx context.Context, column, value string) (*domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "name", "service_namespace", "action", "description").
		From("access.permissions").
		Where(squirrel.Eq{column: value}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permission sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		permission  domain.Permission
		description sql.NullString
	)
	if err := row.Scan(&permission.ID, &permission.Name, &permission.ServiceNamespace, &permission.Action, &description); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan permission: %w", err)
	}

	if description.Valid {
		permission.Description = &description.String
	}

	return &permission, nil
}

// List retrieves permissions with optional namespace filtering and pagination.
func (r *PermissionRepository) List(ctx context.Context, filter port.PermissionFilter) ([]domain.Permission, error) {
	query := r.builder.Select("id", "name", "service_namespace", "action", "description").
		From("access.permissions").
		OrderBy("service_namespace ASC", "action ASC")

	if filter.ServiceNamespace != "" {
		query = query.Where(squirrel.Eq{"service_namespace": filter.ServiceNamespace})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// Delete removes a permission by ID.
func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("access.permissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete permission sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByRole returns the permissions granted to the role.
func (r *PermissionRepository) ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select(
		"p.id",
		"p.name",
		"p.service_namespace",
		"p.action",
		"p.description",
	).
		From("access.permissions p").
		Join("access.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.service_namespace ASC", "p.action ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build role permissions sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// Grant links the provided permissions to the role, skipping existing pairs,
// and returns the number of rows inserted.
func (r *PermissionRepository) Grant(ctx context.Context, roleID string, permissionIDs []string) (int, error) {
	if len(permissionIDs) == 0 {
		return 0, nil
	}

	query := r.builder.Insert("access.role_permissions").
		Columns("role_id", "permission_id")

	for _, permissionID := range permissionIDs {
		query = query.Values(roleID, permissionID)
	}

	stmt, args, err := query.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build grant permissions sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("grant permissions: %w", translateError(err))
	}

	return int(res.RowsAffected()), nil
}

// Revoke removes the provided permissions from the role and returns the
// number of rows deleted.
func (r *PermissionRepository) Revoke(ctx context.Context, roleID string, permissionIDs []string) (int, error) {
	if len(permissionIDs) == 0 {
		return 0, nil
	}

	stmt, args, err := r.builder.Delete("access.role_permissions").
		Where(squirrel.Eq{"role_id": roleID}).
		Where(squirrel.Eq{"permission_id": permissionIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build revoke permissions sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("revoke permissions: %w", err)
	}

	return int(res.RowsAffected()), nil
}

func (r *PermissionRepository) queryPermissions(ctx context.Context, stmt string, args []any) ([]domain.Permission, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		var (
			permission  domain.Permission
			description sql.NullString
		)
		if err := rows.Scan(
			&permission.ID,
			&permission.Name,
			&permission.ServiceNamespace,
			&permission.Action,
			&description,
		); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		if description.Valid {
			permission.Description = &description.String
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
