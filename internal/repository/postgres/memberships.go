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

// MembershipRepository implements user-role-company binding persistence.
type MembershipRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMembershipRepository constructs a PostgreSQL-backed membership repository.
func NewMembershipRepository(exec pgExecutor) *MembershipRepository {
	repo := &MembershipRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *MembershipRepository) WithTx(tx pgx.Tx) *MembershipRepository {
	if tx == nil {
		return r
	}
	return &MembershipRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new membership. Unique indexes on (user_id, company_id)
// and on user_id alone back the single-tenancy invariant atomically.
func (r *MembershipRepository) Create(ctx context.Context, m domain.Membership) error {
	stmt, args, err := r.builder.Insert("access.user_roles").
		Columns("user_id", "company_id", "role_id", "assigned_at", "updated_at").
		Values(m.UserID, m.CompanyID, m.RoleID, m.AssignedAt, m.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert membership sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert membership: %w", translateError(err))
	}

	return nil
}

// Get retrieves the membership for the (user, company) pair.
func (r *MembershipRepository) Get(ctx context.Context, userID, companyID string) (*domain.Membership, error) {
	stmt, args, err := r.builder.Select("user_id", "company_id", "role_id", "assigned_at", "updated_at").
		From("access.user_roles").
		Where(squirrel.Eq{"user_id": userID, "company_id": companyID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select membership sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var m domain.Membership
	if err := row.Scan(&m.UserID, &m.CompanyID, &m.RoleID, &m.AssignedAt, &m.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan membership: %w", err)
	}

	return &m, nil
}

// ListByUser returns memberships held by the user ordered by assignment time.
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	stmt, args, err := r.builder.Select("user_id", "company_id", "role_id", "assigned_at", "updated_at").
		From("access.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("assigned_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build memberships by user sql: %w", err)
	}

	return r.queryMemberships(ctx, stmt, args)
}

// ListByCompany returns memberships within the company ordered by assignment time.
func (r *MembershipRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Membership, error) {
	stmt, args, err := r.builder.Select("user_id", "company_id", "role_id", "assigned_at", "updated_at").
		From("access.user_roles").
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("assigned_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build memberships by company sql: %w", err)
	}

	return r.queryMemberships(ctx, stmt, args)
}

// UpdateRole relinks the membership to a new role; the (user, company)
// identity stays untouched.
func (r *MembershipRepository) UpdateRole(ctx context.Context, userID, companyID, roleID string) error {
	stmt, args, err := r.builder.Update("access.user_roles").
		Set("role_id", roleID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"user_id": userID, "company_id": companyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update membership role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update membership role: %w", translateError(err))
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the membership for the (user, company) pair.
func (r *MembershipRepository) Delete(ctx context.Context, userID, companyID string) error {
	stmt, args, err := r.builder.Delete("access.user_roles").
		Where(squirrel.Eq{"user_id": userID, "company_id": companyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete membership sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ExistsForRole reports whether any membership binds the role within the company.
func (r *MembershipRepository) ExistsForRole(ctx context.Context, roleID, companyID string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("access.user_roles").
		Where(squirrel.Eq{"role_id": roleID, "company_id": companyID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build membership exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan membership exists: %w", err)
	}

	return true, nil
}

// CountByRole returns the number of memberships referencing the role.
func (r *MembershipRepository) CountByRole(ctx context.Context, roleID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("access.user_roles").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build membership count sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan membership count: %w", err)
	}

	return count, nil
}

func (r *MembershipRepository) queryMemberships(ctx context.Context, stmt string, args []any) ([]domain.Membership, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]domain.Membership, 0)
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.UserID, &m.CompanyID, &m.RoleID, &m.AssignedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return memberships, nil
}

var _ port.MembershipRepository = (*MembershipRepository)(nil)
