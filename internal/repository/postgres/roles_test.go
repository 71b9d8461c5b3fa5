package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/repository"
)

func TestRoleRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	companyID := "company-1"
	createdAt := time.Now().UTC()
	role := domain.Role{
		ID:        "role-1",
		Name:      "SUPERVISOR",
		CompanyID: &companyID,
		CreatedAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO access\.roles`).
		WithArgs(role.ID, role.Name, role.CompanyID, (*string)(nil), createdAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), role); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleRepository_Create_UniqueViolationMapsToConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	companyID := "company-1"
	role := domain.Role{
		ID:        "role-1",
		Name:      "SUPERVISOR",
		CompanyID: &companyID,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO access\.roles`).
		WithArgs(role.ID, role.Name, role.CompanyID, (*string)(nil), role.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "roles_name_company_id_key"})

	err = repo.Create(context.Background(), role)
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRoleRepository_GetByName_NilCompanyMatchesOnlyNullScope(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "company_id", "description", "created_at"}).
		AddRow("role-1", "ADMIN", nil, nil, createdAt)

	mock.ExpectQuery(`SELECT .+ FROM access\.roles WHERE name = \$1 AND company_id IS NULL`).
		WithArgs("ADMIN").
		WillReturnRows(rows)

	role, err := repo.GetByName(context.Background(), "ADMIN", nil)
	if err != nil {
		t.Fatalf("GetByName returned error: %v", err)
	}

	if role.Name != "ADMIN" || role.CompanyID != nil {
		t.Errorf("expected NULL-scoped ADMIN role, got %+v", role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleRepository_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleRepository(mock)

	mock.ExpectExec(`DELETE FROM access\.roles`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
