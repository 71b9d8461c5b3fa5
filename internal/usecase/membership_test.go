package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/repository"
)

func membershipFixture() (*membershipRepoMock, *userRepoMock, *companyRepoMock, *roleRepoMock) {
	users := &userRepoMock{
		users: map[string]domain.User{
			"user-1": {ID: "user-1", Email: "one@example.com", IsActive: true},
			"user-2": {ID: "user-2", Email: "two@example.com", IsActive: true},
		},
	}
	companies := &companyRepoMock{
		companies: map[string]domain.Company{
			"company-1": {ID: "company-1", Name: "Acme", IsActive: true},
			"company-2": {ID: "company-2", Name: "Globex", IsActive: true},
		},
	}
	roles := &roleRepoMock{}
	seedSystemRoles(roles)
	roles.add(domain.Role{ID: "role-own", Name: "support", CompanyID: strPtr("company-1")})
	roles.add(domain.Role{ID: "role-foreign", Name: "billing", CompanyID: strPtr("company-2")})

	return &membershipRepoMock{}, users, companies, roles
}

func TestMembershipService_AssignRole_Success(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	events := &eventPublisherStub{}

	service := NewMembershipService(memberships, users, companies, roles, events)

	membership, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-user")
	if err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	if membership.RoleID != "role-user" {
		t.Errorf("expected role-user, got %s", membership.RoleID)
	}
	if events.membershipCreated != 1 {
		t.Errorf("expected 1 membership assigned event, got %d", events.membershipCreated)
	}
}

func TestMembershipService_AssignRole_SecondMembershipRejected(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	if _, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-user"); err != nil {
		t.Fatalf("first AssignRole failed: %v", err)
	}

	// Same company: already assigned.
	_, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-admin")
	if !errors.Is(err, ErrMembershipExists) {
		t.Fatalf("expected ErrMembershipExists for same company, got %v", err)
	}

	// Different company: single tenancy still rejects it.
	_, err = service.AssignRole(context.Background(), "user-1", "company-2", "role-user")
	if !errors.Is(err, ErrMembershipExists) {
		t.Fatalf("expected ErrMembershipExists for second company, got %v", err)
	}
}

func TestMembershipService_AssignRole_RaceSurfacesConflict(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	// Simulate losing the insert race after the pre-check passed.
	memberships.createErr = repository.ErrConflict

	service := NewMembershipService(memberships, users, companies, roles, nil)

	_, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-user")
	if !errors.Is(err, ErrMembershipExists) {
		t.Fatalf("expected ErrMembershipExists, got %v", err)
	}
}

func TestMembershipService_AssignRole_ForeignCustomRoleRejected(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	_, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-foreign")
	if !errors.Is(err, ErrRoleNotInCompany) {
		t.Fatalf("expected ErrRoleNotInCompany, got %v", err)
	}
}

func TestMembershipService_AssignRole_OwnCustomRoleAccepted(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	membership, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-own")
	if err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}
	if membership.RoleID != "role-own" {
		t.Errorf("expected role-own, got %s", membership.RoleID)
	}
}

func TestMembershipService_AssignRole_UnknownUser(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	_, err := service.AssignRole(context.Background(), "nonexistent", "company-1", "role-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMembershipService_AssignRole_UnknownRole(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	_, err := service.AssignRole(context.Background(), "user-1", "company-1", "nonexistent")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMembershipService_ReassignRole_Overwrites(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	events := &eventPublisherStub{}
	service := NewMembershipService(memberships, users, companies, roles, events)

	if _, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-user"); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	membership, err := service.ReassignRole(context.Background(), "user-1", "company-1", "role-own")
	if err != nil {
		t.Fatalf("ReassignRole failed: %v", err)
	}

	if membership.RoleID != "role-own" {
		t.Errorf("expected role-own after reassignment, got %s", membership.RoleID)
	}
	if events.roleChanged != 1 {
		t.Errorf("expected 1 role changed event, got %d", events.roleChanged)
	}

	stored, err := service.GetMembership(context.Background(), "user-1", "company-1")
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if stored.RoleID != "role-own" {
		t.Errorf("expected stored role to be overwritten, got %s", stored.RoleID)
	}
}

func TestMembershipService_ReassignRole_NoMembership(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	_, err := service.ReassignRole(context.Background(), "user-1", "company-1", "role-user")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMembershipService_RemoveMembership_AllowsRejoin(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	events := &eventPublisherStub{}
	service := NewMembershipService(memberships, users, companies, roles, events)

	if _, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-user"); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	if err := service.RemoveMembership(context.Background(), "user-1", "company-1"); err != nil {
		t.Fatalf("RemoveMembership failed: %v", err)
	}
	if events.membershipRemoved != 1 {
		t.Errorf("expected 1 membership removed event, got %d", events.membershipRemoved)
	}

	// Removal frees the user to join another company.
	if _, err := service.AssignRole(context.Background(), "user-1", "company-2", "role-user"); err != nil {
		t.Fatalf("rejoin after removal failed: %v", err)
	}
}

func TestMembershipService_RemoveMembership_NotFound(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	err := service.RemoveMembership(context.Background(), "user-1", "company-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMembershipService_ListCompanyMembers(t *testing.T) {
	memberships, users, companies, roles := membershipFixture()
	service := NewMembershipService(memberships, users, companies, roles, nil)

	if _, err := service.AssignRole(context.Background(), "user-1", "company-1", "role-user"); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}
	if _, err := service.AssignRole(context.Background(), "user-2", "company-1", "role-admin"); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	members, err := service.ListCompanyMembers(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("ListCompanyMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %d", len(members))
	}
}
