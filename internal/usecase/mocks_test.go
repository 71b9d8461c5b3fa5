package usecase

import (
	"context"
	"time"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

// Shared in-memory repository mocks for usecase tests.

type companyRepoMock struct {
	companies map[string]domain.Company
	createErr error
	listErr   error
}

func (m *companyRepoMock) Create(_ context.Context, company domain.Company) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.companies == nil {
		m.companies = make(map[string]domain.Company)
	}
	m.companies[company.ID] = company
	return nil
}

func (m *companyRepoMock) GetByID(_ context.Context, id string) (*domain.Company, error) {
	if company, ok := m.companies[id]; ok {
		return &company, nil
	}
	return nil, repository.ErrNotFound
}

func (m *companyRepoMock) List(_ context.Context) ([]domain.Company, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	companies := make([]domain.Company, 0, len(m.companies))
	for _, company := range m.companies {
		companies = append(companies, company)
	}
	return companies, nil
}

func (m *companyRepoMock) Update(_ context.Context, company domain.Company) error {
	if _, exists := m.companies[company.ID]; !exists {
		return repository.ErrNotFound
	}
	m.companies[company.ID] = company
	return nil
}

func (m *companyRepoMock) Delete(_ context.Context, id string) error {
	if _, exists := m.companies[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.companies, id)
	return nil
}

type domainRepoMock struct {
	domains   map[string]domain.Domain
	links     map[string]domain.CompanyDomain // keyed by domain id
	createErr error
	linkErr   error
}

func (m *domainRepoMock) Create(_ context.Context, d domain.Domain) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.domains == nil {
		m.domains = make(map[string]domain.Domain)
	}
	for _, existing := range m.domains {
		if existing.Name == d.Name {
			return repository.ErrConflict
		}
	}
	m.domains[d.ID] = d
	return nil
}

func (m *domainRepoMock) GetByID(_ context.Context, id string) (*domain.Domain, error) {
	if d, ok := m.domains[id]; ok {
		return &d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *domainRepoMock) GetByName(_ context.Context, name string) (*domain.Domain, error) {
	for _, d := range m.domains {
		if d.Name == name {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *domainRepoMock) Delete(_ context.Context, id string) error {
	if _, exists := m.domains[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.domains, id)
	return nil
}

func (m *domainRepoMock) Link(_ context.Context, companyID, domainID string) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	if m.links == nil {
		m.links = make(map[string]domain.CompanyDomain)
	}
	if _, taken := m.links[domainID]; taken {
		return repository.ErrConflict
	}
	m.links[domainID] = domain.CompanyDomain{CompanyID: companyID, DomainID: domainID, LinkedAt: time.Now()}
	return nil
}

func (m *domainRepoMock) Unlink(_ context.Context, companyID, domainID string) error {
	link, exists := m.links[domainID]
	if !exists || link.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(m.links, domainID)
	return nil
}

func (m *domainRepoMock) GetLinkByDomain(_ context.Context, domainID string) (*domain.CompanyDomain, error) {
	if link, ok := m.links[domainID]; ok {
		return &link, nil
	}
	return nil, repository.ErrNotFound
}

func (m *domainRepoMock) ListByCompany(_ context.Context, companyID string) ([]domain.Domain, error) {
	domains := make([]domain.Domain, 0)
	for domainID, link := range m.links {
		if link.CompanyID == companyID {
			if d, ok := m.domains[domainID]; ok {
				domains = append(domains, d)
			}
		}
	}
	return domains, nil
}

type userRepoMock struct {
	users map[string]domain.User
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) Update(_ context.Context, user domain.User) error {
	if _, exists := m.users[user.ID]; !exists {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) RecordLogin(_ context.Context, id string, at time.Time) error {
	user, exists := m.users[id]
	if !exists {
		return repository.ErrNotFound
	}
	user.LastLogin = &at
	m.users[id] = user
	return nil
}

type roleRepoMock struct {
	roles     map[string]domain.Role
	order     []string // insertion order for deterministic listings
	createErr error
}

func (m *roleRepoMock) add(role domain.Role) {
	if m.roles == nil {
		m.roles = make(map[string]domain.Role)
	}
	if _, exists := m.roles[role.ID]; !exists {
		m.order = append(m.order, role.ID)
	}
	m.roles[role.ID] = role
}

func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *roleRepoMock) Create(_ context.Context, role domain.Role) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.roles {
		if existing.Name == role.Name && sameScope(existing.CompanyID, role.CompanyID) {
			return repository.ErrConflict
		}
	}
	m.add(role)
	return nil
}

func (m *roleRepoMock) GetByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := m.roles[id]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) GetByName(_ context.Context, name string, companyID *string) (*domain.Role, error) {
	for _, id := range m.order {
		role := m.roles[id]
		if role.Name == name && sameScope(role.CompanyID, companyID) {
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) ListSystem(_ context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0)
	for _, id := range m.order {
		if role := m.roles[id]; role.CompanyID == nil {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (m *roleRepoMock) ListByCompany(_ context.Context, companyID string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0)
	for _, id := range m.order {
		role := m.roles[id]
		if role.CompanyID != nil && *role.CompanyID == companyID {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (m *roleRepoMock) Update(_ context.Context, role domain.Role) error {
	if _, exists := m.roles[role.ID]; !exists {
		return repository.ErrNotFound
	}
	m.roles[role.ID] = role
	return nil
}

func (m *roleRepoMock) Delete(_ context.Context, id string) error {
	if _, exists := m.roles[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.roles, id)
	for i, orderedID := range m.order {
		if orderedID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type permissionRepoMock struct {
	permissions map[string]domain.Permission
	rolePerms   map[string][]string // role id → permission ids
	createErr   error
	listErr     error
}

func (m *permissionRepoMock) Create(_ context.Context, permission domain.Permission) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.permissions == nil {
		m.permissions = make(map[string]domain.Permission)
	}
	for _, existing := range m.permissions {
		if existing.Name == permission.Name {
			return repository.ErrConflict
		}
	}
	m.permissions[permission.ID] = permission
	return nil
}

func (m *permissionRepoMock) GetByID(_ context.Context, id string) (*domain.Permission, error) {
	if permission, ok := m.permissions[id]; ok {
		return &permission, nil
	}
	return nil, repository.ErrNotFound
}

func (m *permissionRepoMock) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	for _, permission := range m.permissions {
		if permission.Name == name {
			return &permission, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *permissionRepoMock) List(_ context.Context, filter port.PermissionFilter) ([]domain.Permission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	permissions := make([]domain.Permission, 0, len(m.permissions))
	for _, permission := range m.permissions {
		if filter.ServiceNamespace != "" && permission.ServiceNamespace != filter.ServiceNamespace {
			continue
		}
		permissions = append(permissions, permission)
	}
	return permissions, nil
}

func (m *permissionRepoMock) Delete(_ context.Context, id string) error {
	if _, exists := m.permissions[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.permissions, id)
	return nil
}

func (m *permissionRepoMock) ListByRole(_ context.Context, roleID string) ([]domain.Permission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := m.rolePerms[roleID]
	permissions := make([]domain.Permission, 0, len(ids))
	for _, id := range ids {
		if permission, ok := m.permissions[id]; ok {
			permissions = append(permissions, permission)
		}
	}
	return permissions, nil
}

func (m *permissionRepoMock) Grant(_ context.Context, roleID string, permissionIDs []string) (int, error) {
	if m.rolePerms == nil {
		m.rolePerms = make(map[string][]string)
	}
	existing := make(map[string]struct{})
	for _, id := range m.rolePerms[roleID] {
		existing[id] = struct{}{}
	}
	granted := 0
	for _, id := range permissionIDs {
		if _, dup := existing[id]; dup {
			continue
		}
		m.rolePerms[roleID] = append(m.rolePerms[roleID], id)
		existing[id] = struct{}{}
		granted++
	}
	return granted, nil
}

func (m *permissionRepoMock) Revoke(_ context.Context, roleID string, permissionIDs []string) (int, error) {
	toRemove := make(map[string]struct{})
	for _, id := range permissionIDs {
		toRemove[id] = struct{}{}
	}
	kept := make([]string, 0)
	revoked := 0
	for _, id := range m.rolePerms[roleID] {
		if _, remove := toRemove[id]; remove {
			revoked++
		} else {
			kept = append(kept, id)
		}
	}
	if m.rolePerms != nil {
		m.rolePerms[roleID] = kept
	}
	return revoked, nil
}

type membershipRepoMock struct {
	memberships map[string]domain.Membership // keyed user id; one row per user
	createErr   error
}

func (m *membershipRepoMock) Create(_ context.Context, membership domain.Membership) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.memberships == nil {
		m.memberships = make(map[string]domain.Membership)
	}
	if _, exists := m.memberships[membership.UserID]; exists {
		return repository.ErrConflict
	}
	m.memberships[membership.UserID] = membership
	return nil
}

func (m *membershipRepoMock) Get(_ context.Context, userID, companyID string) (*domain.Membership, error) {
	if membership, ok := m.memberships[userID]; ok && membership.CompanyID == companyID {
		return &membership, nil
	}
	return nil, repository.ErrNotFound
}

func (m *membershipRepoMock) ListByUser(_ context.Context, userID string) ([]domain.Membership, error) {
	if membership, ok := m.memberships[userID]; ok {
		return []domain.Membership{membership}, nil
	}
	return []domain.Membership{}, nil
}

func (m *membershipRepoMock) ListByCompany(_ context.Context, companyID string) ([]domain.Membership, error) {
	memberships := make([]domain.Membership, 0)
	for _, membership := range m.memberships {
		if membership.CompanyID == companyID {
			memberships = append(memberships, membership)
		}
	}
	return memberships, nil
}

func (m *membershipRepoMock) UpdateRole(_ context.Context, userID, companyID, roleID string) error {
	membership, ok := m.memberships[userID]
	if !ok || membership.CompanyID != companyID {
		return repository.ErrNotFound
	}
	membership.RoleID = roleID
	membership.UpdatedAt = time.Now()
	m.memberships[userID] = membership
	return nil
}

func (m *membershipRepoMock) Delete(_ context.Context, userID, companyID string) error {
	membership, ok := m.memberships[userID]
	if !ok || membership.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(m.memberships, userID)
	return nil
}

func (m *membershipRepoMock) ExistsForRole(_ context.Context, roleID, companyID string) (bool, error) {
	for _, membership := range m.memberships {
		if membership.RoleID == roleID && membership.CompanyID == companyID {
			return true, nil
		}
	}
	return false, nil
}

func (m *membershipRepoMock) CountByRole(_ context.Context, roleID string) (int, error) {
	count := 0
	for _, membership := range m.memberships {
		if membership.RoleID == roleID {
			count++
		}
	}
	return count, nil
}

type tenantCacheMock struct {
	entries map[string]domain.Company
	getErr  error
	setErr  error
	sets    int
	deletes int
}

func (m *tenantCacheMock) GetCompanyByDomain(_ context.Context, domainName string) (*domain.Company, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if company, ok := m.entries[domainName]; ok {
		return &company, nil
	}
	return nil, repository.ErrNotFound
}

func (m *tenantCacheMock) SetCompanyByDomain(_ context.Context, domainName string, company domain.Company, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.entries == nil {
		m.entries = make(map[string]domain.Company)
	}
	m.entries[domainName] = company
	m.sets++
	return nil
}

func (m *tenantCacheMock) InvalidateDomain(_ context.Context, domainName string) error {
	delete(m.entries, domainName)
	m.deletes++
	return nil
}

type eventPublisherStub struct {
	companyCreated    int
	roleCreated       int
	roleDeleted       int
	membershipCreated int
	roleChanged       int
	membershipRemoved int
	err               error
}

func (s *eventPublisherStub) PublishCompanyCreated(_ context.Context, _ domain.CompanyCreatedEvent) error {
	s.companyCreated++
	return s.err
}

func (s *eventPublisherStub) PublishRoleCreated(_ context.Context, _ domain.RoleCreatedEvent) error {
	s.roleCreated++
	return s.err
}

func (s *eventPublisherStub) PublishRoleDeleted(_ context.Context, _ domain.RoleDeletedEvent) error {
	s.roleDeleted++
	return s.err
}

func (s *eventPublisherStub) PublishMembershipAssigned(_ context.Context, _ domain.MembershipAssignedEvent) error {
	s.membershipCreated++
	return s.err
}

func (s *eventPublisherStub) PublishMembershipRoleChanged(_ context.Context, _ domain.MembershipRoleChangedEvent) error {
	s.roleChanged++
	return s.err
}

func (s *eventPublisherStub) PublishMembershipRemoved(_ context.Context, _ domain.MembershipRemovedEvent) error {
	s.membershipRemoved++
	return s.err
}
