package application

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"institute-admin/internal/domain"
)

type overrideStoreMock struct {
	mock.Mock
}

func (m *overrideStoreMock) Get(ctx context.Context, roleID string) (domain.RolePermissions, error) {
	args := m.Called(ctx, roleID)
	perms, _ := args.Get(0).(domain.RolePermissions)
	return perms, args.Error(1)
}

func (m *overrideStoreMock) Put(ctx context.Context, roleID string, perms domain.RolePermissions) error {
	args := m.Called(ctx, roleID, perms)
	return args.Error(0)
}

func (m *overrideStoreMock) All(ctx context.Context) (map[string]domain.RolePermissions, error) {
	args := m.Called(ctx)
	all, _ := args.Get(0).(map[string]domain.RolePermissions)
	return all, args.Error(1)
}

type auditRepositoryMock struct {
	mock.Mock
}

func (m *auditRepositoryMock) Append(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *auditRepositoryMock) List(ctx context.Context) ([]domain.AuditEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]domain.AuditEntry)
	return entries, args.Error(1)
}

type claimSetterMock struct {
	mock.Mock
}

func (m *claimSetterMock) SetRoleClaims(ctx context.Context, callerToken, email, coarseRole, appRoleID string) error {
	args := m.Called(ctx, callerToken, email, coarseRole, appRoleID)
	return args.Error(0)
}

// memStore is a stateful in-memory override tier for round-trip tests.
type memStore struct {
	mu    sync.Mutex
	perms map[string]domain.RolePermissions
}

func newMemStore() *memStore {
	return &memStore{perms: make(map[string]domain.RolePermissions)}
}

func (s *memStore) Get(_ context.Context, roleID string) (domain.RolePermissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.perms[roleID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *memStore) Put(_ context.Context, roleID string, perms domain.RolePermissions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perms[roleID] = perms.Clone()
	return nil
}

func (s *memStore) All(_ context.Context) (map[string]domain.RolePermissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.RolePermissions, len(s.perms))
	for id, p := range s.perms {
		out[id] = p.Clone()
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Debug(context.Context, string, ...any) {}

func frontDeskSeed() []domain.Role {
	frontDesk := domain.EmptyPermissions()
	frontDesk.Toggle(domain.ModuleStudents, domain.ActionView)

	campusHead := domain.EmptyPermissions()
	campusHead.Toggle(domain.ModuleStudents, domain.ActionView)
	campusHead.Toggle(domain.ModuleReports, domain.ActionView)
	campusHead.Toggle(domain.ModuleFees, domain.ActionView)

	return []domain.Role{
		{ID: "role-frontdesk", Name: "Front Desk", Dashboard: "/students", Permissions: frontDesk},
		{ID: "role-campus-head", Name: "Campus Head", Dashboard: "/reports", Permissions: campusHead},
	}
}
