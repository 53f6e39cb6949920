package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"institute-admin/internal/domain"
	"institute-admin/internal/ports"
)

const testAdminToken = "secret-admin-token"

func newTestEditor(t *testing.T, remote ports.OverrideStore, audit *auditRepositoryMock) (*Editor, *RoleRegistry, *memStore) {
	t.Helper()
	registry := NewRoleRegistry(frontDeskSeed())
	local := newMemStore()
	return NewEditor(registry, local, remote, audit, testAdminToken, nopLogger{}), registry, local
}

func TestLoadWorkingCopyIsIsolated(t *testing.T) {
	audit := new(auditRepositoryMock)
	editor, registry, _ := newTestEditor(t, newMemStore(), audit)

	buffer, err := editor.LoadWorkingCopy("role-frontdesk")
	require.NoError(t, err)
	buffer.Toggle(domain.ModuleFees, domain.ActionView)

	role, err := registry.FindRole("role-frontdesk")
	require.NoError(t, err)
	assert.False(t, role.Permissions.Allows(domain.ModuleFees, domain.ActionView))
}

func TestLoadWorkingCopyUnknownRole(t *testing.T) {
	audit := new(auditRepositoryMock)
	editor, _, _ := newTestEditor(t, newMemStore(), audit)

	_, err := editor.LoadWorkingCopy("role-ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveValidatesInput(t *testing.T) {
	audit := new(auditRepositoryMock)
	editor, _, _ := newTestEditor(t, newMemStore(), audit)

	_, err := editor.Save(context.Background(), "", domain.EmptyPermissions(), testAdminToken, "Admin User")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = editor.Save(context.Background(), "role-frontdesk", nil, testAdminToken, "Admin User")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = editor.Save(context.Background(), "role-ghost", domain.EmptyPermissions(), testAdminToken, "Admin User")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSavePropagatesToAllTiers(t *testing.T) {
	remote := newMemStore()
	audit := new(auditRepositoryMock)
	audit.On("Append", mock.Anything, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == "Updated permissions" && e.Details == "Front Desk" && e.User == "Admin User"
	})).Return(nil).Once()
	editor, registry, local := newTestEditor(t, remote, audit)

	buffer, err := editor.LoadWorkingCopy("role-frontdesk")
	require.NoError(t, err)
	buffer.Toggle(domain.ModuleFees, domain.ActionView)

	result, err := editor.Save(context.Background(), "role-frontdesk", buffer, testAdminToken, "Admin User")
	require.NoError(t, err)
	assert.True(t, result.RemoteSynced)
	assert.Empty(t, result.RemoteWarning)

	role, err := registry.FindRole("role-frontdesk")
	require.NoError(t, err)
	assert.True(t, role.Permissions.Allows(domain.ModuleFees, domain.ActionView))

	localPerms, err := local.Get(context.Background(), "role-frontdesk")
	require.NoError(t, err)
	assert.True(t, localPerms.Allows(domain.ModuleFees, domain.ActionView))

	remotePerms, err := remote.Get(context.Background(), "role-frontdesk")
	require.NoError(t, err)
	assert.True(t, remotePerms.Allows(domain.ModuleFees, domain.ActionView))

	audit.AssertExpectations(t)
}

func TestSaveBadOperatorTokenSkipsRemote(t *testing.T) {
	remote := new(overrideStoreMock)
	audit := new(auditRepositoryMock)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	editor, registry, local := newTestEditor(t, remote, audit)

	buffer := domain.EmptyPermissions()
	buffer.Toggle(domain.ModuleFees, domain.ActionView)

	result, err := editor.Save(context.Background(), "role-frontdesk", buffer, "wrong-token", "Admin User")
	require.NoError(t, err)
	assert.False(t, result.RemoteSynced)
	assert.Contains(t, result.RemoteWarning, "remote copy may be stale")
	remote.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)

	// local tiers still committed
	role, err := registry.FindRole("role-frontdesk")
	require.NoError(t, err)
	assert.True(t, role.Permissions.Allows(domain.ModuleFees, domain.ActionView))
	_, err = local.Get(context.Background(), "role-frontdesk")
	assert.NoError(t, err)
}

func TestSaveRemoteFailureIsWarningNotError(t *testing.T) {
	remote := new(overrideStoreMock)
	remote.On("Put", mock.Anything, "role-frontdesk", mock.Anything).Return(errors.New("throttled"))
	audit := new(auditRepositoryMock)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	editor, _, _ := newTestEditor(t, remote, audit)

	result, err := editor.Save(context.Background(), "role-frontdesk", domain.EmptyPermissions(), testAdminToken, "Admin User")
	require.NoError(t, err)
	assert.False(t, result.RemoteSynced)
	assert.Contains(t, result.RemoteWarning, "write failed")
}

func TestSaveAuditFailureIsNotFatal(t *testing.T) {
	audit := new(auditRepositoryMock)
	audit.On("Append", mock.Anything, mock.Anything).Return(errors.New("conditional check failed"))
	editor, _, _ := newTestEditor(t, newMemStore(), audit)

	_, err := editor.Save(context.Background(), "role-frontdesk", domain.EmptyPermissions(), testAdminToken, "Admin User")
	assert.NoError(t, err)
}

func TestSaveThenResolveRoundTrip(t *testing.T) {
	remote := newMemStore()
	local := newMemStore()
	registry := NewRoleRegistry(frontDeskSeed())
	audit := new(auditRepositoryMock)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil).Once()

	editor := NewEditor(registry, local, remote, audit, testAdminToken, nopLogger{})
	resolver := NewResolver(registry, nopLogger{},
		NewStoreProvider("remote", remote),
		NewStoreProvider("local", local),
	)

	buffer, err := editor.LoadWorkingCopy("role-frontdesk")
	require.NoError(t, err)
	buffer.Toggle(domain.ModuleFees, domain.ActionView)
	_, err = editor.Save(context.Background(), "role-frontdesk", buffer, testAdminToken, "Admin User")
	require.NoError(t, err)

	authority := resolver.Resolve(context.Background(), scopedPrincipal("role-frontdesk"))
	assert.True(t, authority.Allows(domain.ModuleFees, domain.ActionView))
	audit.AssertNumberOfCalls(t, "Append", 1)
}

func TestSaveAllFalseDeniesEverything(t *testing.T) {
	local := newMemStore()
	registry := NewRoleRegistry(frontDeskSeed())
	audit := new(auditRepositoryMock)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)

	editor := NewEditor(registry, local, newMemStore(), audit, testAdminToken, nopLogger{})
	resolver := NewResolver(registry, nopLogger{}, NewStoreProvider("local", local))

	buffer, err := editor.LoadWorkingCopy("role-frontdesk")
	require.NoError(t, err)
	buffer.SetAll(false)
	_, err = editor.Save(context.Background(), "role-frontdesk", buffer, testAdminToken, "Admin User")
	require.NoError(t, err)

	authority := resolver.Resolve(context.Background(), scopedPrincipal("role-frontdesk"))
	for _, m := range domain.Modules {
		for _, a := range domain.Actions {
			assert.False(t, authority.Allows(m, a), "grant survived bulk revoke at %s.%s", m, a)
		}
	}
}
