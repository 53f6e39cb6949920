package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"institute-admin/internal/domain"
	"institute-admin/internal/ports"
)

// Editor mutates one role's permission grid and propagates the change
// across the three tiers: registry baseline, local override file, remote
// override store. The first two must succeed; the remote write is
// best-effort and its failure is reported, not fatal.
type Editor struct {
	registry   *RoleRegistry
	local      ports.OverrideStore
	remote     ports.OverrideStore
	audit      ports.AuditRepository
	adminToken string
	logger     ports.Logger
}

func NewEditor(registry *RoleRegistry, local, remote ports.OverrideStore, audit ports.AuditRepository, adminToken string, logger ports.Logger) *Editor {
	return &Editor{
		registry:   registry,
		local:      local,
		remote:     remote,
		audit:      audit,
		adminToken: adminToken,
		logger:     logger,
	}
}

// LoadWorkingCopy clones the committed grid into an editable buffer.
// Re-loading after a role switch discards any unsaved edits.
func (e *Editor) LoadWorkingCopy(roleID string) (domain.RolePermissions, error) {
	role, err := e.registry.FindRole(roleID)
	if err != nil {
		return nil, err
	}
	return role.Permissions.Clone(), nil
}

type SaveResult struct {
	Role          domain.Role `json:"role"`
	RemoteSynced  bool        `json:"remoteSynced"`
	RemoteWarning string      `json:"remoteWarning,omitempty"`
}

// Save commits the buffer. Registry and local tiers must both succeed; the
// remote tier is attempted only with a valid operator token and any failure
// comes back as a warning so the operator knows the remote copy may be
// stale.
func (e *Editor) Save(ctx context.Context, roleID string, buffer domain.RolePermissions, operatorToken, actor string) (SaveResult, error) {
	if roleID == "" || buffer == nil {
		return SaveResult{}, domain.ErrInvalidInput
	}
	if err := e.registry.ReplacePermissions(roleID, buffer); err != nil {
		return SaveResult{}, err
	}
	role, err := e.registry.FindRole(roleID)
	if err != nil {
		return SaveResult{}, err
	}
	if err := e.local.Put(ctx, roleID, buffer); err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{Role: role, RemoteSynced: true}
	switch {
	case e.adminToken == "" || operatorToken != e.adminToken:
		result.RemoteSynced = false
		result.RemoteWarning = "remote store rejected the admin token; remote copy may be stale"
	default:
		if err := e.remote.Put(ctx, roleID, buffer); err != nil {
			e.logger.Warn(ctx, "remote permission write failed", "role_id", roleID, "error", err)
			result.RemoteSynced = false
			result.RemoteWarning = "remote store write failed; remote copy may be stale"
		}
	}

	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		User:      actor,
		Action:    "Updated permissions",
		Details:   role.Name,
	}
	if err := e.audit.Append(ctx, entry); err != nil {
		e.logger.Error(ctx, "audit append failed", "role_id", roleID, "error", err)
	}
	return result, nil
}
