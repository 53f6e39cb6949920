package ports

import (
	"context"

	"institute-admin/internal/domain"
)

// OverrideStore is one persistence tier for per-role permission overrides.
// Get returns domain.ErrNotFound when no override exists for the role id.
type OverrideStore interface {
	Get(ctx context.Context, roleID string) (domain.RolePermissions, error)
	Put(ctx context.Context, roleID string, perms domain.RolePermissions) error
	All(ctx context.Context) (map[string]domain.RolePermissions, error)
}

// PermissionProvider is one source consulted by the resolver. Providers are
// folded in increasing precedence; the last one that reports found wins.
type PermissionProvider interface {
	Name() string
	Lookup(ctx context.Context, roleID string) (domain.RolePermissions, bool, error)
}

type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context) ([]domain.AuditEntry, error)
}

// ClaimSetter pushes a coarse role claim plus the fine-grained role id to
// the identity provider for the given account.
type ClaimSetter interface {
	SetRoleClaims(ctx context.Context, callerToken, email, coarseRole, appRoleID string) error
}

type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debug(ctx context.Context, msg string, args ...any)
}
