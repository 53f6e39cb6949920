package application

import (
	"context"
	"errors"

	"institute-admin/internal/domain"
	"institute-admin/internal/ports"
)

// StoreProvider adapts an override store to the resolver's provider chain.
type StoreProvider struct {
	name  string
	store ports.OverrideStore
}

func NewStoreProvider(name string, store ports.OverrideStore) StoreProvider {
	return StoreProvider{name: name, store: store}
}

func (p StoreProvider) Name() string { return p.name }

func (p StoreProvider) Lookup(ctx context.Context, roleID string) (domain.RolePermissions, bool, error) {
	perms, err := p.store.Get(ctx, roleID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return perms, true, nil
}

// Resolver computes the effective authority for a principal. Providers are
// ordered lowest to highest precedence and consulted strictly in sequence,
// so a slow low-precedence source can never clobber a higher one.
type Resolver struct {
	registry  *RoleRegistry
	providers []ports.PermissionProvider
	logger    ports.Logger
}

func NewResolver(registry *RoleRegistry, logger ports.Logger, providers ...ports.PermissionProvider) *Resolver {
	return &Resolver{registry: registry, providers: providers, logger: logger}
}

// Resolve runs fresh on every call; nothing is cached across requests.
//
// Owner principals short-circuit to the owner authority before any lookup.
// A principal without a role id resolves to zero capability. Provider
// failures are absorbed: the chain falls through to whatever the lower
// tiers produced. Degraded principals get the registry baseline only.
func (r *Resolver) Resolve(ctx context.Context, p domain.Principal) domain.Authority {
	if p.IsOwner() {
		return domain.OwnerAuthority()
	}
	if p.AppRoleID == "" {
		return domain.ScopedAuthority(nil)
	}

	base := domain.EmptyPermissions()
	if role, err := r.registry.FindRole(p.AppRoleID); err == nil {
		base = role.Permissions
	}
	if p.Degraded {
		return domain.ScopedAuthority(base)
	}

	for _, provider := range r.providers {
		perms, found, err := provider.Lookup(ctx, p.AppRoleID)
		if err != nil {
			r.logger.Warn(ctx, "permission provider lookup failed",
				"provider", provider.Name(), "role_id", p.AppRoleID, "error", err)
			continue
		}
		if found {
			base = perms.Clone()
		}
	}
	return domain.ScopedAuthority(base)
}
