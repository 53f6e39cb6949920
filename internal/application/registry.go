package application

import (
	"sync"

	"institute-admin/internal/domain"
)

// RoleRegistry holds the baseline permission grids. It is constructed once
// at startup from seed data and injected into the resolver and editor;
// nothing else writes to it. Reads hand out cloned grids so callers can
// never alias the committed entry.
type RoleRegistry struct {
	mu    sync.RWMutex
	order []string
	roles map[string]domain.Role
}

func NewRoleRegistry(seed []domain.Role) *RoleRegistry {
	r := &RoleRegistry{roles: make(map[string]domain.Role, len(seed))}
	for _, role := range seed {
		if _, dup := r.roles[role.ID]; dup {
			continue
		}
		role.Permissions = role.Permissions.Clone()
		r.order = append(r.order, role.ID)
		r.roles[role.ID] = role
	}
	return r
}

// ListRoles returns the roles in seed order.
func (r *RoleRegistry) ListRoles() []domain.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Role, 0, len(r.order))
	for _, id := range r.order {
		role := r.roles[id]
		role.Permissions = role.Permissions.Clone()
		out = append(out, role)
	}
	return out
}

func (r *RoleRegistry) FindRole(id string) (domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[id]
	if !ok {
		return domain.Role{}, domain.ErrNotFound
	}
	role.Permissions = role.Permissions.Clone()
	return role, nil
}

// ReplacePermissions swaps the whole grid for one role. Readers observe
// either the old grid or the new one, never a partial update.
func (r *RoleRegistry) ReplacePermissions(id string, perms domain.RolePermissions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return domain.ErrNotFound
	}
	role.Permissions = perms.Clone()
	r.roles[id] = role
	return nil
}
