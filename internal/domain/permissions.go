package domain

// Allows reports whether the set grants the given action. Unknown actions
// are denied.
func (p PermissionSet) Allows(a Action) bool {
	switch a {
	case ActionView:
		return p.View
	case ActionAdd:
		return p.Add
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	default:
		return false
	}
}

func (p *PermissionSet) set(a Action, v bool) {
	switch a {
	case ActionView:
		p.View = v
	case ActionAdd:
		p.Add = v
	case ActionEdit:
		p.Edit = v
	case ActionDelete:
		p.Delete = v
	}
}

// EmptyPermissions returns an all-false grid covering every module.
func EmptyPermissions() RolePermissions {
	out := make(RolePermissions, len(Modules))
	for _, m := range Modules {
		out[m] = PermissionSet{}
	}
	return out
}

// Clone returns a deep copy normalized over the module list: modules missing
// from the input come back all-false, so the result is always total.
func (rp RolePermissions) Clone() RolePermissions {
	out := make(RolePermissions, len(Modules))
	for _, m := range Modules {
		out[m] = rp[m]
	}
	return out
}

// Allows is the total permission lookup: a missing module entry denies.
func (rp RolePermissions) Allows(m Module, a Action) bool {
	p, ok := rp[m]
	if !ok {
		return false
	}
	return p.Allows(a)
}

// Toggle flips one cell in place.
func (rp RolePermissions) Toggle(m Module, a Action) {
	p := rp[m]
	p.set(a, !p.Allows(a))
	rp[m] = p
}

// SetAll overwrites every cell of every module with v.
func (rp RolePermissions) SetAll(v bool) {
	for _, m := range Modules {
		rp[m] = PermissionSet{View: v, Add: v, Edit: v, Delete: v}
	}
}

// Authority is the resolved capability of a session. The owner variant
// bypasses every module/action check and cannot be expressed as a
// permission grid, so an override can never reproduce or revoke it.
type Authority struct {
	owner bool
	perms RolePermissions
}

func OwnerAuthority() Authority {
	return Authority{owner: true}
}

func ScopedAuthority(perms RolePermissions) Authority {
	if perms == nil {
		perms = EmptyPermissions()
	}
	return Authority{perms: perms}
}

func (a Authority) IsOwner() bool {
	return a.owner
}

func (a Authority) Allows(m Module, act Action) bool {
	if a.owner {
		return true
	}
	return a.perms.Allows(m, act)
}

// Permissions exposes the scoped grid; owner authority has none.
func (a Authority) Permissions() RolePermissions {
	return a.perms
}
