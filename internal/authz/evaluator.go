package authz

// Principal describes the authenticated actor attached to a session.
// A nil Principal represents an unauthenticated guest.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// NewPrincipal builds a Principal resolving the role through the
// catalog. Unknown role IDs fall back to the guest role so a stale
// foreign key can never widen access.
func NewPrincipal(userID, email, roleID string) Principal {
	role, ok := Lookup(roleID)
	if !ok {
		role = Guest()
	}
	return Principal{UserID: userID, Email: email, Role: role}
}

// Evaluator answers permission and level questions for a principal.
// All methods are total: a nil evaluator or missing role resolves to
// the guest default and denies rather than failing.
type Evaluator struct {
	role Role
}

// NewEvaluator builds an Evaluator for the given principal. Pass nil
// for an unauthenticated caller.
func NewEvaluator(p *Principal) Evaluator {
	if p == nil {
		return Evaluator{role: Guest()}
	}
	role := p.Role
	if role.ID == "" {
		role = Guest()
	}
	return Evaluator{role: role}
}

// Role returns the evaluated role.
func (e Evaluator) Role() Role {
	if e.role.ID == "" {
		return Guest()
	}
	return e.role
}

// HasPermission reports whether the role holds the permission. The
// match is a case-sensitive exact string compare; only the wildcard
// marker short-circuits to granted.
func (e Evaluator) HasPermission(permission string) bool {
	return e.Role().grants(permission)
}

// HasAnyPermission reports whether at least one permission is held.
// Vacuously false for an empty list.
func (e Evaluator) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if e.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every permission is held.
// Vacuously true for an empty list.
func (e Evaluator) HasAllPermissions(permissions ...string) bool {
	for _, p := range permissions {
		if !e.HasPermission(p) {
			return false
		}
	}
	return true
}

// MeetsLevel reports whether the role level meets or exceeds the
// threshold. Equal level is sufficient.
func (e Evaluator) MeetsLevel(threshold int) bool {
	return e.Role().Level >= threshold
}

// IsAdmin reports whether the role is one of the administrator roles.
// Exact name match, not a substring check.
func (e Evaluator) IsAdmin() bool {
	id := e.Role().ID
	return id == RoleSuperAdmin || id == RoleAdmin
}

// IsHR reports whether the role is the HR manager role.
func (e Evaluator) IsHR() bool {
	return e.Role().ID == RoleHRManager
}

// IsManager reports whether the role sits in the management tier.
func (e Evaluator) IsManager() bool {
	return e.MeetsLevel(ManagerLevel)
}
