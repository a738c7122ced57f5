// Package authz implements the authorization core: the static role
// catalog, the permission evaluator, the pre-authentication email
// classifier and the access guard used to gate protected routes.
package authz

import (
	"sort"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Role is a named, leveled bundle of permissions. Roles are defined at
// process start and never mutated; user records carry only the role ID.
type Role struct {
	ID          string
	DisplayName string
	Level       int
	Group       string
	Color       string
	permissions map[string]struct{}
	wildcard    bool
}

// Role identifiers known to the catalog.
const (
	RoleGuest       = "guest"
	RoleEmployee    = "employee"
	RoleDeptManager = "dept_manager"
	RoleHRManager   = "hr_manager"
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "super_admin"
)

// ManagerLevel is the minimum level treated as management tier.
const ManagerLevel = 3

var catalog = buildCatalog()

func buildCatalog() map[string]Role {
	employeePerms := []string{
		shared.PermProfileView,
		shared.PermProfileEditOwn,
		shared.PermAttendanceCheckIn,
		shared.PermAttendanceViewOwn,
		shared.PermLeaveRequest,
		shared.PermLeaveViewOwn,
	}
	managerPerms := append([]string{
		shared.PermAttendanceViewTeam,
		shared.PermLeaveApproveTeam,
		shared.PermReportsView,
	}, employeePerms...)
	hrPerms := append([]string{
		shared.PermEmployeesView,
		shared.PermEmployeesEdit,
		shared.PermAttendanceViewAll,
		shared.PermAttendanceEdit,
		shared.PermLeaveViewAll,
		shared.PermLeaveApprove,
		shared.PermReportsExport,
		shared.PermUsersView,
	}, managerPerms...)

	roles := []Role{
		newRole(RoleGuest, "Guest", 0, "External", "default"),
		newRole(RoleEmployee, "Employee", 1, "Staff", "info", employeePerms...),
		newRole(RoleDeptManager, "Department Manager", ManagerLevel, "Management", "primary", managerPerms...),
		newRole(RoleHRManager, "HR Manager", 4, "HR", "secondary", hrPerms...),
		newRole(RoleAdmin, "Administrator", 5, "Management", "warning",
			append([]string{shared.PermUsersEdit, shared.PermRolesView, shared.PermSettingsEdit}, hrPerms...)...),
		newRole(RoleSuperAdmin, "Super Admin", 10, "Management", "error", shared.PermWildcard),
	}

	byID := make(map[string]Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}
	return byID
}

func newRole(id, display string, level int, group, color string, perms ...string) Role {
	set := make(map[string]struct{}, len(perms))
	wildcard := false
	for _, p := range perms {
		if p == shared.PermWildcard {
			wildcard = true
			continue
		}
		set[p] = struct{}{}
	}
	return Role{
		ID:          id,
		DisplayName: display,
		Level:       level,
		Group:       group,
		Color:       color,
		permissions: set,
		wildcard:    wildcard,
	}
}

// Lookup resolves a role by ID.
func Lookup(id string) (Role, bool) {
	role, ok := catalog[id]
	return role, ok
}

// Guest returns the unauthenticated default role.
func Guest() Role {
	return catalog[RoleGuest]
}

// Roles returns the catalog ordered by ascending level.
func Roles() []Role {
	out := make([]Role, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Wildcard reports whether the role grants every permission.
func (r Role) Wildcard() bool {
	return r.wildcard
}

// Permissions returns the role's named permissions. The wildcard marker
// is not included; callers check Wildcard separately.
func (r Role) Permissions() []string {
	out := make([]string, 0, len(r.permissions))
	for p := range r.permissions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (r Role) grants(permission string) bool {
	if r.wildcard {
		return true
	}
	_, ok := r.permissions[permission]
	return ok
}
