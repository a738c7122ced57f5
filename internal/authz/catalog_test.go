package authz

import "testing"

func TestLookupKnownRoles(t *testing.T) {
	for _, id := range []string{RoleGuest, RoleEmployee, RoleDeptManager, RoleHRManager, RoleAdmin, RoleSuperAdmin} {
		role, ok := Lookup(id)
		if !ok {
			t.Fatalf("catalog missing role %q", id)
		}
		if role.ID != id {
			t.Fatalf("role %q resolved as %q", id, role.ID)
		}
		if role.DisplayName == "" {
			t.Fatalf("role %q missing display name", id)
		}
	}
	if _, ok := Lookup("intern"); ok {
		t.Fatalf("unknown role must not resolve")
	}
}

func TestCatalogLevelsStrictlyOrdered(t *testing.T) {
	roles := Roles()
	if len(roles) != 6 {
		t.Fatalf("expected 6 roles, got %d", len(roles))
	}
	for i := 1; i < len(roles); i++ {
		if roles[i].Level < roles[i-1].Level {
			t.Fatalf("roles not ordered by level: %s(%d) before %s(%d)",
				roles[i-1].ID, roles[i-1].Level, roles[i].ID, roles[i].Level)
		}
	}
	if roles[0].ID != RoleGuest || roles[0].Level != 0 {
		t.Fatalf("guest must be the lowest role")
	}
	if roles[len(roles)-1].ID != RoleSuperAdmin {
		t.Fatalf("super_admin must be the highest role")
	}
}

func TestOnlySuperAdminHasWildcard(t *testing.T) {
	for _, role := range Roles() {
		want := role.ID == RoleSuperAdmin
		if role.Wildcard() != want {
			t.Fatalf("role %q wildcard = %v, want %v", role.ID, role.Wildcard(), want)
		}
	}
}

func TestPermissionSetsCollapseDuplicates(t *testing.T) {
	role := newRole("dup", "Dup", 1, "Test", "default", "a.view", "a.view", "b.edit")
	perms := role.Permissions()
	if len(perms) != 2 {
		t.Fatalf("duplicates must collapse, got %v", perms)
	}
}

func TestGuestHasNoPermissions(t *testing.T) {
	guest := Guest()
	if guest.Wildcard() || len(guest.Permissions()) != 0 {
		t.Fatalf("guest must carry an empty permission set")
	}
}
