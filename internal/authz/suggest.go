package authz

import "strings"

// Suggestion is a non-authoritative guess of a user's likely role
// derived from their email address before credentials are verified.
// It is display-only; grants always come from the session principal.
type Suggestion struct {
	RoleID      string `json:"role_id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	Group       string `json:"group"`
	Color       string `json:"color"`
	Confidence  int    `json:"confidence"`
}

type emailPattern struct {
	substring  string
	roleID     string
	confidence int
}

// Patterns are scanned in declaration order; the highest confidence
// wins and on a tie the earlier entry keeps the slot. The bare "@"
// entry is the low-confidence catch-all for any plausible email.
var emailPatterns = []emailPattern{
	{"superadmin", RoleSuperAdmin, 100},
	{"super.admin", RoleSuperAdmin, 95},
	{"hr.manager", RoleHRManager, 90},
	{"hrmanager", RoleHRManager, 85},
	{"admin@", RoleAdmin, 80},
	{"hr@", RoleHRManager, 75},
	{"manager", RoleDeptManager, 70},
	{"@", RoleEmployee, 50},
}

// Suggest classifies a free-text email into a probable role. It never
// errors; the second return is false when nothing matches or the
// winning pattern points at a role the catalog does not know.
func Suggest(rawEmail string) (Suggestion, bool) {
	email := strings.ToLower(strings.TrimSpace(rawEmail))
	if email == "" {
		return Suggestion{}, false
	}

	best := -1
	bestConfidence := 0
	for i, p := range emailPatterns {
		if !strings.Contains(email, p.substring) {
			continue
		}
		if p.confidence > bestConfidence {
			best = i
			bestConfidence = p.confidence
		}
	}
	if best < 0 {
		return Suggestion{}, false
	}

	role, ok := Lookup(emailPatterns[best].roleID)
	if !ok {
		return Suggestion{}, false
	}
	return Suggestion{
		RoleID:      role.ID,
		DisplayName: role.DisplayName,
		Level:       role.Level,
		Group:       role.Group,
		Color:       role.Color,
		Confidence:  bestConfidence,
	}, true
}
