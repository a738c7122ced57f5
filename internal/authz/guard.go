package authz

import "fmt"

// GuardState enumerates the access guard states.
type GuardState int

const (
	// StateLoading means session restoration is still in flight.
	StateLoading GuardState = iota
	// StateUnauthenticated means no valid principal was found.
	StateUnauthenticated
	// StateAllowed means the principal passed every configured requirement.
	StateAllowed
	// StateDenied means the principal is authenticated but insufficient.
	StateDenied
)

// String returns a readable state name for logging.
func (s GuardState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DenialReason distinguishes why access was denied. Role, permission
// and level denials are never conflated in user-facing output.
type DenialReason int

const (
	// DenialNone means access was not denied.
	DenialNone DenialReason = iota
	// DenialRole means the principal's role name does not match.
	DenialRole
	// DenialPermission means a required permission is missing.
	DenialPermission
	// DenialLevel means the role level is below the threshold.
	DenialLevel
)

// Message returns the user-visible denial text.
func (r DenialReason) Message() string {
	switch r {
	case DenialRole:
		return "access denied: your role does not permit this page"
	case DenialPermission:
		return "access denied: insufficient permissions"
	case DenialLevel:
		return "access denied: your access level is too low"
	default:
		return ""
	}
}

// Requirements configures a guard. Any subset may be set; every set
// requirement must pass for access to be allowed.
type Requirements struct {
	// Role requires an exact role ID match when non-empty.
	Role string
	// Permissions must all be held when non-empty.
	Permissions []string
	// MinLevel requires Role.Level >= MinLevel when positive.
	MinLevel int
}

// GuardInput is a snapshot of authentication state at evaluation time.
type GuardInput struct {
	// Restoring is true while the session is still being restored.
	Restoring bool
	// Principal is the verified session identity, nil when absent.
	// Guards never consult the email heuristic suggestion.
	Principal *Principal
	// LoginInProgress suppresses the unauthenticated redirect while a
	// credential exchange elsewhere is still establishing the session.
	LoginInProgress bool
}

// Decision is the outcome of a guard evaluation.
type Decision struct {
	State  GuardState
	Reason DenialReason
	// Redirect is true when the caller should navigate to the login
	// entry point. Set at most once over a guard's lifetime.
	Redirect bool
}

// Guard gates access to a protected resource. A Guard instance tracks
// whether it already requested a redirect so the login bounce cannot
// loop; construct one per mount.
type Guard struct {
	req        Requirements
	redirected bool
}

// NewGuard builds a Guard with the given requirements.
func NewGuard(req Requirements) *Guard {
	return &Guard{req: req}
}

// Evaluate runs the state machine against the current input.
func (g *Guard) Evaluate(in GuardInput) Decision {
	if in.Restoring {
		return Decision{State: StateLoading}
	}
	if in.Principal == nil {
		d := Decision{State: StateUnauthenticated}
		if !in.LoginInProgress && !g.redirected {
			g.redirected = true
			d.Redirect = true
		}
		return d
	}

	eval := NewEvaluator(in.Principal)
	if g.req.Role != "" && eval.Role().ID != g.req.Role {
		return Decision{State: StateDenied, Reason: DenialRole}
	}
	if len(g.req.Permissions) > 0 && !eval.HasAllPermissions(g.req.Permissions...) {
		return Decision{State: StateDenied, Reason: DenialPermission}
	}
	if g.req.MinLevel > 0 && !eval.MeetsLevel(g.req.MinLevel) {
		return Decision{State: StateDenied, Reason: DenialLevel}
	}
	return Decision{State: StateAllowed}
}
