package auth

import (
	"github.com/plusvans/admin/internal/backend"
)

// GateState is where a request stands in the authentication check.
type GateState int

const (
	// StateUnknown: still waiting on the token check or the profile load.
	StateUnknown GateState = iota
	StateUnauthenticated
	StateAuthenticatedNoRoleCheck
	StateAuthenticatedRoleMismatch
	StateAuthenticatedAuthorized
)

func (s GateState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticatedNoRoleCheck:
		return "authenticated_no_role_check"
	case StateAuthenticatedRoleMismatch:
		return "authenticated_role_mismatch"
	case StateAuthenticatedAuthorized:
		return "authenticated_authorized"
	default:
		return "unknown"
	}
}

// Decision is what the gate tells the caller to do.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRender
	DecisionSignIn
	DecisionUnauthorized
)

// Gate combines the token presence check and the profile load, which may
// complete in either order, into one decision. Required roles are compared
// only after both have resolved. Any profile failure counts as "no user".
//
// A Gate is owned by one request and is not safe for concurrent use.
type Gate struct {
	roles []string

	tokenChecked bool
	tokenPresent bool

	profileLoaded bool
	profile       *backend.Profile
}

// NewGate creates a gate. With no roles, any authenticated user is admitted.
func NewGate(roles ...string) *Gate {
	return &Gate{roles: roles}
}

// TokenChecked records the result of the token presence check.
func (g *Gate) TokenChecked(present bool) {
	g.tokenChecked = true
	g.tokenPresent = present
}

// ProfileLoaded records the result of the profile load. An error or a nil
// profile is recorded as "no user".
func (g *Gate) ProfileLoaded(p *backend.Profile, err error) {
	g.profileLoaded = true
	if err != nil {
		p = nil
	}
	g.profile = p
}

// Profile returns the loaded profile, or nil.
func (g *Gate) Profile() *backend.Profile {
	return g.profile
}

// State derives the current state from the recorded inputs. An absent token
// resolves immediately since no profile can belong to it.
func (g *Gate) State() GateState {
	if !g.tokenChecked {
		return StateUnknown
	}
	if !g.tokenPresent {
		return StateUnauthenticated
	}
	if !g.profileLoaded {
		return StateUnknown
	}
	if g.profile == nil {
		return StateUnauthenticated
	}
	if len(g.roles) == 0 {
		return StateAuthenticatedNoRoleCheck
	}
	for _, r := range g.roles {
		if g.profile.Role == r {
			return StateAuthenticatedAuthorized
		}
	}
	return StateAuthenticatedRoleMismatch
}

// Decision maps the state to an action.
func (g *Gate) Decision() Decision {
	switch g.State() {
	case StateUnauthenticated:
		return DecisionSignIn
	case StateAuthenticatedRoleMismatch:
		return DecisionUnauthorized
	case StateAuthenticatedNoRoleCheck, StateAuthenticatedAuthorized:
		return DecisionRender
	default:
		return DecisionLoading
	}
}
