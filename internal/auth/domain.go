package auth

import (
	"slices"

	"github.com/gradebook/gradebook/internal/shared"
)

// Principal is a resolved identity from either the staff or the learner
// directory. Kind tells the two apart; both carry exactly one role.
type Principal struct {
	Kind           shared.PrincipalKind
	ID             int64
	Subject        string
	CredentialHash string
	Roles          []shared.Role
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role shared.Role) bool {
	return slices.Contains(p.Roles, role)
}

// Session builds the request scoped session for this principal. The
// credential hash is deliberately left behind.
func (p Principal) Session() *shared.Session {
	return &shared.Session{
		PrincipalID: p.ID,
		Kind:        p.Kind,
		Subject:     p.Subject,
		Roles:       slices.Clone(p.Roles),
	}
}

// LoginResult is returned to clients after a successful login.
type LoginResult struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
