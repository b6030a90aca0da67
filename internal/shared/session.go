package shared

import "slices"

// Role is the single role tag carried by a principal.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// ParseStaffRole validates a role that may be stored on a staff record.
func ParseStaffRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleTeacher:
		return Role(raw), true
	}
	return "", false
}

// PrincipalKind tells which directory produced a principal.
type PrincipalKind string

const (
	KindStaff   PrincipalKind = "staff"
	KindLearner PrincipalKind = "learner"
)

// Session binds a validated principal to one request. It lives in the
// request context only and is never stored or shared between requests.
type Session struct {
	PrincipalID int64
	Kind        PrincipalKind
	Subject     string
	Roles       []Role
}

// HasRole reports whether the session carries role.
func (s *Session) HasRole(role Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Roles, role)
}

// IsAdmin reports whether the session belongs to the administrator.
func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}
