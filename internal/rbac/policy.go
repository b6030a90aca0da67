package rbac

import (
	"github.com/gradebook/gradebook/internal/shared"
)

// Gate is the set of roles accepted by a route or operation. ADMIN passes
// every gate and never needs to be listed.
type Gate []shared.Role

// Route gates shared by the router and the services that repeat them.
var (
	AdminOnly   = Gate{}
	StaffOnly   = Gate{shared.RoleTeacher}
	SchoolWide  = Gate{shared.RoleTeacher, shared.RoleStudent}
	LearnerSelf = Gate{shared.RoleStudent}
)

// CheckRole decides whether sess passes gate.
func CheckRole(sess *shared.Session, gate Gate) Decision {
	if sess == nil {
		return deny(ReasonUnauthenticated)
	}
	if sess.IsAdmin() {
		return allow(ReasonAdmin)
	}
	for _, role := range gate {
		if sess.HasRole(role) {
			return allow(ReasonRoleGranted)
		}
	}
	return deny(ReasonMissingRole)
}

// CheckOwnership decides whether sess may mutate a resource owned by owner.
// Only the owner itself or the administrator qualifies.
func CheckOwnership(sess *shared.Session, owner Owner) Decision {
	if sess == nil {
		return deny(ReasonUnauthenticated)
	}
	if sess.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if owner.ID != 0 && owner == OwnerOfSession(sess) {
		return allow(ReasonOwner)
	}
	return deny(ReasonNotOwner)
}

// CanMutate applies the role gate and then the ownership gate. The returned
// error is nil when both pass; denied carries the client facing message used
// for ownership violations.
func CanMutate(sess *shared.Session, owner Owner, gate Gate, denied string) error {
	if d := CheckRole(sess, gate); !d.Allow {
		return d.Err()
	}
	d := CheckOwnership(sess, owner)
	if d.Allow {
		return nil
	}
	if d.Reason == ReasonNotOwner && denied != "" {
		return OwnershipError("%s", denied)
	}
	return d.Err()
}

// Require turns the role decision for sess into an error.
func Require(sess *shared.Session, gate Gate) error {
	return CheckRole(sess, gate).Err()
}

// Err converts a denial into its classified error.
func (d Decision) Err() error {
	if d.Allow {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonMissingRole:
		return ErrRoleViolation
	default:
		return OwnershipError("You are not authorized to modify this resource")
	}
}
