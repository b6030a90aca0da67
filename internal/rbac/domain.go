// Package rbac decides who may reach a route and who may mutate a resource.
package rbac

import (
	"fmt"

	"github.com/gradebook/gradebook/internal/shared"
)

// Owner identifies the principal recorded as creator of a resource.
type Owner struct {
	Kind shared.PrincipalKind
	ID   int64
}

// StaffOwner returns the Owner for a staff member.
func StaffOwner(id int64) Owner { return Owner{Kind: shared.KindStaff, ID: id} }

// LearnerOwner returns the Owner for a learner.
func LearnerOwner(id int64) Owner { return Owner{Kind: shared.KindLearner, ID: id} }

// OwnerOfSession returns the Owner a session would record on creation.
func OwnerOfSession(sess *shared.Session) Owner {
	if sess == nil {
		return Owner{}
	}
	return Owner{Kind: sess.Kind, ID: sess.PrincipalID}
}

// Reason explains an authorization Decision.
type Reason string

const (
	ReasonAdmin           Reason = "admin"
	ReasonRoleGranted     Reason = "role_granted"
	ReasonOwner           Reason = "owner"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonMissingRole     Reason = "missing_role"
	ReasonNotOwner        Reason = "not_owner"
)

// Decision is the outcome of a role or ownership check.
type Decision struct {
	Allow  bool
	Reason Reason
}

func allow(r Reason) Decision { return Decision{Allow: true, Reason: r} }
func deny(r Reason) Decision { return Decision{Allow: false, Reason: r} }

var (
	// ErrUnauthenticated is returned when a gated operation runs without a session.
	ErrUnauthenticated = &shared.Error{Kind: shared.ErrUnauthorized, Message: "Full authentication is required to access this resource"}
	// ErrRoleViolation is returned when the session lacks every role a gate accepts.
	ErrRoleViolation = &shared.Error{Kind: shared.ErrForbidden, Message: "Access denied"}
	// ErrOwnershipViolation classifies mutations attempted by someone other than the owner.
	ErrOwnershipViolation = fmt.Errorf("rbac: ownership violation: %w", shared.ErrUnauthorized)
	// ErrDuplicateAdmin is returned when a second administrator would be created.
	ErrDuplicateAdmin = &shared.Error{Kind: shared.ErrBadRequest, Message: "There can only be one ADMIN user."}
)

// OwnershipError builds a client facing ownership violation.
func OwnershipError(format string, args ...any) error {
	return shared.NewError(ErrOwnershipViolation, format, args...)
}
