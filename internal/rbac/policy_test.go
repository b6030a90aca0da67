package rbac_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

func staff(id int64, role shared.Role) *shared.Session {
	return &shared.Session{PrincipalID: id, Kind: shared.KindStaff, Subject: fmt.Sprintf("staff%d@school.test", id), Roles: []shared.Role{role}}
}

func learner(id int64) *shared.Session {
	return &shared.Session{PrincipalID: id, Kind: shared.KindLearner, Subject: fmt.Sprintf("kid%d@school.test", id), Roles: []shared.Role{shared.RoleStudent}}
}

func TestCheckRole(t *testing.T) {
	cases := []struct {
		name string
		sess *shared.Session
		gate rbac.Gate
		want rbac.Decision
	}{
		{"anonymous", nil, rbac.SchoolWide, rbac.Decision{Allow: false, Reason: rbac.ReasonUnauthenticated}},
		{"admin passes admin only", staff(1, shared.RoleAdmin), rbac.AdminOnly, rbac.Decision{Allow: true, Reason: rbac.ReasonAdmin}},
		{"admin passes staff gate", staff(1, shared.RoleAdmin), rbac.StaffOnly, rbac.Decision{Allow: true, Reason: rbac.ReasonAdmin}},
		{"admin passes learner gate", staff(1, shared.RoleAdmin), rbac.LearnerSelf, rbac.Decision{Allow: true, Reason: rbac.ReasonAdmin}},
		{"teacher on staff gate", staff(2, shared.RoleTeacher), rbac.StaffOnly, rbac.Decision{Allow: true, Reason: rbac.ReasonRoleGranted}},
		{"teacher on admin only", staff(2, shared.RoleTeacher), rbac.AdminOnly, rbac.Decision{Allow: false, Reason: rbac.ReasonMissingRole}},
		{"teacher on learner gate", staff(2, shared.RoleTeacher), rbac.LearnerSelf, rbac.Decision{Allow: false, Reason: rbac.ReasonMissingRole}},
		{"learner school wide", learner(3), rbac.SchoolWide, rbac.Decision{Allow: true, Reason: rbac.ReasonRoleGranted}},
		{"learner on staff gate", learner(3), rbac.StaffOnly, rbac.Decision{Allow: false, Reason: rbac.ReasonMissingRole}},
		{"learner on admin only", learner(3), rbac.AdminOnly, rbac.Decision{Allow: false, Reason: rbac.ReasonMissingRole}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rbac.CheckRole(tc.sess, tc.gate))
		})
	}
}

func TestOwnershipMatrix(t *testing.T) {
	const ownerID = 10
	owner := rbac.StaffOwner(ownerID)
	for _, admin := range []bool{true, false} {
		for _, isOwner := range []bool{true, false} {
			name := fmt.Sprintf("admin=%t owner=%t", admin, isOwner)
			t.Run(name, func(t *testing.T) {
				id := int64(ownerID)
				if !isOwner {
					id = 11
				}
				role := shared.RoleTeacher
				if admin {
					role = shared.RoleAdmin
				}
				sess := staff(id, role)

				d := rbac.CheckOwnership(sess, owner)
				assert.Equal(t, admin || isOwner, d.Allow)

				err := rbac.CanMutate(sess, owner, rbac.StaffOnly, "not yours")
				if admin || isOwner {
					assert.NoError(t, err)
					return
				}
				require.ErrorIs(t, err, rbac.ErrOwnershipViolation)
				require.ErrorIs(t, err, shared.ErrUnauthorized)
				assert.Equal(t, "not yours", err.Error())
			})
		}
	}
}

func TestOwnershipComparesPrincipalKind(t *testing.T) {
	d := rbac.CheckOwnership(learner(10), rbac.StaffOwner(10))
	assert.Equal(t, rbac.Decision{Allow: false, Reason: rbac.ReasonNotOwner}, d)

	d = rbac.CheckOwnership(learner(10), rbac.LearnerOwner(10))
	assert.Equal(t, rbac.Decision{Allow: true, Reason: rbac.ReasonOwner}, d)
}

func TestOwnershipZeroOwnerDenied(t *testing.T) {
	d := rbac.CheckOwnership(&shared.Session{Kind: shared.KindStaff, Roles: []shared.Role{shared.RoleTeacher}}, rbac.Owner{})
	assert.False(t, d.Allow)
}

func TestCanMutateAppliesRoleGateFirst(t *testing.T) {
	err := rbac.CanMutate(learner(10), rbac.LearnerOwner(10), rbac.StaffOnly, "not yours")
	require.ErrorIs(t, err, rbac.ErrRoleViolation)
	require.ErrorIs(t, err, shared.ErrForbidden)

	err = rbac.CanMutate(nil, rbac.StaffOwner(1), rbac.StaffOnly, "not yours")
	require.ErrorIs(t, err, rbac.ErrUnauthenticated)
}

func TestCanMutateDefaultMessage(t *testing.T) {
	err := rbac.CanMutate(staff(2, shared.RoleTeacher), rbac.StaffOwner(1), rbac.StaffOnly, "")
	require.ErrorIs(t, err, rbac.ErrOwnershipViolation)
	assert.NotEmpty(t, shared.UserSafeMessage(err))
}

func TestRequire(t *testing.T) {
	assert.NoError(t, rbac.Require(staff(1, shared.RoleAdmin), rbac.AdminOnly))
	assert.ErrorIs(t, rbac.Require(staff(2, shared.RoleTeacher), rbac.AdminOnly), rbac.ErrRoleViolation)
}

func TestOwnerOfSession(t *testing.T) {
	assert.Equal(t, rbac.StaffOwner(4), rbac.OwnerOfSession(staff(4, shared.RoleTeacher)))
	assert.Equal(t, rbac.LearnerOwner(5), rbac.OwnerOfSession(learner(5)))
	assert.Equal(t, rbac.Owner{}, rbac.OwnerOfSession(nil))
}
