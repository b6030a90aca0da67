package grades_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/grades"
	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

type testOwners struct {
	owners map[int64]int64
	asked  []int64
}

func (t *testOwners) OwnerOf(_ context.Context, testID int64) (rbac.Owner, error) {
	t.asked = append(t.asked, testID)
	teacher, ok := t.owners[testID]
	if !ok {
		return rbac.Owner{}, shared.ErrNotFound
	}
	return rbac.StaffOwner(teacher), nil
}

func TestOwnerOfGradeIsOwnerOfItsTest(t *testing.T) {
	tests := &testOwners{owners: map[int64]int64{100: 2, 200: 3}}
	resolver := grades.NewOwnerResolver(tests)

	owner, err := resolver.OwnerOf(context.Background(), grades.Grade{ID: 1, StudentID: 2, TestID: 100})
	require.NoError(t, err)
	assert.Equal(t, rbac.StaffOwner(2), owner)
	assert.Equal(t, []int64{100}, tests.asked)
}

func TestOwnerOfIgnoresGradeStudent(t *testing.T) {
	tests := &testOwners{owners: map[int64]int64{100: 2}}
	resolver := grades.NewOwnerResolver(tests)

	owner, err := resolver.OwnerOf(context.Background(), grades.Grade{ID: 3, StudentID: 3, TestID: 100})
	require.NoError(t, err)
	assert.NotEqual(t, rbac.LearnerOwner(3), owner)
	assert.NotEqual(t, rbac.StaffOwner(3), owner)
}

func TestOwnerOfMissingTest(t *testing.T) {
	resolver := grades.NewOwnerResolver(&testOwners{})

	_, err := resolver.OwnerOf(context.Background(), grades.Grade{TestID: 9})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
