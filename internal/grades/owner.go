package grades

import (
	"context"

	"github.com/gradebook/gradebook/internal/rbac"
)

// TestOwners resolves the owner of a test.
type TestOwners interface {
	OwnerOf(ctx context.Context, testID int64) (rbac.Owner, error)
}

// OwnerResolver maps a grade to the owner of its test.
type OwnerResolver struct {
	tests TestOwners
}

// NewOwnerResolver builds OwnerResolver instance.
func NewOwnerResolver(tests TestOwners) OwnerResolver {
	return OwnerResolver{tests: tests}
}

// OwnerOf returns the owner of g, which is the owner of g's test.
func (r OwnerResolver) OwnerOf(ctx context.Context, g Grade) (rbac.Owner, error) {
	return r.OwnerOfTest(ctx, g.TestID)
}

// OwnerOfTest returns the owner of a grade that would belong to testID.
func (r OwnerResolver) OwnerOfTest(ctx context.Context, testID int64) (rbac.Owner, error) {
	return r.tests.OwnerOf(ctx, testID)
}
