package grades

import (
	"context"
	"errors"

	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

const (
	msgCreateDenied = "You are not authorized to add grade to test that you did not create"
	msgUpdateDenied = "You are not authorized update the grade assigned to test that you did not create"
	msgDeleteDenied = "You are not authorized to delete the grade assigned to test that you did not create"
	msgReadDenied   = "You are not authorized to view grades of another student"
)

// RepositoryPort defines data access methods for grades.
type RepositoryPort interface {
	List(ctx context.Context, studentID *int64) ([]Grade, error)
	Get(ctx context.Context, id int64) (Grade, error)
	Create(ctx context.Context, g Grade) (int64, error)
	Update(ctx context.Context, id int64, p PatchInput, studentID, testID int64) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service handles grade business logic.
type Service struct {
	repo     RepositoryPort
	owners   OwnerResolver
	students shared.Existence
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, tests TestOwners, students shared.Existence) *Service {
	return &Service{repo: repo, owners: NewOwnerResolver(tests), students: students}
}

// List returns the grades visible to sess. Learners only see their own.
func (s *Service) List(ctx context.Context, sess *shared.Session) ([]Grade, error) {
	if sess != nil && sess.Kind == shared.KindLearner {
		id := sess.PrincipalID
		return s.repo.List(ctx, &id)
	}
	return s.repo.List(ctx, nil)
}

// Get returns one grade. A learner may only read their own.
func (s *Service) Get(ctx context.Context, sess *shared.Session, id int64) (Grade, error) {
	g, err := s.find(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if sess != nil && sess.Kind == shared.KindLearner &&
		!rbac.CheckOwnership(sess, rbac.LearnerOwner(g.StudentID)).Allow {
		return Grade{}, rbac.OwnershipError("%s", msgReadDenied)
	}
	return g, nil
}

// Create stores a grade for a test the caller may mutate.
func (s *Service) Create(ctx context.Context, sess *shared.Session, in CreateInput) (Grade, error) {
	if err := rbac.Require(sess, rbac.StaffOnly); err != nil {
		return Grade{}, err
	}
	owner, err := s.testOwner(ctx, in.TestID, "Test with id=%d not found")
	if err != nil {
		return Grade{}, err
	}
	if err := rbac.CanMutate(sess, owner, rbac.StaffOnly, msgCreateDenied); err != nil {
		return Grade{}, err
	}
	if err := CheckValue(in.Grade); err != nil {
		return Grade{}, err
	}
	if err := shared.RequireExists(ctx, s.students, "Student", in.StudentID); err != nil {
		return Grade{}, err
	}
	id, err := s.repo.Create(ctx, Grade{
		Grade:       in.Grade,
		Description: in.Description,
		StudentID:   in.StudentID,
		TestID:      in.TestID,
	})
	if err != nil {
		return Grade{}, err
	}
	return s.find(ctx, id)
}

// Patch changes a grade. The caller must own the grade's test and, when
// the grade moves, the destination test as well.
func (s *Service) Patch(ctx context.Context, sess *shared.Session, id int64, in PatchInput) (Grade, error) {
	if in.Empty() {
		return Grade{}, shared.BadRequestf("At least one field must be provided")
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if err := s.authorize(ctx, sess, current, msgUpdateDenied); err != nil {
		return Grade{}, err
	}

	testID := current.TestID
	if in.TestID != nil && *in.TestID != current.TestID {
		owner, err := s.testOwner(ctx, *in.TestID, "Knowledge test with id=%d not found")
		if err != nil {
			return Grade{}, err
		}
		if err := rbac.CanMutate(sess, owner, rbac.StaffOnly, msgUpdateDenied); err != nil {
			return Grade{}, err
		}
		testID = *in.TestID
	}
	studentID := current.StudentID
	if in.StudentID != nil {
		if err := shared.RequireExists(ctx, s.students, "Student", *in.StudentID); err != nil {
			return Grade{}, err
		}
		studentID = *in.StudentID
	}
	if in.Grade != nil {
		if err := CheckValue(*in.Grade); err != nil {
			return Grade{}, err
		}
	}

	if err := s.repo.Update(ctx, id, in, studentID, testID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Grade{}, notFound(id)
		}
		return Grade{}, err
	}
	return s.find(ctx, id)
}

// Delete removes a grade. The caller must own the grade's test.
func (s *Service) Delete(ctx context.Context, sess *shared.Session, id int64) error {
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, sess, current, msgDeleteDenied); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(id)
	}
	return nil
}

func (s *Service) find(ctx context.Context, id int64) (Grade, error) {
	g, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Grade{}, notFound(id)
	}
	return g, err
}

// authorize checks the role gate and then ownership resolved through the
// grade's test.
func (s *Service) authorize(ctx context.Context, sess *shared.Session, g Grade, denied string) error {
	if err := rbac.Require(sess, rbac.StaffOnly); err != nil {
		return err
	}
	owner, err := s.owners.OwnerOf(ctx, g)
	if errors.Is(err, shared.ErrNotFound) {
		return notFound(g.ID)
	}
	if err != nil {
		return err
	}
	return rbac.CanMutate(sess, owner, rbac.StaffOnly, denied)
}

// testOwner resolves the owner of testID, reporting a missing test as a
// bad request with the given message.
func (s *Service) testOwner(ctx context.Context, testID int64, missing string) (rbac.Owner, error) {
	owner, err := s.owners.OwnerOfTest(ctx, testID)
	if errors.Is(err, shared.ErrNotFound) {
		return rbac.Owner{}, shared.BadRequestf(missing, testID)
	}
	return owner, err
}

func notFound(id int64) error {
	return shared.NotFoundf("Grade with id=%d not found", id)
}
