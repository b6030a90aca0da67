package knowledgetests

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

const (
	msgUpdateDenied = "You are not authorized to update knowledge test that you did not create"
	msgDeleteDenied = "You are not authorized to delete this knowledge test"
)

// RepositoryPort defines data access methods for tests.
type RepositoryPort interface {
	List(ctx context.Context) ([]Test, error)
	Get(ctx context.Context, id int64) (Test, error)
	OwnerOf(ctx context.Context, id int64) (rbac.Owner, error)
	Create(ctx context.Context, t Test) (int64, error)
	Update(ctx context.Context, id int64, p PatchInput) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Deps groups Service collaborators.
type Deps struct {
	Repo     RepositoryPort
	Classes  shared.Existence
	Subjects shared.Existence
	Staff    shared.Existence
	Now      func() time.Time
}

// Service handles test business logic.
type Service struct {
	repo     RepositoryPort
	classes  shared.Existence
	subjects shared.Existence
	staff    shared.Existence
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: d.Repo, classes: d.Classes, subjects: d.Subjects, staff: d.Staff, now: now}
}

// List returns all tests.
func (s *Service) List(ctx context.Context) ([]Test, error) {
	return s.repo.List(ctx)
}

// Get returns one test.
func (s *Service) Get(ctx context.Context, id int64) (Test, error) {
	t, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Test{}, notFound(id)
	}
	return t, err
}

// OwnerOf returns the staff member owning test id. A missing test yields
// shared.ErrNotFound.
func (s *Service) OwnerOf(ctx context.Context, id int64) (rbac.Owner, error) {
	return s.repo.OwnerOf(ctx, id)
}

// Exists reports whether test id exists.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.OwnerOf(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Create stores a test owned by the caller.
func (s *Service) Create(ctx context.Context, sess *shared.Session, in CreateInput) (Test, error) {
	if err := rbac.Require(sess, rbac.StaffOnly); err != nil {
		return Test{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Test{}, shared.BadRequestf("name cannot be empty")
	}
	if err := s.checkDate(in.TestDate); err != nil {
		return Test{}, err
	}
	if err := shared.RequireExists(ctx, s.classes, "School class", in.ClassID); err != nil {
		return Test{}, err
	}
	if err := shared.RequireExists(ctx, s.subjects, "Subject", in.SubjectID); err != nil {
		return Test{}, err
	}
	id, err := s.repo.Create(ctx, Test{
		Name:      name,
		Category:  in.Category,
		TestDate:  in.TestDate,
		ClassID:   in.ClassID,
		SubjectID: in.SubjectID,
		TeacherID: sess.PrincipalID,
	})
	if err != nil {
		return Test{}, err
	}
	return s.repo.Get(ctx, id)
}

// Patch changes a test. Only its owner or the administrator may do so.
func (s *Service) Patch(ctx context.Context, sess *shared.Session, id int64, in PatchInput) (Test, error) {
	if in.Empty() {
		return Test{}, shared.BadRequestf("At least one field must be provided")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Test{}, err
	}
	if err := rbac.CanMutate(sess, current.Owner(), rbac.StaffOnly, msgUpdateDenied); err != nil {
		return Test{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Test{}, shared.BadRequestf("name cannot be empty")
		}
		in.Name = &name
	}
	if in.TestDate != nil {
		if err := s.checkDate(*in.TestDate); err != nil {
			return Test{}, err
		}
	}
	if in.ClassID != nil {
		if err := shared.RequireExists(ctx, s.classes, "School class", *in.ClassID); err != nil {
			return Test{}, err
		}
	}
	if in.SubjectID != nil {
		if err := shared.RequireExists(ctx, s.subjects, "Subject", *in.SubjectID); err != nil {
			return Test{}, err
		}
	}
	if in.TeacherID != nil {
		if err := shared.RequireExists(ctx, s.staff, "User", *in.TeacherID); err != nil {
			return Test{}, err
		}
	}

	if err := s.repo.Update(ctx, id, in); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Test{}, notFound(id)
		}
		return Test{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a test together with its grades. Only its owner or the
// administrator may do so.
func (s *Service) Delete(ctx context.Context, sess *shared.Session, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := rbac.CanMutate(sess, current.Owner(), rbac.StaffOnly, msgDeleteDenied); err != nil {
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

// checkDate requires d to fall after today in UTC.
func (s *Service) checkDate(d Date) error {
	today := s.now().UTC().Truncate(24 * time.Hour)
	if !d.UTC().After(today) {
		return shared.BadRequestf("Test date must be in the future")
	}
	return nil
}

func notFound(id int64) error {
	return shared.NotFoundf("Knowledge test with id=%d not found", id)
}
