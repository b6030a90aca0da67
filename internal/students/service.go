package students

import (
	"context"
	"errors"
	"strings"

	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

// RepositoryPort defines data access methods for students.
type RepositoryPort interface {
	List(ctx context.Context) ([]Student, error)
	Get(ctx context.Context, id int64) (Student, error)
	FindByEmail(ctx context.Context, email string) (Student, error)
	Create(ctx context.Context, s Student) (int64, error)
	Update(ctx context.Context, id int64, c Changes) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// EmailChecker fails when an email is already used by any principal.
type EmailChecker interface {
	EnsureAvailable(ctx context.Context, email string) error
}

// Service handles student business logic.
type Service struct {
	repo    RepositoryPort
	emails  EmailChecker
	classes shared.Existence
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, emails EmailChecker, classes shared.Existence) *Service {
	return &Service{repo: repo, emails: emails, classes: classes}
}

// Register creates a learner.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Student, error) {
	email := strings.TrimSpace(in.Email)
	if err := s.emails.EnsureAvailable(ctx, email); err != nil {
		return Student{}, err
	}
	if in.ClassID != nil {
		if err := shared.RequireExists(ctx, s.classes, "Class", *in.ClassID); err != nil {
			return Student{}, err
		}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Student{}, err
	}
	id, err := s.repo.Create(ctx, Student{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		ClassID:      in.ClassID,
	})
	if err != nil {
		return Student{}, err
	}
	return s.repo.Get(ctx, id)
}

// List returns all students.
func (s *Service) List(ctx context.Context) ([]Student, error) {
	return s.repo.List(ctx)
}

// Get returns one student.
func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	st, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Student{}, notFound(id)
	}
	return st, err
}

// FindByEmail returns the student with email or shared.ErrNotFound.
func (s *Service) FindByEmail(ctx context.Context, email string) (Student, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Patch lets a learner change their own record. The administrator may
// change any record.
func (s *Service) Patch(ctx context.Context, sess *shared.Session, id int64, in PatchInput) (Student, error) {
	if in.Empty() {
		return Student{}, shared.BadRequestf("At least one field must be provided")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err := rbac.CanMutate(sess, rbac.LearnerOwner(current.ID), rbac.LearnerSelf,
		"You are not authorized to update data of another student"); err != nil {
		return Student{}, err
	}

	c := Changes{ClassID: in.ClassID}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		c.FirstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		c.LastName = &v
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != current.Email {
			if err := s.emails.EnsureAvailable(ctx, email); err != nil {
				return Student{}, err
			}
			c.Email = &email
		}
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return Student{}, err
		}
		c.PasswordHash = &hash
	}
	if in.ClassID != nil {
		if err := shared.RequireExists(ctx, s.classes, "School class", *in.ClassID); err != nil {
			return Student{}, err
		}
	}

	if err := s.repo.Update(ctx, id, c); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Student{}, notFound(id)
		}
		return Student{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a student.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(id)
	}
	return nil
}

func notFound(id int64) error {
	return shared.NotFoundf("Student with id=%d not found", id)
}
