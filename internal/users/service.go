package users

import (
	"context"
	"errors"
	"strings"

	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u NewUser) (int64, error)
	Update(ctx context.Context, id int64, c Changes) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// EmailChecker fails when an email is already used by any principal.
type EmailChecker interface {
	EnsureAvailable(ctx context.Context, email string) error
}

// SubjectLookup resolves subject names to ids.
type SubjectLookup interface {
	IDsByName(ctx context.Context, names []string) (map[string]int64, error)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo     RepositoryPort
	Emails   EmailChecker
	Guard    *rbac.AdminGuard
	Classes  shared.Existence
	Subjects SubjectLookup
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	emails   EmailChecker
	guard    *rbac.AdminGuard
	classes  shared.Existence
	subjects SubjectLookup
}

// NewService builds Service instance.
func NewService(d Deps) *Service {
	return &Service{repo: d.Repo, emails: d.Emails, guard: d.Guard, classes: d.Classes, subjects: d.Subjects}
}

// Register creates a staff member. The role defaults to TEACHER and a
// second ADMIN is refused before anything is written.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	role := shared.RoleTeacher
	if in.Role != nil {
		role = *in.Role
	}
	email := strings.TrimSpace(in.Email)
	if err := s.emails.EnsureAvailable(ctx, email); err != nil {
		return User{}, err
	}
	if in.ClassID != nil {
		if err := shared.RequireExists(ctx, s.classes, "Class", *in.ClassID); err != nil {
			return User{}, err
		}
	}
	subjectIDs, err := s.resolveSubjects(ctx, in.Subjects)
	if err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	var id int64
	err = s.guard.Guard(ctx, role, func(ctx context.Context) error {
		var err error
		id, err = s.repo.Create(ctx, NewUser{
			Email:        email,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Role:         role,
			ClassID:      in.ClassID,
			SubjectIDs:   subjectIDs,
		})
		return err
	})
	if err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return User{}, notFound(id)
	}
	return u, err
}

// FindByEmail returns the user with email or shared.ErrNotFound.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Patch applies the supplied fields to user id.
func (s *Service) Patch(ctx context.Context, id int64, in PatchInput) (User, error) {
	if in.Empty() {
		return User{}, shared.BadRequestf("At least one field must be provided")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	c := Changes{FirstName: trimmed(in.FirstName), LastName: trimmed(in.LastName), ClassID: in.ClassID, Role: in.Role}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != current.Email {
			if err := s.emails.EnsureAvailable(ctx, email); err != nil {
				return User{}, err
			}
			c.Email = &email
		}
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return User{}, err
		}
		c.PasswordHash = &hash
	}
	if in.ClassID != nil {
		if err := shared.RequireExists(ctx, s.classes, "School class", *in.ClassID); err != nil {
			return User{}, err
		}
	}
	if in.Subjects != nil {
		if c.SubjectIDs, err = s.resolveSubjects(ctx, in.Subjects); err != nil {
			return User{}, err
		}
	}

	// Only a promotion needs the admin guard; the administrator keeping the role does not.
	var guarded shared.Role
	if c.Role != nil && current.Role != shared.RoleAdmin {
		guarded = *c.Role
	}
	err = s.guard.Guard(ctx, guarded, func(ctx context.Context) error {
		return s.repo.Update(ctx, id, c)
	})
	if errors.Is(err, shared.ErrNotFound) {
		return User{}, notFound(id)
	}
	if err != nil {
		return User{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a user.
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

func (s *Service) resolveSubjects(ctx context.Context, in []SubjectName) ([]int64, error) {
	if in == nil {
		return nil, nil
	}
	names := make([]string, len(in))
	for i, sn := range in {
		names[i] = strings.TrimSpace(sn.Name)
	}
	known, err := s.subjects.IDsByName(ctx, names)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, shared.BadRequestf("Subject '%s' not found", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func notFound(id int64) error {
	return shared.NotFoundf("User with id=%d not found", id)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
