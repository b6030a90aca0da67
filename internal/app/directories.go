package app

import (
	"context"

	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/students"
	"github.com/gradebook/gradebook/internal/users"
)

// StaffFinder looks staff members up by email.
type StaffFinder interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// LearnerFinder looks learners up by email.
type LearnerFinder interface {
	FindByEmail(ctx context.Context, email string) (students.Student, error)
}

// StaffDirectory exposes the staff store to the identity resolver.
func StaffDirectory(f StaffFinder) auth.Directory {
	return auth.DirectoryFunc(func(ctx context.Context, email string) (auth.DirectoryEntry, error) {
		u, err := f.FindByEmail(ctx, email)
		if err != nil {
			return auth.DirectoryEntry{}, err
		}
		return auth.DirectoryEntry{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, Role: u.Role}, nil
	})
}

// LearnerDirectory exposes the learner store to the identity resolver.
// Learner entries never carry a role.
func LearnerDirectory(f LearnerFinder) auth.Directory {
	return auth.DirectoryFunc(func(ctx context.Context, email string) (auth.DirectoryEntry, error) {
		s, err := f.FindByEmail(ctx, email)
		if err != nil {
			return auth.DirectoryEntry{}, err
		}
		return auth.DirectoryEntry{ID: s.ID, Email: s.Email, PasswordHash: s.PasswordHash}, nil
	})
}
