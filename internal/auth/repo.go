package auth

import (
	"context"

	"github.com/gradebook/gradebook/internal/shared"
)

// DirectoryEntry is the credential view of a staff or learner record.
type DirectoryEntry struct {
	ID           int64
	Email        string
	PasswordHash string
	// Role is only meaningful for staff entries.
	Role shared.Role
}

// Directory looks principals up by email. Implementations return
// shared.ErrNotFound when the email is unknown.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (DirectoryEntry, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, email string) (DirectoryEntry, error)

// FindByEmail calls f.
func (f DirectoryFunc) FindByEmail(ctx context.Context, email string) (DirectoryEntry, error) {
	return f(ctx, email)
}
