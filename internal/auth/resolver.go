package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gradebook/gradebook/internal/shared"
)

var (
	// ErrUnknownPrincipal is returned when neither directory knows the subject.
	ErrUnknownPrincipal = fmt.Errorf("auth: unknown principal: %w", shared.ErrNotFound)
	// ErrStaleCredential is returned when a token names a subject that no longer exists.
	ErrStaleCredential = &shared.Error{Kind: shared.ErrUnauthorized, Message: "Credential is no longer valid, please log in again"}
)

// IdentityResolver maps a subject onto a Principal, consulting the staff
// directory before the learner directory.
type IdentityResolver struct {
	staff    Directory
	learners Directory
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(staff, learners Directory) *IdentityResolver {
	return &IdentityResolver{staff: staff, learners: learners}
}

// Resolve returns the principal for subject. A subject present in both
// directories always resolves to the staff record.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (Principal, error) {
	entry, err := r.staff.FindByEmail(ctx, subject)
	switch {
	case err == nil:
		role, ok := shared.ParseStaffRole(string(entry.Role))
		if !ok {
			return Principal{}, fmt.Errorf("auth: staff %d has unsupported role %q", entry.ID, entry.Role)
		}
		return Principal{
			Kind:           shared.KindStaff,
			ID:             entry.ID,
			Subject:        entry.Email,
			CredentialHash: entry.PasswordHash,
			Roles:          []shared.Role{role},
		}, nil
	case !errors.Is(err, shared.ErrNotFound):
		return Principal{}, fmt.Errorf("auth: staff lookup: %w", err)
	}

	entry, err = r.learners.FindByEmail(ctx, subject)
	switch {
	case err == nil:
		return Principal{
			Kind:           shared.KindLearner,
			ID:             entry.ID,
			Subject:        entry.Email,
			CredentialHash: entry.PasswordHash,
			Roles:          []shared.Role{shared.RoleStudent},
		}, nil
	case !errors.Is(err, shared.ErrNotFound):
		return Principal{}, fmt.Errorf("auth: learner lookup: %w", err)
	}

	return Principal{}, ErrUnknownPrincipal
}

// ResolveCredential resolves the subject of an already issued token. An
// unknown subject means the token outlived its principal and yields
// ErrStaleCredential.
func (r *IdentityResolver) ResolveCredential(ctx context.Context, subject string) (Principal, error) {
	p, err := r.Resolve(ctx, subject)
	if errors.Is(err, ErrUnknownPrincipal) {
		return Principal{}, ErrStaleCredential
	}
	return p, err
}
