package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/shared"
)

type memDirectory struct {
	entries map[string]auth.DirectoryEntry
	err     error
	calls   int
}

func newMemDirectory(entries ...auth.DirectoryEntry) *memDirectory {
	d := &memDirectory{entries: make(map[string]auth.DirectoryEntry)}
	for _, e := range entries {
		d.entries[e.Email] = e
	}
	return d
}

func (d *memDirectory) FindByEmail(_ context.Context, email string) (auth.DirectoryEntry, error) {
	d.calls++
	if d.err != nil {
		return auth.DirectoryEntry{}, d.err
	}
	e, ok := d.entries[email]
	if !ok {
		return auth.DirectoryEntry{}, shared.ErrNotFound
	}
	return e, nil
}

func TestResolveStaffTakesPrecedence(t *testing.T) {
	staff := newMemDirectory(auth.DirectoryEntry{ID: 7, Email: "dual@school.test", PasswordHash: "s", Role: shared.RoleTeacher})
	learners := newMemDirectory(auth.DirectoryEntry{ID: 7, Email: "dual@school.test", PasswordHash: "l"})
	resolver := auth.NewIdentityResolver(staff, learners)

	p, err := resolver.Resolve(context.Background(), "dual@school.test")
	require.NoError(t, err)
	assert.Equal(t, shared.KindStaff, p.Kind)
	assert.Equal(t, []shared.Role{shared.RoleTeacher}, p.Roles)
	assert.Equal(t, "s", p.CredentialHash)
	assert.Zero(t, learners.calls)
}

func TestResolveLearnerGetsStudentRole(t *testing.T) {
	staff := newMemDirectory()
	learners := newMemDirectory(auth.DirectoryEntry{ID: 3, Email: "kid@school.test", PasswordHash: "h", Role: shared.RoleAdmin})
	resolver := auth.NewIdentityResolver(staff, learners)

	p, err := resolver.Resolve(context.Background(), "kid@school.test")
	require.NoError(t, err)
	assert.Equal(t, shared.KindLearner, p.Kind)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, []shared.Role{shared.RoleStudent}, p.Roles)
	assert.False(t, p.HasRole(shared.RoleAdmin))
}

func TestResolveAdmin(t *testing.T) {
	staff := newMemDirectory(auth.DirectoryEntry{ID: 1, Email: "root@school.test", Role: shared.RoleAdmin})
	resolver := auth.NewIdentityResolver(staff, newMemDirectory())

	p, err := resolver.Resolve(context.Background(), "root@school.test")
	require.NoError(t, err)
	assert.True(t, p.HasRole(shared.RoleAdmin))
	assert.True(t, p.Session().IsAdmin())
}

func TestResolveUnknown(t *testing.T) {
	resolver := auth.NewIdentityResolver(newMemDirectory(), newMemDirectory())

	_, err := resolver.Resolve(context.Background(), "ghost@school.test")
	require.ErrorIs(t, err, auth.ErrUnknownPrincipal)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestResolveCredentialStale(t *testing.T) {
	resolver := auth.NewIdentityResolver(newMemDirectory(), newMemDirectory())

	_, err := resolver.ResolveCredential(context.Background(), "ghost@school.test")
	require.ErrorIs(t, err, auth.ErrStaleCredential)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
}

func TestResolveStaffFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	staff := newMemDirectory()
	staff.err = boom
	learners := newMemDirectory(auth.DirectoryEntry{ID: 1, Email: "kid@school.test"})
	resolver := auth.NewIdentityResolver(staff, learners)

	_, err := resolver.ResolveCredential(context.Background(), "kid@school.test")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrStaleCredential)
	assert.Zero(t, learners.calls)
}

func TestResolveRejectsUnsupportedStaffRole(t *testing.T) {
	staff := newMemDirectory(auth.DirectoryEntry{ID: 1, Email: "odd@school.test", Role: shared.RoleStudent})
	resolver := auth.NewIdentityResolver(staff, newMemDirectory())

	_, err := resolver.Resolve(context.Background(), "odd@school.test")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrUnknownPrincipal)
}

func TestSessionOmitsCredentialHash(t *testing.T) {
	p := auth.Principal{Kind: shared.KindStaff, ID: 2, Subject: "a@school.test", CredentialHash: "secret", Roles: []shared.Role{shared.RoleTeacher}}
	sess := p.Session()
	assert.Equal(t, &shared.Session{PrincipalID: 2, Kind: shared.KindStaff, Subject: "a@school.test", Roles: []shared.Role{shared.RoleTeacher}}, sess)

	sess.Roles[0] = shared.RoleAdmin
	assert.Equal(t, shared.RoleTeacher, p.Roles[0])
}
