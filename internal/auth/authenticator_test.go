package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/platform/httpx"
	"github.com/gradebook/gradebook/internal/shared"
	_ "github.com/gradebook/gradebook/testing"
)

type outcomeLog []string

func (o *outcomeLog) RecordAuthOutcome(outcome string) { *o = append(*o, outcome) }

type sink struct {
	called  bool
	session *shared.Session
}

func (s *sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.called = true
	s.session = shared.SessionFromContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type fixedResolver struct {
	principal auth.Principal
	err       error
	calls     int
}

func (f *fixedResolver) ResolveCredential(context.Context, string) (auth.Principal, error) {
	f.calls++
	return f.principal, f.err
}

type authFixture struct {
	clock    *fakeClock
	codec    *auth.TokenCodec
	staff    *memDirectory
	learners *memDirectory
	outcomes *outcomeLog
	mw       func(http.Handler) http.Handler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		clock: newClock(t0),
		staff: newMemDirectory(
			auth.DirectoryEntry{ID: 1, Email: "teacher@school.test", Role: shared.RoleTeacher},
		),
		learners: newMemDirectory(
			auth.DirectoryEntry{ID: 1, Email: "kid@school.test"},
		),
		outcomes: &outcomeLog{},
	}
	f.codec = newCodec(t, f.clock)
	resolver := auth.NewIdentityResolver(f.staff, f.learners)
	f.mw = auth.NewAuthenticator(f.codec, resolver, nil, f.outcomes).Middleware
	return f
}

func (f *authFixture) serve(t *testing.T, header string) (*httptest.ResponseRecorder, *sink) {
	t.Helper()
	return serveWith(context.Background(), f.mw, header)
}

func serveWith(ctx context.Context, mw func(http.Handler) http.Handler, header string) (*httptest.ResponseRecorder, *sink) {
	next := &sink{}
	req := httptest.NewRequest(http.MethodGet, "/api/grades", nil).WithContext(ctx)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	res := httptest.NewRecorder()
	mw(next).ServeHTTP(res, req)
	return res, next
}

func decodeAPIError(t *testing.T, res *httptest.ResponseRecorder) httpx.APIError {
	t.Helper()
	var body httpx.APIError
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body
}

func TestAuthenticatorNoHeaderIsAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	res, next := f.serve(t, "")

	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.True(t, next.called)
	assert.Nil(t, next.session)
	assert.Equal(t, outcomeLog{auth.OutcomeAnonymous}, *f.outcomes)
}

func TestAuthenticatorNonBearerIsAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	for _, header := range []string{"Basic dXNlcjpwYXNz", "bearer abc", "Bearer"} {
		_, next := f.serve(t, header)
		assert.True(t, next.called, header)
		assert.Nil(t, next.session, header)
	}
}

func TestAuthenticatorMalformedTokenIsAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	res, next := f.serve(t, "Bearer not-a-token")

	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.True(t, next.called)
	assert.Nil(t, next.session)
	assert.Equal(t, outcomeLog{auth.OutcomeMalformed}, *f.outcomes)
}

func TestAuthenticatorPublishesStaffSession(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue("teacher@school.test")
	require.NoError(t, err)

	_, next := f.serve(t, "Bearer "+token)
	require.True(t, next.called)
	require.NotNil(t, next.session)
	assert.Equal(t, shared.KindStaff, next.session.Kind)
	assert.Equal(t, "teacher@school.test", next.session.Subject)
	assert.True(t, next.session.HasRole(shared.RoleTeacher))
	assert.Equal(t, outcomeLog{auth.OutcomeAuthenticated}, *f.outcomes)
}

func TestAuthenticatorPublishesLearnerSession(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue("kid@school.test")
	require.NoError(t, err)

	_, next := f.serve(t, "Bearer "+token)
	require.NotNil(t, next.session)
	assert.Equal(t, shared.KindLearner, next.session.Kind)
	assert.Equal(t, []shared.Role{shared.RoleStudent}, next.session.Roles)
}

func TestAuthenticatorExpiredTokenStopsRequest(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue("teacher@school.test")
	require.NoError(t, err)

	f.clock.Set(secondsAfter(t0, 601))
	res, next := f.serve(t, "Bearer "+token)

	assert.False(t, next.called)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	body := decodeAPIError(t, res)
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Contains(t, body.Message, "expired")
	assert.Equal(t, outcomeLog{auth.OutcomeExpired}, *f.outcomes)
}

func TestAuthenticatorAcceptsTokenAtExpiry(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue("teacher@school.test")
	require.NoError(t, err)

	f.clock.Set(secondsAfter(t0, 600))
	_, next := f.serve(t, "Bearer "+token)
	require.NotNil(t, next.session)
}

func TestAuthenticatorStaleCredential(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue("teacher@school.test")
	require.NoError(t, err)
	delete(f.staff.entries, "teacher@school.test")

	res, next := f.serve(t, "Bearer "+token)
	assert.False(t, next.called)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, auth.ErrStaleCredential.Message, decodeAPIError(t, res).Message)
	assert.Equal(t, outcomeLog{auth.OutcomeStale}, *f.outcomes)
}

func TestAuthenticatorDirectoryFailure(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue("teacher@school.test")
	require.NoError(t, err)
	f.staff.err = errors.New("db down")

	res, next := f.serve(t, "Bearer "+token)
	assert.False(t, next.called)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestAuthenticatorKeepsExistingSession(t *testing.T) {
	codec := newCodec(t, newClock(t0))
	resolver := &fixedResolver{}
	mw := auth.NewAuthenticator(codec, resolver, nil, nil).Middleware
	token, err := codec.Issue("teacher@school.test")
	require.NoError(t, err)

	existing := &shared.Session{PrincipalID: 9, Kind: shared.KindStaff, Subject: "other@school.test", Roles: []shared.Role{shared.RoleAdmin}}
	_, next := serveWith(shared.ContextWithSession(context.Background(), existing), mw, "Bearer "+token)

	assert.True(t, next.called)
	assert.Same(t, existing, next.session)
	assert.Zero(t, resolver.calls)
}

func TestAuthenticatorSubjectMismatchIsAnonymous(t *testing.T) {
	codec := newCodec(t, newClock(t0))
	resolver := &fixedResolver{principal: auth.Principal{
		Kind: shared.KindStaff, ID: 1, Subject: "someone-else@school.test", Roles: []shared.Role{shared.RoleAdmin},
	}}
	outcomes := &outcomeLog{}
	mw := auth.NewAuthenticator(codec, resolver, nil, outcomes).Middleware
	token, err := codec.Issue("teacher@school.test")
	require.NoError(t, err)

	_, next := serveWith(context.Background(), mw, "Bearer "+token)
	assert.True(t, next.called)
	assert.Nil(t, next.session)
	assert.Equal(t, outcomeLog{auth.OutcomeInvalid}, *outcomes)
}
