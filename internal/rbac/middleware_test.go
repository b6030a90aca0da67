package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/platform/httpx"
	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

func gated(gate rbac.Gate, sess *shared.Session) *httptest.ResponseRecorder {
	h := rbac.Middleware{}.Require(gate)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestRequireAnonymousIs401(t *testing.T) {
	res := gated(rbac.StaffOnly, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	var body httpx.APIError
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Contains(t, body.Message, "Full authentication is required")
}

func TestRequireWrongRoleIs403(t *testing.T) {
	res := gated(rbac.StaffOnly, learner(1))
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAllowed(t *testing.T) {
	assert.Equal(t, http.StatusOK, gated(rbac.StaffOnly, staff(1, shared.RoleTeacher)).Code)
	assert.Equal(t, http.StatusOK, gated(rbac.AdminOnly, staff(1, shared.RoleAdmin)).Code)
	assert.Equal(t, http.StatusOK, gated(rbac.SchoolWide, learner(2)).Code)
}
