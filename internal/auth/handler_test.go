package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/auth"
)

func newLoginRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _, _ := newLoginService(t)
	r := chi.NewRouter()
	r.Route("/api/auth", auth.NewHandler(nil, svc).MountRoutes)
	return r
}

func postLogin(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestLoginHandlerSuccess(t *testing.T) {
	res := postLogin(t, newLoginRouter(t), `{"email":"teacher@school.test","password":"secret1"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var body auth.LoginResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "teacher@school.test", body.Email)
	assert.NotEmpty(t, body.Token)
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	res := postLogin(t, newLoginRouter(t), `{"email":"teacher@school.test","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	body := decodeAPIError(t, res)
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Equal(t, "Invalid email or password", body.Message)
}

func TestLoginHandlerValidation(t *testing.T) {
	h := newLoginRouter(t)

	res := postLogin(t, h, `{"email":"not-an-email","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, decodeAPIError(t, res).Message, "Invalid email")

	res = postLogin(t, h, `{"email":"teacher@school.test"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, decodeAPIError(t, res).Message, "password cannot be empty")

	res = postLogin(t, h, `{`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Malformed request. Please check your request body.", decodeAPIError(t, res).Message)
}
