package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-server/internal/shared/model"
	"qa-server/pkg/logging"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"bearer", "Bearer abc", "abc", true},
		{"token scheme", "Token abc", "abc", true},
		{"lowercase", "bearer abc", "abc", true},
		{"basic", "Basic abc", "", false},
		{"no token", "Bearer", "", false},
		{"blank token", "Bearer   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := extractToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func newMiddlewareFixture(t *testing.T) (*Authenticator, *model.User, http.Handler) {
	t.Helper()
	tokens := newMemTokens()
	user := &model.User{ID: "usr-1", Username: "alice"}
	users := memUsers{user.ID: user}
	a := NewAuthenticator(Config{JWTSecret: "test-secret"}, tokens, users)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := GetAuthUser(r.Context()); u != nil {
			w.Write([]byte(u.ID))
			return
		}
		w.Write([]byte("anonymous"))
	})
	return a, user, Middleware(a, logging.Discard())(next)
}

func TestMiddleware_Anonymous(t *testing.T) {
	_, _, h := newMiddlewareFixture(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/question", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestMiddleware_ValidToken(t *testing.T) {
	a, user, h := newMiddlewareFixture(t)
	token, err := a.Issue(context.Background(), user)
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "Token"} {
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req.Header.Set("Authorization", scheme+" "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, scheme)
		assert.Equal(t, user.ID, rec.Body.String(), scheme)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	_, _, h := newMiddlewareFixture(t)

	for _, header := range []string{"Bearer not-a-jwt", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/question", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestMiddleware_RevokedToken(t *testing.T) {
	a, user, h := newMiddlewareFixture(t)
	ctx := context.Background()
	token, err := a.Issue(ctx, user)
	require.NoError(t, err)

	claims, err := ParseToken(a.cfg, token)
	require.NoError(t, err)
	require.NoError(t, a.Revoke(ctx, claims.ID))

	req := httptest.NewRequest(http.MethodGet, "/question", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/user/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/user/logout", nil)
	req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{ID: "usr-1"}))
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
