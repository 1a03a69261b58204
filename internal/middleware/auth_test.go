package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"identity-api/internal/model"
	"identity-api/internal/token"
)

func newMiddlewareEngine(accessTTL time.Duration) *token.Engine {
	return token.NewEngine("middleware-test-secret", "identity-api", "identity-api-clients", accessTTL, 10*time.Minute)
}

func issueToken(t *testing.T, engine *token.Engine, role model.Role) string {
	t.Helper()

	signed, _, err := engine.IssueAccessToken(model.User{
		ID:    "u1",
		Email: "jane@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	return signed
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	engine := newMiddlewareEngine(15 * time.Minute)
	mw := NewAuthMiddleware(engine)

	var seenClaims *model.AccessClaims
	var seenBearer string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenClaims, _ = ClaimsFromContext(r.Context())
		seenBearer = BearerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes claims and bearer through", func(t *testing.T) {
		signed := issueToken(t, engine, model.RoleUser)

		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seenClaims)
		require.Equal(t, "u1", seenClaims.UserID)
		require.Equal(t, signed, seenBearer)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := issueToken(t, newMiddlewareEngine(-time.Minute), model.RoleUser)

		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	engine := newMiddlewareEngine(15 * time.Minute)
	mw := NewAuthMiddleware(engine)

	protected := mw.RequireAuth(mw.RequireRoles(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, engine, model.RoleAdmin))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forbidden role", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, engine, model.RoleUser))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no claims at all", func(t *testing.T) {
		bare := mw.RequireRoles(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/users", nil)
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
