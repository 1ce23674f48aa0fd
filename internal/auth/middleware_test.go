package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	s, mock := setupMockServer(t)

	var seen User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		seen = u
		w.WriteHeader(http.StatusOK)
	})
	protected := s.RequireAuth(next)

	t.Run("Valid Token", func(t *testing.T) {
		token, err := s.signToken("user-1")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, email, name").
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}).
				AddRow("user-1", "alice@example.com", nil))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", seen.ID)
		assert.Equal(t, "alice@example.com", seen.Email)
	})

	t.Run("Missing Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Deleted Account", func(t *testing.T) {
		token, err := s.signToken("ghost")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, email, name").
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)

		// A valid token for a removed user is locked out immediately.
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserFromContext(req.Context())
	assert.False(t, ok)
}
