package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"dramatracker-api/internal/httpx"
)

type ctxUserKey struct{}

// RequireAuth verifies the bearer token and loads the user row fresh on every
// request, so a deleted account is locked out immediately.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		userID, ok := s.verifyToken(parts[1])
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		var user User
		err := s.db.QueryRow(r.Context(), `
			SELECT id, email, name
			FROM users
			WHERE id = $1
		`, userID).Scan(&user.ID, &user.Email, &user.Name)
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusUnauthorized, "user not found")
			return
		}
		if err != nil {
			log.Printf("auth: load user: %v", err)
			httpx.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the identity stored by RequireAuth.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(User)
	return u, ok && u.ID != ""
}

// WithUser returns a context carrying user, for tests that bypass the
// middleware.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, user)
}
