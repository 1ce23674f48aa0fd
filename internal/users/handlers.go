package users

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"dramatracker-api/internal/auth"
	"dramatracker-api/internal/httpx"
	"dramatracker-api/internal/store"
)

// Profile is a user's public face: no email leakage beyond search results,
// which are restricted to authenticated callers anyway.
type Profile struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < 2 {
		httpx.WriteError(w, http.StatusBadRequest, "query 'q' required (min 2 characters)")
		return
	}
	pattern := "%" + q + "%"

	rows, err := s.db.Query(r.Context(), `
		SELECT id, email, name
		FROM users
		WHERE id <> $1
		  AND (email ILIKE $2 OR name ILIKE $2)
		ORDER BY email ASC
		LIMIT 20
	`, user.ID, pattern)
	if err != nil {
		log.Printf("users: search: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	results := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Name); err != nil {
			log.Printf("users: search scan: %v", err)
			httpx.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		log.Printf("users: search rows: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": results})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidUUID(id) {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	var userID string
	var name *string
	err := s.db.QueryRow(r.Context(), `
		SELECT id, name
		FROM users
		WHERE id = $1
	`, id).Scan(&userID, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("users: get user: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{"id": userID, "name": name},
	})
}
