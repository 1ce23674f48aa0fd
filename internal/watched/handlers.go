package watched

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"dramatracker-api/internal/auth"
	"dramatracker-api/internal/httpx"
	"dramatracker-api/internal/store"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rows, err := s.db.Query(r.Context(), `
		SELECT id, user_id, movie_id, title, poster_path, added_at
		FROM watched_entries
		WHERE user_id = $1
		ORDER BY added_at DESC
	`, user.ID)
	if err != nil {
		log.Printf("watched: list: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MovieID, &e.Title, &e.PosterPath, &e.AddedAt); err != nil {
			log.Printf("watched: list scan: %v", err)
			httpx.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		log.Printf("watched: list rows: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"watched": entries})
}

// handleAdd marks a movie watched. Adding a movie that is already on the list
// returns the existing entry, so the client can treat the call as idempotent.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		MovieID    *int    `json:"movieId"`
		Title      *string `json:"title"`
		PosterPath *string `json:"posterPath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MovieID == nil {
		httpx.WriteError(w, http.StatusBadRequest, "valid movieId required")
		return
	}

	var e Entry
	err := s.db.QueryRow(r.Context(), `
		INSERT INTO watched_entries (user_id, movie_id, title, poster_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, movie_id, title, poster_path, added_at
	`, user.ID, *body.MovieID, body.Title, body.PosterPath).Scan(
		&e.ID, &e.UserID, &e.MovieID, &e.Title, &e.PosterPath, &e.AddedAt,
	)
	if store.IsUniqueViolation(err) {
		err = s.db.QueryRow(r.Context(), `
			SELECT id, user_id, movie_id, title, poster_path, added_at
			FROM watched_entries
			WHERE user_id = $1 AND movie_id = $2
		`, user.ID, *body.MovieID).Scan(
			&e.ID, &e.UserID, &e.MovieID, &e.Title, &e.PosterPath, &e.AddedAt,
		)
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("watched: add: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// Entry removed between the conflicting insert and the re-read.
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	movieID, err := strconv.Atoi(chi.URLParam(r, "movieId"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		DELETE FROM watched_entries
		WHERE user_id = $1 AND movie_id = $2
	`, user.ID, movieID); err != nil {
		log.Printf("watched: remove: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
