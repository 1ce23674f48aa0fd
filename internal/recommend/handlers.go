package recommend

import (
	"context"
	"encoding/json"
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

func (s *Server) handleReceived(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recs, err := s.listRecommendations(r.Context(), "to_user_id", user.ID)
	if err != nil {
		log.Printf("recommend: received: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.FromUserID)
	}
	profiles, err := s.profilesByID(r.Context(), ids)
	if err != nil {
		log.Printf("recommend: received hydrate: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	for _, rec := range recs {
		if p, ok := profiles[rec.FromUserID]; ok {
			cp := p
			rec.FromUser = &cp
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleSent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recs, err := s.listRecommendations(r.Context(), "from_user_id", user.ID)
	if err != nil {
		log.Printf("recommend: sent: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ToUserID)
	}
	profiles, err := s.profilesByID(r.Context(), ids)
	if err != nil {
		log.Printf("recommend: sent hydrate: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	for _, rec := range recs {
		if p, ok := profiles[rec.ToUserID]; ok {
			cp := p
			rec.ToUser = &cp
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		ToUserID   string  `json:"toUserId"`
		MovieID    *int    `json:"movieId"`
		Title      *string `json:"title"`
		PosterPath *string `json:"posterPath"`
		Message    *string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MovieID == nil {
		httpx.WriteError(w, http.StatusBadRequest, "valid movieId required")
		return
	}
	body.ToUserID = strings.TrimSpace(body.ToUserID)
	if body.ToUserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "toUserId is required")
		return
	}
	if !store.ValidUUID(body.ToUserID) {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if body.ToUserID == user.ID {
		httpx.WriteError(w, http.StatusBadRequest, "cannot recommend to yourself")
		return
	}

	var target Profile
	err := s.db.QueryRow(r.Context(), `
		SELECT id, email, name FROM users WHERE id = $1
	`, body.ToUserID).Scan(&target.ID, &target.Email, &target.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("recommend: find target: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	var rec Recommendation
	err = s.db.QueryRow(r.Context(), `
		INSERT INTO recommendations (from_user_id, to_user_id, movie_id, title, poster_path, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, from_user_id, to_user_id, movie_id, title, poster_path, message, read_at, created_at
	`, user.ID, target.ID, *body.MovieID, body.Title, body.PosterPath, body.Message).Scan(
		&rec.ID, &rec.FromUserID, &rec.ToUserID, &rec.MovieID,
		&rec.Title, &rec.PosterPath, &rec.Message, &rec.ReadAt, &rec.CreatedAt,
	)
	if err != nil {
		log.Printf("recommend: create: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	rec.ToUser = &target

	httpx.WriteJSON(w, http.StatusCreated, rec)
}

// handleMarkRead stamps read_at once. COALESCE keeps the first timestamp, so
// a repeat call succeeds without moving it.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if !store.ValidUUID(id) {
		httpx.WriteError(w, http.StatusNotFound, "recommendation not found")
		return
	}

	tag, err := s.db.Exec(r.Context(), `
		UPDATE recommendations
		SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND to_user_id = $2
	`, id, user.ID)
	if err != nil {
		log.Printf("recommend: mark read: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		httpx.WriteError(w, http.StatusNotFound, "recommendation not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) listRecommendations(ctx context.Context, column, userID string) ([]*Recommendation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, from_user_id, to_user_id, movie_id, title, poster_path, message, read_at, created_at
		FROM recommendations
		WHERE `+column+` = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*Recommendation{}
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(
			&rec.ID, &rec.FromUserID, &rec.ToUserID, &rec.MovieID,
			&rec.Title, &rec.PosterPath, &rec.Message, &rec.ReadAt, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// profilesByID resolves a set of user ids with one batched query, avoiding a
// per-recommendation lookup.
func (s *Server) profilesByID(ctx context.Context, ids []string) (map[string]Profile, error) {
	profiles := map[string]Profile{}
	if len(ids) == 0 {
		return profiles, nil
	}

	distinct := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, email, name FROM users WHERE id = ANY($1)
	`, distinct)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Name); err != nil {
			return nil, err
		}
		profiles[p.ID] = p
	}
	return profiles, rows.Err()
}
