package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

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

	views, err := s.store.ListForUser(r.Context(), user.ID)
	if err != nil {
		log.Printf("playlist: list: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"playlists": views})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 200 {
		httpx.WriteError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}

	view, err := s.store.Create(r.Context(), user.ID, body.Name)
	if err != nil {
		log.Printf("playlist: create: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if !store.ValidUUID(playlistID) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}

	allowed, err := s.store.CanAccess(r.Context(), user.ID, playlistID)
	if err != nil {
		log.Printf("playlist: access check: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !allowed {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}

	view, err := s.store.GetView(r.Context(), playlistID)
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist: get view: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if !store.ValidUUID(playlistID) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.UserID = strings.TrimSpace(body.UserID)
	if body.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "userId is required")
		return
	}

	view, err := s.store.AddMember(r.Context(), playlistID, user.ID, body.UserID)
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if errors.Is(err, ErrConflict) {
		httpx.WriteError(w, http.StatusConflict, "user already in playlist")
		return
	}
	if err != nil {
		log.Printf("playlist: add member: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if !store.ValidUUID(playlistID) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
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

	entry, err := s.store.AddEntry(r.Context(), playlistID, user.ID, *body.MovieID, body.Title, body.PosterPath)
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if errors.Is(err, ErrConflict) {
		httpx.WriteError(w, http.StatusConflict, "movie already in playlist")
		return
	}
	if err != nil {
		log.Printf("playlist: add movie: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemoveMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if !store.ValidUUID(playlistID) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}

	movieID, err := strconv.Atoi(chi.URLParam(r, "movieId"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	err = s.store.RemoveEntry(r.Context(), playlistID, user.ID, movieID)
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist: remove movie: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
