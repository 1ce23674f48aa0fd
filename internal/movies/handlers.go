package movies

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/cache"
	"dramatracker-api/internal/httpx"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.WriteError(w, http.StatusBadRequest, "query 'q' required")
		return
	}
	page := pageParam(r.URL.Query().Get("page"))

	key := cache.Key("tmdb", "search", strings.ToLower(q), strconv.Itoa(page))
	payload, err := cache.Through(r.Context(), s.cache, key, searchTTL, func(ctx context.Context) (SearchPage, error) {
		return s.catalog.Search(ctx, q, page)
	})
	if err != nil {
		writeUpstreamError(w, err, "search failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	key := cache.Key("tmdb", "movie", strconv.Itoa(id))
	payload, err := cache.Through(r.Context(), s.cache, key, movieTTL, func(ctx context.Context) (MovieDetail, error) {
		return s.catalog.GetMovie(ctx, id)
	})
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
			httpx.WriteError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeUpstreamError(w, err, "failed to fetch movie")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, payload)
}

// writeUpstreamError passes the provider's status through so the client can
// decide whether to retry; anything else is an internal failure.
func writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		httpx.WriteError(w, ue.Status, "TMDB request failed")
		return
	}
	log.Printf("movies: %s: %v", fallback, err)
	httpx.WriteError(w, http.StatusBadGateway, fallback)
}

func pageParam(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
