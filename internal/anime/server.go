package anime

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/cache"
	"dramatracker-api/internal/httpx"
)

const cacheTTL = 30 * time.Minute

type Provider interface {
	Search(ctx context.Context, query string, page int) (Page, error)
	Trending(ctx context.Context, page int) (Page, error)
}

type Server struct {
	provider Provider
	cache    *cache.Cache
}

func NewServer(p Provider, c *cache.Cache) *Server {
	return &Server{provider: p, cache: c}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/search", s.handleSearch)
	r.Get("/trending", s.handleTrending)
	return r
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.WriteError(w, http.StatusBadRequest, "query 'q' required")
		return
	}
	page := pageParam(r.URL.Query().Get("page"))

	key := cache.Key("aniwatch", "search", strings.ToLower(q), strconv.Itoa(page))
	payload, err := cache.Through(r.Context(), s.cache, key, cacheTTL, func(ctx context.Context) (Page, error) {
		return s.provider.Search(ctx, q, page)
	})
	if err != nil {
		writeUpstreamError(w, err, "search failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r.URL.Query().Get("page"))

	key := cache.Key("aniwatch", "trending", strconv.Itoa(page))
	payload, err := cache.Through(r.Context(), s.cache, key, cacheTTL, func(ctx context.Context) (Page, error) {
		return s.provider.Trending(ctx, page)
	})
	if err != nil {
		writeUpstreamError(w, err, "failed to load trending")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, payload)
}

func writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		httpx.WriteError(w, ue.Status, "anime API request failed")
		return
	}
	log.Printf("anime: %s: %v", fallback, err)
	httpx.WriteError(w, http.StatusBadGateway, fallback)
}

func pageParam(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
