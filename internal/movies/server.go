package movies

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/cache"
)

const (
	searchTTL = 10 * time.Minute
	movieTTL  = time.Hour
)

// Catalog is the upstream movie metadata source. Satisfied by *TMDBClient.
type Catalog interface {
	Search(ctx context.Context, query string, page int) (SearchPage, error)
	GetMovie(ctx context.Context, id int) (MovieDetail, error)
}

type Server struct {
	catalog Catalog
	cache   *cache.Cache
}

func NewServer(catalog Catalog, c *cache.Cache) *Server {
	return &Server{catalog: catalog, cache: c}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/search", s.handleSearch)
	r.Get("/{id}", s.handleGetMovie)
	return r
}
