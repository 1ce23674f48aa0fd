package playlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/store"
)

type Server struct {
	store *Store
}

func NewServer(db store.DB) *Server {
	return &Server{store: NewStore(db)}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)
	r.Get("/{id}", s.handleGet)
	r.Post("/{id}/members", s.handleAddMember)
	r.Post("/{id}/movies", s.handleAddMovie)
	r.Delete("/{id}/movies/{movieId}", s.handleRemoveMovie)

	return r
}
