package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/store"
)

type Server struct {
	db store.DB
}

func NewServer(db store.DB) *Server {
	return &Server{db: db}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/search", s.handleSearch)
	r.Get("/me", s.handleMe)
	r.Get("/{id}", s.handleGetUser)
	return r
}
