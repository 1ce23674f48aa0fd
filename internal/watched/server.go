package watched

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/store"
)

type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	MovieID    int       `json:"movieId"`
	Title      *string   `json:"title"`
	PosterPath *string   `json:"posterPath"`
	AddedAt    time.Time `json:"addedAt"`
}

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
	r.Get("/", s.handleList)
	r.Post("/", s.handleAdd)
	r.Delete("/{movieId}", s.handleRemove)
	return r
}
