package recommend

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/store"
)

type Profile struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Recommendation is immutable once sent except for ReadAt, which moves from
// nil to a timestamp exactly once.
type Recommendation struct {
	ID         string     `json:"id"`
	FromUserID string     `json:"fromUserId"`
	ToUserID   string     `json:"toUserId"`
	MovieID    int        `json:"movieId"`
	Title      *string    `json:"title"`
	PosterPath *string    `json:"posterPath"`
	Message    *string    `json:"message"`
	ReadAt     *time.Time `json:"readAt"`
	CreatedAt  time.Time  `json:"createdAt"`

	FromUser *Profile `json:"fromUser,omitempty"`
	ToUser   *Profile `json:"toUser,omitempty"`
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
	r.Get("/received", s.handleReceived)
	r.Get("/sent", s.handleSent)
	r.Post("/", s.handleCreate)
	r.Patch("/{id}/read", s.handleMarkRead)
	return r
}
