package auth

import (
	"time"

	"github.com/go-chi/chi/v5"

	"dramatracker-api/internal/store"
)

// User is the authenticated identity handed to downstream handlers. Name is
// nil until the user sets one.
type User struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type Server struct {
	db        store.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewServer(db store.DB, jwtSecret []byte) *Server {
	return &Server{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  7 * 24 * time.Hour,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	return r
}
