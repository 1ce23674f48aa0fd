package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"dramatracker-api/internal/httpx"
	"dramatracker-api/internal/store"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(creds.Email))
	if email == "" || creds.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if len(creds.Password) < 6 {
		httpx.WriteError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("auth: hash password: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var name *string
	if n := strings.TrimSpace(creds.Name); n != "" {
		name = &n
	}

	var user User
	err = s.db.QueryRow(r.Context(), `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, name
	`, email, string(hash), name).Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		if store.IsUniqueViolation(err) {
			httpx.WriteError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Printf("auth: create user: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		log.Printf("auth: sign token: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(creds.Email))
	if email == "" || creds.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user User
	var passwordHash string
	err := s.db.QueryRow(r.Context(), `
		SELECT id, email, name, password_hash
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		log.Printf("auth: find user: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(creds.Password)); err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		log.Printf("auth: sign token: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}
