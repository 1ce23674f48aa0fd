package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte

	TMDBAccessToken string
	TMDBBaseURL     string
	AnimeAPIURL     string

	// RedisURL is optional; when empty the response cache is disabled.
	RedisURL string

	CORSOrigins    []string
	RateLimitRPS   int
	BodyLimitBytes int64
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "3001"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		JWTSecret:       []byte(getenv("JWT_SECRET", "")),
		TMDBAccessToken: getenv("TMDB_ACCESS_TOKEN", ""),
		TMDBBaseURL:     getenv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		AnimeAPIURL:     getenv("ANIME_API_URL", "https://api.consumet.org/anime/gogoanime"),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		CORSOrigins:     splitList(getenv("FRONTEND_URL", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPS:    getenvInt("RATE_LIMIT_RPS", 100),
		BodyLimitBytes:  int64(getenvInt("BODY_LIMIT_BYTES", 256*1024)),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("config: DATABASE_URL is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	if cfg.TMDBAccessToken == "" {
		return Config{}, errors.New("config: TMDB_ACCESS_TOKEN is required")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
