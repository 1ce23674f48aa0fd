package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"dramatracker-api/internal/anime"
	"dramatracker-api/internal/auth"
	"dramatracker-api/internal/cache"
	"dramatracker-api/internal/config"
	"dramatracker-api/internal/httpx"
	"dramatracker-api/internal/movies"
	"dramatracker-api/internal/playlist"
	"dramatracker-api/internal/recommend"
	"dramatracker-api/internal/store"
	"dramatracker-api/internal/users"
	"dramatracker-api/internal/watched"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("dramatracker: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("dramatracker: failed to connect to DB: %v", err)
	}
	defer pool.Close()

	if err := store.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("dramatracker: migrate error: %v", err)
	}

	// The cache is constructed once here and injected everywhere; when no
	// REDIS_URL is configured it degrades to a pass-through.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("dramatracker: invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}
	responseCache := cache.New(rdb)

	authSrv := auth.NewServer(pool, cfg.JWTSecret)
	tmdb := movies.NewTMDBClient(cfg.TMDBAccessToken, cfg.TMDBBaseURL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware(cfg.RateLimitRPS))
	r.Use(bodySizeLimitMiddleware(cfg.BodyLimitBytes))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Mount("/api/auth", authSrv.Router())
	r.Mount("/api/movies", movies.NewServer(tmdb, responseCache).Router())
	r.Mount("/api/anime", anime.NewServer(anime.NewClient(cfg.AnimeAPIURL), responseCache).Router())
	r.Mount("/api/users", users.NewServer(pool).Router(authSrv.RequireAuth))
	r.Mount("/api/playlists", playlist.NewServer(pool).Router(authSrv.RequireAuth))
	r.Mount("/api/watched", watched.NewServer(pool).Router(authSrv.RequireAuth))
	r.Mount("/api/recommendations", recommend.NewServer(pool).Router(authSrv.RequireAuth))

	log.Printf("dramatracker-api listening on :%s", cfg.Port)
	log.Printf("dramatracker-api: redis cache %s", enabledOrDisabled(responseCache.Enabled()))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("dramatracker-api: %v", err)
	}
}

func enabledOrDisabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled (set REDIS_URL to enable)"
}
