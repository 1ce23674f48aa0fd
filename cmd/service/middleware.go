package main

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"dramatracker-api/internal/httpx"
)

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (len(allowed) == 0 || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if strings.ToUpper(r.Method) == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bodySizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > 0 && r.ContentLength > maxBytes {
				httpx.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type rateInfo struct {
	count   int
	resetAt time.Time
}

var (
	rateMu   sync.Mutex
	rateData = map[string]*rateInfo{}
)

func rateLimitMiddleware(rps int) func(http.Handler) http.Handler {
	window := time.Second

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			now := time.Now()

			rateMu.Lock()
			ri, ok := rateData[ip]
			if !ok || now.After(ri.resetAt) {
				ri = &rateInfo{count: 0, resetAt: now.Add(window)}
				rateData[ip] = ri
			}
			ri.count++
			count := ri.count
			reset := ri.resetAt
			rateMu.Unlock()

			if count > rps {
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Sub(now).Seconds())))
				httpx.WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
