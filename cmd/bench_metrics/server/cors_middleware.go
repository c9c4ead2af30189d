package server

import (
	"net/http"

	"github.com/xlml/bench-metrics/internal/config"
)

const defaultCORSOrigin = "*"

func CorsMiddleware(next http.Handler, cfg *config.Config) http.Handler {
	origin := defaultCORSOrigin
	if cfg != nil && cfg.Service != nil && cfg.Service.CORSOrigin != "" {
		origin = cfg.Service.CORSOrigin
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
