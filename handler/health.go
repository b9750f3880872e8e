package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/RoyXiang/posterbot/cache"
)

// Pinger is implemented by session stores that live behind a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports 200 while the session store answers. Stores that
// are not Pingers are always healthy.
func HealthHandler(store cache.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				log.Warn("health check failed", "error", err)
				http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
