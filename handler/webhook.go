package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sourcegraph/conc/pool"
)

// Webhook accepts updates over HTTP and handles each one on a bounded pool,
// so the response goes out before the update is processed.
type Webhook struct {
	handler UpdateHandler
	base    context.Context
	pool    *pool.Pool
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewWebhook starts a pool of at most workers goroutines. Update contexts
// derive from base.
func NewWebhook(base context.Context, h UpdateHandler, workers int, log *slog.Logger) *Webhook {
	if log == nil {
		log = slog.Default()
	}
	return &Webhook{
		handler: h,
		base:    base,
		pool:    pool.New().WithMaxGoroutines(workers),
		log:     log.With("component", "webhook"),
	}
}

func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var u tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateSize)).Decode(&u); err != nil {
		// A non-2xx answer makes the API redeliver the same payload.
		wh.log.Warn("dropping undecodable update", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	wh.mu.RLock()
	defer wh.mu.RUnlock()
	if wh.closed {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	wh.pool.Go(func() {
		ctx, cancel := context.WithTimeout(wh.base, updateTimeout)
		defer cancel()
		wh.handler.HandleUpdate(ctx, u)
	})
	w.WriteHeader(http.StatusOK)
}

// Close stops accepting updates and waits for the ones in flight.
func (wh *Webhook) Close() {
	wh.mu.Lock()
	if wh.closed {
		wh.mu.Unlock()
		return
	}
	wh.closed = true
	wh.mu.Unlock()
	wh.pool.Wait()
}
