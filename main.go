package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/RoyXiang/posterbot/cache"
	"github.com/RoyXiang/posterbot/common"
	"github.com/RoyXiang/posterbot/config"
	"github.com/RoyXiang/posterbot/grid"
	"github.com/RoyXiang/posterbot/handler"
	"github.com/RoyXiang/posterbot/search"
	"github.com/RoyXiang/posterbot/telegram"
	"github.com/RoyXiang/posterbot/view"
)

const limiterIdle = 10 * time.Minute

func newRouter(webhookPath string, webhook http.Handler, store cache.Store, log *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handler.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)

	r.Methods(http.MethodPost).Path(webhookPath).Handler(webhook)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(handler.HealthHandler(store, log))
	return r
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(os.Getenv("POSTERBOT_CONFIG"))
	if err != nil {
		return err
	}

	log, logCloser, err := common.NewLogger(common.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	store, err := cache.Open(cfg.CacheBackend, cfg.RedisURL, cfg.BadgerPath)
	if err != nil {
		return fmt.Errorf("failed to open session cache: %w", err)
	}
	defer store.Close()

	tg := telegram.NewClient(cfg.TelegramAPIURL, cfg.BotToken, cfg.TelegramRate, log)
	searcher := search.NewClient(cfg.SearchURL, cfg.SearchTimeout, log)

	viewCfg := view.DefaultConfig()
	viewCfg.Grid = grid.Config{PageSize: cfg.GridPageSize, Columns: cfg.GridColumns}
	bot := handler.NewBot(tg, searcher, store, handler.Options{
		View:          viewCfg,
		TTL:           cfg.CacheTTL,
		SearchTimeout: cfg.SearchTimeout,
		RequireYear:   cfg.RequireYear,
	}, log)
	webhook := handler.NewWebhook(context.Background(), bot, cfg.Workers, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(cfg.WebhookPath, webhook, store, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := tg.Limiter().Sweep(limiterIdle); n > 0 {
					log.Debug("forgot idle chat limiters", "count", n, "tracked", tg.Limiter().Len())
				}
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	log.Info("Server started", "addr", cfg.ListenAddr, "webhook_path", cfg.WebhookPath, "cache", cfg.CacheBackend)
	err = serve(srv, c, log)
	webhook.Close()
	return err
}

// serve runs srv until a signal arrives on stop or the listener fails.
func serve(srv *http.Server, stop <-chan os.Signal, log *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Error("server stopped", "error", err)
		return fmt.Errorf("server stopped: %w", err)
	case <-stop:
	}

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	return srv.Shutdown(ctx)
}
