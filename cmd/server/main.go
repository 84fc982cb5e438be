package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"topic_bot/internal/bot"
	"topic_bot/internal/catalog"
	"topic_bot/internal/config"
	"topic_bot/internal/fetcher"
	"topic_bot/internal/scheduler"
	"topic_bot/internal/seed"
	"topic_bot/internal/storage"
	"topic_bot/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		_, _ = os.Stderr.WriteString(config.Usage())
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := dataDir(cfg.DatabaseURL); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "path", cfg.DatabaseURL, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	feeds := fetcher.New(http.DefaultClient)

	feedImported, err := seedCatalog(ctx, cfg, store, feeds, log)
	if err != nil {
		log.Error("seed topics", "error", err)
		os.Exit(1)
	}

	svc := catalog.New(store, log)

	srv, err := web.NewServer(svc, log)
	if err != nil {
		log.Error("create web server", "error", err)
		os.Exit(1)
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	if cfg.BotEnabled() {
		b, err := bot.New(cfg.TelegramBotToken, svc, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("starting bot")
			b.Run(ctx)
			log.Info("bot stopped")
		}()
	}

	if cfg.FeedSyncEnabled() {
		sched := scheduler.New(feeds, svc, cfg.TopicFeedURL, cfg.TopicFeedInterval, log)
		if feedImported {
			sched.SkipInitialSync()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error("http server", "error", err)
		}
		cancel()
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown http server", "error", err)
	}

	wg.Wait()
	log.Info("server stopped")
}

// seedCatalog fills an empty catalog with the seed file (or built-in defaults)
// plus any topics published by the configured feed. It reports whether the
// feed was fetched.
func seedCatalog(ctx context.Context, cfg *config.Config, store storage.Storage, feeds *fetcher.Fetcher, log *slog.Logger) (bool, error) {
	topics, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return false, err
	}

	var fetched bool
	if cfg.TopicFeedURL != "" {
		n, err := store.CountTopics(ctx)
		if err != nil {
			return false, err
		}
		if n == 0 {
			extra, err := feeds.FetchTopics(ctx, cfg.TopicFeedURL)
			if err != nil {
				log.Warn("fetch seed feed", "url", cfg.TopicFeedURL, "error", err)
			} else {
				topics = seed.Merge(topics, extra)
				fetched = true
			}
		}
	}

	return fetched, seed.Run(ctx, store, topics, log)
}

// dataDir returns the directory a file-backed database lives in, or "" when
// none needs to be created.
func dataDir(dsn string) string {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return ""
	}
	path, _, _ := strings.Cut(dsn, "?")
	if dir := filepath.Dir(path); dir != "." {
		return dir
	}
	return ""
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
