package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Houeta/deal-watch/internal/bot"
	"github.com/Houeta/deal-watch/internal/config"
	"github.com/Houeta/deal-watch/internal/delivery"
	"github.com/Houeta/deal-watch/internal/delivery/stream"
	"github.com/Houeta/deal-watch/internal/lib/keylock"
	"github.com/Houeta/deal-watch/internal/parser"
	"github.com/Houeta/deal-watch/internal/repository"
	"github.com/Houeta/deal-watch/internal/repository/file"
	"github.com/Houeta/deal-watch/internal/repository/sqlite"
	"github.com/Houeta/deal-watch/internal/services/checker"
	"github.com/Houeta/deal-watch/internal/services/notifier"
	"github.com/Houeta/deal-watch/internal/services/subscriptions"
)

// app holds the wired components of one process.
type app struct {
	log      *slog.Logger
	interval time.Duration
	storage  repository.Storage
	checker  *checker.Checker
	bot      *bot.Bot // nil when no Telegram token is configured
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	storage, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	a := &app{log: log, interval: cfg.Cycle.Interval, storage: storage, closers: []func() error{storage.Close}}

	locks := &keylock.Locker{}
	subs := subscriptions.NewService(log, storage, storage, storage, locks)

	if cfg.Tg.Token != "" {
		if a.bot, err = bot.NewBot(log, cfg.Tg.Token, cfg.Tg.Timeout, subs, cfg.BaseURL); err != nil {
			a.Close()
			return nil, err
		}
	}

	var pusher delivery.Pusher
	switch cfg.Notify {
	case config.NotifyRedis:
		pub, pubErr := stream.NewPublisher(log, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Stream, cfg.BaseURL)
		if pubErr != nil {
			a.Close()
			return nil, pubErr
		}
		a.closers = append(a.closers, pub.Close)
		if pingErr := pub.Ping(ctx); pingErr != nil {
			a.Close()
			return nil, fmt.Errorf("redis is unreachable at %s: %w", cfg.Redis.Addr, pingErr)
		}
		pusher = pub
	default:
		if a.bot == nil {
			a.Close()
			return nil, config.ErrEmptyToken
		}
		pusher = a.bot
	}

	a.checker = checker.NewChecker(log, checker.Deps{
		Fetcher:  parser.NewFetcher(log, cfg.BaseURL, cfg.Cycle.HTTPTimeout),
		Parser:   parser.NewParser(log),
		Registry: storage,
		Store:    storage,
		Ledger:   storage,
		Selector: notifier.NewFilter(log, storage, storage, storage),
		Pusher:   pusher,
		Locks:    locks,
	}, checker.Options{
		MaxPages:  cfg.Cycle.MaxPages,
		Retention: cfg.Cycle.LedgerRetention,
	})

	return a, nil
}

func openStorage(ctx context.Context, cfg config.Storage, log *slog.Logger) (repository.Storage, error) {
	switch cfg.Backend {
	case config.StorageFile:
		repo, err := file.NewRepository(log, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return repo, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil { //nolint:mnd // rwxr-xr-x
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		repo, err := sqlite.NewRepository(ctx, log, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return repo, nil
	}
}

// serve runs the chat front-end and a cycle per interval until ctx is canceled.
func (a *app) serve(ctx context.Context) error {
	if a.bot != nil {
		// Start the bot in a goroutine to allow serve to keep the cycle loop.
		go a.bot.Start()
		defer a.bot.Stop()
	}

	a.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "interval", a.interval)
	defer a.log.Info("Application stopped gracefully.")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.runCycle(ctx)

		select {
		case <-ctx.Done():
			a.log.InfoContext(ctx, "Shutdown signal received. Stopping application...")
			return nil
		case <-ticker.C:
		}
	}
}

func (a *app) runCycle(ctx context.Context) {
	report, err := a.checker.RunCycle(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "Cycle finished with errors", "error", err)
	}
	if report != nil {
		a.log.InfoContext(ctx, "Cycle report",
			"terms", report.Terms, "failed", report.Failed, "pushed", report.Pushed)
	}
}

// Close releases every opened resource.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
