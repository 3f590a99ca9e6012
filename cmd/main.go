package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scorebook/internal/adapters/http/api"
	app "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/config"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "scorebook:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("scorebook")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// A catalog that fails validation, including an overlapping
	// classification, stops startup.
	cat, err := config.LoadCatalog(ctx, cfg.CatalogFile)
	if err != nil {
		log.Error(ctx, "event catalog rejected", logger.String("catalog_file", cfg.CatalogFile), logger.Error(err))
		return err
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithCatalog(cat),
		app.WithRoster(cfg.Roster),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxMatches(cfg.MaxMatches),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := newHTTPServer(cfg.Addr, newRouter(ctx, cfg, svc, log))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gCtx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info(gCtx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
			return err
		}
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gCtx, metrics.RefreshInterval())
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// newRouter wires the API, docs and middleware for svc.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	return api.NewServer(svc, svc,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithLogger(log.Named("http")),
	).Handler(ctx)
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater updates system metrics every interval until ctx
// is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
