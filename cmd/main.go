package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/mealmax/internal/adapters/http/api"
	"github.com/okian/mealmax/internal/adapters/http/swagger"
	app "github.com/okian/mealmax/internal/app"
	"github.com/okian/mealmax/internal/config"
	"github.com/okian/mealmax/pkg/logger"
	"github.com/okian/mealmax/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// System metrics are published by updateSystemMetrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run() error {
	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Join(errors.New("failed to load config"), err)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		return errors.Join(errors.New("failed to start service"), err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return errors.Join(errors.New("HTTP server failed"), err)
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newService maps the loaded configuration onto service options.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l),
		app.WithDBPath(cfg.DBPath),
		app.WithSchemaPath(cfg.SQLCreateTablePath),
		app.WithWorkerCount(cfg.HistoryWorkerCount),
		app.WithQueueSize(cfg.HistoryQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithRandomSeed(cfg.RandomSeed),
	)
}

// metricsOptions maps the metrics_* settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
		metrics.WithConstLabels(cfg.MetricsLabels),
	}
}

// newMux registers the docs and business routes.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxLimit(cfg.MaxLeaderboardLimit)).Register(mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
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

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
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

// updateServiceMetrics refreshes gauges that are only known to the service.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}

	if totalMeals, ok := stats["totalMeals"].(int); ok {
		metrics.UpdateMealsTotal(totalMeals)
	}

	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}

	if sessions, ok := stats["activeSessions"].(int); ok {
		metrics.UpdateActiveSessions(sessions)
	}
}
