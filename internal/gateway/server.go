// Package gateway is the long-running daemon surface: the cron scheduler
// that drives periodic sweeps, a REST control plane, the platform webhook
// receiver, and the Prometheus endpoint.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/internal/notify"
	"github.com/relwatch/relwatch/internal/store"
	"github.com/relwatch/relwatch/models"
)

// CheckRunner is the slice of the monitor the gateway drives.
type CheckRunner interface {
	CheckRepository(ctx context.Context, rawID string) models.CheckOutcome
	CheckAll(ctx context.Context) models.CheckSummary
	IsMonitored(rawID string) bool
	Repos() []string
}

// Gateway is the daemon combining the scheduler and the HTTP server.
type Gateway struct {
	cfg        *config.Config
	store      *store.Store
	runner     CheckRunner
	dispatcher *notify.Dispatcher
	scheduler  *Scheduler
	metrics    *Metrics
	startedAt  time.Time

	mu          sync.Mutex
	lastSweepAt time.Time
}

// New creates a Gateway. Call Start to begin serving.
func New(cfg *config.Config, st *store.Store, runner CheckRunner, dispatcher *notify.Dispatcher) *Gateway {
	gw := &Gateway{
		cfg:        cfg,
		store:      st,
		runner:     runner,
		dispatcher: dispatcher,
		metrics:    GetMetrics(),
		startedAt:  time.Now(),
	}
	gw.scheduler = newScheduler(cfg.Monitor.IntervalMinutes, gw.sweep)
	return gw
}

// sweep runs one full check pass. Fired by the scheduler; also used for the
// startup sweep.
func (gw *Gateway) sweep() {
	start := time.Now()
	summary := gw.runner.CheckAll(context.Background())
	gw.metrics.RecordSweep(summary, time.Since(start))

	gw.mu.Lock()
	gw.lastSweepAt = time.Now()
	gw.mu.Unlock()
}

// RunInitialSweep performs the startup pass that seeds baselines for newly
// monitored repositories.
func (gw *Gateway) RunInitialSweep() {
	slog.Info("running initial sweep", "repos", len(gw.runner.Repos()))
	gw.sweep()
}

// Start runs the gateway until ctx is cancelled: it starts the cron
// scheduler, binds the HTTP server, and shuts both down gracefully.
func (gw *Gateway) Start(ctx context.Context) error {
	port := gw.cfg.Gateway.Port
	if port == 0 {
		port = 6080
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	if err := gw.scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           buildHandler(gw),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		gw.scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("gateway listening", "addr", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
