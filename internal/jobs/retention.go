// Package jobs contains the backend's long-running background services.
// Each job follows the same shape: a constructor wiring dependencies, a
// Start(ctx) loop that runs once immediately and then on a ticker, and a
// Stop() that terminates the loop. Jobs are started from the router's
// background service registry and stopped during graceful shutdown.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/config"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/telemetry"
)

// RetentionStore is the slice of the audit store the sweeper needs.
type RetentionStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionSweeper deletes audit entries older than the configured retention
// horizon. It sweeps once at startup and then on a fixed interval; a failed
// sweep is logged and the schedule continues, since the next pass will cover
// the same rows.
type RetentionSweeper struct {
	store    RetentionStore
	cfg      *config.AuditConfig
	interval time.Duration
	stopChan chan struct{}
}

// NewRetentionSweeper creates the sweeper. The sweep interval comes from
// audit.sweep_interval_hours (default 24h).
func NewRetentionSweeper(store RetentionStore, cfg *config.AuditConfig) *RetentionSweeper {
	hours := cfg.SweepIntervalHours
	if hours <= 0 {
		hours = 24
	}
	return &RetentionSweeper{
		store:    store,
		cfg:      cfg,
		interval: time.Duration(hours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called.
func (s *RetentionSweeper) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		slog.Info("audit retention sweeper: disabled (audit.enabled=false)")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("audit retention sweeper started",
		"retention_days", s.cfg.RetentionDays, "interval", s.interval)

	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			slog.Info("audit retention sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("audit retention sweeper context cancelled")
			return
		}
	}
}

// Stop signals the loop to exit.
func (s *RetentionSweeper) Stop() {
	close(s.stopChan)
}

// sweep deletes everything strictly older than now minus the horizon.
func (s *RetentionSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.RetentionHorizon())

	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("audit retention sweeper: sweep failed", "cutoff", cutoff, "error", err)
		return
	}
	if deleted > 0 {
		telemetry.AuditRetentionDeletedTotal.Add(float64(deleted))
		slog.Info("audit retention sweeper: purged old entries",
			"deleted", deleted, "cutoff", cutoff)
	}
}
