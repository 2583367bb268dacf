// Package jobs runs the periodic balance reconciliation.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"finance-ledger-go/internal/ledger"
)

// Reconciler is the part of the ledger engine the job needs.
type Reconciler interface {
	ReconcileAll(ctx context.Context, repair bool) ([]ledger.Drift, error)
}

type Options struct {
	Schedule string // standard 5-field cron spec or @every/@hourly descriptor
	Repair   bool
	Timeout  time.Duration // per run; zero means none
}

type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	logger     *slog.Logger
	opts       Options
}

func NewScheduler(r Reconciler, logger *slog.Logger, opts Options) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:       c,
		reconciler: r,
		logger:     logger,
		opts:       opts,
	}
}

// Start registers the reconciliation job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.Schedule, s.Reconcile); err != nil {
		s.logger.Error("failed to schedule reconciliation job", "error", err)
		return err
	}
	s.logger.Info("scheduled reconciliation job", "schedule", s.opts.Schedule, "repair", s.opts.Repair)
	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Reconcile is one run of the job.
func (s *Scheduler) Reconcile() {
	ctx := context.Background()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	drifted, err := s.reconciler.ReconcileAll(ctx, s.opts.Repair)
	if err != nil {
		s.logger.Error("reconciliation failed", "error", err, "elapsed", time.Since(start))
		return
	}
	if len(drifted) > 0 {
		ids := make([]uint, 0, len(drifted))
		for _, d := range drifted {
			ids = append(ids, d.BankAccountID)
		}
		s.logger.Warn("reconciliation found drifted balances", "bank_account_ids", ids, "repaired", s.opts.Repair)
		return
	}
	s.logger.Info("reconciliation clean", "elapsed", time.Since(start))
}
