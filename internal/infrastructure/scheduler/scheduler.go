// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bibbank/credit-service/internal/application/dto"
)

// Sweeper runs one overdue sweep.
type Sweeper interface {
	Execute(ctx context.Context) (dto.SweepResult, error)
}

// Scheduler owns a cron runner. Runs of the same job never overlap.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Scheduler. Each run gets at most timeout to finish.
func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	cl := cronLogger{logger: logger.With("component", "scheduler")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(
				cron.Recover(cl),
				cron.SkipIfStillRunning(cl),
			),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// ScheduleSweep registers sweeper under a standard cron spec such as
// "*/15 * * * *" or "@hourly".
func (s *Scheduler) ScheduleSweep(spec string, sweeper Sweeper) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunSweep(context.Background(), sweeper) }); err != nil {
		return fmt.Errorf("schedule overdue sweep %q: %w", spec, err)
	}
	s.logger.Info("overdue sweep scheduled", "schedule", spec)
	return nil
}

// RunSweep executes one sweep and logs its outcome.
func (s *Scheduler) RunSweep(ctx context.Context, sweeper Sweeper) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := sweeper.Execute(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "overdue sweep failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "overdue sweep completed",
		"installments_marked", result.InstallmentsMarked,
		"credits_updated", result.CreditsUpdated,
		"loans_marked", result.LoansMarked,
		"duration", time.Since(started),
	)
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own messages (recovered panics, skipped runs)
// through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
