package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/expressionlab/moodmirror/internal/repository"
)

// sweepBatch caps how many sessions one sweep pass touches.
const sweepBatch = 500

// Worker runs the retention sweep on a fixed interval. Each pass purges the
// sessions with due cleanup jobs, then any expired session without a job row
// (lost writes, pre-upgrade sessions).
type Worker struct {
	purger   *Purger
	sessions repository.SessionRepositoryInterface
	jobs     repository.CleanupJobRepositoryInterface
	logger   *slog.Logger
	interval time.Duration
}

// NewWorker creates a new retention sweep worker
func NewWorker(
	purger *Purger,
	sessions repository.SessionRepositoryInterface,
	jobs repository.CleanupJobRepositoryInterface,
	logger *slog.Logger,
	interval time.Duration,
) *Worker {
	return &Worker{
		purger:   purger,
		sessions: sessions,
		jobs:     jobs,
		logger:   logger,
		interval: interval,
	}
}

// Run starts the worker loop. One sweep runs immediately so restarts do not
// delay purges that came due while the process was down.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cleanup worker started", "interval", w.interval)

	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass.
func (w *Worker) Sweep(ctx context.Context) {
	purged := w.purgeDueJobs(ctx)
	purged += w.purgeExpiredWithoutJobs(ctx)

	if purged > 0 {
		w.logger.Info("cleanup sweep completed", "sessions_purged", purged)
	} else {
		w.logger.Debug("cleanup sweep completed", "sessions_purged", 0)
	}
}

func (w *Worker) purgeDueJobs(ctx context.Context) int {
	jobs, err := w.jobs.Due(ctx, time.Now(), sweepBatch)
	if err != nil {
		w.logger.Error("failed to list due cleanup jobs", "error", err)
		return 0
	}

	purged := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return purged
		}
		if err := w.purger.Purge(ctx, job.SessionID); err != nil {
			w.logger.Warn("failed to purge session",
				"error", err,
				"session_id", job.SessionID,
			)
			continue
		}
		purged++
	}
	return purged
}

// purgeExpiredWithoutJobs is the backstop for sessions whose job row never
// made it to the database.
func (w *Worker) purgeExpiredWithoutJobs(ctx context.Context) int {
	sessions, err := w.sessions.ListExpired(ctx, sweepBatch)
	if err != nil {
		w.logger.Error("failed to list expired sessions", "error", err)
		return 0
	}

	purged := 0
	for _, session := range sessions {
		if ctx.Err() != nil {
			return purged
		}
		if err := w.purger.Purge(ctx, session.ID); err != nil {
			w.logger.Warn("failed to purge expired session",
				"error", err,
				"session_id", session.ID,
			)
			continue
		}
		purged++
	}
	return purged
}
