// Package cleanup retires sessions whose retention window has elapsed:
// stored image, emotion records, aggregate and the session row itself.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/repository"
	"github.com/expressionlab/moodmirror/internal/storage"
)

// Purger removes everything a session owns. Purge is idempotent: purging a
// session that is already gone succeeds, so the scheduled job and the sweep
// backstop can race without harm.
type Purger struct {
	sessions repository.SessionRepositoryInterface
	jobs     repository.CleanupJobRepositoryInterface
	store    storage.ObjectStore
	logger   *slog.Logger
}

func NewPurger(
	sessions repository.SessionRepositoryInterface,
	jobs repository.CleanupJobRepositoryInterface,
	store storage.ObjectStore,
	logger *slog.Logger,
) *Purger {
	return &Purger{
		sessions: sessions,
		jobs:     jobs,
		store:    store,
		logger:   logger,
	}
}

// Purge deletes the session's stored image, its database rows (records and
// aggregate cascade with the session) and its cleanup job. The image delete
// is best-effort: an unreachable store must not keep personal data rows
// alive, and a later purge of the same key is a no-op anyway.
func (p *Purger) Purge(ctx context.Context, sessionID uuid.UUID) error {
	session, err := p.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Already purged; drop any leftover job row.
		if err := p.jobs.Delete(ctx, sessionID); err != nil {
			p.logger.Warn("leftover cleanup job not deleted", "session_id", sessionID, "error", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session for purge: %w", err)
	}

	if session.ImagePath != "" {
		if err := p.store.Delete(ctx, session.ImagePath); err != nil {
			p.logger.Warn("session image not deleted",
				"session_id", sessionID,
				"path", session.ImagePath,
				"error", err,
			)
		}
	}

	if err := p.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := p.jobs.Delete(ctx, sessionID); err != nil {
		p.logger.Warn("cleanup job not deleted", "session_id", sessionID, "error", err)
	}

	p.logger.Info("session purged", "session_id", sessionID)
	return nil
}
