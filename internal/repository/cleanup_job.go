package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expressionlab/moodmirror/internal/domain"
)

type CleanupJobRepository struct {
	pool PgxPool
}

func NewCleanupJobRepository(pool PgxPool) *CleanupJobRepository {
	return &CleanupJobRepository{pool: pool}
}

// Schedule records a purge job for the session. Scheduling the same session
// twice is a no-op so retries stay safe.
func (r *CleanupJobRepository) Schedule(ctx context.Context, sessionID uuid.UUID, runAt time.Time) error {
	query := `
		INSERT INTO cleanup_jobs (session_id, run_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, sessionID, runAt); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}

	return nil
}

// Due returns jobs whose run time has passed, oldest first.
func (r *CleanupJobRepository) Due(ctx context.Context, now time.Time, limit int) ([]domain.CleanupJob, error) {
	query := `
		SELECT session_id, run_at, created_at
		FROM cleanup_jobs
		WHERE run_at <= $1
		ORDER BY run_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due cleanup jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.CleanupJob, 0)
	for rows.Next() {
		var job domain.CleanupJob
		if err := rows.Scan(&job.SessionID, &job.RunAt, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cleanup job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due cleanup jobs: %w", err)
	}

	return jobs, nil
}

// Delete removes the session's job. Deleting a missing job is a no-op: the
// purge may have been completed by the sweep backstop.
func (r *CleanupJobRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	query := `
		DELETE FROM cleanup_jobs
		WHERE session_id = $1
	`

	if _, err := r.pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete cleanup job: %w", err)
	}

	return nil
}
