package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/expressionlab/moodmirror/internal/domain"
)

type SessionRepository struct {
	pool PgxPool
}

func NewSessionRepository(pool PgxPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_name, image_path, consent, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.UserName,
		session.ImagePath,
		session.Consent,
		session.Status,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, user_name, image_path, consent, status, expires_at, created_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserName,
		&session.ImagePath,
		&session.Consent,
		&session.Status,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return &session, nil
}

// AttachImagePath records where the captured image was stored for this session
func (r *SessionRepository) AttachImagePath(ctx context.Context, id uuid.UUID, path string) error {
	query := `
		UPDATE sessions
		SET image_path = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, path)
	if err != nil {
		return fmt.Errorf("attach image path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session by ID. Emotion records and aggregated results
// cascade with the row.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM sessions
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// ListExpired returns sessions whose retention window has elapsed, oldest
// first. The sweep worker uses this as a backstop for lost cleanup jobs.
func (r *SessionRepository) ListExpired(ctx context.Context, limit int) ([]domain.Session, error) {
	query := `
		SELECT id, user_name, image_path, consent, status, expires_at, created_at
		FROM sessions
		WHERE expires_at < NOW()
		ORDER BY expires_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.ID,
			&session.UserName,
			&session.ImagePath,
			&session.Consent,
			&session.Status,
			&session.ExpiresAt,
			&session.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan expired session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}

	return sessions, nil
}
