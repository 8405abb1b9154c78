package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/expressionlab/moodmirror/internal/domain"
)

type AggregateRepository struct {
	pool PgxPool
}

func NewAggregateRepository(pool PgxPool) *AggregateRepository {
	return &AggregateRepository{pool: pool}
}

// Create inserts the session's aggregated result. The session ID is the
// primary key, so writing a second aggregate for the same session returns
// domain.ErrDuplicateAggregate.
func (r *AggregateRepository) Create(ctx context.Context, result *domain.AggregatedResult) error {
	query := `
		INSERT INTO aggregated_results (session_id, dominant_emotion, confidence, distribution, statement, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		result.SessionID,
		result.Dominant,
		result.Confidence,
		result.Distribution,
		result.Statement,
	).Scan(&result.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAggregate
		}
		return fmt.Errorf("create aggregated result: %w", err)
	}

	return nil
}

// GetBySession retrieves the session's aggregated result. A session without
// an aggregate returns (nil, nil): absence is a valid state, not an error.
func (r *AggregateRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.AggregatedResult, error) {
	query := `
		SELECT session_id, dominant_emotion, confidence, distribution, statement, created_at
		FROM aggregated_results
		WHERE session_id = $1
	`

	var result domain.AggregatedResult
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&result.SessionID,
		&result.Dominant,
		&result.Confidence,
		&result.Distribution,
		&result.Statement,
		&result.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregated result: %w", err)
	}

	return &result, nil
}
