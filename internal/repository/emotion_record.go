package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expressionlab/moodmirror/internal/domain"
)

type EmotionRecordRepository struct {
	pool PgxPool
}

func NewEmotionRecordRepository(pool PgxPool) *EmotionRecordRepository {
	return &EmotionRecordRepository{pool: pool}
}

// Create inserts one emotion record. The distribution is stored as JSONB.
func (r *EmotionRecordRepository) Create(ctx context.Context, record *domain.EmotionRecord) error {
	query := `
		INSERT INTO emotion_records (id, session_id, image_id, label, confidence, distribution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.SessionID,
		record.ImageID,
		record.Label,
		record.Confidence,
		record.Distribution,
	).Scan(&record.CreatedAt)

	if err != nil {
		return fmt.Errorf("create emotion record: %w", err)
	}

	return nil
}

// ListBySession returns the session's emotion records in insertion order.
// Order matters: aggregation breaks ties toward the first-encountered label.
func (r *EmotionRecordRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.EmotionRecord, error) {
	query := `
		SELECT id, session_id, image_id, label, confidence, distribution, created_at
		FROM emotion_records
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list emotion records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EmotionRecord, 0)
	for rows.Next() {
		var record domain.EmotionRecord
		if err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.ImageID,
			&record.Label,
			&record.Confidence,
			&record.Distribution,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan emotion record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list emotion records: %w", err)
	}

	return records, nil
}
