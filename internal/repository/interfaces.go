package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/expressionlab/moodmirror/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use. pgxmock's pool
// implements it, so every repository is testable without a database.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SessionRepositoryInterface defines operations for session data access
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	AttachImagePath(ctx context.Context, id uuid.UUID, path string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListExpired(ctx context.Context, limit int) ([]domain.Session, error)
}

// EmotionRecordRepositoryInterface defines operations for emotion record data access
type EmotionRecordRepositoryInterface interface {
	Create(ctx context.Context, record *domain.EmotionRecord) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.EmotionRecord, error)
}

// AggregateRepositoryInterface defines operations for aggregated result data access
type AggregateRepositoryInterface interface {
	Create(ctx context.Context, result *domain.AggregatedResult) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.AggregatedResult, error)
}

// GalleryRepositoryInterface defines operations for the reference gallery
type GalleryRepositoryInterface interface {
	Create(ctx context.Context, image *domain.GalleryImage) error
	SearchByEmbedding(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.MatchCandidate, error)
}

// CleanupJobRepositoryInterface defines operations for durable cleanup scheduling
type CleanupJobRepositoryInterface interface {
	Schedule(ctx context.Context, sessionID uuid.UUID, runAt time.Time) error
	Due(ctx context.Context, now time.Time, limit int) ([]domain.CleanupJob, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// SearchAuditRepositoryInterface defines operations for search audit logging
type SearchAuditRepositoryInterface interface {
	Create(ctx context.Context, audit *domain.SearchAudit) error
}
