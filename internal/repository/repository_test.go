package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expressionlab/moodmirror/internal/domain"
)

// SessionRepository Tests

func TestSessionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	session := domain.NewSession(uuid.New(), "Ada", true, 24*time.Hour)

	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs(session.ID, "Ada", "", domain.SessionActive, session.ExpiresAt).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewSessionRepository(mock)
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Create_AssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	session := &domain.Session{UserName: "Ada", Consent: true, Status: domain.SessionActive}

	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs(pgxmock.AnyArg(), "Ada", "", domain.SessionActive, session.ExpiresAt).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewSessionRepository(mock)
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByID(t *testing.T) {
	sessionID := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful retrieval",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "user_name", "image_path", "consent", "status", "expires_at", "created_at",
				}).AddRow(
					sessionID, "Ada", "sessions/x/capture.jpg", true,
					domain.SessionActive, now.Add(24*time.Hour), now,
				)
				mock.ExpectQuery(`SELECT id, user_name, image_path, consent, status, expires_at, created_at`).
					WithArgs(sessionID).
					WillReturnRows(rows)
			},
			wantErr: nil,
		},
		{
			name: "session not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, user_name, image_path, consent, status, expires_at, created_at`).
					WithArgs(sessionID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrSessionNotFound,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, user_name, image_path, consent, status, expires_at, created_at`).
					WithArgs(sessionID).
					WillReturnError(errors.New("database connection error"))
			},
			wantErr: errors.New("get session by id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewSessionRepository(mock)
			got, err := repo.GetByID(context.Background(), sessionID)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrSessionNotFound) {
					assert.ErrorIs(t, err, domain.ErrSessionNotFound)
				} else {
					assert.Contains(t, err.Error(), "get session by id")
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, sessionID, got.ID)
				assert.Equal(t, "Ada", got.UserName)
				assert.True(t, got.Consent)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_AttachImagePath(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()

	mock.ExpectExec(`UPDATE sessions`).
		WithArgs(sessionID, "sessions/x/capture.jpg").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewSessionRepository(mock)
	require.NoError(t, repo.AttachImagePath(context.Background(), sessionID, "sessions/x/capture.jpg"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()

	mock.ExpectExec(`DELETE FROM sessions`).
		WithArgs(sessionID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewSessionRepository(mock)
	err = repo.Delete(context.Background(), sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	first := uuid.New()
	second := uuid.New()

	rows := pgxmock.NewRows([]string{
		"id", "user_name", "image_path", "consent", "status", "expires_at", "created_at",
	}).
		AddRow(first, "Ada", "a.jpg", true, domain.SessionActive, now.Add(-2*time.Hour), now.Add(-26*time.Hour)).
		AddRow(second, "Grace", "b.jpg", true, domain.SessionActive, now.Add(-time.Hour), now.Add(-25*time.Hour))

	mock.ExpectQuery(`SELECT id, user_name, image_path, consent, status, expires_at, created_at`).
		WithArgs(100).
		WillReturnRows(rows)

	repo := NewSessionRepository(mock)
	sessions, err := repo.ListExpired(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first, sessions[0].ID)
	assert.Equal(t, second, sessions[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// EmotionRecordRepository Tests

func TestEmotionRecordRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	record := &domain.EmotionRecord{
		SessionID:    uuid.New(),
		ImageID:      "img-1",
		Label:        domain.LabelHappy,
		Confidence:   0.9,
		Distribution: map[string]float64{domain.LabelHappy: 0.9, domain.LabelNeutral: 0.1},
	}

	mock.ExpectQuery(`INSERT INTO emotion_records`).
		WithArgs(pgxmock.AnyArg(), record.SessionID, "img-1", domain.LabelHappy, 0.9, record.Distribution).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewEmotionRecordRepository(mock)
	require.NoError(t, repo.Create(context.Background(), record))
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmotionRecordRepository_ListBySession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "session_id", "image_id", "label", "confidence", "distribution", "created_at",
	}).
		AddRow(uuid.New(), sessionID, "img-1", domain.LabelHappy, 0.9, map[string]float64{domain.LabelHappy: 0.9}, now).
		AddRow(uuid.New(), sessionID, "img-2", domain.LabelSad, 0.7, map[string]float64{domain.LabelSad: 0.7}, now)

	mock.ExpectQuery(`SELECT id, session_id, image_id, label, confidence, distribution, created_at`).
		WithArgs(sessionID).
		WillReturnRows(rows)

	repo := NewEmotionRecordRepository(mock)
	records, err := repo.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "img-1", records[0].ImageID)
	assert.Equal(t, domain.LabelSad, records[1].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// AggregateRepository Tests

func TestAggregateRepository_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := &domain.AggregatedResult{
		SessionID:    uuid.New(),
		Dominant:     domain.LabelHappy,
		Confidence:   0.67,
		Distribution: map[string]float64{domain.LabelHappy: 0.67, domain.LabelSad: 0.33},
		Statement:    domain.EmotionStatement(domain.LabelHappy, 0.67),
	}

	mock.ExpectQuery(`INSERT INTO aggregated_results`).
		WithArgs(result.SessionID, result.Dominant, result.Confidence, result.Distribution, result.Statement).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "aggregated_results_pkey" (SQLSTATE 23505)`))

	repo := NewAggregateRepository(mock)
	err = repo.Create(context.Background(), result)
	assert.ErrorIs(t, err, domain.ErrDuplicateAggregate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateRepository_GetBySession_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()

	mock.ExpectQuery(`SELECT session_id, dominant_emotion, confidence, distribution, statement, created_at`).
		WithArgs(sessionID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewAggregateRepository(mock)
	got, err := repo.GetBySession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// GalleryRepository Tests

func TestGalleryRepository_SearchByEmbedding(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	first := uuid.New()
	second := uuid.New()
	embedding := []float32{0.1, 0.2, 0.3}

	rows := pgxmock.NewRows([]string{"id", "image_url", "storage_path", "similarity"}).
		AddRow(first, "https://img/1.jpg", "gallery/1.jpg", 0.95).
		AddRow(second, "https://img/2.jpg", "gallery/2.jpg", 0.81)

	mock.ExpectQuery(`SELECT id, image_url, storage_path, 1 - \(embedding <=> \$1\)`).
		WithArgs(pgvector.NewVector(embedding), 0.6, 50).
		WillReturnRows(rows)

	repo := NewGalleryRepository(mock)
	matches, err := repo.SearchByEmbedding(context.Background(), embedding, 0.6, 50)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, first.String(), matches[0].ImageID)
	assert.Equal(t, 0.95, matches[0].Similarity)
	assert.Equal(t, "gallery/2.jpg", matches[1].StoragePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepository_SearchByEmbedding_NoMatches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	embedding := []float32{0.1, 0.2, 0.3}

	mock.ExpectQuery(`SELECT id, image_url, storage_path, 1 - \(embedding <=> \$1\)`).
		WithArgs(pgvector.NewVector(embedding), 0.99, 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "image_url", "storage_path", "similarity"}))

	repo := NewGalleryRepository(mock)
	matches, err := repo.SearchByEmbedding(context.Background(), embedding, 0.99, 50)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// CleanupJobRepository Tests

func TestCleanupJobRepository_Schedule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()
	runAt := time.Now().Add(24 * time.Hour)

	mock.ExpectExec(`INSERT INTO cleanup_jobs`).
		WithArgs(sessionID, runAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewCleanupJobRepository(mock)
	require.NoError(t, repo.Schedule(context.Background(), sessionID, runAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupJobRepository_Schedule_ConflictIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()
	runAt := time.Now().Add(24 * time.Hour)

	// ON CONFLICT DO NOTHING reports zero rows affected, not an error.
	mock.ExpectExec(`INSERT INTO cleanup_jobs`).
		WithArgs(sessionID, runAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewCleanupJobRepository(mock)
	require.NoError(t, repo.Schedule(context.Background(), sessionID, runAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupJobRepository_Due(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	first := uuid.New()
	second := uuid.New()

	rows := pgxmock.NewRows([]string{"session_id", "run_at", "created_at"}).
		AddRow(first, now.Add(-2*time.Hour), now.Add(-26*time.Hour)).
		AddRow(second, now.Add(-time.Hour), now.Add(-25*time.Hour))

	mock.ExpectQuery(`SELECT session_id, run_at, created_at`).
		WithArgs(now, 100).
		WillReturnRows(rows)

	repo := NewCleanupJobRepository(mock)
	jobs, err := repo.Due(context.Background(), now, 100)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, first, jobs[0].SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupJobRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sessionID := uuid.New()

	mock.ExpectExec(`DELETE FROM cleanup_jobs`).
		WithArgs(sessionID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewCleanupJobRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), sessionID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// SearchAuditRepository Tests

func TestSearchAuditRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dominant := domain.LabelHappy
	audit := &domain.SearchAudit{
		SessionID:    uuid.New(),
		MatchedCount: 3,
		Dominant:     &dominant,
		Threshold:    0.6,
		MaxResults:   50,
		LatencyMs:    120,
		ClientIP:     "203.0.113.9",
	}

	mock.ExpectQuery(`INSERT INTO search_audits`).
		WithArgs(pgxmock.AnyArg(), audit.SessionID, 3, &dominant, 0.6, 50, int64(120), "203.0.113.9").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewSearchAuditRepository(mock)
	require.NoError(t, repo.Create(context.Background(), audit))
	assert.NoError(t, mock.ExpectationsWereMet())
}
