package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/face"
	"github.com/expressionlab/moodmirror/internal/imaging"
	"github.com/expressionlab/moodmirror/internal/provider"
	"github.com/expressionlab/moodmirror/internal/repository"
	"github.com/expressionlab/moodmirror/internal/storage"
)

// SearchConfig carries the tunables of one search orchestration.
type SearchConfig struct {
	SimilarityThreshold float64
	MaxCandidates       int
	ClassifyTimeout     time.Duration
	ClassifyWorkers     int
	SessionTTL          time.Duration
}

// SearchInput is the validated request payload for one search.
type SearchInput struct {
	// SessionID, when set, is honored as the session identity; otherwise a
	// new one is generated server side.
	SessionID *uuid.UUID
	UserName  string
	Image     []byte
	Consent   bool
	ClientIP  string
}

// SessionDetail is the read-side view of a stored session.
type SessionDetail struct {
	Session    *domain.Session          `json:"session"`
	Records    []domain.EmotionRecord   `json:"emotion_records"`
	Aggregated *domain.AggregatedResult `json:"aggregated_state,omitempty"`
}

type SearchService struct {
	sessions   repository.SessionRepositoryInterface
	records    repository.EmotionRecordRepositoryInterface
	aggregates repository.AggregateRepositoryInterface
	gallery    repository.GalleryRepositoryInterface
	jobs       repository.CleanupJobRepositoryInterface
	audits     repository.SearchAuditRepositoryInterface
	store      storage.ObjectStore
	pipeline   *face.Pipeline
	logger     *slog.Logger
	cfg        SearchConfig
}

func NewSearchService(
	sessions repository.SessionRepositoryInterface,
	records repository.EmotionRecordRepositoryInterface,
	aggregates repository.AggregateRepositoryInterface,
	gallery repository.GalleryRepositoryInterface,
	jobs repository.CleanupJobRepositoryInterface,
	audits repository.SearchAuditRepositoryInterface,
	store storage.ObjectStore,
	pipeline *face.Pipeline,
	logger *slog.Logger,
	cfg SearchConfig,
) *SearchService {
	if cfg.ClassifyWorkers < 1 {
		cfg.ClassifyWorkers = 1
	}
	if cfg.ClassifyTimeout <= 0 {
		cfg.ClassifyTimeout = 15 * time.Second
	}
	return &SearchService{
		sessions:   sessions,
		records:    records,
		aggregates: aggregates,
		gallery:    gallery,
		jobs:       jobs,
		audits:     audits,
		store:      store,
		pipeline:   pipeline,
		logger:     logger,
		cfg:        cfg,
	}
}

// Search runs the full orchestration: consent gate, image validation, session
// creation, alignment, embedding, similarity search, concurrent emotion
// classification, aggregation and cleanup scheduling.
//
// Once the session exists the work is detached from the caller's context, so
// a client disconnect cannot leave a half-written session behind.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*domain.SearchResult, error) {
	start := time.Now()

	if !input.Consent {
		return nil, domain.ErrConsentRequired
	}

	if err := imaging.ValidateBitmap(input.Image); err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	// The session and everything hanging off it must be written atomically
	// with respect to client disconnects.
	ctx = context.WithoutCancel(ctx)

	sessionID := uuid.New()
	if input.SessionID != nil && *input.SessionID != uuid.Nil {
		sessionID = *input.SessionID
	}

	session := domain.NewSession(sessionID, input.UserName, input.Consent, s.cfg.SessionTTL)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}

	imagePath, err := s.store.Save(ctx, fmt.Sprintf("sessions/%s/capture.jpg", session.ID), input.Image)
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}
	if err := s.sessions.AttachImagePath(ctx, session.ID, imagePath); err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}
	session.ImagePath = imagePath

	aligned, err := s.pipeline.Aligner.AlignFace(ctx, input.Image)
	if err != nil {
		if errors.Is(err, provider.ErrNoFace) {
			return nil, domain.ErrNoFaceDetected
		}
		return nil, domain.ErrInternal.WithError(err)
	}

	embedding, err := s.pipeline.Embedder.ExtractEmbedding(ctx, aligned.Bytes)
	if err != nil || len(embedding) == 0 {
		return nil, domain.ErrEmbeddingFailed.WithError(err)
	}

	candidates, err := s.gallery.SearchByEmbedding(ctx, embedding, s.cfg.SimilarityThreshold, s.cfg.MaxCandidates)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatchesFound
	}

	classifications := s.classifyCandidates(ctx, candidates)

	// Persist in candidate order so aggregation tie-breaking is stable. A
	// failed classification or a failed insert drops that candidate only.
	records := make([]domain.EmotionRecord, 0, len(candidates))
	matched := make([]domain.MatchedImage, 0, len(candidates))
	for i, cand := range candidates {
		outcome := classifications[i]
		if outcome.err != nil {
			s.logger.Warn("candidate dropped",
				"session_id", session.ID,
				"image_id", cand.ImageID,
				"error", outcome.err,
			)
			continue
		}

		record := domain.EmotionRecord{
			SessionID:    session.ID,
			ImageID:      cand.ImageID,
			Label:        outcome.classification.Label,
			Confidence:   outcome.classification.Confidence,
			Distribution: outcome.classification.Distribution,
		}
		if err := s.records.Create(ctx, &record); err != nil {
			s.logger.Warn("emotion record dropped",
				"session_id", session.ID,
				"image_id", cand.ImageID,
				"error", err,
			)
			continue
		}

		records = append(records, record)
		matched = append(matched, domain.MatchedImage{
			ImageID:             cand.ImageID,
			ImageURL:            cand.ImageURL,
			Emotion:             record.Label,
			EmotionDistribution: record.Distribution,
			EmotionConfidence:   record.Confidence,
			SimilarityScore:     cand.Similarity,
		})
	}

	if len(records) == 0 {
		return nil, domain.ErrEmotionAnalysisFailed
	}

	aggregated := domain.AggregateRecords(session.ID, records)
	if err := s.aggregates.Create(ctx, aggregated); err != nil {
		if errors.Is(err, domain.ErrDuplicateAggregate) {
			return nil, domain.ErrDuplicateAggregate
		}
		return nil, domain.ErrInternal.WithError(err)
	}

	// Cleanup scheduling is durable but not fatal: the sweep backstop purges
	// expired sessions even when this write is lost.
	if err := s.jobs.Schedule(ctx, session.ID, session.ExpiresAt); err != nil {
		s.logger.Warn("cleanup job not scheduled", "session_id", session.ID, "error", err)
	}

	s.writeAudit(ctx, session.ID, len(matched), aggregated.Dominant, input.ClientIP, start)

	return &domain.SearchResult{
		SessionID:     session.ID,
		MatchedCount:  len(matched),
		MatchedImages: matched,
		Aggregated:    aggregated,
		Statement:     aggregated.Statement,
	}, nil
}

type classifyOutcome struct {
	classification *provider.EmotionClassification
	err            error
}

// classifyCandidates fans candidate classification out over a bounded worker
// pool. Results land at the candidate's index, preserving order regardless of
// completion timing. Each candidate gets its own timeout so one stuck model
// call cannot stall the batch.
func (s *SearchService) classifyCandidates(ctx context.Context, candidates []domain.MatchCandidate) []classifyOutcome {
	outcomes := make([]classifyOutcome, len(candidates))
	sem := make(chan struct{}, s.cfg.ClassifyWorkers)
	var wg sync.WaitGroup

	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand domain.MatchCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cctx, cancel := context.WithTimeout(ctx, s.cfg.ClassifyTimeout)
			defer cancel()

			data, err := s.store.Fetch(cctx, cand.StoragePath)
			if err != nil {
				outcomes[i].err = fmt.Errorf("fetch candidate image: %w", err)
				return
			}

			classification, err := s.pipeline.Classifier.ClassifyEmotion(cctx, data)
			if err != nil {
				outcomes[i].err = fmt.Errorf("classify candidate: %w", err)
				return
			}
			outcomes[i].classification = classification
		}(i, cand)
	}

	wg.Wait()
	return outcomes
}

// writeAudit records the search outcome; failure is logged and swallowed.
func (s *SearchService) writeAudit(ctx context.Context, sessionID uuid.UUID, matchedCount int, dominant, clientIP string, start time.Time) {
	audit := &domain.SearchAudit{
		SessionID:    sessionID,
		MatchedCount: matchedCount,
		Dominant:     &dominant,
		Threshold:    s.cfg.SimilarityThreshold,
		MaxResults:   s.cfg.MaxCandidates,
		LatencyMs:    time.Since(start).Milliseconds(),
		ClientIP:     clientIP,
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		s.logger.Warn("search audit not written", "session_id", sessionID, "error", err)
	}
}

// GetSession returns the stored session with its emotion records and
// aggregate. A session past its retention window reports not found even if
// the purge has not run yet.
func (s *SearchService) GetSession(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, domain.ErrSessionNotFound
	}

	records, err := s.records.ListBySession(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	aggregated, err := s.aggregates.GetBySession(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	return &SessionDetail{
		Session:    session,
		Records:    records,
		Aggregated: aggregated,
	}, nil
}
