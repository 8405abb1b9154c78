package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchCandidate is one hit returned by the similarity index. Candidates are
// produced per-search and never persisted on their own; only the subset that
// was successfully emotion-classified survives as emotion records.
type MatchCandidate struct {
	ImageID     string  `json:"image_id"`
	ImageURL    string  `json:"image_url"`
	StoragePath string  `json:"-"`
	Similarity  float64 `json:"similarity_score"`
}

// MatchedImage is one fully processed candidate in a search response.
type MatchedImage struct {
	ImageID             string             `json:"image_id"`
	ImageURL            string             `json:"image_url"`
	Emotion             string             `json:"emotion"`
	EmotionDistribution map[string]float64 `json:"emotion_distribution"`
	EmotionConfidence   float64            `json:"emotion_confidence"`
	SimilarityScore     float64            `json:"similarity_score"`
}

// SearchResult is the complete outcome of one search orchestration.
type SearchResult struct {
	SessionID     uuid.UUID         `json:"session_id"`
	MatchedCount  int               `json:"matched_count"`
	MatchedImages []MatchedImage    `json:"matched_images"`
	Aggregated    *AggregatedResult `json:"aggregated_state"`
	Statement     string            `json:"statement"`
}

// SearchAudit is a best-effort audit row written after each search attempt.
type SearchAudit struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	MatchedCount int       `json:"matched_count"`
	Dominant     *string   `json:"dominant_emotion,omitempty"`
	Threshold    float64   `json:"threshold"`
	MaxResults   int       `json:"max_results"`
	LatencyMs    int64     `json:"latency_ms"`
	ClientIP     string    `json:"client_ip"`
	CreatedAt    time.Time `json:"created_at"`
}
