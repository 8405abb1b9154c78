package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The closed emotion vocabulary. Every classifier output is mapped onto these
// labels before it enters the system.
const (
	LabelHappy    = "happy"
	LabelSad      = "sad"
	LabelAngry    = "angry"
	LabelFear     = "fear"
	LabelSurprise = "surprise"
	LabelDisgust  = "disgust"
	LabelNeutral  = "neutral"
)

// Vocabulary lists all valid emotion labels.
var Vocabulary = []string{
	LabelHappy,
	LabelSad,
	LabelAngry,
	LabelFear,
	LabelSurprise,
	LabelDisgust,
	LabelNeutral,
}

var vocabularySet = func() map[string]bool {
	m := make(map[string]bool, len(Vocabulary))
	for _, l := range Vocabulary {
		m[l] = true
	}
	return m
}()

// IsValidLabel reports whether label belongs to the vocabulary.
func IsValidLabel(label string) bool {
	return vocabularySet[label]
}

// EmotionRecord is one classification outcome tied to a session and a matched
// image. Records are immutable once created and are deleted with their
// session.
type EmotionRecord struct {
	ID           uuid.UUID          `json:"id"`
	SessionID    uuid.UUID          `json:"-"`
	ImageID      string             `json:"image_id"`
	Label        string             `json:"label"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"distribution"`
	CreatedAt    time.Time          `json:"created_at"`
}

// AggregatedResult is the single per-session reduction of all emotion records.
// At most one exists per session.
type AggregatedResult struct {
	SessionID    uuid.UUID          `json:"session_id"`
	Dominant     string             `json:"dominant_emotion"`
	Confidence   float64            `json:"emotion_confidence"`
	Distribution map[string]float64 `json:"distribution"`
	Statement    string             `json:"statement"`
	CreatedAt    time.Time          `json:"created_at"`
}

// AggregateRecords reduces the session's emotion records to a single dominant
// emotion by majority vote over per-image top labels. One image, one vote;
// full probability distributions are deliberately not averaged, so a single
// overconfident image cannot swing the result. Ties break toward the label
// encountered first in record order. Returns nil when records is empty.
func AggregateRecords(sessionID uuid.UUID, records []EmotionRecord) *AggregatedResult {
	if len(records) == 0 {
		return nil
	}

	tally := make(map[string]int, len(Vocabulary))
	var order []string
	for _, r := range records {
		if tally[r.Label] == 0 {
			order = append(order, r.Label)
		}
		tally[r.Label]++
	}

	dominant := order[0]
	for _, label := range order {
		if tally[label] > tally[dominant] {
			dominant = label
		}
	}

	n := float64(len(records))
	confidence := float64(tally[dominant]) / n

	distribution := make(map[string]float64, len(tally))
	for label, count := range tally {
		distribution[label] = float64(count) / n
	}

	return &AggregatedResult{
		SessionID:    sessionID,
		Dominant:     dominant,
		Confidence:   confidence,
		Distribution: distribution,
		Statement:    EmotionStatement(dominant, confidence),
	}
}

// EmotionStatement renders the human-readable summary sentence for a dominant
// emotion and its aggregate confidence.
func EmotionStatement(label string, confidence float64) string {
	return fmt.Sprintf("The dominant emotion across the matched faces is %s (confidence: %.1f%%)",
		strings.ToUpper(label), confidence*100)
}
